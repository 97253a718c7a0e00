package zkgroup

import "github.com/prometheus/client_golang/prometheus"

var (
	membersGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "zkgroup",
		Subsystem: "group",
		Name:      "members",
		Help:      "Number of members in the group at the last fetch",
	}, []string{"group"})

	watchEventsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zkgroup",
		Subsystem: "monitor",
		Name:      "watch_events_total",
		Help:      "Number of membership change notifications observed",
	}, []string{"group"})

	monitorErrorsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zkgroup",
		Subsystem: "monitor",
		Name:      "errors_total",
		Help:      "Number of membership fetch failures in the monitor",
	}, []string{"group"})

	disconnectsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zkgroup",
		Subsystem: "monitor",
		Name:      "disconnects_total",
		Help:      "Number of non-connected session states observed while monitoring",
	}, []string{"group"})
)

func init() {
	prometheus.MustRegister(
		membersGauge,
		watchEventsCounter,
		monitorErrorsCounter,
		disconnectsCounter)
}
