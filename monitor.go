package zkgroup

import (
	"context"
	"sync"

	"github.com/go-zookeeper/zk"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

// StopFunc tears down the monitor: it stops the relay and the session
// listener and closes the event channel once both have exited. It is safe to
// call more than once.
type StopFunc func()

// Monitor starts monitoring the group. It installs a self re-arming one-shot
// child watch on the group path and returns a channel that carries a
// MembersEvent for the initial snapshot and for each subsequent change, and
// an ErrorEvent for fetch failures and session disconnections. Calling
// Monitor again returns the same channel and stop function; only one relay is
// ever installed per Group.
//
// A failed fetch emits an ErrorEvent and ends the relay, since a failed fetch
// arms no watch and this package never retries internally. Session states
// other than zk.StateHasSession are surfaced as ErrDisconnected ErrorEvents.
func (g *Group) Monitor() (<-chan Event, StopFunc) {
	g.monitorOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		g.events = make(chan Event, g.opts.eventBuffer)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			g.relay(ctx)
		}()
		go func() {
			defer wg.Done()
			g.listenSession(ctx)
		}()

		var stopOnce sync.Once
		events := g.events
		g.stop = func() {
			stopOnce.Do(func() {
				cancel()
				wg.Wait()
				close(events)
			})
		}
	})
	return g.events, g.stop
}

// relay is the change-notification loop. Each iteration fetches the
// membership with a fresh one-shot watch, emits the snapshot and then blocks
// until the watch fires. The next fetch re-arms the next watch.
func (g *Group) relay(ctx context.Context) {
	g.opts.log.Debug(ctx, "zkgroup: monitoring group", j.KS("group", g.opts.path))
	defer g.opts.log.Debug(ctx, "zkgroup: stopped monitoring group", j.KS("group", g.opts.path))

	var last []string
	for first := true; ; first = false {
		members, watch, err := g.membersWatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			monitorErrorsCounter.WithLabelValues(g.opts.path).Inc()
			g.opts.log.Error(ctx, errors.Wrap(err, "membership fetch"))
			g.emit(ctx, ErrorEvent{Err: err})
			return
		}

		membersGauge.WithLabelValues(g.opts.path).Set(float64(len(members)))
		if !first {
			watchEventsCounter.WithLabelValues(g.opts.path).Inc()
		}
		g.emit(ctx, newMembersEvent(last, members))
		last = members

		select {
		case <-ctx.Done():
			return
		case <-watch:
		}
	}
}

// membersWatch lists the group's children and arms a one-shot watch for the
// next change, bounded by the operation timeout. On timeout the late result,
// including its watch channel, is discarded.
func (g *Group) membersWatch(ctx context.Context) ([]string, <-chan zk.Event, error) {
	ctx, cancel := opContext(ctx, g.opts.timeout)
	defer cancel()

	type childrenWatch struct {
		members []string
		watch   <-chan zk.Event
	}

	cw, err := await(ctx, func() (childrenWatch, error) {
		members, _, watch, err := g.conn.ChildrenW(g.opts.path)
		return childrenWatch{members: members, watch: watch}, err
	})
	if err != nil {
		if errors.IsAny(err, ErrTimeout, context.Canceled) {
			return nil, nil, err
		}
		return nil, nil, wrapKind(ErrMembersUnavailable, err, j.KS("group", g.opts.path))
	}
	return cw.members, cw.watch, nil
}

// listenSession consumes the injected session event stream and emits an
// ErrDisconnected ErrorEvent for every session state other than fully
// connected.
func (g *Group) listenSession(ctx context.Context) {
	if g.session == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-g.session:
			if !ok {
				return
			}
			if ev.Type != zk.EventSession || ev.State == zk.StateHasSession {
				continue
			}
			disconnectsCounter.WithLabelValues(g.opts.path).Inc()
			g.emit(ctx, ErrorEvent{Err: errors.Wrap(ErrDisconnected, "",
				j.MKV{"group": g.opts.path, "state": ev.State.String()})})
		}
	}
}

// emit delivers ev to the consumer, blocking when the buffer is full so that
// no event is dropped. It gives up only when the monitor is stopped.
func (g *Group) emit(ctx context.Context, ev Event) {
	select {
	case g.events <- ev:
	case <-ctx.Done():
	}
}
