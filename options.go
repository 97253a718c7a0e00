package zkgroup

import (
	"context"
	"strings"
	"time"

	"github.com/luno/jettison"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"
)

// DefaultGroupPath is the group root used when no path option is provided.
const DefaultGroupPath = "/zkgroup"

const defaultEventBuffer = 16

type Option func(*options)

// WithGroupPath returns an option to override the default group root path.
// The path must be absolute and must not end with the separator.
func WithGroupPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithSetupTimeout returns an option that bounds Setup. The default of zero
// applies no deadline.
func WithSetupTimeout(d time.Duration) Option {
	return func(o *options) {
		o.setupTimeout = d
	}
}

// WithTimeout returns an option that bounds Members, Register and MemberData,
// as well as each fetch performed by the monitor. The default of zero applies
// no deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithEventBuffer returns an option to override the default monitor event
// channel buffer of 16. Emission blocks once the buffer is full, so events
// are never dropped.
func WithEventBuffer(n int) Option {
	return func(o *options) {
		o.eventBuffer = n
	}
}

// WithLogger returns an option to override the default no-op logger.
func WithLogger(l log.Interface) Option {
	return func(o *options) {
		o.log = l
	}
}

type options struct {
	path         string
	setupTimeout time.Duration
	timeout      time.Duration
	eventBuffer  int
	log          log.Interface
}

func defaultOptions() options {
	return options{
		path:        DefaultGroupPath,
		eventBuffer: defaultEventBuffer,
		log:         noopLogger{},
	}
}

func validateOptions(o *options) error {
	if !strings.HasPrefix(o.path, "/") {
		return errors.New("group path must be absolute", j.KS("path", o.path))
	}
	if len(o.path) > 1 && strings.HasSuffix(o.path, "/") {
		return errors.New("group path must not end with separator", j.KS("path", o.path))
	}
	if o.eventBuffer < 0 {
		o.eventBuffer = defaultEventBuffer
	}
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...jettison.Option) {}
func (noopLogger) Info(context.Context, string, ...jettison.Option)  {}
func (noopLogger) Error(context.Context, error, ...jettison.Option)  {}
