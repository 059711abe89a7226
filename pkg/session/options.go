package session

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-inspectform/pkg/timer"
)

const defaultEventBuffer = 32

// Option customises a Session.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	timerOptions []timer.Option
	now          func() time.Time
	eventBuffer  int
}

func newOptions(opts []Option) options {
	o := options{
		logger:      slog.Default(),
		now:         time.Now,
		eventBuffer: defaultEventBuffer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithLogger sets the session logger. Timers inherit it.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimerOptions appends options applied to every stopwatch and countdown
// the session creates.
func WithTimerOptions(opts ...timer.Option) Option {
	return func(o *options) {
		o.timerOptions = append(o.timerOptions, opts...)
	}
}

// WithNow overrides the clock used for submission timestamps.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithEventBuffer sizes the Events channel. Events are dropped when it is
// full.
func WithEventBuffer(size int) Option {
	return func(o *options) {
		if size >= 0 {
			o.eventBuffer = size
		}
	}
}
