package timer

import (
	"log/slog"
	"time"
)

// Option customises a Stopwatch or Countdown.
type Option func(*config)

type config struct {
	clock     Clock
	ticker    TickerFunc
	interval  time.Duration
	logger    *slog.Logger
	onTick    func(seconds float64)
	onFinish  func()
	initial   *float64
	threshold *float64
}

func newConfig(options []Option) config {
	cfg := config{
		clock:    RealClock(),
		ticker:   NewRealTicker,
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithTicker overrides how runs build their ticker.
func WithTicker(fn TickerFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.ticker = fn
		}
	}
}

// WithInterval sets the tick resolution.
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger used for recovered callback panics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnTick registers a callback invoked from the timer goroutine after
// each tick with the current value in seconds.
func WithOnTick(fn func(seconds float64)) Option {
	return func(c *config) {
		c.onTick = fn
	}
}

// WithOnFinish registers the countdown completion signal.
func WithOnFinish(fn func()) Option {
	return func(c *config) {
		c.onFinish = fn
	}
}

// WithInitial restores a previously recorded value in seconds.
func WithInitial(seconds float64) Option {
	return func(c *config) {
		c.initial = &seconds
	}
}

// WithThreshold sets the stopwatch alert threshold in seconds.
func WithThreshold(seconds *float64) Option {
	return func(c *config) {
		c.threshold = seconds
	}
}
