package timer

import (
	"sync"
	"time"
)

// Countdown counts remaining seconds down to zero. Reaching zero while
// running moves it to Finished and fires the completion signal once per
// run. Its methods are safe for concurrent use.
type Countdown struct {
	cfg   config
	total time.Duration

	mu        sync.Mutex
	state     State
	remaining time.Duration
	startedAt time.Time
	fired     bool
	run       *run
}

// NewCountdown returns a stopped countdown over total. WithInitial restores
// a remaining value recorded earlier.
func NewCountdown(total time.Duration, options ...Option) *Countdown {
	cfg := newConfig(options)
	c := &Countdown{cfg: cfg, total: total, remaining: total}
	if cfg.initial != nil {
		c.remaining = max(time.Duration(*cfg.initial*float64(time.Second)), 0)
	}
	return c
}

// Start moves a stopped countdown with time left to Running. A finished
// countdown stays finished until Reset.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Stopped || c.remaining <= 0 {
		return
	}
	c.state = Running
	c.startedAt = c.cfg.clock.Now()
	c.run = startRun(c.cfg.ticker(c.cfg.interval), c.tick)
}

// Pause stops a running countdown and keeps the remaining time.
func (c *Countdown) Pause() {
	c.mu.Lock()
	finished := c.advance()
	if c.state == Running {
		c.remaining = c.left()
		c.state = Stopped
		c.run.stop()
		c.run = nil
	}
	c.mu.Unlock()
	if finished {
		c.signal()
	}
}

// Reset returns to Stopped at the full duration and clears Finished.
func (c *Countdown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.run.stop()
	c.run = nil
	c.state = Stopped
	c.remaining = c.total
	c.fired = false
}

// Close stops the countdown and waits for its goroutine to exit.
func (c *Countdown) Close() {
	c.mu.Lock()
	if c.state == Running {
		c.remaining = c.left()
		c.state = Stopped
	}
	r := c.run
	r.stop()
	c.run = nil
	c.mu.Unlock()
	r.wait()
}

// Value returns the remaining seconds, never below zero.
func (c *Countdown) Value() float64 {
	c.mu.Lock()
	finished := c.advance()
	value := seconds(c.left())
	c.mu.Unlock()
	if finished {
		c.signal()
	}
	return value
}

// State returns the current phase.
func (c *Countdown) State() State {
	c.mu.Lock()
	finished := c.advance()
	state := c.state
	c.mu.Unlock()
	if finished {
		c.signal()
	}
	return state
}

// Total returns the full duration.
func (c *Countdown) Total() time.Duration {
	return c.total
}

func (c *Countdown) left() time.Duration {
	if c.state != Running {
		return c.remaining
	}
	return max(c.remaining-c.cfg.clock.Now().Sub(c.startedAt), 0)
}

// advance moves a running countdown that reached zero to Finished. It
// reports whether the completion signal is due. Callers hold c.mu.
func (c *Countdown) advance() bool {
	if c.state != Running || c.left() > 0 {
		return false
	}
	c.remaining = 0
	c.state = Finished
	c.run.stop()
	c.run = nil
	if c.fired {
		return false
	}
	c.fired = true
	return true
}

func (c *Countdown) tick(r *run) bool {
	c.mu.Lock()
	if c.run != r {
		c.mu.Unlock()
		return false
	}
	finished := c.advance()
	value := seconds(c.left())
	c.mu.Unlock()

	if c.cfg.onTick != nil {
		safeCall(c.cfg.logger, "tick", func() { c.cfg.onTick(value) })
	}
	if finished {
		c.signal()
		return false
	}
	return true
}

func (c *Countdown) signal() {
	safeCall(c.cfg.logger, "finish", c.cfg.onFinish)
}
