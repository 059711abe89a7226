package timer

import (
	"sync"
	"time"
)

// Stopwatch measures elapsed seconds. Pause keeps the value, Reset returns
// it to zero. Its methods are safe for concurrent use.
type Stopwatch struct {
	cfg config

	mu        sync.Mutex
	state     State
	elapsed   time.Duration
	startedAt time.Time
	run       *run
}

// NewStopwatch returns a stopped stopwatch.
func NewStopwatch(options ...Option) *Stopwatch {
	cfg := newConfig(options)
	sw := &Stopwatch{cfg: cfg}
	if cfg.initial != nil && *cfg.initial > 0 {
		sw.elapsed = time.Duration(*cfg.initial * float64(time.Second))
	}
	return sw
}

// Start moves a stopped stopwatch to Running.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		return
	}
	s.state = Running
	s.startedAt = s.cfg.clock.Now()
	s.run = startRun(s.cfg.ticker(s.cfg.interval), s.tick)
}

// Pause stops a running stopwatch and keeps its value. It does not wait for
// the tick goroutine; use Close for that.
func (s *Stopwatch) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return
	}
	s.elapsed += s.cfg.clock.Now().Sub(s.startedAt)
	s.state = Stopped
	s.run.stop()
	s.run = nil
}

// Reset forces Stopped with a zero value from any state.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run.stop()
	s.run = nil
	s.state = Stopped
	s.elapsed = 0
}

// Close pauses the stopwatch and waits for its goroutine to exit.
func (s *Stopwatch) Close() {
	s.mu.Lock()
	r := s.run
	if s.state == Running {
		s.elapsed += s.cfg.clock.Now().Sub(s.startedAt)
		s.state = Stopped
	}
	r.stop()
	s.run = nil
	s.mu.Unlock()
	r.wait()
}

// Value returns the elapsed seconds.
func (s *Stopwatch) Value() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seconds(s.current())
}

// State returns the current phase.
func (s *Stopwatch) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OverThreshold reports whether the value exceeds the configured threshold.
// The flag is informational and raises no alert.
func (s *Stopwatch) OverThreshold() bool {
	if s.cfg.threshold == nil {
		return false
	}
	return s.Value() > *s.cfg.threshold
}

func (s *Stopwatch) current() time.Duration {
	if s.state != Running {
		return s.elapsed
	}
	return s.elapsed + s.cfg.clock.Now().Sub(s.startedAt)
}

func (s *Stopwatch) tick(r *run) bool {
	s.mu.Lock()
	if s.run != r {
		s.mu.Unlock()
		return false
	}
	value := seconds(s.current())
	s.mu.Unlock()

	if s.cfg.onTick != nil {
		safeCall(s.cfg.logger, "tick", func() { s.cfg.onTick(value) })
	}
	return true
}
