package timer

import (
	"slices"
	"sync"
	"time"
)

// DefaultInterval is the tick resolution of running timers.
const DefaultInterval = 100 * time.Millisecond

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc builds the Ticker owned by one timer run.
type TickerFunc func(interval time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(interval time.Duration) Ticker {
	return realTicker{t: time.NewTicker(interval)}
}

// ManualTicker drives the timers of a test through Tick. Every run gets its
// own channel, and a run stops receiving as soon as its timer is paused,
// reset or closed.
type ManualTicker struct {
	mu   sync.Mutex
	runs []*manualRun
}

type manualRun struct {
	owner *ManualTicker
	ch    chan time.Time
}

func (r *manualRun) C() <-chan time.Time { return r.ch }

// Stop is idempotent.
func (r *manualRun) Stop() {
	m := r.owner
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = slices.DeleteFunc(m.runs, func(other *manualRun) bool { return other == r })
}

// NewManualTicker returns an idle ManualTicker.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{}
}

// Func adapts m to a TickerFunc.
func (m *ManualTicker) Func() TickerFunc {
	return func(time.Duration) Ticker {
		r := &manualRun{owner: m, ch: make(chan time.Time)}
		m.mu.Lock()
		m.runs = append(m.runs, r)
		m.mu.Unlock()
		return r
	}
}

// Tick delivers one tick to every running timer. It reports false when
// none received it within a second.
func (m *ManualTicker) Tick() bool {
	m.mu.Lock()
	runs := slices.Clone(m.runs)
	m.mu.Unlock()

	deadline := time.After(time.Second)
	delivered := false
	for _, r := range runs {
		select {
		case r.ch <- time.Now():
			delivered = true
		case <-deadline:
			return delivered
		}
	}
	return delivered
}
