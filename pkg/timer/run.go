package timer

import (
	"log/slog"
	"time"
)

// State is the phase of a timer.
type State int

const (
	Stopped State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "stopped"
	}
}

// run is the single goroutine owned by a running timer.
type run struct {
	ticker Ticker
	cancel chan struct{}
	done   chan struct{}
}

func startRun(ticker Ticker, tick func(*run) bool) *run {
	r := &run{ticker: ticker, cancel: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(r.done)
		defer ticker.Stop()
		for {
			select {
			case <-r.cancel:
				return
			case <-ticker.C():
				if !tick(r) {
					return
				}
			}
		}
	}()
	return r
}

// stop cancels the run and stops its ticker without waiting for the
// goroutine. Callers hold the timer lock.
func (r *run) stop() {
	if r != nil {
		close(r.cancel)
		r.ticker.Stop()
	}
}

func (r *run) wait() {
	if r != nil {
		<-r.done
	}
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func safeCall(logger *slog.Logger, what string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("timer: callback panicked", "callback", what, "panic", rec)
		}
	}()
	fn()
}
