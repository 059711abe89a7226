package session

import (
	"fmt"
	"time"

	"github.com/goliatone/go-inspectform/pkg/fields"
	"github.com/goliatone/go-inspectform/pkg/form"
	"github.com/goliatone/go-inspectform/pkg/timer"
)

// EventKind classifies session events.
type EventKind string

const (
	EventTimerTick      EventKind = "timer_tick"
	EventTimerFinished  EventKind = "timer_finished"
	EventTimerThreshold EventKind = "timer_threshold"
)

// Event is a timer notification. Value is the timer reading in seconds.
type Event struct {
	Kind      EventKind
	SectionID string
	ItemID    string
	Value     float64
}

// TimerStatus is the presentational state of a stopwatch or countdown.
type TimerStatus struct {
	State         timer.State
	Value         float64
	OverThreshold bool
}

type timerClock interface {
	Start()
	Pause()
	Reset()
	Close()
	Value() float64
	State() timer.State
}

type timerHandle struct {
	clock     timerClock
	stopwatch *timer.Stopwatch
	over      bool
}

func (h *timerHandle) running() bool {
	return h.clock.State() == timer.Running
}

// StartTimer starts the stopwatch or countdown of an item.
func (s *Session) StartTimer(sectionID, itemID string) error {
	return s.withTimer(sectionID, itemID, func(key slot, h *timerHandle) {
		h.clock.Start()
		s.opts.logger.Debug("timer started", "session", s.id, "section", key.section, "item", key.item)
	})
}

// PauseTimer pauses an item timer and keeps its value.
func (s *Session) PauseTimer(sectionID, itemID string) error {
	return s.withTimer(sectionID, itemID, func(key slot, h *timerHandle) {
		h.clock.Pause()
		s.syncTimer(key, h)
	})
}

// ResetTimer stops an item timer and restores its initial value.
func (s *Session) ResetTimer(sectionID, itemID string) error {
	return s.withTimer(sectionID, itemID, func(key slot, h *timerHandle) {
		h.clock.Reset()
		h.over = false
		s.syncTimer(key, h)
	})
}

// TimerStatus reports the state of an item timer.
func (s *Session) TimerStatus(sectionID, itemID string) (TimerStatus, error) {
	var status TimerStatus
	err := s.withTimer(sectionID, itemID, func(key slot, h *timerHandle) {
		status = TimerStatus{
			State: h.clock.State(),
			Value: s.syncTimer(key, h),
		}
		if h.stopwatch != nil {
			status.OverThreshold = h.stopwatch.OverThreshold()
		}
	})
	return status, err
}

func (s *Session) withTimer(sectionID, itemID string, fn func(slot, *timerHandle)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	item, err := s.item(sectionID, itemID)
	if err != nil {
		return err
	}
	if item.Type != form.ItemTypeStopwatch && item.Type != form.ItemTypeCountdown {
		return fmt.Errorf("%w: %s/%s is %s", ErrNotTimer, sectionID, itemID, item.Type)
	}

	key := slot{sectionID, itemID}
	h, ok := s.timers[key]
	if !ok {
		h = s.newTimer(key, item)
		s.timers[key] = h
	}
	fn(key, h)
	return nil
}

// newTimer builds the timer of an item, resuming from the value held in
// the answer state. Callers hold s.mu.
func (s *Session) newTimer(key slot, item form.Item) *timerHandle {
	opts := []timer.Option{timer.WithLogger(s.opts.logger)}
	opts = append(opts, s.opts.timerOptions...)
	opts = append(opts, timer.WithOnTick(func(float64) { s.onTick(key) }))
	if current, ok := s.state.Value(key.section, key.item); ok {
		if v, ok := current.(float64); ok {
			opts = append(opts, timer.WithInitial(v))
		}
	}

	if item.Type == form.ItemTypeStopwatch {
		opts = append(opts, timer.WithThreshold(item.Config.AlertThreshold))
		sw := timer.NewStopwatch(opts...)
		return &timerHandle{clock: sw, stopwatch: sw}
	}

	env := fields.Env{CountdownMinutes: s.cfg.CountdownMinutes}
	total := time.Duration(fields.CountdownInitial(item, env) * float64(time.Second))
	opts = append(opts, timer.WithOnFinish(func() {
		s.emit(Event{Kind: EventTimerFinished, SectionID: key.section, ItemID: key.item})
	}))
	return &timerHandle{clock: timer.NewCountdown(total, opts...)}
}

// onTick runs on the timer goroutine. It reads the timer's current value
// rather than the tick argument, so a tick racing a pause or reset cannot
// write a stale value.
func (s *Session) onTick(key slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.timers[key]
	if s.closed || !ok {
		return
	}
	value := s.syncTimer(key, h)
	s.emit(Event{Kind: EventTimerTick, SectionID: key.section, ItemID: key.item, Value: value})
	if h.stopwatch != nil && !h.over && h.stopwatch.OverThreshold() {
		h.over = true
		s.emit(Event{Kind: EventTimerThreshold, SectionID: key.section, ItemID: key.item, Value: value})
	}
}

// syncTimer copies the timer reading into the answer state. Callers hold
// s.mu.
func (s *Session) syncTimer(key slot, h *timerHandle) float64 {
	value := h.clock.Value()
	next, err := s.state.Update(key.section, key.item, value)
	if err != nil {
		s.opts.logger.Warn("timer value rejected", "session", s.id, "section", key.section, "item", key.item, "err", err)
		return value
	}
	s.state = next
	s.alerts.Evaluate(key.section, key.item, value)
	return value
}

func (s *Session) syncTimers() {
	for key, h := range s.timers {
		s.syncTimer(key, h)
	}
}

// pauseSection pauses every timer of the section at index idx. Callers
// hold s.mu.
func (s *Session) pauseSection(idx int) {
	section := s.form.Sections[idx]
	keys := make([]slot, 0, len(section.Items)+1)
	if section.Kind == form.SectionScalar {
		keys = append(keys, slot{section.ID, ""})
	}
	for _, item := range section.Items {
		keys = append(keys, slot{section.ID, item.ID})
	}
	for _, key := range keys {
		if h, ok := s.timers[key]; ok {
			h.clock.Pause()
			s.syncTimer(key, h)
		}
	}
}

// emit never blocks; events are dropped when nobody drains the channel.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
