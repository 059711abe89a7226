// Package session runs one form-fill session: it owns the answer state, the
// alert set, the section paginator and the item timers, and hands the
// assembled payload to the persistence collaborator.
//
// Session methods are serialized by a mutex. Timer goroutines re-enter the
// session only through their tick callback, which takes the same mutex and
// reads the timer's current value.
package session

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/goliatone/go-inspectform/pkg/alerts"
	"github.com/goliatone/go-inspectform/pkg/answers"
	"github.com/goliatone/go-inspectform/pkg/backend"
	"github.com/goliatone/go-inspectform/pkg/fields"
	"github.com/goliatone/go-inspectform/pkg/form"
	"github.com/goliatone/go-inspectform/pkg/paginator"
	"github.com/goliatone/go-inspectform/pkg/submission"
)

// FormFetcher lists candidate forms, typically the backend client.
type FormFetcher interface {
	ListForms(ctx context.Context, query backend.Query) ([]form.Form, error)
}

// Config describes the session to open. Form wins over Fetcher when both
// are set.
type Config struct {
	Form           *form.Form
	Fetcher        FormFetcher
	AssignedFormID string
	CategoryID     string

	TargetID   string
	TargetType string

	UserName         string
	Today            time.Time
	CountdownMinutes float64
	Metadata         map[string]any

	Submitter submission.Submitter
	Locator   Locator
	Weather   WeatherProvider
	Uploader  Uploader
}

// Session is safe for concurrent use.
type Session struct {
	id   string
	cfg  Config
	opts options

	mu          sync.Mutex
	form        form.Form
	state       answers.State
	alerts      *alerts.Set
	pages       *paginator.Paginator
	timers      map[slot]*timerHandle
	fieldErrors map[slot]error
	notes       string
	metadata    map[string]any
	submitting  bool
	closed      bool

	validator *fields.Validator
	events    chan Event
}

type slot struct {
	section string
	item    string
}

// Open resolves the form that applies to the target and builds the initial
// state. A form without sections, or no applicable form, fails with a
// *form.SchemaError before any state exists.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	o := newOptions(opts)

	f, err := resolveForm(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f = f.Sorted()

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("session: id: %w", err)
	}

	env := fields.Env{
		UserName:         cfg.UserName,
		Today:            cfg.Today,
		CountdownMinutes: cfg.CountdownMinutes,
	}
	state := answers.Initialize(f, env)

	s := &Session{
		id:          id.String(),
		cfg:         cfg,
		opts:        o,
		form:        f,
		state:       state,
		alerts:      alerts.Recompute(state),
		pages:       paginator.New(len(f.Sections)),
		timers:      make(map[slot]*timerHandle),
		fieldErrors: make(map[slot]error),
		metadata:    maps.Clone(cfg.Metadata),
		validator:   fields.NewValidator(),
		events:      make(chan Event, o.eventBuffer),
	}
	o.logger.Info("session opened", "session", s.id, "form", f.ID, "target", cfg.TargetID, "sections", len(f.Sections))
	return s, nil
}

func resolveForm(ctx context.Context, cfg Config) (form.Form, error) {
	if cfg.Form != nil {
		return *cfg.Form, nil
	}
	if cfg.Fetcher == nil {
		return form.Form{}, &form.SchemaError{FormID: cfg.AssignedFormID, Reason: form.ErrNoApplicableForm}
	}

	candidates, err := cfg.Fetcher.ListForms(ctx, backend.Query{})
	if err != nil {
		return form.Form{}, fmt.Errorf("session: fetch forms: %w", err)
	}
	var filter form.Filter
	if cfg.CategoryID != "" {
		filter = form.MatchCategory(cfg.CategoryID)
	}
	resolved := form.ResolveApplicableForm(candidates, cfg.AssignedFormID, filter)
	if resolved == nil {
		return form.Form{}, &form.SchemaError{FormID: cfg.AssignedFormID, Reason: form.ErrNoApplicableForm}
	}
	return *resolved, nil
}

// ID identifies the session in logs and receipts.
func (s *Session) ID() string {
	return s.id
}

// Form returns the schema the session runs on.
func (s *Session) Form() form.Form {
	return s.form
}

// Events delivers timer notifications. The channel is never closed.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Answers returns a snapshot of the answer state with running timer values
// folded in.
func (s *Session) Answers() answers.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncTimers()
	return s.state
}

// Value returns the current value of one slot.
func (s *Session) Value(sectionID, itemID string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.timers[slot{sectionID, itemID}]; ok {
		s.syncTimer(slot{sectionID, itemID}, h)
	}
	return s.state.Value(sectionID, itemID)
}

// Update sets the value of one item, or of a legacy section when itemID is
// empty, and re-evaluates its alert. A value typed into a paused timer item
// replaces its timer; the next start resumes from that value.
func (s *Session) Update(sectionID, itemID string, value any) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	key := slot{sectionID, itemID}
	h, hasTimer := s.timers[key]
	if hasTimer && h.running() {
		s.mu.Unlock()
		return ErrTimerRunning
	}
	if err := s.set(key, value); err != nil {
		s.mu.Unlock()
		return err
	}
	if hasTimer {
		delete(s.timers, key)
	}
	s.mu.Unlock()

	if hasTimer {
		h.clock.Close()
	}
	return nil
}

// Toggle flips option in a multi-choice item.
func (s *Session) Toggle(sectionID, itemID, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	item, err := s.item(sectionID, itemID)
	if err != nil {
		return err
	}
	if item.Type != form.ItemTypeMultiChoice {
		return fmt.Errorf("session: toggle on %s item %q", item.Type, itemID)
	}
	current, _ := s.state.Value(sectionID, itemID)
	selected, _ := current.([]string)
	return s.set(slot{sectionID, itemID}, fields.ToggleChoice(selected, option))
}

// set stores value and refreshes the slot's alert. Callers hold s.mu.
func (s *Session) set(key slot, value any) error {
	next, err := s.state.Update(key.section, key.item, value)
	if err != nil {
		return err
	}
	item, err := s.item(key.section, key.item)
	if err != nil {
		return err
	}
	coerced, _ := next.Value(key.section, key.item)
	if err := s.validator.Validate(item, coerced); err != nil {
		return err
	}

	s.state = next
	delete(s.fieldErrors, key)
	if key.item == "" {
		s.alerts.EvaluateLegacy(key.section, coerced)
	} else {
		s.alerts.Evaluate(key.section, key.item, coerced)
	}
	return nil
}

// item resolves a slot to its item. Legacy sections resolve to their
// synthesized item.
func (s *Session) item(sectionID, itemID string) (form.Item, error) {
	section, ok := s.form.Section(sectionID)
	if !ok {
		return form.Item{}, fmt.Errorf("%w: %q", answers.ErrUnknownSection, sectionID)
	}
	if section.Kind == form.SectionScalar && itemID == "" {
		return section.LegacyItem(), nil
	}
	item, ok := section.Item(itemID)
	if !ok {
		return form.Item{}, fmt.Errorf("%w: %q in section %q", answers.ErrUnknownItem, itemID, sectionID)
	}
	return item, nil
}

// Current returns the section on screen and its index.
func (s *Session) Current() (form.Section, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.pages.Index()
	return s.form.Sections[idx], idx
}

// Next moves forward one section. Timers of the section being left are
// paused. It reports whether the position changed.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pages.IsLast() {
		return false
	}
	s.pauseSection(s.pages.Index())
	return s.pages.Next()
}

// Previous moves back one section, pausing the timers being left.
func (s *Session) Previous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pages.IsFirst() {
		return false
	}
	s.pauseSection(s.pages.Index())
	return s.pages.Previous()
}

// GoTo jumps to section index i.
func (s *Session) GoTo(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	current := s.pages.Index()
	if err := s.pages.GoTo(i); err != nil {
		return err
	}
	if i != current {
		s.pauseSection(current)
	}
	return nil
}

// IsLast reports whether the current section allows submission.
func (s *Session) IsLast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages.CanSubmit()
}

// Progress returns the completion fraction in (0, 1].
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := s.pages.Progress()
	return p
}

// Alerts lists the active alerts in form order.
func (s *Session) Alerts() []alerts.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alerts.List()
}

// FieldErrors returns the device capture failures still pending, keyed by
// alert id.
func (s *Session) FieldErrors() map[string]error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]error, len(s.fieldErrors))
	for key, err := range s.fieldErrors {
		out[alerts.ID(key.section, key.item)] = err
	}
	return out
}

// SetUserName fills inspector fields the user has not edited.
func (s *Session) SetUserName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state = s.state.ApplyUserName(name)
	s.alerts = alerts.Recompute(s.state)
}

// RefreshDates moves untouched date items to today.
func (s *Session) RefreshDates(today time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state = s.state.RefreshDates(today)
	s.alerts = alerts.Recompute(s.state)
}

// SetGeneralNotes records the free-form notes of the inspection.
func (s *Session) SetGeneralNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
}

// SetMetadata attaches a metadata entry to the payload. A nil value removes
// the key.
func (s *Session) SetMetadata(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == nil {
		delete(s.metadata, key)
		return
	}
	if s.metadata == nil {
		s.metadata = make(map[string]any)
	}
	s.metadata[key] = value
}

// Preview assembles the payload for the current state without checking
// mandatory items.
func (s *Session) Preview() submission.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncTimers()
	return submission.Assemble(s.form, s.state, s.alerts, s.request())
}

func (s *Session) request() submission.Request {
	return submission.Request{
		TargetID:     s.cfg.TargetID,
		TargetType:   s.cfg.TargetType,
		GeneralNotes: s.notes,
		Metadata:     maps.Clone(s.metadata),
		SubmittedAt:  s.opts.now(),
	}
}

// Close stops every timer, waits for their goroutines and discards the
// answer state. It is idempotent.
func (s *Session) Close() {
	s.shutdown("session closed")
}

// Cancel abandons the session without submitting.
func (s *Session) Cancel() {
	s.shutdown("session cancelled")
}

func (s *Session) shutdown(msg string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	handles := s.discard()
	s.mu.Unlock()

	for _, h := range handles {
		h.clock.Close()
	}
	s.opts.logger.Info(msg, "session", s.id, "form", s.form.ID)
}

// discard marks the session closed and drops its state. It returns the
// timers the caller must close once s.mu is released.
func (s *Session) discard() []*timerHandle {
	s.closed = true
	handles := make([]*timerHandle, 0, len(s.timers))
	for _, h := range s.timers {
		handles = append(handles, h)
	}
	s.timers = make(map[slot]*timerHandle)
	s.state = answers.Initialize(s.form, fields.Env{})
	s.alerts = alerts.New(s.form)
	s.fieldErrors = make(map[slot]error)
	s.notes = ""
	s.metadata = nil
	return handles
}
