package session_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-inspectform/pkg/alerts"
	"github.com/goliatone/go-inspectform/pkg/backend"
	"github.com/goliatone/go-inspectform/pkg/fields"
	"github.com/goliatone/go-inspectform/pkg/form"
	"github.com/goliatone/go-inspectform/pkg/session"
	"github.com/goliatone/go-inspectform/pkg/submission"
	"github.com/goliatone/go-inspectform/pkg/testsupport"
	"github.com/goliatone/go-inspectform/pkg/timer"
)

type fetcherFunc func(ctx context.Context, query backend.Query) ([]form.Form, error)

func (fn fetcherFunc) ListForms(ctx context.Context, query backend.Query) ([]form.Form, error) {
	return fn(ctx, query)
}

func openFixture(t *testing.T, cfg session.Config, opts ...session.Option) *session.Session {
	t.Helper()
	if cfg.Form == nil {
		f := testsupport.InspectionForm()
		cfg.Form = &f
	}
	if cfg.TargetID == "" {
		cfg.TargetID = "42"
		cfg.TargetType = "borne_seche"
	}
	opts = append([]session.Option{session.WithLogger(testsupport.DiscardLogger())}, opts...)
	s, err := session.Open(testsupport.Context(), cfg, opts...)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func waitEvent(t *testing.T, s *session.Session, kind session.EventKind) session.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", kind)
			return session.Event{}
		}
	}
}

func TestOpen_InitialState(t *testing.T) {
	s := openFixture(t, session.Config{UserName: "Marie Tremblay"})

	section, idx := s.Current()
	if idx != 0 || section.ID != "s1" {
		t.Fatalf("expected first section, got %d/%s", idx, section.ID)
	}
	if got := s.Progress(); got < 0.33 || got > 0.34 {
		t.Fatalf("progress = %v, want 1/3", got)
	}
	if len(s.Alerts()) != 0 {
		t.Fatalf("defaults must not raise alerts, got %+v", s.Alerts())
	}

	checks := map[[2]string]any{
		{"s1", "i1"}:  "Conforme",
		{"s1", "i2"}:  []string{},
		{"s1", "i3"}:  "Marie Tremblay",
		{"s2", "d1"}:  0.0,
		{"s2", "t1"}:  0.0,
		{"s2", "c1"}:  60.0,
		{"s2", "g1"}:  "",
		{"capot", ""}: "OK",
	}
	for slot, want := range checks {
		got, ok := s.Value(slot[0], slot[1])
		if !ok {
			t.Fatalf("missing value for %v", slot)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("default of %v mismatch (-want +got):\n%s", slot, diff)
		}
	}
}

func TestOpen_SchemaErrors(t *testing.T) {
	empty := form.Form{ID: "vide"}
	_, err := session.Open(testsupport.Context(), session.Config{Form: &empty})
	var schemaErr *form.SchemaError
	if !errors.As(err, &schemaErr) || !errors.Is(err, form.ErrNoSections) {
		t.Fatalf("expected no-sections SchemaError, got %v", err)
	}

	_, err = session.Open(testsupport.Context(), session.Config{})
	if !errors.Is(err, form.ErrNoApplicableForm) {
		t.Fatalf("expected ErrNoApplicableForm without a form source, got %v", err)
	}
}

func TestOpen_ResolvesFromFetcher(t *testing.T) {
	base := testsupport.InspectionForm()
	assigned := base
	assigned.ID = "assigned"
	assigned.Active = false
	other := base
	other.ID = "other"
	other.CategoryIDs = []string{"9"}

	fetcher := fetcherFunc(func(context.Context, backend.Query) ([]form.Form, error) {
		return []form.Form{assigned, base, other}, nil
	})

	tests := []struct {
		name     string
		cfg      session.Config
		wantForm string
	}{
		{name: "assigned wins even when inactive", cfg: session.Config{AssignedFormID: "assigned", CategoryID: "9"}, wantForm: "assigned"},
		{name: "first active in category", cfg: session.Config{CategoryID: "9"}, wantForm: "other"},
		{name: "first active without category", cfg: session.Config{AssignedFormID: "missing"}, wantForm: "borne-seche"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Fetcher = fetcher
			s, err := session.Open(testsupport.Context(), tt.cfg, session.WithLogger(testsupport.DiscardLogger()))
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer s.Close()
			if s.Form().ID != tt.wantForm {
				t.Fatalf("resolved %q, want %q", s.Form().ID, tt.wantForm)
			}
		})
	}

	_, err := session.Open(testsupport.Context(), session.Config{Fetcher: fetcher, CategoryID: "404"})
	if !errors.Is(err, form.ErrNoApplicableForm) {
		t.Fatalf("expected ErrNoApplicableForm, got %v", err)
	}
}

func TestUpdate_DrivesAlerts(t *testing.T) {
	s := openFixture(t, session.Config{})

	if err := s.Update("s1", "i1", "Non conforme"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Toggle("s1", "i2", "Fuite"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := s.Update("capot", "", "Endommagé"); err != nil {
		t.Fatalf("legacy update: %v", err)
	}

	got := s.Alerts()
	ids := make([]string, 0, len(got))
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	if diff := cmp.Diff([]string{"s1-i1", "s1-i2", "capot"}, ids); diff != "" {
		t.Fatalf("alert ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Fuite"}, got[1].Value); diff != "" {
		t.Fatalf("multi-choice alert value mismatch (-want +got):\n%s", diff)
	}
	if got[2].Severity != alerts.SeverityWarning {
		t.Fatalf("legacy alert severity = %q", got[2].Severity)
	}

	if err := s.Toggle("s1", "i2", "Fuite"); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if err := s.Update("s1", "i1", "Conforme"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.Alerts(); len(got) != 1 || got[0].ID != "capot" {
		t.Fatalf("expected only the legacy alert left, got %+v", got)
	}
}

func TestUpdate_RejectsInvalidValues(t *testing.T) {
	s := openFixture(t, session.Config{})

	var valueErr *fields.ValueError
	if err := s.Update("s1", "i1", "Peut-être"); !errors.As(err, &valueErr) {
		t.Fatalf("expected ValueError, got %v", err)
	}
	if err := s.Update("s2", "d1", 9000); !errors.As(err, &valueErr) {
		t.Fatalf("expected ValueError above max, got %v", err)
	}
	if err := s.Toggle("s1", "i1", "Conforme"); err == nil {
		t.Fatalf("toggle on single choice must fail")
	}
	if v, _ := s.Value("s1", "i1"); v != "Conforme" {
		t.Fatalf("rejected update changed the value: %v", v)
	}
}

func TestSetUserName_KeepsEdits(t *testing.T) {
	s := openFixture(t, session.Config{})

	s.SetUserName("Marie")
	if v, _ := s.Value("s1", "i3"); v != "Marie" {
		t.Fatalf("inspector = %v, want Marie", v)
	}
	if err := s.Update("s1", "i3", "Jean"); err != nil {
		t.Fatalf("update: %v", err)
	}
	s.SetUserName("Luc")
	if v, _ := s.Value("s1", "i3"); v != "Jean" {
		t.Fatalf("edited inspector was overwritten: %v", v)
	}
}

func legacyForm() form.Form {
	return form.Form{
		ID: "legacy",
		Sections: []form.Section{
			{ID: "chrono", Title: "Chronomètre", Kind: form.SectionScalar, Legacy: &form.LegacyField{Type: form.ItemTypeStopwatch}},
			{ID: "insp", Title: "Inspecteur", Kind: form.SectionScalar, Legacy: &form.LegacyField{Type: form.ItemTypeInspectorAutofill}},
		},
	}
}

func TestSetUserName_FillsLegacySections(t *testing.T) {
	f := legacyForm()
	s := openFixture(t, session.Config{Form: &f})

	if v, _ := s.Value("insp", ""); v != "" {
		t.Fatalf("inspector before the name is known = %v", v)
	}
	s.SetUserName("Marie")
	if v, _ := s.Value("insp", ""); v != "Marie" {
		t.Fatalf("inspector = %v, want Marie", v)
	}
}

func TestTimers_LegacySectionPausedOnLeave(t *testing.T) {
	h := testsupport.NewTimers()
	f := legacyForm()
	s := openFixture(t, session.Config{Form: &f}, session.WithTimerOptions(h.Options()...))

	if err := s.StartTimer("chrono", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.Clock.WarpForward(2 * time.Second)
	if !s.Next() {
		t.Fatalf("next failed")
	}
	h.Clock.WarpForward(30 * time.Second)

	status, err := s.TimerStatus("chrono", "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != timer.Stopped || status.Value != 2 {
		t.Fatalf("leaving a legacy section must pause its timer, got %+v", status)
	}
	if v, _ := s.Value("chrono", ""); v != 2.0 {
		t.Fatalf("paused value = %v, want 2", v)
	}
}

func TestNavigation(t *testing.T) {
	s := openFixture(t, session.Config{})

	if s.Previous() {
		t.Fatalf("previous on first section must be a no-op")
	}
	if !s.Next() || !s.Next() {
		t.Fatalf("expected to reach the last section")
	}
	if s.Next() {
		t.Fatalf("next on last section must be a no-op")
	}
	if !s.IsLast() || s.Progress() != 1 {
		t.Fatalf("expected last section with full progress")
	}
	if err := s.GoTo(5); err == nil {
		t.Fatalf("expected out of range GoTo to fail")
	}
}

func TestTimers_StopwatchFollowsSession(t *testing.T) {
	h := testsupport.NewTimers()
	s := openFixture(t, session.Config{}, session.WithTimerOptions(h.Options()...))

	if err := s.GoTo(1); err != nil {
		t.Fatalf("goto: %v", err)
	}
	if err := s.StartTimer("s2", "t1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.Clock.WarpForward(2500 * time.Millisecond)
	if !h.Ticker.Tick() {
		t.Fatalf("stopwatch did not receive tick")
	}
	if ev := waitEvent(t, s, session.EventTimerTick); ev.Value != 2.5 || ev.ItemID != "t1" {
		t.Fatalf("unexpected tick event %+v", ev)
	}
	if err := s.Update("s2", "t1", 10); !errors.Is(err, session.ErrTimerRunning) {
		t.Fatalf("expected ErrTimerRunning, got %v", err)
	}

	h.Clock.WarpForward(time.Second)
	if !s.Next() {
		t.Fatalf("next failed")
	}
	h.Clock.WarpForward(30 * time.Second)
	if v, _ := s.Value("s2", "t1"); v != 3.5 {
		t.Fatalf("leaving the section must pause its timers, value = %v", v)
	}

	status, err := s.TimerStatus("s2", "t1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != timer.Stopped || status.OverThreshold {
		t.Fatalf("unexpected status %+v", status)
	}

	if err := s.ResetTimer("s2", "t1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if v, _ := s.Value("s2", "t1"); v != 0.0 {
		t.Fatalf("reset value = %v", v)
	}

	if err := s.Update("s2", "t1", 42); err != nil {
		t.Fatalf("manual value on paused stopwatch: %v", err)
	}
	if status, err := s.TimerStatus("s2", "t1"); err != nil || status.Value != 42 {
		t.Fatalf("timer must resume from the typed value, got %+v (%v)", status, err)
	}
	if err := s.StartTimer("s1", "i1"); !errors.Is(err, session.ErrNotTimer) {
		t.Fatalf("expected ErrNotTimer, got %v", err)
	}
}

func TestTimers_CountdownFinishes(t *testing.T) {
	h := testsupport.NewTimers()
	s := openFixture(t, session.Config{}, session.WithTimerOptions(h.Options()...))

	if err := s.StartTimer("s2", "c1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.Clock.WarpForward(90 * time.Second)
	if !h.Ticker.Tick() {
		t.Fatalf("countdown did not receive tick")
	}
	waitEvent(t, s, session.EventTimerFinished)

	if v, _ := s.Value("s2", "c1"); v != 0.0 {
		t.Fatalf("finished countdown value = %v, want 0", v)
	}
	status, err := s.TimerStatus("s2", "c1")
	if err != nil || status.State != timer.Finished {
		t.Fatalf("expected finished countdown, got %+v (%v)", status, err)
	}

	if err := s.ResetTimer("s2", "c1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if v, _ := s.Value("s2", "c1"); v != 60.0 {
		t.Fatalf("reset countdown value = %v, want 60", v)
	}
}

func TestDeviceCapture_IsolatesFailures(t *testing.T) {
	cfg := session.Config{
		Locator: session.LocatorFunc(func(context.Context) (fields.Geolocation, error) {
			return fields.Geolocation{}, errors.New("gps unavailable")
		}),
	}
	s := openFixture(t, cfg)

	err := s.CaptureLocation(testsupport.Context(), "s2", "g1")
	var captureErr *session.DeviceCaptureError
	if !errors.As(err, &captureErr) || captureErr.Device != "geolocation" {
		t.Fatalf("expected geolocation DeviceCaptureError, got %v", err)
	}
	if _, ok := s.FieldErrors()["s2-g1"]; !ok {
		t.Fatalf("capture failure must be recorded, got %v", s.FieldErrors())
	}
	if v, _ := s.Value("s2", "g1"); v != "" {
		t.Fatalf("failed capture must leave the field unfilled, got %v", v)
	}
	if err := s.Update("s2", "d1", 1200); err != nil {
		t.Fatalf("other fields must stay editable: %v", err)
	}

	if err := s.AttachPhoto(testsupport.Context(), "s2", "p1", "borne.jpg", strings.NewReader("jpeg")); !errors.Is(err, session.ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
	if err := s.CaptureLocation(testsupport.Context(), "s1", "i1"); !errors.Is(err, session.ErrWrongItemType) {
		t.Fatalf("expected ErrWrongItemType, got %v", err)
	}
}

func TestDeviceCapture_FillsValues(t *testing.T) {
	here := fields.Geolocation{Latitude: 46.81, Longitude: -71.21}
	cfg := session.Config{
		Locator: session.LocatorFunc(func(context.Context) (fields.Geolocation, error) {
			return here, nil
		}),
		Weather: session.WeatherFunc(func(_ context.Context, at fields.Geolocation) (fields.Weather, error) {
			return fields.Weather{Temperature: 12.5, Condition: "Nuageux", Latitude: at.Latitude, Longitude: at.Longitude}, nil
		}),
		Uploader: session.UploaderFunc(func(_ context.Context, name string, content io.Reader) (string, error) {
			if _, err := io.ReadAll(content); err != nil {
				return "", err
			}
			return "https://cdn.example.test/" + name, nil
		}),
	}
	s := openFixture(t, cfg)
	ctx := testsupport.Context()

	if err := s.CaptureLocation(ctx, "s2", "g1"); err != nil {
		t.Fatalf("capture location: %v", err)
	}
	if err := s.CaptureWeather(ctx, "s2", "w1"); err != nil {
		t.Fatalf("capture weather: %v", err)
	}
	if err := s.AttachPhoto(ctx, "s2", "p1", "borne.jpg", strings.NewReader("jpeg")); err != nil {
		t.Fatalf("attach photo: %v", err)
	}

	if v, _ := s.Value("s2", "g1"); !cmp.Equal(here, v) {
		t.Fatalf("location = %+v", v)
	}
	if v, _ := s.Value("s2", "w1"); v.(fields.Weather).Latitude != here.Latitude {
		t.Fatalf("weather = %+v", v)
	}
	if v, _ := s.Value("s2", "p1"); v != "https://cdn.example.test/borne.jpg" {
		t.Fatalf("photo = %v", v)
	}
	if len(s.FieldErrors()) != 0 {
		t.Fatalf("unexpected field errors %v", s.FieldErrors())
	}
}

func TestSubmit_Guards(t *testing.T) {
	rec := &testsupport.RecordingSubmitter{}
	s := openFixture(t, session.Config{Submitter: rec})

	if _, err := s.Submit(testsupport.Context()); !errors.Is(err, session.ErrNotLastSection) {
		t.Fatalf("expected ErrNotLastSection, got %v", err)
	}

	if err := s.Update("s2", "d1", ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := s.GoTo(2); err != nil {
		t.Fatalf("goto: %v", err)
	}
	_, err := s.Submit(testsupport.Context())
	var validationErr *submission.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []submission.MissingItem{{SectionID: "s2", SectionTitle: "Essai", ItemID: "d1", ItemName: "Débit"}}
	if diff := cmp.Diff(want, validationErr.Missing); diff != "" {
		t.Fatalf("missing items mismatch (-want +got):\n%s", diff)
	}
	if len(rec.Payloads()) != 0 {
		t.Fatalf("invalid state must not reach the submitter")
	}
}

func TestSubmit_SuccessDiscardsState(t *testing.T) {
	rec := &testsupport.RecordingSubmitter{}
	s := openFixture(t, session.Config{Submitter: rec}, session.WithNow(func() time.Time { return testsupport.Epoch }))

	if err := s.Update("s1", "i1", "Non conforme"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Update("s2", "d1", "1200"); err != nil {
		t.Fatalf("update: %v", err)
	}
	s.SetGeneralNotes("<b>RAS</b>")
	if err := s.GoTo(2); err != nil {
		t.Fatalf("goto: %v", err)
	}

	receipt, err := s.Submit(testsupport.Context())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.ID != "receipt-1" {
		t.Fatalf("receipt = %+v", receipt)
	}

	payloads := rec.Payloads()
	if len(payloads) != 1 {
		t.Fatalf("expected one payload, got %d", len(payloads))
	}
	p := payloads[0]
	if p.Conforms || len(p.Alerts) != 1 || p.Alerts[0].ID != "s1-i1" {
		t.Fatalf("unexpected conformity %v / alerts %+v", p.Conforms, p.Alerts)
	}
	if p.Answers["d1"].Value != 1200.0 || p.GeneralNotes != "RAS" {
		t.Fatalf("unexpected payload %+v", p)
	}
	if p.TargetID != "42" || p.Metadata["submittedAt"] != "2024-05-17T08:00:00Z" {
		t.Fatalf("unexpected target or metadata %+v", p)
	}

	if err := s.Update("s1", "i1", "Conforme"); !errors.Is(err, session.ErrClosed) {
		t.Fatalf("expected ErrClosed after submission, got %v", err)
	}
}

func TestSubmit_FailureKeepsState(t *testing.T) {
	rec := &testsupport.RecordingSubmitter{Err: errors.New("connection reset")}
	s := openFixture(t, session.Config{Submitter: rec})

	if err := s.Update("s1", "i1", "Non conforme"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.GoTo(2); err != nil {
		t.Fatalf("goto: %v", err)
	}

	_, err := s.Submit(testsupport.Context())
	if !submission.IsRetryable(err) {
		t.Fatalf("expected retryable persistence error, got %v", err)
	}
	if v, _ := s.Value("s1", "i1"); v != "Non conforme" {
		t.Fatalf("state must survive a failed submission, got %v", v)
	}

	rec.Err = nil
	if _, err := s.Submit(testsupport.Context()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(rec.Payloads()) != 2 {
		t.Fatalf("expected two attempts, got %d", len(rec.Payloads()))
	}
}

func TestSubmit_RejectsReentry(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	submitter := submission.SubmitterFunc(func(ctx context.Context, p submission.Payload) (submission.Receipt, error) {
		close(started)
		<-release
		return submission.Receipt{ID: "r"}, nil
	})
	s := openFixture(t, session.Config{Submitter: submitter})
	if err := s.GoTo(2); err != nil {
		t.Fatalf("goto: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(testsupport.Context())
		done <- err
	}()
	<-started

	if _, err := s.Submit(testsupport.Context()); !errors.Is(err, session.ErrSubmitInProgress) {
		t.Fatalf("expected ErrSubmitInProgress, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submission: %v", err)
	}
}

func TestClose_StopsTimers(t *testing.T) {
	h := testsupport.NewTimers()
	s := openFixture(t, session.Config{}, session.WithTimerOptions(h.Options()...))

	if err := s.StartTimer("s2", "t1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Cancel()
	s.Close()

	if h.Ticker.Tick() {
		t.Fatalf("closed session must not keep timer goroutines")
	}
	if err := s.StartTimer("s2", "t1"); !errors.Is(err, session.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
