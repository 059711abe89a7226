package testsupport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-inspectform/internal/wire"
	"github.com/goliatone/go-inspectform/pkg/form"
	"github.com/goliatone/go-inspectform/pkg/submission"
	"github.com/goliatone/go-inspectform/pkg/timer"
)

// Epoch is the fixed instant fixtures are built around.
var Epoch = time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC)

// MustLoadForm decodes a schema fixture and fails the test on error.
func MustLoadForm(t *testing.T, path string) form.Form {
	t.Helper()

	f, err := LoadForm(path)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return f
}

// LoadForm reads a JSON or YAML schema fixture, returning an error for
// callers managing setup outside of *testing.T.
func LoadForm(path string) (form.Form, error) {
	if path == "" {
		return form.Form{}, errors.New("testsupport: form path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return form.Form{}, fmt.Errorf("testsupport: read form: %w", err)
	}
	f, err := wire.Decode(data)
	if err != nil {
		return form.Form{}, fmt.Errorf("testsupport: decode form: %w", err)
	}
	return f, nil
}

func ptr(v float64) *float64 { return &v }

// InspectionForm returns a dry hydrant inspection covering choice, numeric,
// timer, device and legacy sections.
func InspectionForm() form.Form {
	return form.Form{
		ID:          "borne-seche",
		Name:        "Borne sèche",
		CategoryIDs: []string{"7"},
		Active:      true,
		Sections: []form.Section{
			{
				ID:    "s1",
				Title: "Inspection visuelle",
				Order: 1,
				Items: []form.Item{
					{
						ID:        "i1",
						Name:      "Joint présent",
						Type:      form.ItemTypeSingleChoice,
						Variant:   form.ChoiceVariantConformity,
						Mandatory: true,
						Order:     1,
						Alert: &form.AlertRule{
							TriggeringValues: []string{"Non conforme"},
							Message:          "Joint manquant",
						},
					},
					{
						ID:      "i2",
						Name:    "Anomalies",
						Type:    form.ItemTypeMultiChoice,
						Options: []string{"Fuite", "Corrosion", "Aucune"},
						Order:   2,
						Alert: &form.AlertRule{
							TriggeringValues: []string{"Fuite", "Corrosion"},
							Message:          "Anomalies détectées",
						},
					},
					{
						ID:    "i3",
						Name:  "Inspecteur",
						Type:  form.ItemTypeInspectorAutofill,
						Order: 3,
					},
				},
			},
			{
				ID:    "s2",
				Title: "Essai",
				Order: 2,
				Items: []form.Item{
					{
						ID:        "d1",
						Name:      "Débit",
						Type:      form.ItemTypeNumber,
						Mandatory: true,
						Order:     1,
						Config: form.ItemConfig{
							Min:  ptr(0),
							Max:  ptr(5000),
							Unit: "L/min",
						},
					},
					{
						ID:     "t1",
						Name:   "Durée du pompage",
						Type:   form.ItemTypeStopwatch,
						Order:  2,
						Config: form.ItemConfig{AlertThreshold: ptr(90)},
					},
					{
						ID:     "c1",
						Name:   "Temps de repos",
						Type:   form.ItemTypeCountdown,
						Order:  3,
						Config: form.ItemConfig{DurationMinutes: ptr(1)},
					},
					{ID: "g1", Name: "Position", Type: form.ItemTypeGeolocation, Order: 4},
					{ID: "w1", Name: "Météo", Type: form.ItemTypeWeather, Order: 5},
					{ID: "p1", Name: "Photo", Type: form.ItemTypePhoto, Order: 6},
				},
			},
			{
				ID:    "capot",
				Title: "Capot",
				Order: 3,
				Kind:  form.SectionScalar,
				Legacy: &form.LegacyField{
					Type: form.ItemTypeSingleChoice,
					Options: []form.LegacyOption{
						{Label: "OK"},
						{Label: "Endommagé", TriggersAlert: true},
					},
				},
			},
		},
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Timers pairs a managed clock with a manual ticker so tests drive timers
// deterministically.
type Timers struct {
	Clock  *timer.ManagedClock
	Ticker *timer.ManualTicker
}

// NewTimers returns a harness starting at Epoch.
func NewTimers() Timers {
	return Timers{
		Clock:  timer.NewManagedClock(Epoch),
		Ticker: timer.NewManualTicker(),
	}
}

// Options wires the harness into a timer.
func (h Timers) Options() []timer.Option {
	return []timer.Option{timer.WithClock(h.Clock), timer.WithTicker(h.Ticker.Func())}
}

// RecordingSubmitter stores every payload it receives. Err, when set, is
// returned instead of a receipt.
type RecordingSubmitter struct {
	mu       sync.Mutex
	payloads []submission.Payload
	Err      error
}

// Submit implements submission.Submitter.
func (r *RecordingSubmitter) Submit(_ context.Context, payload submission.Payload) (submission.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	if r.Err != nil {
		return submission.Receipt{}, r.Err
	}
	return submission.Receipt{ID: fmt.Sprintf("receipt-%d", len(r.payloads)), SubmittedAt: Epoch}, nil
}

// Payloads returns the payloads received so far.
func (r *RecordingSubmitter) Payloads() []submission.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]submission.Payload(nil), r.payloads...)
}
