package alerts_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-inspectform/pkg/alerts"
	"github.com/goliatone/go-inspectform/pkg/answers"
	"github.com/goliatone/go-inspectform/pkg/fields"
	"github.com/goliatone/go-inspectform/pkg/form"
)

func alertForm() form.Form {
	return form.Form{
		ID: "borne",
		Sections: []form.Section{
			{
				ID:    "s1",
				Title: "Visual",
				Items: []form.Item{
					{
						ID:      "i1",
						Name:    "Joint present",
						Type:    form.ItemTypeSingleChoice,
						Options: []string{"Conforme", "Non conforme"},
						Alert:   &form.AlertRule{TriggeringValues: []string{"Non conforme"}, Message: "Joint missing"},
					},
					{
						ID:      "i2",
						Name:    "Défauts",
						Type:    form.ItemTypeMultiChoice,
						Options: []string{"Rouille", "Fissure", "Propre"},
						Alert:   &form.AlertRule{TriggeringValues: []string{"Rouille", "Fissure"}, Message: "Défaut visible"},
					},
					{
						ID:      "i3",
						Name:    "Remarque",
						Type:    form.ItemTypeSingleChoice,
						Options: []string{"A", "B"},
						Alert:   &form.AlertRule{},
					},
					{
						ID:    "i4",
						Name:  "Pression",
						Type:  form.ItemTypeNumber,
						Alert: &form.AlertRule{TriggeringValues: []string{"0"}},
					},
				},
			},
			{
				ID:    "capot",
				Title: "Capot",
				Kind:  form.SectionScalar,
				Legacy: &form.LegacyField{
					Type:    form.ItemTypeSingleChoice,
					Options: []form.LegacyOption{{Label: "OK"}, {Label: "Endommagé", TriggersAlert: true}},
				},
			},
		},
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	set := alerts.New(alertForm())

	set.Evaluate("s1", "i1", "Non conforme")
	set.Evaluate("s1", "i1", "Non conforme")

	if set.Len() != 1 {
		t.Fatalf("expected one alert, got %d", set.Len())
	}
	want := alerts.Alert{
		ID:           "s1-i1",
		SectionID:    "s1",
		SectionTitle: "Visual",
		ItemID:       "i1",
		ItemName:     "Joint present",
		Value:        "Non conforme",
		Message:      "Joint missing",
		Severity:     alerts.SeverityError,
	}
	if diff := cmp.Diff([]alerts.Alert{want}, set.List()); diff != "" {
		t.Fatalf("alert mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_RemoveAndReAdd(t *testing.T) {
	set := alerts.New(alertForm())

	set.Evaluate("s1", "i1", "Non conforme")
	if _, active := set.Evaluate("s1", "i1", "Conforme"); active || set.Len() != 0 {
		t.Fatalf("expected alert removed, got %d", set.Len())
	}
	set.Evaluate("s1", "i1", "Non conforme")
	if set.Len() != 1 {
		t.Fatalf("expected exactly one alert after re-trigger, got %d", set.Len())
	}
	set.Evaluate("s1", "i1", "")
	if set.Len() != 0 {
		t.Fatalf("cleared value must remove the alert")
	}
}

func TestEvaluate_MultiChoiceNamesTriggeringValues(t *testing.T) {
	set := alerts.New(alertForm())

	alert, active := set.Evaluate("s1", "i2", []string{"Propre", "Fissure", "Rouille"})
	if !active {
		t.Fatalf("expected alert")
	}
	if alert.Message != "Défaut visible (Fissure, Rouille)" {
		t.Fatalf("unexpected message %q", alert.Message)
	}
	if diff := cmp.Diff([]string{"Fissure", "Rouille"}, alert.Value); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}

	if _, active := set.Evaluate("s1", "i2", []string{"Propre"}); active {
		t.Fatalf("expected alert removed when no triggering value remains")
	}
}

func TestEvaluate_EmptyRuleNeverAlerts(t *testing.T) {
	set := alerts.New(alertForm())
	for _, v := range []string{"A", "B"} {
		if _, active := set.Evaluate("s1", "i3", v); active {
			t.Fatalf("empty rule raised an alert for %q", v)
		}
	}
}

func TestEvaluate_NumericValue(t *testing.T) {
	set := alerts.New(alertForm())

	alert, active := set.Evaluate("s1", "i4", float64(0))
	if !active || alert.Message != "Pression: 0" {
		t.Fatalf("expected default message for numeric trigger, got %+v", alert)
	}
}

func TestEvaluateLegacy(t *testing.T) {
	set := alerts.New(alertForm())

	alert, active := set.EvaluateLegacy("capot", "Endommagé")
	if !active {
		t.Fatalf("expected legacy alert")
	}
	if alert.ID != "capot" || alert.Severity != alerts.SeverityWarning {
		t.Fatalf("unexpected legacy alert %+v", alert)
	}
	set.EvaluateLegacy("capot", "OK")
	if set.Len() != 0 {
		t.Fatalf("expected legacy alert removed")
	}
}

func TestRecomputeAndListOrder(t *testing.T) {
	f := alertForm()
	state := answers.Initialize(f, fields.Env{})

	var err error
	for _, step := range []struct {
		section, item string
		value         any
	}{
		{"s1", "i4", 5},
		{"capot", "", "Endommagé"},
		{"s1", "i2", []string{"Rouille"}},
		{"s1", "i1", "Non conforme"},
	} {
		state, err = state.Update(step.section, step.item, step.value)
		if err != nil {
			t.Fatalf("update %s/%s: %v", step.section, step.item, err)
		}
	}

	set := alerts.Recompute(state)

	var ids []string
	for _, alert := range set.List() {
		ids = append(ids, alert.ID)
	}
	if diff := cmp.Diff([]string{"s1-i1", "s1-i2", "capot"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	set := alerts.New(alertForm())
	set.Evaluate("s1", "i1", "Non conforme")

	clone := set.Clone()
	set.Remove("s1-i1")

	if clone.Len() != 1 || set.Len() != 0 {
		t.Fatalf("clone shares state with original")
	}
}
