package form_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-inspectform/pkg/form"
)

func TestSortedOrdersSectionsAndItems(t *testing.T) {
	f := form.Form{
		ID: "f",
		Sections: []form.Section{
			{ID: "b", Order: 2},
			{ID: "a", Order: 1, Items: []form.Item{{ID: "i2", Order: 5}, {ID: "i1", Order: 0}}},
			{ID: "c", Order: 2},
		},
	}

	sorted := f.Sorted()

	var got []string
	for _, s := range sorted.Sections {
		got = append(got, s.ID)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("section order mismatch (-want +got):\n%s", diff)
	}
	if sorted.Sections[0].Items[0].ID != "i1" {
		t.Fatalf("expected items sorted by order, got %+v", sorted.Sections[0].Items)
	}
	if f.Sections[0].ID != "b" {
		t.Fatalf("Sorted must not mutate the receiver")
	}
}

func TestValidateRejectsEmptyForm(t *testing.T) {
	err := form.Form{ID: "empty"}.Validate()

	var schemaErr *form.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if !errors.Is(err, form.ErrNoSections) {
		t.Fatalf("expected ErrNoSections reason, got %v", err)
	}
}

func TestValidateRejectsDuplicateItems(t *testing.T) {
	f := form.Form{
		ID: "dup",
		Sections: []form.Section{{
			ID: "s1",
			Items: []form.Item{
				{ID: "i1", Type: form.ItemTypeFreeText},
				{ID: "i1", Type: form.ItemTypeFreeText},
			},
		}},
	}
	if err := f.Validate(); err == nil {
		t.Fatalf("expected duplicate item error")
	}
}

func TestEffectiveOptionsBuiltins(t *testing.T) {
	cases := map[form.ChoiceVariant][]string{
		form.ChoiceVariantNone:       {"Conforme", "Non conforme"},
		form.ChoiceVariantConformity: {"Conforme", "Non conforme"},
		form.ChoiceVariantYesNo:      {"Oui", "Non"},
		form.ChoiceVariantPresence:   {"Présent", "Absent", "Défectueux"},
	}
	for variant, want := range cases {
		item := form.Item{Type: form.ItemTypeSingleChoice, Variant: variant}
		if diff := cmp.Diff(want, item.EffectiveOptions()); diff != "" {
			t.Fatalf("variant %q options mismatch (-want +got):\n%s", variant, diff)
		}
	}

	explicit := form.Item{Type: form.ItemTypeSingleChoice, Options: []string{"A"}}
	if diff := cmp.Diff([]string{"A"}, explicit.EffectiveOptions()); diff != "" {
		t.Fatalf("explicit options mismatch (-want +got):\n%s", diff)
	}
}

func TestAlertRuleTriggers(t *testing.T) {
	var nilRule *form.AlertRule
	if nilRule.Triggers("x") {
		t.Fatalf("nil rule must never trigger")
	}
	empty := &form.AlertRule{}
	if empty.Triggers("Non conforme") {
		t.Fatalf("empty rule must never trigger")
	}
	rule := &form.AlertRule{TriggeringValues: []string{"Non conforme"}}
	if !rule.Triggers("Non conforme") || rule.Triggers("Conforme") {
		t.Fatalf("unexpected trigger evaluation")
	}
}

func TestLegacyItem(t *testing.T) {
	section := form.Section{
		ID:    "capot",
		Title: "Capot",
		Kind:  form.SectionScalar,
		Legacy: &form.LegacyField{
			Type:    form.ItemTypeSingleChoice,
			Options: []form.LegacyOption{{Label: "OK"}, {Label: "Endommagé", TriggersAlert: true}},
		},
	}

	want := form.Item{
		ID:      "capot",
		Name:    "Capot",
		Type:    form.ItemTypeSingleChoice,
		Options: []string{"OK", "Endommagé"},
		Alert:   &form.AlertRule{TriggeringValues: []string{"Endommagé"}},
	}
	if diff := cmp.Diff(want, section.LegacyItem()); diff != "" {
		t.Fatalf("legacy item mismatch (-want +got):\n%s", diff)
	}
}
