package form_test

import (
	"testing"

	"github.com/goliatone/go-inspectform/pkg/form"
)

func TestResolveApplicableForm_AssignedWins(t *testing.T) {
	f1 := form.Form{ID: "F1", Active: true, CategoryIDs: []string{"borne_seche"}}
	f2 := form.Form{ID: "F2", Active: true, CategoryIDs: []string{"borne_seche"}}

	got := form.ResolveApplicableForm([]form.Form{f1, f2}, "F2", form.MatchCategory("borne_seche"))
	if got == nil || got.ID != "F2" {
		t.Fatalf("expected assigned form F2, got %+v", got)
	}
}

func TestResolveApplicableForm_AssignedIgnoresFilterAndActive(t *testing.T) {
	f1 := form.Form{ID: "F1", Active: true, CategoryIDs: []string{"vehicule"}}
	f2 := form.Form{ID: "F2", Active: false}

	got := form.ResolveApplicableForm([]form.Form{f1, f2}, "F2", form.MatchCategory("vehicule"))
	if got == nil || got.ID != "F2" {
		t.Fatalf("expected assigned form F2 even when inactive, got %+v", got)
	}
}

func TestResolveApplicableForm_Fallbacks(t *testing.T) {
	candidates := []form.Form{
		{ID: "inactive", Active: false, CategoryIDs: []string{"vehicule"}},
		{ID: "other", Active: true, CategoryIDs: []string{"borne_seche"}},
		{ID: "match", Active: true, CategoryIDs: []string{"vehicule"}},
	}

	cases := []struct {
		name     string
		assigned string
		filter   form.Filter
		want     string
	}{
		{name: "MissingAssignedFallsBack", assigned: "gone", filter: form.MatchCategory("vehicule"), want: "match"},
		{name: "CategoryFilter", filter: form.MatchCategory("vehicule"), want: "match"},
		{name: "NilFilterFirstActive", want: "other"},
		{name: "NoMatch", filter: form.MatchCategory("batiment"), want: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := form.ResolveApplicableForm(candidates, tc.assigned, tc.filter)
			if tc.want == "" {
				if got != nil {
					t.Fatalf("expected nil, got %q", got.ID)
				}
				return
			}
			if got == nil || got.ID != tc.want {
				t.Fatalf("expected %q, got %+v", tc.want, got)
			}
		})
	}
}
