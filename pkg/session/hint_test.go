package session_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-inspectform/pkg/session"
	"github.com/goliatone/go-inspectform/pkg/testsupport"
)

const hintJSON = `{
	"schema": {"id": 12, "nom": "Borne sèche", "sections": [
		{"id": "s1", "titre": "Visuel", "items": [
			{"id": "i1", "nom": "Joint", "type": "conforme_non_conforme"},
			{"id": "i2", "nom": "Date", "type": "date"}
		]}
	]},
	"target": {"id": 42, "type": "borne_seche", "formulaire_id": "12"},
	"inspectorId": 17,
	"date": "2024-05-17"
}`

func TestDecodeHint(t *testing.T) {
	h, err := session.DecodeHint([]byte(hintJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := session.Target{ID: "42", Type: "borne_seche", AssignedFormID: "12"}
	if diff := cmp.Diff(want, h.Target); diff != "" {
		t.Fatalf("target mismatch (-want +got):\n%s", diff)
	}
	if h.InspectorID != "17" || !h.Date.Equal(time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected hint %+v", h)
	}
	f, err := h.Form()
	if err != nil || f.ID != "12" {
		t.Fatalf("schema decode: %v (%+v)", err, f)
	}
}

func TestDecodeHint_Invalid(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"date": "17/05/2024"}`} {
		if _, err := session.DecodeHint([]byte(raw)); err == nil {
			t.Fatalf("DecodeHint(%q) should fail", raw)
		}
	}

	h, err := session.DecodeHint([]byte(`{"schema": null, "target": {"id": "7"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := h.Form(); err == nil {
		t.Fatalf("hint without schema must not yield a form")
	}
}

func TestOpenFromHint(t *testing.T) {
	s, err := session.OpenFromHint(testsupport.Context(), []byte(hintJSON), session.Config{}, session.WithLogger(testsupport.DiscardLogger()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if v, _ := s.Value("s1", "i2"); v != "2024-05-17" {
		t.Fatalf("date default must come from the hint, got %v", v)
	}
	p := s.Preview()
	if p.FormID != "12" || p.TargetID != "42" || p.TargetType != "borne_seche" {
		t.Fatalf("unexpected payload identity %+v", p)
	}
	if p.Metadata["inspectorId"] != "17" {
		t.Fatalf("inspector id must be carried as metadata, got %v", p.Metadata)
	}
}

func TestOpenFromHint_ConfigWins(t *testing.T) {
	f := testsupport.InspectionForm()
	cfg := session.Config{Form: &f, TargetID: "99"}
	s, err := session.OpenFromHint(testsupport.Context(), []byte(hintJSON), cfg, session.WithLogger(testsupport.DiscardLogger()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if s.Form().ID != f.ID {
		t.Fatalf("explicit form must win, got %q", s.Form().ID)
	}
	if p := s.Preview(); p.TargetID != "99" || p.TargetType != "borne_seche" {
		t.Fatalf("unexpected target %s/%s", p.TargetID, p.TargetType)
	}
}
