package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-inspectform/pkg/alerts"
	"github.com/goliatone/go-inspectform/pkg/fields"
	"github.com/goliatone/go-inspectform/pkg/report"
	"github.com/goliatone/go-inspectform/pkg/submission"
	"github.com/goliatone/go-inspectform/pkg/testsupport"
)

func failingPayload() submission.Payload {
	return submission.Payload{
		FormID:     "borne-seche",
		TargetID:   "42",
		TargetType: "borne_seche",
		Answers: map[string]submission.Answer{
			"i1":    {Value: "Non conforme", Section: "Inspection visuelle", Label: "Joint présent"},
			"i2":    {Value: []string{"Fuite", "Corrosion"}, Section: "Inspection visuelle", Label: "Anomalies"},
			"i3":    {Value: "Jeanne <Tremblay>", Section: "Inspection visuelle", Label: "Inspecteur"},
			"d1":    {Value: 1200.0, Section: "Essai", Label: "Débit"},
			"t1":    {Value: 95.0, Section: "Essai", Label: "Durée du pompage"},
			"g1":    {Value: fields.Geolocation{Latitude: 45.5, Longitude: -73.6}, Section: "Essai", Label: "Position"},
			"w1":    {Value: fields.Weather{Condition: "Nuageux", Temperature: 12}, Section: "Essai", Label: "Météo"},
			"p1":    {Value: "", Section: "Essai", Label: "Photo"},
			"capot": {Value: "Endommagé", Section: "Capot"},
		},
		Conforms:     false,
		GeneralNotes: "Accès difficile",
		Alerts: []alerts.Alert{
			{ID: "s1-i1", SectionID: "s1", SectionTitle: "Inspection visuelle", ItemID: "i1", ItemName: "Joint présent", Message: "Joint manquant", Severity: alerts.SeverityError},
			{ID: "capot", SectionID: "capot", SectionTitle: "Capot", ItemName: "Capot", Message: "Capot: Endommagé", Severity: alerts.SeverityWarning},
		},
		Metadata: map[string]any{"submittedAt": "2024-05-17T08:00:00Z"},
	}
}

func TestRender_Text(t *testing.T) {
	var sink bytes.Buffer
	out, err := report.Render(failingPayload(), testsupport.InspectionForm(), report.FormatText, &sink)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if sink.String() != out {
		t.Fatalf("writer must receive the rendered summary")
	}

	for _, want := range []string{
		"Borne sèche (borne-seche)",
		"Cible: borne_seche 42",
		"Soumis le: 2024-05-17T08:00:00Z",
		"NON CONFORME (2 alerte(s))",
		"== Inspection visuelle ==",
		"- Joint présent: Non conforme [!]",
		"- Anomalies: Fuite, Corrosion",
		"- Inspecteur: Jeanne <Tremblay>",
		"- Débit: 1200 L/min",
		"- Durée du pompage: 95 s",
		"- Position: 45.5, -73.6",
		"- Météo: Nuageux, 12 °C",
		"- Photo: -",
		"- Capot: Endommagé [!]",
		"- [erreur] Inspection visuelle / Joint présent: Joint manquant",
		"- [avertissement] Capot: Capot: Endommagé",
		"Notes: Accès difficile",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text summary missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Temps de repos") {
		t.Errorf("answers absent from the payload must be skipped\n%s", out)
	}
	if strings.Index(out, "== Inspection visuelle ==") > strings.Index(out, "== Essai ==") {
		t.Errorf("sections must follow form order\n%s", out)
	}
}

func TestRender_HTMLEscapes(t *testing.T) {
	r, err := report.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := r.Render(failingPayload(), testsupport.InspectionForm(), report.FormatHTML)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Jeanne &lt;Tremblay&gt;") {
		t.Errorf("html summary must escape values\n%s", out)
	}
	for _, want := range []string{
		`<h1>Borne sèche</h1>`,
		`status--non-conforme`,
		`<li class="alert alert--error">`,
		`<dd class="alert">Non conforme</dd>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html summary missing %q\n%s", want, out)
		}
	}
}

func TestRender_Conforming(t *testing.T) {
	payload := submission.Payload{
		FormID:   "borne-seche",
		TargetID: "42",
		Answers: map[string]submission.Answer{
			"i1": {Value: "Conforme", Section: "Inspection visuelle", Label: "Joint présent"},
		},
		Conforms: true,
		Alerts:   []alerts.Alert{},
	}
	out, err := report.Render(payload, testsupport.InspectionForm(), report.FormatText)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Statut: CONFORME") || strings.Contains(out, "Alertes:") {
		t.Fatalf("conforming summary must not list alerts\n%s", out)
	}
	if strings.Contains(out, "== Essai ==") {
		t.Fatalf("sections without answers must be skipped\n%s", out)
	}
}

func TestRender_CustomTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"summary.txt.tpl": {Data: []byte("{{ report.FormID }}|{{ report.AlertCount }}")},
	}
	r, err := report.New(report.WithTemplatesFS(fsys))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := r.Render(failingPayload(), testsupport.InspectionForm(), report.FormatText)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "borne-seche|2" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := r.Render(failingPayload(), testsupport.InspectionForm(), report.FormatHTML); err == nil {
		t.Fatalf("missing template must fail")
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]report.Format{"": report.FormatText, "TXT": report.FormatText, " html ": report.FormatHTML}
	for raw, want := range cases {
		got, err := report.ParseFormat(raw)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := report.ParseFormat("pdf"); !errors.Is(err, report.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := report.Render(submission.Payload{}, testsupport.InspectionForm(), "pdf"); !errors.Is(err, report.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
