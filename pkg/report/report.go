// Package report renders a submitted (or previewed) inspection payload as a
// human readable summary. Templates are pongo2 files embedded in the binary;
// WithTemplatesFS swaps them for a caller provided set with the same names.
package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-inspectform/pkg/alerts"
	"github.com/goliatone/go-inspectform/pkg/fields"
	"github.com/goliatone/go-inspectform/pkg/form"
	"github.com/goliatone/go-inspectform/pkg/submission"
)

//go:embed templates/*.tpl
var embedded embed.FS

// ErrUnknownFormat is returned for formats other than text and html.
var ErrUnknownFormat = errors.New("report: unknown format")

// Format selects the summary template.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "text", "txt":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
}

func (f Format) template() (string, error) {
	switch f {
	case FormatText:
		return "summary.txt.tpl", nil
	case FormatHTML:
		return "summary.html.tpl", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplatesFS loads summary.txt.tpl and summary.html.tpl from fsys
// instead of the embedded set.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(r *Renderer) {
		if fsys != nil {
			r.fsys = fsys
		}
	}
}

// Renderer executes the summary templates. It is safe for concurrent use.
type Renderer struct {
	fsys fs.FS
	set  *pongo2.TemplateSet

	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

// New returns a Renderer over the embedded templates unless overridden.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*pongo2.Template)}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.fsys == nil {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, fmt.Errorf("report: embedded templates: %w", err)
		}
		r.fsys = sub
	}
	r.set = pongo2.NewSet("inspectform-report", pongo2.NewFSLoader(r.fsys))
	registerFilters()
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
	defaultErr      error
)

// Render renders payload with the embedded templates.
func Render(payload submission.Payload, f form.Form, format Format, out ...io.Writer) (string, error) {
	defaultOnce.Do(func() {
		defaultRenderer, defaultErr = New()
	})
	if defaultErr != nil {
		return "", defaultErr
	}
	return defaultRenderer.Render(payload, f, format, out...)
}

// Render executes the template for format against payload. f supplies the
// section and item order; answers missing from payload are skipped. The
// result is also written to every out writer.
func (r *Renderer) Render(payload submission.Payload, f form.Form, format Format, out ...io.Writer) (string, error) {
	name, err := format.template()
	if err != nil {
		return "", err
	}
	tpl, err := r.template(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(pongo2.Context{"report": buildView(payload, f)}, &buf); err != nil {
		return "", fmt.Errorf("report: execute %q: %w", name, err)
	}
	rendered := buf.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return rendered, fmt.Errorf("report: write output: %w", err)
		}
	}
	return rendered, nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.templates[name]; ok {
		return tpl, nil
	}
	tpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("report: load template %q: %w", name, err)
	}
	r.templates[name] = tpl
	return tpl, nil
}

type view struct {
	FormID       string
	FormName     string
	TargetID     string
	TargetType   string
	SubmittedAt  string
	Conforms     bool
	AlertCount   int
	GeneralNotes string
	Sections     []sectionView
	Alerts       []alertView
}

type sectionView struct {
	Title   string
	Answers []answerView
}

type answerView struct {
	Label string
	Value string
	Alert bool
}

type alertView struct {
	Where    string
	Message  string
	Severity string
}

func buildView(payload submission.Payload, f form.Form) view {
	v := view{
		FormID:       payload.FormID,
		FormName:     f.Name,
		TargetID:     payload.TargetID,
		TargetType:   payload.TargetType,
		Conforms:     payload.Conforms,
		AlertCount:   len(payload.Alerts),
		GeneralNotes: payload.GeneralNotes,
	}
	if v.FormName == "" {
		v.FormName = payload.FormID
	}
	if at, ok := payload.Metadata["submittedAt"].(string); ok {
		v.SubmittedAt = at
	}

	flagged := make(map[string]bool, len(payload.Alerts))
	for _, alert := range payload.Alerts {
		flagged[alert.ID] = true
		v.Alerts = append(v.Alerts, alertView{
			Where:    where(alert),
			Message:  alert.Message,
			Severity: string(alert.Severity),
		})
	}

	key := submission.AnswerKey(f)
	for _, section := range f.Sections {
		sv := sectionView{Title: section.Title}
		if section.Kind == form.SectionScalar {
			if answer, ok := payload.Answers[key(section.ID, "")]; ok {
				sv.Answers = append(sv.Answers, answerView{
					Label: section.Title,
					Value: formatValue(section.LegacyItem(), answer.Value),
					Alert: flagged[alerts.ID(section.ID, "")],
				})
			}
		}
		for _, item := range section.Items {
			answer, ok := payload.Answers[key(section.ID, item.ID)]
			if !ok {
				continue
			}
			sv.Answers = append(sv.Answers, answerView{
				Label: item.Name,
				Value: formatValue(item, answer.Value),
				Alert: flagged[alerts.ID(section.ID, item.ID)],
			})
		}
		if len(sv.Answers) > 0 {
			v.Sections = append(v.Sections, sv)
		}
	}
	return v
}

func where(alert alerts.Alert) string {
	if alert.ItemName == "" || alert.ItemName == alert.SectionTitle {
		return alert.SectionTitle
	}
	return alert.SectionTitle + " / " + alert.ItemName
}

const blank = "-"

func formatValue(item form.Item, value any) string {
	switch v := value.(type) {
	case nil:
		return blank
	case string:
		if strings.TrimSpace(v) == "" {
			return blank
		}
		return v
	case []string:
		if len(v) == 0 {
			return blank
		}
		return strings.Join(v, ", ")
	case []any:
		if len(v) == 0 {
			return blank
		}
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	case float64:
		return formatNumber(item, v)
	case int:
		return formatNumber(item, float64(v))
	case bool:
		if v {
			return "oui"
		}
		return "non"
	case fields.Geolocation:
		return formatFloat(v.Latitude) + ", " + formatFloat(v.Longitude)
	case fields.Weather:
		return formatWeather(v)
	}
	return fmt.Sprint(value)
}

func formatNumber(item form.Item, n float64) string {
	s := formatFloat(n)
	switch item.Type {
	case form.ItemTypeStopwatch, form.ItemTypeCountdown:
		return s + " s"
	}
	if item.Config.Unit != "" {
		return s + " " + item.Config.Unit
	}
	return s
}

func formatWeather(w fields.Weather) string {
	temp := formatFloat(w.Temperature) + " °C"
	if w.Condition == "" {
		return temp
	}
	return w.Condition + ", " + temp
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("severity") {
			_ = pongo2.RegisterFilter("severity", filterSeverity)
		}
	})
}

func filterSeverity(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	switch alerts.Severity(in.String()) {
	case alerts.SeverityError:
		return pongo2.AsValue("erreur"), nil
	case alerts.SeverityWarning:
		return pongo2.AsValue("avertissement"), nil
	}
	return in, nil
}
