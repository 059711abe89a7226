package submission

import (
	"html"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-inspectform/pkg/alerts"
	"github.com/goliatone/go-inspectform/pkg/answers"
	"github.com/goliatone/go-inspectform/pkg/fields"
	"github.com/goliatone/go-inspectform/pkg/form"
)

// Answer is one flat entry of the payload. Label is empty for legacy scalar
// sections.
type Answer struct {
	Value   any    `json:"value"`
	Section string `json:"section"`
	Label   string `json:"label,omitempty"`
}

// Payload is the body posted to the unified inspection resource.
type Payload struct {
	FormID       string            `json:"formId"`
	TargetID     string            `json:"targetId"`
	TargetType   string            `json:"targetType"`
	Answers      map[string]Answer `json:"answers"`
	Conforms     bool              `json:"conforms"`
	GeneralNotes string            `json:"generalNotes"`
	Alerts       []alerts.Alert    `json:"alerts"`
	Metadata     map[string]any    `json:"metadata,omitempty"`
}

// Request carries the session context that is not part of the answers.
type Request struct {
	TargetID     string
	TargetType   string
	GeneralNotes string
	Metadata     map[string]any
	SubmittedAt  time.Time
}

var (
	stripOnce   sync.Once
	stripPolicy *bluemonday.Policy
)

func stripMarkup(raw string) string {
	if !strings.ContainsAny(raw, "<>&") {
		return strings.TrimSpace(raw)
	}
	stripOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(raw)))
}

// AnswerKey returns the flat key of every slot in f. Item ids are used as
// is; an id that appears more than once in the form is qualified as
// "sectionID-itemID" for all of its occurrences. A qualified key that is
// still taken gets a "~N" suffix, so keys are unique across the form.
func AnswerKey(f form.Form) func(sectionID, itemID string) string {
	type slot struct{ section, item string }
	var slots []slot
	counts := make(map[string]int)
	for _, section := range f.Sections {
		if section.Kind == form.SectionScalar {
			slots = append(slots, slot{section.ID, ""})
			counts[section.ID]++
			continue
		}
		for _, item := range section.Items {
			slots = append(slots, slot{section.ID, item.ID})
			counts[item.ID]++
		}
	}

	plain := func(s slot) string {
		if s.item == "" {
			return s.section
		}
		return s.item
	}
	keys := make(map[slot]string, len(slots))
	used := make(map[string]bool, len(slots))
	for _, s := range slots {
		if counts[plain(s)] == 1 {
			keys[s] = plain(s)
			used[plain(s)] = true
		}
	}
	for _, s := range slots {
		if _, ok := keys[s]; ok {
			continue
		}
		base := s.section + "-" + s.item
		if s.item == "" {
			base = s.section
		}
		key := base
		for n := 2; used[key]; n++ {
			key = base + "~" + strconv.Itoa(n)
		}
		keys[s] = key
		used[key] = true
	}

	return func(sectionID, itemID string) string {
		if key, ok := keys[slot{sectionID, itemID}]; ok {
			return key
		}
		return alerts.ID(sectionID, itemID)
	}
}

// Assemble flattens state into a Payload. Section titles and item labels
// are read from f at call time.
func Assemble(f form.Form, state answers.State, set *alerts.Set, req Request) Payload {
	key := AnswerKey(f)
	payload := Payload{
		FormID:       f.ID,
		TargetID:     req.TargetID,
		TargetType:   req.TargetType,
		Answers:      make(map[string]Answer, f.ItemCount()),
		GeneralNotes: stripMarkup(req.GeneralNotes),
		Alerts:       set.List(),
		Metadata:     maps.Clone(req.Metadata),
	}
	if payload.Alerts == nil {
		payload.Alerts = []alerts.Alert{}
	}
	payload.Conforms = len(payload.Alerts) == 0

	var location *fields.Geolocation
	for _, section := range f.Sections {
		if section.Kind == form.SectionScalar {
			value, _ := state.Value(section.ID, "")
			payload.Answers[key(section.ID, "")] = Answer{Value: value, Section: section.Title}
			continue
		}
		for _, item := range section.Items {
			value, _ := state.Value(section.ID, item.ID)
			switch v := value.(type) {
			case string:
				if item.Type == form.ItemTypeFreeText {
					value = stripMarkup(v)
				}
			case fields.Geolocation:
				if location == nil {
					location = &v
				}
			}
			payload.Answers[key(section.ID, item.ID)] = Answer{
				Value:   value,
				Section: section.Title,
				Label:   item.Name,
			}
		}
	}

	if payload.Metadata == nil {
		payload.Metadata = make(map[string]any)
	}
	if _, ok := payload.Metadata["formName"]; !ok && f.Name != "" {
		payload.Metadata["formName"] = f.Name
	}
	if _, ok := payload.Metadata["geolocation"]; !ok && location != nil {
		payload.Metadata["geolocation"] = *location
	}
	if !req.SubmittedAt.IsZero() {
		payload.Metadata["submittedAt"] = req.SubmittedAt.UTC().Format(time.RFC3339)
	}
	if len(payload.Metadata) == 0 {
		payload.Metadata = nil
	}
	return payload
}

// ValidateMandatory returns a *ValidationError listing mandatory items
// whose value is empty.
func ValidateMandatory(f form.Form, state answers.State) error {
	var missing []MissingItem
	for _, section := range f.Sections {
		for _, item := range section.Items {
			if !item.Mandatory {
				continue
			}
			value, _ := state.Value(section.ID, item.ID)
			if fields.Empty(item, value) {
				missing = append(missing, MissingItem{
					SectionID:    section.ID,
					SectionTitle: section.Title,
					ItemID:       item.ID,
					ItemName:     item.Name,
				})
			}
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
