// Package alerts keeps the live set of alerts raised by answers. Alerts are
// keyed by section and item, so re-evaluating an item replaces or removes
// its alert and never adds a second one.
package alerts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-inspectform/pkg/answers"
	"github.com/goliatone/go-inspectform/pkg/fields"
	"github.com/goliatone/go-inspectform/pkg/form"
)

// Severity is a display hint carried to the payload. It drives no behaviour.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Alert is one active alert.
type Alert struct {
	ID           string   `json:"id"`
	SectionID    string   `json:"sectionId"`
	SectionTitle string   `json:"sectionTitle"`
	ItemID       string   `json:"itemId,omitempty"`
	ItemName     string   `json:"itemName"`
	Value        any      `json:"value"`
	Message      string   `json:"message"`
	Severity     Severity `json:"severity"`
}

// ID derives the alert key: "sectionID-itemID", or the section id alone for
// legacy scalar sections.
func ID(sectionID, itemID string) string {
	if itemID == "" {
		return sectionID
	}
	return sectionID + "-" + itemID
}

type position struct {
	section int
	item    int
}

// Set is the keyed alert collection of one session. It is not safe for
// concurrent use.
type Set struct {
	form   form.Form
	alerts map[string]Alert
	order  map[string]position
}

// New returns an empty Set for f.
func New(f form.Form) *Set {
	s := &Set{
		form:   f,
		alerts: make(map[string]Alert),
		order:  make(map[string]position),
	}
	for si, section := range f.Sections {
		if section.Kind == form.SectionScalar {
			s.order[ID(section.ID, "")] = position{si, -1}
			continue
		}
		for ii, item := range section.Items {
			s.order[ID(section.ID, item.ID)] = position{si, ii}
		}
	}
	return s
}

// Recompute rebuilds the set from scratch for every slot in state.
func Recompute(state answers.State) *Set {
	s := New(state.Form())
	for _, entry := range state.Entries() {
		if entry.ItemID == "" {
			s.EvaluateLegacy(entry.SectionID, entry.Value)
			continue
		}
		s.Evaluate(entry.SectionID, entry.ItemID, entry.Value)
	}
	return s
}

// Evaluate applies the alert rule of an item to value. The alert keyed by
// the item is replaced when value triggers the rule and removed otherwise.
// It reports the resulting alert and whether it is active.
func (s *Set) Evaluate(sectionID, itemID string, value any) (Alert, bool) {
	key := ID(sectionID, itemID)
	section, ok := s.form.Section(sectionID)
	if !ok || section.Kind == form.SectionScalar {
		delete(s.alerts, key)
		return Alert{}, false
	}
	item, ok := section.Item(itemID)
	if !ok {
		delete(s.alerts, key)
		return Alert{}, false
	}

	triggered := matching(item, value)
	if len(triggered) == 0 {
		delete(s.alerts, key)
		return Alert{}, false
	}

	alert := Alert{
		ID:           key,
		SectionID:    section.ID,
		SectionTitle: section.Title,
		ItemID:       item.ID,
		ItemName:     item.Name,
		Value:        value,
		Message:      item.Alert.Message,
		Severity:     SeverityError,
	}
	if item.Type == form.ItemTypeMultiChoice {
		alert.Value = triggered
		alert.Message = multiMessage(item, triggered)
	} else if alert.Message == "" {
		alert.Message = fmt.Sprintf("%s: %s", item.Name, triggered[0])
	}
	s.alerts[key] = alert
	return alert, true
}

// EvaluateLegacy applies the option-level alert flags of a legacy scalar
// section to value.
func (s *Set) EvaluateLegacy(sectionID string, value any) (Alert, bool) {
	key := ID(sectionID, "")
	section, ok := s.form.Section(sectionID)
	if !ok || section.Kind != form.SectionScalar {
		delete(s.alerts, key)
		return Alert{}, false
	}

	item := section.LegacyItem()
	triggered := matching(item, value)
	if len(triggered) == 0 {
		delete(s.alerts, key)
		return Alert{}, false
	}

	alert := Alert{
		ID:           key,
		SectionID:    section.ID,
		SectionTitle: section.Title,
		ItemName:     section.Title,
		Value:        value,
		Message:      fmt.Sprintf("%s: %s", section.Title, strings.Join(triggered, ", ")),
		Severity:     SeverityWarning,
	}
	s.alerts[key] = alert
	return alert, true
}

// Remove drops the alert with id, if any.
func (s *Set) Remove(id string) {
	delete(s.alerts, id)
}

// Get returns the alert with id.
func (s *Set) Get(id string) (Alert, bool) {
	alert, ok := s.alerts[id]
	return alert, ok
}

// Len reports the number of active alerts.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.alerts)
}

// List returns active alerts in form order.
func (s *Set) List() []Alert {
	if s == nil {
		return nil
	}
	out := make([]Alert, 0, len(s.alerts))
	for _, alert := range s.alerts {
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := s.order[out[i].ID], s.order[out[j].ID]
		if pi.section != pj.section {
			return pi.section < pj.section
		}
		if pi.item != pj.item {
			return pi.item < pj.item
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Clone returns an independent copy of s.
func (s *Set) Clone() *Set {
	out := &Set{
		form:   s.form,
		alerts: make(map[string]Alert, len(s.alerts)),
		order:  s.order,
	}
	for id, alert := range s.alerts {
		out.alerts[id] = alert
	}
	return out
}

func matching(item form.Item, value any) []string {
	if item.Alert == nil || len(item.Alert.TriggeringValues) == 0 {
		return nil
	}
	var out []string
	for _, scalar := range fields.Scalars(item, value) {
		if item.Alert.Triggers(scalar) {
			out = append(out, scalar)
		}
	}
	return out
}

func multiMessage(item form.Item, triggered []string) string {
	values := strings.Join(triggered, ", ")
	if item.Alert.Message == "" {
		return fmt.Sprintf("%s: %s", item.Name, values)
	}
	return fmt.Sprintf("%s (%s)", item.Alert.Message, values)
}
