package answers

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/goliatone/go-inspectform/pkg/fields"
	"github.com/goliatone/go-inspectform/pkg/form"
)

var (
	// ErrUnknownSection is returned when an update names a missing section.
	ErrUnknownSection = errors.New("answers: unknown section")
	// ErrUnknownItem is returned when an update names a missing item.
	ErrUnknownItem = errors.New("answers: unknown item")
)

// SectionAnswers is the answer state of one section. Items is used by
// item-bearing sections, Value by legacy scalar sections.
type SectionAnswers struct {
	Title string
	Kind  form.SectionKind
	Items map[string]any
	Value any
}

// Entry is one answered slot in form order. ItemID is empty for legacy
// scalar sections.
type Entry struct {
	SectionID string
	ItemID    string
	Value     any
}

type entryKey struct {
	section string
	item    string
}

// State maps every section and item of a form to its current value.
type State struct {
	form     form.Form
	env      fields.Env
	sections map[string]SectionAnswers
	touched  map[entryKey]struct{}
}

// Initialize builds the default state of f: every item gets the default of
// its type.
func Initialize(f form.Form, env fields.Env) State {
	s := State{
		form:     f,
		env:      env,
		sections: make(map[string]SectionAnswers, len(f.Sections)),
		touched:  make(map[entryKey]struct{}),
	}
	for _, section := range f.Sections {
		answers := SectionAnswers{Title: section.Title, Kind: section.Kind}
		if section.Kind == form.SectionScalar {
			answers.Value = fields.Default(section.LegacyItem(), env)
		} else {
			answers.Items = make(map[string]any, len(section.Items))
			for _, item := range section.Items {
				answers.Items[item.ID] = fields.Default(item, env)
			}
		}
		s.sections[section.ID] = answers
	}
	return s
}

// Form returns the schema the state was initialized from.
func (s State) Form() form.Form {
	return s.form
}

// Update sets the value of one item, or of a legacy section when itemID is
// empty. The value is coerced to the item's type and the entry is marked as
// edited.
func (s State) Update(sectionID, itemID string, value any) (State, error) {
	section, ok := s.form.Section(sectionID)
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownSection, sectionID)
	}

	var item form.Item
	switch {
	case section.Kind == form.SectionScalar:
		if itemID != "" {
			return s, fmt.Errorf("%w: %q in legacy section %q", ErrUnknownItem, itemID, sectionID)
		}
		item = section.LegacyItem()
	case itemID == "":
		return s, fmt.Errorf("answers: section %q requires an item id", sectionID)
	default:
		found, ok := section.Item(itemID)
		if !ok {
			return s, fmt.Errorf("%w: %q in section %q", ErrUnknownItem, itemID, sectionID)
		}
		item = found
	}

	coerced, err := fields.Coerce(item, value)
	if err != nil {
		return s, err
	}
	return s.with(sectionID, itemID, coerced, true), nil
}

// ApplyUserName fills inspector fields the user has not edited with name.
// It is safe to call whenever the user name becomes known.
func (s State) ApplyUserName(name string) State {
	if name == "" {
		return s
	}
	out := s
	out.env.UserName = name
	s.eachSlot(form.ItemTypeInspectorAutofill, func(sectionID, itemID string) {
		out = out.with(sectionID, itemID, name, false)
	})
	return out
}

// RefreshDates sets untouched date items to today.
func (s State) RefreshDates(today time.Time) State {
	out := s
	out.env.Today = today
	value := today.Format(fields.DateLayout)
	s.eachSlot(form.ItemTypeDate, func(sectionID, itemID string) {
		out = out.with(sectionID, itemID, value, false)
	})
	return out
}

// eachSlot calls fn for every untouched slot of type t, legacy scalar
// sections included.
func (s State) eachSlot(t form.ItemType, fn func(sectionID, itemID string)) {
	for _, section := range s.form.Sections {
		if section.Kind == form.SectionScalar {
			if section.Legacy != nil && section.Legacy.Type == t && !s.Touched(section.ID, "") {
				fn(section.ID, "")
			}
			continue
		}
		for _, item := range section.Items {
			if item.Type == t && !s.Touched(section.ID, item.ID) {
				fn(section.ID, item.ID)
			}
		}
	}
}

// Value returns the value of an item, or of a legacy section when itemID is
// empty.
func (s State) Value(sectionID, itemID string) (any, bool) {
	answers, ok := s.sections[sectionID]
	if !ok {
		return nil, false
	}
	if itemID == "" {
		if answers.Kind != form.SectionScalar {
			return nil, false
		}
		return cloneValue(answers.Value), true
	}
	value, ok := answers.Items[itemID]
	return cloneValue(value), ok
}

// Section returns a copy of a section's answers.
func (s State) Section(sectionID string) (SectionAnswers, bool) {
	answers, ok := s.sections[sectionID]
	if !ok {
		return SectionAnswers{}, false
	}
	answers.Items = maps.Clone(answers.Items)
	return answers, true
}

// Len counts answer slots: one per item plus one per legacy section.
func (s State) Len() int {
	total := 0
	for _, answers := range s.sections {
		if answers.Kind == form.SectionScalar {
			total++
			continue
		}
		total += len(answers.Items)
	}
	return total
}

// Touched reports whether the user edited the slot.
func (s State) Touched(sectionID, itemID string) bool {
	_, ok := s.touched[entryKey{sectionID, itemID}]
	return ok
}

// Entries lists every slot in form order.
func (s State) Entries() []Entry {
	out := make([]Entry, 0, s.Len())
	for _, section := range s.form.Sections {
		answers := s.sections[section.ID]
		if section.Kind == form.SectionScalar {
			out = append(out, Entry{SectionID: section.ID, Value: cloneValue(answers.Value)})
			continue
		}
		for _, item := range section.Items {
			out = append(out, Entry{SectionID: section.ID, ItemID: item.ID, Value: cloneValue(answers.Items[item.ID])})
		}
	}
	return out
}

// with returns a copy of s where one slot holds value. Only the touched
// section map is copied.
func (s State) with(sectionID, itemID string, value any, touch bool) State {
	out := s
	out.sections = maps.Clone(s.sections)
	answers := out.sections[sectionID]
	if itemID == "" {
		answers.Value = value
	} else {
		answers.Items = maps.Clone(answers.Items)
		if answers.Items == nil {
			answers.Items = make(map[string]any)
		}
		answers.Items[itemID] = value
	}
	out.sections[sectionID] = answers

	if touch {
		out.touched = maps.Clone(s.touched)
		if out.touched == nil {
			out.touched = make(map[entryKey]struct{})
		}
		out.touched[entryKey{sectionID, itemID}] = struct{}{}
	}
	return out
}

func cloneValue(value any) any {
	if list, ok := value.([]string); ok {
		return append([]string{}, list...)
	}
	return value
}
