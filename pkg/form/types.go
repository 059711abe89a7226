package form

import (
	"slices"
	"sort"
	"strings"
)

// Form is the static definition of an inspection or inventory checklist.
type Form struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CategoryIDs []string  `json:"categoryIds,omitempty"`
	Active      bool      `json:"active"`
	Sections    []Section `json:"sections"`
}

// SectionKind tags which answer shape a section uses.
type SectionKind int

const (
	// SectionItems sections hold one answer per item.
	SectionItems SectionKind = iota
	// SectionScalar sections are legacy forms where the section itself is the
	// unit of answer.
	SectionScalar
)

func (k SectionKind) String() string {
	if k == SectionScalar {
		return "scalar"
	}
	return "items"
}

// Section groups items presented together. Exactly one of Items (for
// SectionItems) or Legacy (for SectionScalar) is meaningful.
type Section struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Order  int          `json:"order"`
	Kind   SectionKind  `json:"kind"`
	Items  []Item       `json:"items,omitempty"`
	Legacy *LegacyField `json:"legacy,omitempty"`
}

// LegacyField describes the scalar answer of a legacy section.
type LegacyField struct {
	Type    ItemType       `json:"type"`
	Options []LegacyOption `json:"options,omitempty"`
}

// LegacyOption is a legacy option label with its alert flag.
type LegacyOption struct {
	Label         string `json:"label"`
	TriggersAlert bool   `json:"triggersAlert,omitempty"`
}

// Labels returns the option labels in declaration order.
func (l *LegacyField) Labels() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.Options))
	for _, opt := range l.Options {
		out = append(out, opt.Label)
	}
	return out
}

// Item is a single question within a section.
type Item struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Type      ItemType      `json:"type"`
	Variant   ChoiceVariant `json:"variant,omitempty"`
	Options   []string      `json:"options,omitempty"`
	Mandatory bool          `json:"mandatory"`
	Order     int           `json:"order"`
	Alert     *AlertRule    `json:"alertRule,omitempty"`
	Config    ItemConfig    `json:"config,omitempty"`
}

// EffectiveOptions returns Options, or the variant's builtin labels for
// single_choice items declared without options.
func (i Item) EffectiveOptions() []string {
	if len(i.Options) > 0 {
		return i.Options
	}
	if i.Type == ItemTypeSingleChoice {
		return i.Variant.BuiltinOptions()
	}
	return nil
}

// AlertRule raises an alert when the answer is one of TriggeringValues.
type AlertRule struct {
	TriggeringValues []string `json:"triggeringValues"`
	Message          string   `json:"message"`
}

// Triggers reports whether value is a triggering value. An empty rule never
// triggers.
func (r *AlertRule) Triggers(value string) bool {
	if r == nil || value == "" {
		return false
	}
	return slices.Contains(r.TriggeringValues, value)
}

// ItemConfig carries type-dependent settings.
type ItemConfig struct {
	Min             *float64 `json:"min,omitempty"`
	Max             *float64 `json:"max,omitempty"`
	Step            *float64 `json:"step,omitempty"`
	Unit            string   `json:"unit,omitempty"`
	DurationMinutes *float64 `json:"durationMinutes,omitempty"`
	AlertThreshold  *float64 `json:"alertThreshold,omitempty"`
}

// Section looks up a section by id.
func (f Form) Section(id string) (Section, bool) {
	for _, section := range f.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}

// SectionIndex returns the position of the section in display order or -1.
func (f Form) SectionIndex(id string) int {
	for idx, section := range f.Sections {
		if section.ID == id {
			return idx
		}
	}
	return -1
}

// Item looks up an item inside a section.
func (s Section) Item(id string) (Item, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// ItemIndex returns the item position inside the section or -1.
func (s Section) ItemIndex(id string) int {
	for idx, item := range s.Items {
		if item.ID == id {
			return idx
		}
	}
	return -1
}

// ItemCount reports how many answerable entries the form holds. Legacy
// sections count as one.
func (f Form) ItemCount() int {
	total := 0
	for _, section := range f.Sections {
		if section.Kind == SectionScalar {
			total++
			continue
		}
		total += len(section.Items)
	}
	return total
}

// HasCategory reports whether the form is tagged with the category id.
func (f Form) HasCategory(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	return slices.Contains(f.CategoryIDs, id)
}

// Sorted returns a copy of the form with sections and items ordered by their
// Order value. Ties keep declaration order.
func (f Form) Sorted() Form {
	out := f
	out.Sections = make([]Section, len(f.Sections))
	copy(out.Sections, f.Sections)
	sort.SliceStable(out.Sections, func(i, j int) bool {
		return out.Sections[i].Order < out.Sections[j].Order
	})
	for idx := range out.Sections {
		items := make([]Item, len(out.Sections[idx].Items))
		copy(items, out.Sections[idx].Items)
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Order < items[j].Order
		})
		out.Sections[idx].Items = items
	}
	return out
}

// LegacyItem presents a scalar section as an item so type handlers and
// alert rules can treat both shapes alike. The item id is the section id.
func (s Section) LegacyItem() Item {
	item := Item{ID: s.ID, Name: s.Title}
	if s.Legacy == nil {
		return item
	}
	item.Type = s.Legacy.Type
	item.Options = s.Legacy.Labels()
	var flagged []string
	for _, opt := range s.Legacy.Options {
		if opt.TriggersAlert {
			flagged = append(flagged, opt.Label)
		}
	}
	if len(flagged) > 0 {
		item.Alert = &AlertRule{TriggeringValues: flagged}
	}
	return item
}
