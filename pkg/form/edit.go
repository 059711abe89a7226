package form

import (
	"errors"
	"fmt"
	"strings"
)

var errIndexOutOfRange = errors.New("form: index out of range")

// MoveSection returns a copy of the form with the section at from moved to
// position to. Orders are renumbered densely from zero.
func MoveSection(f Form, from, to int) (Form, error) {
	if from < 0 || from >= len(f.Sections) || to < 0 || to >= len(f.Sections) {
		return f, fmt.Errorf("%w: move section %d -> %d", errIndexOutOfRange, from, to)
	}
	out := f
	out.Sections = move(f.Sections, from, to)
	for idx := range out.Sections {
		out.Sections[idx].Order = idx
	}
	return out, nil
}

// MoveItem returns a copy of the form with one item re-positioned inside
// its section.
func MoveItem(f Form, sectionID string, from, to int) (Form, error) {
	idx := f.SectionIndex(sectionID)
	if idx < 0 {
		return f, fmt.Errorf("form: section %q not found", sectionID)
	}
	items := f.Sections[idx].Items
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return f, fmt.Errorf("%w: move item %d -> %d in %q", errIndexOutOfRange, from, to, sectionID)
	}
	out := f
	out.Sections = append([]Section(nil), f.Sections...)
	moved := move(items, from, to)
	for pos := range moved {
		moved[pos].Order = pos
	}
	out.Sections[idx].Items = moved
	return out, nil
}

// RenameSection changes a section's display title. The id is unchanged.
func RenameSection(f Form, sectionID, title string) (Form, error) {
	idx := f.SectionIndex(sectionID)
	if idx < 0 {
		return f, fmt.Errorf("form: section %q not found", sectionID)
	}
	out := f
	out.Sections = append([]Section(nil), f.Sections...)
	out.Sections[idx].Title = strings.TrimSpace(title)
	return out, nil
}

// RenameItem changes an item's display label. Answers stay keyed by id.
func RenameItem(f Form, sectionID, itemID, name string) (Form, error) {
	idx := f.SectionIndex(sectionID)
	if idx < 0 {
		return f, fmt.Errorf("form: section %q not found", sectionID)
	}
	pos := f.Sections[idx].ItemIndex(itemID)
	if pos < 0 {
		return f, fmt.Errorf("form: item %q not found in %q", itemID, sectionID)
	}
	out := f
	out.Sections = append([]Section(nil), f.Sections...)
	items := append([]Item(nil), f.Sections[idx].Items...)
	items[pos].Name = strings.TrimSpace(name)
	out.Sections[idx].Items = items
	return out, nil
}

func move[T any](src []T, from, to int) []T {
	out := make([]T, 0, len(src))
	out = append(out, src[:from]...)
	out = append(out, src[from+1:]...)
	picked := src[from]
	out = append(out[:to], append([]T{picked}, out[to:]...)...)
	return out
}
