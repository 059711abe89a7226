package form

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSections is the reason carried by SchemaError for empty forms.
	ErrNoSections = errors.New("form has no sections")
	// ErrNoApplicableForm is the reason carried by SchemaError when no form
	// applies to the inspected asset.
	ErrNoApplicableForm = errors.New("no applicable form for target")
)

// SchemaError reports a form that cannot start a session. It is fatal to the
// session and must be surfaced before any answer state is built.
type SchemaError struct {
	FormID string
	Reason error
}

func (e *SchemaError) Error() string {
	if e.FormID == "" {
		return fmt.Sprintf("form: schema error: %v", e.Reason)
	}
	return fmt.Sprintf("form: schema error in %q: %v", e.FormID, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return e.Reason
}

// Validate checks the structural invariants a session relies on.
func (f Form) Validate() error {
	if len(f.Sections) == 0 {
		return &SchemaError{FormID: f.ID, Reason: ErrNoSections}
	}
	seen := make(map[string]struct{}, len(f.Sections))
	for _, section := range f.Sections {
		if section.ID == "" {
			return &SchemaError{FormID: f.ID, Reason: errors.New("section id is required")}
		}
		if _, dup := seen[section.ID]; dup {
			return &SchemaError{FormID: f.ID, Reason: fmt.Errorf("duplicate section id %q", section.ID)}
		}
		seen[section.ID] = struct{}{}

		switch section.Kind {
		case SectionScalar:
			if section.Legacy == nil {
				return &SchemaError{FormID: f.ID, Reason: fmt.Errorf("legacy section %q has no field", section.ID)}
			}
			if !section.Legacy.Type.Valid() {
				return &SchemaError{FormID: f.ID, Reason: fmt.Errorf("legacy section %q: unknown type %q", section.ID, section.Legacy.Type)}
			}
		default:
			items := make(map[string]struct{}, len(section.Items))
			for _, item := range section.Items {
				if item.ID == "" {
					return &SchemaError{FormID: f.ID, Reason: fmt.Errorf("section %q: item id is required", section.ID)}
				}
				if _, dup := items[item.ID]; dup {
					return &SchemaError{FormID: f.ID, Reason: fmt.Errorf("section %q: duplicate item id %q", section.ID, item.ID)}
				}
				items[item.ID] = struct{}{}
				if !item.Type.Valid() {
					return &SchemaError{FormID: f.ID, Reason: fmt.Errorf("item %q: unknown type %q", item.ID, item.Type)}
				}
			}
		}
	}
	return nil
}
