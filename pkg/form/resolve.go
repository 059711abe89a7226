package form

// Filter selects candidate forms during fallback resolution.
type Filter func(Form) bool

// MatchCategory returns a Filter accepting forms tagged with categoryID.
func MatchCategory(categoryID string) Filter {
	return func(f Form) bool {
		return f.HasCategory(categoryID)
	}
}

// ResolveApplicableForm picks the form to use for a target asset. The form
// explicitly assigned to the asset wins whenever it is among the candidates;
// only then is the first active candidate accepted by filter used. A nil
// filter accepts every active form. It returns nil when nothing applies.
func ResolveApplicableForm(candidates []Form, assignedFormID string, filter Filter) *Form {
	if assignedFormID != "" {
		for idx := range candidates {
			if candidates[idx].ID == assignedFormID {
				match := candidates[idx]
				return &match
			}
		}
	}
	for idx := range candidates {
		candidate := candidates[idx]
		if !candidate.Active {
			continue
		}
		if filter != nil && !filter(candidate) {
			continue
		}
		return &candidate
	}
	return nil
}
