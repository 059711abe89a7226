package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-inspectform/pkg/form"
)

var errEmptyPayload = errors.New("wire: payload is empty")

// Decode converts a single form payload into a form.Form. Sections and items
// are sorted by their explicit order. A form without sections yields a
// *form.SchemaError.
func Decode(raw []byte) (form.Form, error) {
	data, err := toJSON(raw)
	if err != nil {
		return form.Form{}, err
	}

	envelope, err := unwrapEnvelope(data, "formulaire", "form", "data")
	if err != nil {
		return form.Form{}, err
	}

	var wf wireForm
	if err := json.Unmarshal(envelope, &wf); err != nil {
		return form.Form{}, fmt.Errorf("wire: decode form: %w", err)
	}
	return convertForm(wf)
}

// DecodeList converts a list payload (bare array or wrapped under
// "formulaires", "forms" or "data") into forms. Each entry is converted with
// the same rules as Decode.
func DecodeList(raw []byte) ([]form.Form, error) {
	data, err := toJSON(raw)
	if err != nil {
		return nil, err
	}

	list, err := unwrapEnvelope(data, "formulaires", "forms", "data")
	if err != nil {
		return nil, err
	}

	var wforms []wireForm
	if err := json.Unmarshal(list, &wforms); err != nil {
		return nil, fmt.Errorf("wire: decode form list: %w", err)
	}

	out := make([]form.Form, 0, len(wforms))
	for _, wf := range wforms {
		converted, err := convertForm(wf)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// toJSON normalises YAML input into JSON so a single set of wire structs
// handles both encodings.
func toJSON(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errEmptyPayload
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed, nil
	}

	var doc any
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("wire: decode yaml: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("wire: yaml to json: %w", err)
	}
	return data, nil
}

// unwrapEnvelope returns the value under the first matching key when the
// payload is an object that does not itself look like the target.
func unwrapEnvelope(data []byte, keys ...string) ([]byte, error) {
	if len(data) == 0 || data[0] != '{' {
		return data, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("wire: decode envelope: %w", err)
	}
	if _, ok := envelope["sections"]; ok {
		return data, nil
	}
	for _, key := range keys {
		if inner, ok := envelope[key]; ok && len(bytes.TrimSpace(inner)) > 0 {
			return unwrapEnvelope(bytes.TrimSpace(inner), keys...)
		}
	}
	return data, nil
}

func convertForm(wf wireForm) (form.Form, error) {
	out := form.Form{
		ID:          firstID(wf.ID, wf.UUID),
		Name:        firstString(wf.Nom, wf.Name, wf.Titre, wf.Title),
		Description: strings.TrimSpace(wf.Description),
		Active:      firstBool(true, wf.EstActif, wf.Actif, wf.Active),
	}
	for _, list := range [][]flexString{wf.CategorieID, wf.CategoryIDs, wf.Categories} {
		for _, id := range list {
			if id != "" {
				out.CategoryIDs = append(out.CategoryIDs, string(id))
			}
		}
	}

	for idx, ws := range wf.Sections {
		section, err := convertSection(ws, idx)
		if err != nil {
			return form.Form{}, fmt.Errorf("wire: form %q: %w", out.ID, err)
		}
		out.Sections = append(out.Sections, section)
	}

	out = out.Sorted()
	if err := out.Validate(); err != nil {
		return form.Form{}, err
	}
	return out, nil
}

func convertSection(ws wireSection, position int) (form.Section, error) {
	section := form.Section{
		ID:    firstID(ws.ID),
		Title: firstString(ws.Titre, ws.Title, ws.Nom, ws.Name),
	}
	if section.ID == "" {
		section.ID = fmt.Sprintf("section-%d", position+1)
	}
	if order, ok := firstInt(ws.Ordre, ws.Order); ok {
		section.Order = order
	} else {
		section.Order = position
	}

	fieldType := firstString(ws.FieldType, ws.TypeChamp, ws.Type)
	if len(ws.Items) == 0 && fieldType != "" {
		alias, ok := lookupType(fieldType)
		if !ok {
			return form.Section{}, fmt.Errorf("section %q: unknown field type %q", section.ID, fieldType)
		}
		legacy := &form.LegacyField{Type: alias.itemType}
		for _, opt := range ws.Options {
			if opt.Label == "" {
				continue
			}
			legacy.Options = append(legacy.Options, form.LegacyOption{
				Label:         opt.Label,
				TriggersAlert: opt.TriggersAlert,
			})
		}
		section.Kind = form.SectionScalar
		section.Legacy = legacy
		return section, nil
	}

	section.Kind = form.SectionItems
	for idx, wi := range ws.Items {
		item, err := convertItem(wi, idx)
		if err != nil {
			return form.Section{}, fmt.Errorf("section %q: %w", section.ID, err)
		}
		section.Items = append(section.Items, item)
	}
	return section, nil
}

func convertItem(wi wireItem, position int) (form.Item, error) {
	item := form.Item{
		ID:        firstID(wi.ID),
		Name:      firstString(wi.Label, wi.Nom, wi.Name),
		Mandatory: firstBool(false, wi.Obligatoire, wi.Mandatory, wi.Required),
	}
	if item.ID == "" {
		item.ID = fmt.Sprintf("item-%d", position+1)
	}
	if order, ok := firstInt(wi.Ordre, wi.Order); ok {
		item.Order = order
	} else {
		item.Order = position
	}

	alias, ok := lookupType(wi.Type)
	if !ok {
		return form.Item{}, fmt.Errorf("item %q: unknown type %q", item.ID, wi.Type)
	}
	item.Type = alias.itemType
	item.Variant = alias.variant
	if explicit := lookupVariant(firstString(wi.Variant, wi.SousType)); explicit != form.ChoiceVariantNone {
		item.Variant = explicit
	}

	var flagged []string
	for _, opt := range wi.Options {
		if opt.Label == "" {
			continue
		}
		item.Options = append(item.Options, opt.Label)
		if opt.TriggersAlert {
			flagged = append(flagged, opt.Label)
		}
	}

	item.Alert = convertAlert(wi, flagged)
	item.Config = convertConfig(wi.Config)
	return item, nil
}

func convertAlert(wi wireItem, flagged []string) *form.AlertRule {
	var source *wireAlert
	for _, candidate := range []*wireAlert{wi.AlertRule, wi.AlertRule2, wi.Alerte} {
		if candidate != nil {
			source = candidate
			break
		}
	}

	values := source.values()
	if len(values) == 0 {
		values = flagged
	}
	if len(values) == 0 {
		return nil
	}

	rule := &form.AlertRule{TriggeringValues: dedupe(values)}
	if source != nil {
		rule.Message = strings.TrimSpace(source.Message)
	}
	return rule
}

func convertConfig(raw map[string]any) form.ItemConfig {
	if len(raw) == 0 {
		return form.ItemConfig{}
	}
	return form.ItemConfig{
		Min:             configFloat(raw, "min"),
		Max:             configFloat(raw, "max"),
		Step:            configFloat(raw, "step", "pas"),
		Unit:            configString(raw, "unit", "unite"),
		DurationMinutes: configFloat(raw, "durationMinutes", "duration_minutes", "duree"),
		AlertThreshold:  configFloat(raw, "alertThreshold", "alert_threshold", "seuil_alerte"),
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
