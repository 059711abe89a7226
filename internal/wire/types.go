package wire

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexString accepts identifiers encoded as JSON strings or numbers.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(raw))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

// flexBool accepts true/false, 0/1 and "true"/"oui" style strings.
type flexBool struct {
	set   bool
	value bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(strings.ToLower(strings.TrimSpace(string(data))), `"`)
	switch trimmed {
	case "", "null":
		return nil
	case "true", "1", "oui", "yes":
		b.set, b.value = true, true
	default:
		b.set, b.value = true, false
	}
	return nil
}

func firstBool(fallback bool, values ...flexBool) bool {
	for _, v := range values {
		if v.set {
			return v.value
		}
	}
	return fallback
}

func firstInt(values ...*int) (int, bool) {
	for _, v := range values {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}

func firstString(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func firstID(values ...flexString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

type wireForm struct {
	ID          flexString    `json:"id"`
	UUID        flexString    `json:"uuid"`
	Nom         string        `json:"nom"`
	Name        string        `json:"name"`
	Titre       string        `json:"titre"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CategorieID []flexString  `json:"categorie_ids"`
	CategoryIDs []flexString  `json:"category_ids"`
	Categories  []flexString  `json:"categoryIds"`
	EstActif    flexBool      `json:"est_actif"`
	Actif       flexBool      `json:"actif"`
	Active      flexBool      `json:"active"`
	Sections    []wireSection `json:"sections"`
}

type wireSection struct {
	ID        flexString   `json:"id"`
	Titre     string       `json:"titre"`
	Title     string       `json:"title"`
	Nom       string       `json:"nom"`
	Name      string       `json:"name"`
	Ordre     *int         `json:"ordre"`
	Order     *int         `json:"order"`
	Items     []wireItem   `json:"items"`
	Type      string       `json:"type"`
	FieldType string       `json:"fieldType"`
	TypeChamp string       `json:"type_champ"`
	Options   []wireOption `json:"options"`
}

type wireItem struct {
	ID          flexString     `json:"id"`
	Label       string         `json:"label"`
	Nom         string         `json:"nom"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Variant     string         `json:"variant"`
	SousType    string         `json:"sous_type"`
	Options     []wireOption   `json:"options"`
	Obligatoire flexBool       `json:"obligatoire"`
	Mandatory   flexBool       `json:"mandatory"`
	Required    flexBool       `json:"required"`
	Ordre       *int           `json:"ordre"`
	Order       *int           `json:"order"`
	Alerte      *wireAlert     `json:"alerte"`
	AlertRule   *wireAlert     `json:"alertRule"`
	AlertRule2  *wireAlert     `json:"alert_rule"`
	Config      map[string]any `json:"config"`
}

type wireAlert struct {
	Valeurs              []string `json:"valeurs_declenchantes"`
	TriggeringValues     []string `json:"triggeringValues"`
	TriggeringValuesWire []string `json:"triggering_values"`
	Message              string   `json:"message"`
}

func (a *wireAlert) values() []string {
	if a == nil {
		return nil
	}
	for _, list := range [][]string{a.TriggeringValues, a.TriggeringValuesWire, a.Valeurs} {
		if len(list) > 0 {
			return list
		}
	}
	return nil
}

// wireOption accepts either a bare label or an object carrying an alert flag.
type wireOption struct {
	Label         string
	TriggersAlert bool
}

func (o *wireOption) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var label flexString
		if err := json.Unmarshal(trimmed, &label); err != nil {
			return err
		}
		o.Label = string(label)
		return nil
	}
	var raw struct {
		Label           string   `json:"label"`
		Nom             string   `json:"nom"`
		Valeur          string   `json:"valeur"`
		Value           string   `json:"value"`
		DeclencheAlerte flexBool `json:"declencheAlerte"`
		TriggersAlert   flexBool `json:"triggersAlert"`
		Alerte          flexBool `json:"alerte"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	o.Label = firstString(raw.Label, raw.Nom, raw.Valeur, raw.Value)
	o.TriggersAlert = firstBool(false, raw.TriggersAlert, raw.DeclencheAlerte, raw.Alerte)
	return nil
}

func configFloat(config map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		raw, ok := config[key]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return &f
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func configString(config map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := config[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
