package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-inspectform/internal/wire"
	"github.com/goliatone/go-inspectform/pkg/fields"
	"github.com/goliatone/go-inspectform/pkg/form"
)

// HintKey is the key the navigation layer stores the bootstrap hint under.
const HintKey = "inspection_terrain_data"

// Target is the inspected asset named by a hint.
type Target struct {
	ID             string
	Type           string
	AssignedFormID string
	CategoryID     string
}

// Hint is the bootstrap input carried across a navigation boundary. It only
// seeds a session and is never written back.
type Hint struct {
	Schema      json.RawMessage
	Target      Target
	InspectorID string
	Date        time.Time
}

type wireHint struct {
	Schema      json.RawMessage `json:"schema"`
	Target      map[string]any  `json:"target"`
	InspectorID any             `json:"inspectorId"`
	Date        string          `json:"date"`
}

// DecodeHint parses a hint entry.
func DecodeHint(raw []byte) (Hint, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Hint{}, errors.New("session: hint is empty")
	}
	var wh wireHint
	if err := json.Unmarshal(raw, &wh); err != nil {
		return Hint{}, fmt.Errorf("session: decode hint: %w", err)
	}

	h := Hint{
		InspectorID: scalarString(wh.InspectorID),
		Target: Target{
			ID:             lookup(wh.Target, "id", "targetId"),
			Type:           lookup(wh.Target, "type", "targetType"),
			AssignedFormID: lookup(wh.Target, "formId", "formulaire_id", "formulaireId"),
			CategoryID:     lookup(wh.Target, "categoryId", "categorie_id"),
		},
	}
	if trimmed := bytes.TrimSpace(wh.Schema); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		h.Schema = wh.Schema
	}
	if wh.Date != "" {
		date, err := parseHintDate(wh.Date)
		if err != nil {
			return Hint{}, fmt.Errorf("session: hint date: %w", err)
		}
		h.Date = date
	}
	return h, nil
}

// Form decodes the schema embedded in the hint.
func (h Hint) Form() (form.Form, error) {
	if len(h.Schema) == 0 {
		return form.Form{}, &form.SchemaError{FormID: h.Target.AssignedFormID, Reason: form.ErrNoApplicableForm}
	}
	return wire.Decode(h.Schema)
}

// OpenFromHint opens a session seeded by a hint. Values already set in cfg
// win over the hint.
func OpenFromHint(ctx context.Context, raw []byte, cfg Config, opts ...Option) (*Session, error) {
	h, err := DecodeHint(raw)
	if err != nil {
		return nil, err
	}
	if cfg.Form == nil && len(h.Schema) > 0 {
		f, err := h.Form()
		if err != nil {
			return nil, err
		}
		cfg.Form = &f
	}
	if cfg.TargetID == "" {
		cfg.TargetID = h.Target.ID
	}
	if cfg.TargetType == "" {
		cfg.TargetType = h.Target.Type
	}
	if cfg.AssignedFormID == "" {
		cfg.AssignedFormID = h.Target.AssignedFormID
	}
	if cfg.CategoryID == "" {
		cfg.CategoryID = h.Target.CategoryID
	}
	if cfg.Today.IsZero() {
		cfg.Today = h.Date
	}
	if h.InspectorID != "" {
		metadata := make(map[string]any, len(cfg.Metadata)+1)
		metadata["inspectorId"] = h.InspectorID
		maps.Copy(metadata, cfg.Metadata)
		cfg.Metadata = metadata
	}
	return Open(ctx, cfg, opts...)
}

func parseHintDate(raw string) (time.Time, error) {
	if t, err := time.Parse(fields.DateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func lookup(values map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := values[key]; ok {
			if s := scalarString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}
