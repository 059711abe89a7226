package fields

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case *Geolocation:
		return v == nil
	case *Weather:
		return v == nil
	}
	return false
}

func asString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), true
	case *string:
		if v == nil {
			return "", true
		}
		return strings.TrimSpace(*v), true
	case json.Number:
		return v.String(), true
	}
	return "", false
}

func asFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, checkFinite(v)
	case float32:
		return float64(v), checkFinite(float64(v))
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return f, checkFinite(f)
	case string:
		trimmed := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		return f, checkFinite(f)
	}
	return 0, fmt.Errorf("unsupported numeric value %T", raw)
}

func checkFinite(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("value must be finite")
	}
	return nil
}

func asStrings(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}, nil
		}
		return []string{strings.TrimSpace(v)}, nil
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			out = append(out, strings.TrimSpace(s))
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			s, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("entry %v is not a string", entry)
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported list value %T", raw)
}

// decodeInto converts loosely typed input (typically map[string]any from a
// JSON decode) into dst.
func decodeInto(raw any, dst any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func stringScalars(value any) []string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	}
	return nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
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

func enumOf(options []string) []any {
	out := make([]any, len(options))
	for i, opt := range options {
		out[i] = opt
	}
	return out
}
