package instrument

import (
	"encoding/json"
	"strings"
)

// Masked replaces the value of every masked key.
const Masked = "***"

// MaskKeys lower-cases and de-duplicates field names into a lookup set.
func MaskKeys(fields []string) map[string]struct{} {
	keys := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(strings.ToLower(field))
		if field != "" {
			keys[field] = struct{}{}
		}
	}
	return keys
}

// MaskData walks decoded JSON (maps and slices) and replaces values whose key
// is in keys.
func MaskData(v any, keys map[string]struct{}) any {
	switch val := v.(type) {
	case map[string]any:
		masked := make(map[string]any, len(val))
		for k, v2 := range val {
			if _, found := keys[strings.ToLower(k)]; found {
				masked[k] = Masked
			} else {
				masked[k] = MaskData(v2, keys)
			}
		}
		return masked
	case map[string]string:
		masked := make(map[string]any, len(val))
		for k, v2 := range val {
			masked[k] = v2
		}
		return MaskData(masked, keys)
	case []any:
		res := make([]any, len(val))
		for i, v2 := range val {
			res[i] = MaskData(v2, keys)
		}
		return res
	default:
		return v
	}
}

// MaskJSON masks a JSON object or array payload. ok is false when payload is
// not JSON.
func MaskJSON(payload []byte, keys map[string]struct{}) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	out, err := json.Marshal(MaskData(body, keys))
	if err != nil {
		return "", false
	}
	return string(out), true
}
