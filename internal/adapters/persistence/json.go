package persistence

import "encoding/json"

// marshalJSON renders v as a JSON text column, "" for nil maps/slices so
// empty values stay cheap to store and compare.
func marshalJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

// unmarshalStringMap parses a JSON text column into a string map, nil on
// empty or malformed input.
func unmarshalStringMap(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
