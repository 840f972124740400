package importer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// decodeJSON reads an array of movie objects. Elements that are not objects
// become empty records so the importer rejects them row by row.
func decodeJSON(text string) ([]Record, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elems); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	out := make([]Record, 0, len(elems))
	for _, elem := range elems {
		var r Record
		dec := json.NewDecoder(bytes.NewReader(elem))
		dec.UseNumber()
		var row map[string]any
		if err := dec.Decode(&row); err != nil {
			out = append(out, r)
			continue
		}
		for key, raw := range row {
			set, ok := setters[key]
			if !ok || raw == nil {
				continue
			}
			v, err := scalarString(raw)
			if err != nil {
				continue
			}
			set(&r, v)
		}
		out = append(out, r)
	}
	return out, nil
}

// scalarString renders a JSON scalar as text. Nested values are rejected.
func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case json.Number:
		return t.String(), nil
	case map[string]any, []any:
		return "", fmt.Errorf("unsupported value %T", v)
	default:
		return cast.ToStringE(t)
	}
}
