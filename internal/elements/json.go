package elements

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON decodes an OMM JSON document into a record. CelesTrak serves
// GP data as an array of objects; the first object is used.
func DecodeJSON(text string) (OMMRecord, error) {
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return nil, invalid(KindInvalidOMM, "no JSON object found")
	}

	dec := json.NewDecoder(strings.NewReader(text[start:]))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, invalid(KindInvalidOMM, fmt.Sprintf("malformed JSON: %v", err))
	}

	if arr, ok := doc.([]any); ok {
		if len(arr) == 0 {
			return nil, invalid(KindInvalidOMM, "JSON array holds no element sets")
		}
		doc = arr[0]
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, invalid(KindInvalidOMM, "OMM JSON must be an object")
	}

	rec := make(OMMRecord, len(obj))
	for k, v := range obj {
		rec[k] = jsonValue(v)
	}
	return rec, nil
}

func jsonValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case string:
		return String(t)
	default:
		b, _ := json.Marshal(t)
		return String(string(b))
	}
}
