package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/pdf-extractor/internal/record"
)

// recordsSchema validates a structuring response after coercion: a JSON array
// of flat objects whose values are all strings. No other shape is accepted.
var recordsSchema = jsonschema.MustCompileString("records.json", `{
	"type": "array",
	"items": {
		"type": "object",
		"additionalProperties": {"type": "string"}
	}
}`)

// ParseRecords leniently decodes a structuring response into records.
// Models decorate JSON with code fences and prose, so the array is cut out
// of the surrounding text first; scalar values are coerced to strings. Any
// remaining shape violation is an error — the caller degrades to an empty
// record list, it never fails the overall extraction.
func ParseRecords(raw string) ([]record.Record, error) {
	payload := extractArray(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("decode records array: %w", err)
	}

	coerced := make([]map[string]string, 0, len(items))
	for _, item := range items {
		m := make(map[string]string, len(item))
		for k, v := range item {
			if s := coerceString(v); s != "" {
				m[k] = s
			}
		}
		coerced = append(coerced, m)
	}

	// re-validate the coerced shape so downstream code can trust it
	doc, _ := json.Marshal(coerced)
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, err
	}
	if err := recordsSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("records schema: %w", err)
	}

	out := make([]record.Record, 0, len(coerced))
	for _, m := range coerced {
		rec := record.FromMap(m)
		if !rec.IsEmpty() {
			out = append(out, rec)
		}
	}
	return out, nil
}

// extractArray strips code fences and surrounding prose, returning the
// outermost [...] slice of the response, or "".
func extractArray(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		// nested objects/arrays flatten to their JSON form
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
