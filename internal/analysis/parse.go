package analysis

import (
	"encoding/json"
	"strings"

	"github.com/vbonduro/foodscan/internal/domain"
)

// pythonBooleans rewrites the capitalised booleans some models emit. The
// replacement is textual and applies inside strings too.
var pythonBooleans = strings.NewReplacer("True", "true", "False", "false")

// ParseResponse extracts the JSON object from free-form model output.
//
// The object is taken as the span from the first '{' to the last '}'. Prose
// that carries braces of its own widens that span, and the parse then fails
// as malformed rather than guessing at a narrower object.
func ParseResponse(text string) (*Result, error) {
	span, ok := extractObject(text)
	if !ok {
		return nil, &Error{Kind: KindNoJSONFound}
	}
	span = pythonBooleans.Replace(span)

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &top); err != nil {
		return nil, &Error{Kind: KindMalformedJSON, Detail: err.Error(), Err: err}
	}

	r := &Result{Type: domain.FoodTypeRaw, Document: json.RawMessage(span)}
	if _, ok := top["product_info"]; ok {
		r.Type = domain.FoodTypePackaged
	}
	r.decodeView()
	return r, nil
}

func extractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}
