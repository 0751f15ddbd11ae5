package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// labelPolicy strips all markup from document titles.
var labelPolicy = bluemonday.StrictPolicy()

// decodeStringFields decodes raw as a JSON object and extracts the named
// fields as optional strings. Absent fields stay nil; unknown keys are
// ignored. Type errors are reported per field.
func decodeStringFields(raw []byte, fields ...string) (map[string]*string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		verr := NewValidationError()
		verr.Add(NonFieldErrors, msgNotObject)
		return nil, verr
	}

	verr := NewValidationError()
	out := make(map[string]*string, len(fields))
	for _, name := range fields {
		value, ok := obj[name]
		if !ok {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			verr.Add(name, msgNull)
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			verr.Add(name, msgNotString)
			continue
		}
		out[name] = &s
	}

	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// cleanLabel removes markup and surrounding whitespace from a document title
// while keeping literal characters such as '&' intact.
func cleanLabel(s string) string {
	return strings.TrimSpace(html.UnescapeString(labelPolicy.Sanitize(s)))
}

// trimmed returns a copy of s without surrounding whitespace. nil stays nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// checkText applies the required/blank/length rules to one field. When value
// is nil the field is required unless partial is set.
func checkText(verr *ValidationError, field string, value *string, partial bool, maxLen int) {
	if value == nil {
		if !partial {
			verr.Add(field, msgRequired)
		}
		return
	}
	if *value == "" {
		verr.Add(field, msgBlank)
		return
	}
	if maxLen > 0 && utf8.RuneCountInString(*value) > maxLen {
		verr.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", maxLen))
	}
}
