package render

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bmapp/pkg/utils"
)

// PreviewFields is how many fields per section a preview shows unmasked.
const PreviewFields = 2

var ErrInvalidFormData = errors.New("form data is not a section list or object")

type Field struct {
	Key       string `json:"key"`
	Value     any    `json:"value"`
	FieldType string `json:"fieldType,omitempty"`
}

type Section struct {
	Key  string  `json:"key"`
	Data []Field `json:"data"`
}

// DecodeFormData accepts the app's section list, a flat object (rendered as a
// single "Details" section in key order), or either of those wrapped in a JSON
// string or base64.
func DecodeFormData(raw []byte) ([]Section, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrInvalidFormData
	}

	switch raw[0] {
	case '[':
		var sections []Section
		if err := json.Unmarshal(raw, &sections); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormData, err)
		}
		return sections, nil
	case '{':
		fields, err := orderedFields(raw)
		if err != nil {
			return nil, err
		}
		return []Section{{Key: "Details", Data: fields}}, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormData, err)
		}
		if inner := []byte(strings.TrimSpace(s)); len(inner) > 0 && (inner[0] == '[' || inner[0] == '{') {
			return DecodeFormData(inner)
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormData, err)
		}
		return DecodeFormData(decoded)
	}
	return nil, ErrInvalidFormData
}

// orderedFields walks a flat object keeping the submitted key order.
func orderedFields(raw []byte) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormData, err)
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormData, err)
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormData, err)
		}
		fields = append(fields, Field{Key: key, Value: v})
	}
	return fields, nil
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02", "02/01/2006"}
var clockLayouts = []string{time.RFC3339Nano, time.RFC3339, "15:04", "15:04:05", "03:04 PM"}

// FormatValue renders a field for display: dates as DD/MM/YYYY, times as
// hh:mm AM/PM, everything else trimmed. Unparseable values pass through.
func FormatValue(f Field) string {
	s := stringify(f.Value)
	switch f.FieldType {
	case "date":
		if t, ok := parseAny(s, dateLayouts); ok {
			return utils.FormatDateIST(t)
		}
	case "time":
		if t, ok := parseAny(s, clockLayouts); ok {
			return utils.FormatClockIST(t)
		}
	}
	return strings.TrimSpace(s)
}

func parseAny(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, s, utils.IST()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			if p := strings.TrimSpace(stringify(e)); p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, ", ")
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// MaskVowels hides the content of preview-only fields.
func MaskVowels(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			return '*'
		}
		return r
	}, s)
}

// FindField returns the first non-empty value for key across sections, case-insensitively.
func FindField(sections []Section, key string) string {
	for _, s := range sections {
		for _, f := range s.Data {
			if strings.EqualFold(strings.TrimSpace(f.Key), key) {
				if v := FormatValue(f); v != "" {
					return v
				}
			}
		}
	}
	return ""
}
