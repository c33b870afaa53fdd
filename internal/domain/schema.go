package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// FieldKind is the storage type of a category-specific field.
type FieldKind int

// Field kinds.
const (
	KindText FieldKind = iota
	KindInt
	KindFloat
	KindBool
	KindTime // stored as epoch milliseconds
	KindList // stored as a JSON array of strings
	KindEnum // stored as the member name
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindList:
		return "list"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in API schemas.
func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Field describes one category-specific attribute.
type Field struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required,omitempty"`
	Enum     *EnumSet  `json:"enum,omitempty"`
	Default  any       `json:"default,omitempty"`
}

// Column returns the SQL column name: the field name in snake case.
func (f Field) Column() string {
	return snakeCase(f.Name)
}

// Schema describes a category: where it is stored, which fields it has and
// which of them a substring search looks at.
type Schema struct {
	Category     Category `json:"category"`
	Table        string   `json:"table"`
	IDPrefix     string   `json:"idPrefix"`
	Subcategory  *EnumSet `json:"subcategory,omitempty"` // nil means free text
	Fields       []Field  `json:"fields"`
	SearchFields []string `json:"searchFields"`
	TitleField   string   `json:"titleField"`
}

// Errors returned by Normalize.
var (
	ErrCategoryMismatch = errors.New("item category does not match schema")
	ErrUnknownField     = errors.New("unknown field")
	ErrFieldType        = errors.New("field has wrong type")
)

// Field looks a field up by name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Title returns the item's display name.
func (s *Schema) Title(item Item) string {
	return item.Attributes.String(s.TitleField)
}

// Missing lists the required fields that are absent or blank.
func (s *Schema) Missing(item Item) []string {
	var missing []string
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		v, ok := item.Attributes[f.Name]
		if !ok || v == nil {
			missing = append(missing, f.Name)
			continue
		}
		if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// Normalize returns a copy of item with every value coerced to its field's
// canonical Go type. Lists are never absent, enum values outside their set
// become absent, times are truncated to milliseconds in UTC, and defaults
// fill absent fields that have one. Unknown attribute names and values
// that cannot be coerced are errors.
func (s *Schema) Normalize(item Item) (Item, error) {
	out := item.Clone()

	switch out.Category {
	case CategoryUnknown:
		out.Category = s.Category
	case s.Category:
	default:
		return Item{}, fmt.Errorf("%w: got %s, want %s", ErrCategoryMismatch, out.Category, s.Category)
	}

	if s.Subcategory != nil {
		out.Subcategory = s.Subcategory.Parse(out.Subcategory)
	}
	if out.AdditionalImages == nil {
		out.AdditionalImages = []string{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.CustomFields.Fields == nil {
		out.CustomFields.Fields = []CustomField{}
	}
	for i := range out.CustomFields.Fields {
		out.CustomFields.Fields[i].Type = ParseCustomFieldType(string(out.CustomFields.Fields[i].Type))
	}
	out.DateAdded = truncateTime(out.DateAdded)
	out.LastModified = truncateTime(out.LastModified)

	attrs := make(Attributes, len(s.Fields))
	for name, raw := range out.Attributes {
		f, ok := s.Field(name)
		if !ok {
			return Item{}, fmt.Errorf("%w %q for %s", ErrUnknownField, name, s.Category)
		}
		v, present, err := coerce(f, raw)
		if err != nil {
			return Item{}, err
		}
		if present {
			attrs[name] = v
		}
	}
	for _, f := range s.Fields {
		if _, ok := attrs[f.Name]; ok {
			continue
		}
		switch {
		case f.Kind == KindList:
			attrs[f.Name] = []string{}
		case f.Default != nil:
			attrs[f.Name] = f.Default
		}
	}
	out.Attributes = attrs
	return out, nil
}

func coerce(f Field, raw any) (any, bool, error) {
	if raw == nil {
		return nil, false, nil
	}
	mismatch := func() error {
		return fmt.Errorf("%w: %s expects %s, got %T", ErrFieldType, f.Name, f.Kind, raw)
	}

	switch f.Kind {
	case KindText:
		s, ok := raw.(string)
		if !ok {
			return nil, false, mismatch()
		}
		return s, true, nil

	case KindEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, false, mismatch()
		}
		if f.Enum == nil {
			return s, s != "", nil
		}
		v := f.Enum.Parse(s)
		return v, v != "", nil

	case KindInt:
		switch v := raw.(type) {
		case int:
			return int64(v), true, nil
		case int32:
			return int64(v), true, nil
		case int64:
			return v, true, nil
		case float64:
			n, ok := floatToInt64(v)
			if !ok {
				return nil, false, nil
			}
			if v != math.Trunc(v) {
				return nil, false, mismatch()
			}
			return n, true, nil
		case string:
			if strings.TrimSpace(v) == "" {
				return nil, false, nil
			}
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, false, mismatch()
			}
			return n, true, nil
		}
		return nil, false, mismatch()

	case KindFloat:
		switch v := raw.(type) {
		case float64:
			return v, true, nil
		case float32:
			return float64(v), true, nil
		case int:
			return float64(v), true, nil
		case int64:
			return float64(v), true, nil
		case string:
			if strings.TrimSpace(v) == "" {
				return nil, false, nil
			}
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, false, mismatch()
			}
			return n, true, nil
		}
		return nil, false, mismatch()

	case KindBool:
		switch v := raw.(type) {
		case bool:
			return v, true, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, false, mismatch()
			}
			return b, true, nil
		}
		return nil, false, mismatch()

	case KindTime:
		switch v := raw.(type) {
		case time.Time:
			if v.IsZero() {
				return nil, false, nil
			}
			return truncateTime(v), true, nil
		case int64:
			return time.UnixMilli(v).UTC(), true, nil
		case float64:
			ms, ok := floatToInt64(v)
			if !ok {
				return nil, false, nil
			}
			return time.UnixMilli(ms).UTC(), true, nil
		case string:
			if strings.TrimSpace(v) == "" {
				return nil, false, nil
			}
			t, err := ParseDate(v)
			if err != nil {
				return nil, false, mismatch()
			}
			return t, true, nil
		}
		return nil, false, mismatch()

	case KindList:
		switch v := raw.(type) {
		case []string:
			return slices.Clone(v), true, nil
		case []any:
			list := make([]string, 0, len(v))
			for _, e := range v {
				s, ok := e.(string)
				if !ok {
					return nil, false, mismatch()
				}
				list = append(list, s)
			}
			return list, true, nil
		}
		return nil, false, mismatch()
	}
	return nil, false, mismatch()
}

// floatToInt64 truncates f, reporting false for NaN, infinities and values
// outside the int64 range.
func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || f >= 0x1p63 || f < -0x1p63 {
		return 0, false
	}
	return int64(f), true
}

//nolint:gochecknoglobals // Accepted date layouts, most specific first
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseDate accepts RFC 3339 timestamps and the partial dates remote
// sources return ("2006-01-02", "2006-01", "2006").
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateTime(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func truncateTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Millisecond)
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
