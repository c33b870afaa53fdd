package domain

import (
	"encoding/json/v2"
	"strings"
)

// CustomFieldType is the declared type of a custom field. Values are always
// stored as strings; the type only drives how a client edits them.
type CustomFieldType string

// Custom field types.
const (
	FieldTypeUnknown      CustomFieldType = ""
	FieldTypeTextSingle   CustomFieldType = "TEXT_SINGLE"
	FieldTypeTextMulti    CustomFieldType = "TEXT_MULTI"
	FieldTypeNumber       CustomFieldType = "NUMBER"
	FieldTypeDecimal      CustomFieldType = "DECIMAL"
	FieldTypeDate         CustomFieldType = "DATE"
	FieldTypeBoolean      CustomFieldType = "BOOLEAN"
	FieldTypeRating       CustomFieldType = "RATING"
	FieldTypeSingleSelect CustomFieldType = "SINGLE_SELECT"
	FieldTypeMultiSelect  CustomFieldType = "MULTI_SELECT"
	FieldTypeURL          CustomFieldType = "URL"
	FieldTypeImage        CustomFieldType = "IMAGE"
)

//nolint:gochecknoglobals // Static enum table
var customFieldTypes = []CustomFieldType{
	FieldTypeTextSingle, FieldTypeTextMulti, FieldTypeNumber, FieldTypeDecimal,
	FieldTypeDate, FieldTypeBoolean, FieldTypeRating, FieldTypeSingleSelect,
	FieldTypeMultiSelect, FieldTypeURL, FieldTypeImage,
}

// ParseCustomFieldType never fails; unknown names yield FieldTypeUnknown.
func ParseCustomFieldType(s string) CustomFieldType {
	return parseEnum(s, customFieldTypes)
}

// CustomField is one user-defined attribute on an item.
type CustomField struct {
	ID      string          `json:"id"`
	Name    string          `json:"name" validate:"notblank"`
	Type    CustomFieldType `json:"type"`
	Value   string          `json:"value"`
	Options []string        `json:"options,omitempty"`
}

// CustomFields is the ordered custom-field collection of an item.
type CustomFields struct {
	Fields []CustomField `json:"fields"`
}

// Get returns the first field with the given name (case-insensitive).
func (c CustomFields) Get(name string) (CustomField, bool) {
	for _, f := range c.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return CustomField{}, false
}

// Len returns the number of fields.
func (c CustomFields) Len() int {
	return len(c.Fields)
}

// Encode serialises the collection for storage.
func (c CustomFields) Encode() string {
	if c.Fields == nil {
		c.Fields = []CustomField{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return `{"fields":[]}`
	}
	return string(data)
}

// DecodeCustomFields parses a stored custom-field payload. Empty or
// malformed input yields an empty collection instead of an error, and
// unrecognised field types are reset to FieldTypeUnknown.
func DecodeCustomFields(raw string) CustomFields {
	out := CustomFields{Fields: []CustomField{}}
	if strings.TrimSpace(raw) == "" {
		return out
	}

	var decoded CustomFields
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return out
	}

	for _, f := range decoded.Fields {
		f.Type = ParseCustomFieldType(string(f.Type))
		out.Fields = append(out.Fields, f)
	}
	return out
}
