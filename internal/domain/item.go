package domain

import (
	"slices"
	"time"
)

// Item is one persisted record of a collection category. The shared base
// fields are typed; the category-specific fields live in Attributes and are
// described by the category's Schema.
type Item struct {
	ID               string       `json:"id"`
	Category         Category     `json:"category"`
	Subcategory      string       `json:"subcategory,omitempty"`
	PrimaryImage     string       `json:"primaryImage,omitempty"`
	AdditionalImages []string     `json:"additionalImages"`
	DateAdded        time.Time    `json:"dateAdded"`
	LastModified     time.Time    `json:"lastModified"`
	Tags             []string     `json:"tags"`
	Barcode          string       `json:"barcode,omitempty"`
	CustomFields     CustomFields `json:"customFields"`
	Attributes       Attributes   `json:"attributes"`
}

// NewItem returns an empty item of the given category with its collections
// initialised.
func NewItem(category Category) Item {
	return Item{
		Category:         category,
		AdditionalImages: []string{},
		Tags:             []string{},
		CustomFields:     CustomFields{Fields: []CustomField{}},
		Attributes:       Attributes{},
	}
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	out := i
	out.AdditionalImages = slices.Clone(i.AdditionalImages)
	out.Tags = slices.Clone(i.Tags)
	out.CustomFields.Fields = slices.Clone(i.CustomFields.Fields)
	out.Attributes = make(Attributes, len(i.Attributes))
	for k, v := range i.Attributes {
		if list, ok := v.([]string); ok {
			v = slices.Clone(list)
		}
		out.Attributes[k] = v
	}
	return out
}

// Attributes holds the category-specific values of an item, keyed by field
// name. A missing key means the value is absent. After normalisation the
// value types are string, int64, float64, bool, time.Time and []string.
type Attributes map[string]any

// Has reports whether name carries a value.
func (a Attributes) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns a text or enum value, or "".
func (a Attributes) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Strings returns a list value, or nil.
func (a Attributes) Strings(name string) []string {
	list, _ := a[name].([]string)
	return list
}

// Int returns an integer value.
func (a Attributes) Int(name string) (int64, bool) {
	n, ok := a[name].(int64)
	return n, ok
}

// Float returns a decimal value.
func (a Attributes) Float(name string) (float64, bool) {
	f, ok := a[name].(float64)
	return f, ok
}

// Bool returns a boolean value.
func (a Attributes) Bool(name string) (bool, bool) {
	b, ok := a[name].(bool)
	return b, ok
}

// Time returns a date value.
func (a Attributes) Time(name string) (time.Time, bool) {
	t, ok := a[name].(time.Time)
	return t, ok
}

// SetText stores s unless it is empty.
func (a Attributes) SetText(name, s string) {
	if s != "" {
		a[name] = s
	}
}

// SetInt stores n.
func (a Attributes) SetInt(name string, n int64) {
	a[name] = n
}

// SetPositiveInt stores n when it is greater than zero. Remote sources use
// zero for "unknown" page counts, runtimes and years.
func (a Attributes) SetPositiveInt(name string, n int64) {
	if n > 0 {
		a[name] = n
	}
}

// SetFloat stores f.
func (a Attributes) SetFloat(name string, f float64) {
	a[name] = f
}

// SetBool stores b.
func (a Attributes) SetBool(name string, b bool) {
	a[name] = b
}

// SetTime stores t unless it is zero.
func (a Attributes) SetTime(name string, t time.Time) {
	if !t.IsZero() {
		a[name] = t.UTC().Truncate(time.Millisecond)
	}
}

// SetList stores a copy of list; nil becomes an empty list.
func (a Attributes) SetList(name string, list []string) {
	if list == nil {
		list = []string{}
	}
	a[name] = slices.Clone(list)
}
