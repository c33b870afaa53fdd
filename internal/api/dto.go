package api

import (
	"maps"
	"time"

	"github.com/monomori/monomori-server/internal/domain"
	domainerrors "github.com/monomori/monomori-server/internal/errors"
)

// CustomFieldBody is a user-defined field as sent and returned by the API.
type CustomFieldBody struct {
	ID      string   `json:"id,omitempty" doc:"Field ID, assigned by the server when empty"`
	Name    string   `json:"name" minLength:"1" doc:"Field name"`
	Type    string   `json:"type,omitempty" doc:"Field type such as TEXT_SINGLE, NUMBER, DATE, BOOLEAN, SINGLE_SELECT or URL"`
	Value   string   `json:"value,omitempty" doc:"Value, always a string"`
	Options []string `json:"options,omitempty" doc:"Choices of a dropdown field"`
}

// ItemRequest is the body of create, replace and update requests. The
// category comes from the path; a body category must agree with it.
type ItemRequest struct {
	Category         string            `json:"category,omitempty" doc:"Must match the path category when given"`
	Subcategory      string            `json:"subcategory,omitempty" doc:"Subcategory name"`
	PrimaryImage     string            `json:"primaryImage,omitempty" doc:"Primary image URL"`
	AdditionalImages []string          `json:"additionalImages,omitempty" doc:"More image URLs"`
	Tags             []string          `json:"tags,omitempty" doc:"Free-form tags"`
	Barcode          string            `json:"barcode,omitempty" doc:"UPC, EAN or ISBN"`
	CustomFields     []CustomFieldBody `json:"customFields,omitempty" doc:"User-defined fields"`
	Attributes       map[string]any    `json:"attributes,omitempty" doc:"Category fields keyed by name; see GET /api/v1/categories"`
}

// ItemResponse is one catalogue item in API responses.
type ItemResponse struct {
	ID               string            `json:"id" doc:"Item ID"`
	Category         string            `json:"category" doc:"Category"`
	Subcategory      string            `json:"subcategory,omitempty" doc:"Subcategory"`
	PrimaryImage     string            `json:"primaryImage,omitempty" doc:"Primary image URL"`
	AdditionalImages []string          `json:"additionalImages" doc:"More image URLs"`
	Tags             []string          `json:"tags" doc:"Tags"`
	Barcode          string            `json:"barcode,omitempty" doc:"Barcode"`
	CustomFields     []CustomFieldBody `json:"customFields" doc:"User-defined fields"`
	Attributes       map[string]any    `json:"attributes" doc:"Category fields keyed by name"`
	DateAdded        *time.Time        `json:"dateAdded,omitempty" doc:"When the item was first saved"`
	LastModified     *time.Time        `json:"lastModified,omitempty" doc:"When the item was last saved"`
}

// toItem builds a domain item for category. A mismatching body category
// is kept so the catalog rejects it.
func (r *ItemRequest) toItem(category domain.Category) domain.Item {
	item := domain.NewItem(category)
	if r.Category != "" {
		if c, ok := domain.ParseCategory(r.Category); ok {
			item.Category = c
		} else {
			item.Category = domain.Category(r.Category)
		}
	}
	item.Subcategory = r.Subcategory
	item.PrimaryImage = r.PrimaryImage
	item.Barcode = r.Barcode
	if r.AdditionalImages != nil {
		item.AdditionalImages = r.AdditionalImages
	}
	if r.Tags != nil {
		item.Tags = r.Tags
	}
	if r.CustomFields != nil {
		item.CustomFields.Fields = toCustomFields(r.CustomFields)
	}
	if r.Attributes != nil {
		item.Attributes = maps.Clone(r.Attributes)
	}
	return item
}

// mergeInto overlays the fields present in the request onto existing.
// Attributes merge key by key and a null value removes one; lists replace
// the stored list when sent.
func (r *ItemRequest) mergeInto(existing domain.Item) domain.Item {
	item := existing.Clone()
	if r.Category != "" {
		if c, ok := domain.ParseCategory(r.Category); ok {
			item.Category = c
		} else {
			item.Category = domain.Category(r.Category)
		}
	}
	if r.Subcategory != "" {
		item.Subcategory = r.Subcategory
	}
	if r.PrimaryImage != "" {
		item.PrimaryImage = r.PrimaryImage
	}
	if r.Barcode != "" {
		item.Barcode = r.Barcode
	}
	if r.AdditionalImages != nil {
		item.AdditionalImages = r.AdditionalImages
	}
	if r.Tags != nil {
		item.Tags = r.Tags
	}
	if r.CustomFields != nil {
		item.CustomFields.Fields = toCustomFields(r.CustomFields)
	}
	for name, v := range r.Attributes {
		if v == nil {
			delete(item.Attributes, name)
			continue
		}
		item.Attributes[name] = v
	}
	return item
}

func toCustomFields(in []CustomFieldBody) []domain.CustomField {
	out := make([]domain.CustomField, len(in))
	for i, f := range in {
		out[i] = domain.CustomField{
			ID:      f.ID,
			Name:    f.Name,
			Type:    domain.ParseCustomFieldType(f.Type),
			Value:   f.Value,
			Options: f.Options,
		}
	}
	return out
}

func toItemResponse(item domain.Item) ItemResponse {
	resp := ItemResponse{
		ID:               item.ID,
		Category:         string(item.Category),
		Subcategory:      item.Subcategory,
		PrimaryImage:     item.PrimaryImage,
		AdditionalImages: item.AdditionalImages,
		Tags:             item.Tags,
		Barcode:          item.Barcode,
		CustomFields:     make([]CustomFieldBody, len(item.CustomFields.Fields)),
		Attributes:       item.Attributes,
	}
	if resp.AdditionalImages == nil {
		resp.AdditionalImages = []string{}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if resp.Attributes == nil {
		resp.Attributes = domain.Attributes{}
	}
	for i, f := range item.CustomFields.Fields {
		resp.CustomFields[i] = CustomFieldBody{
			ID:      f.ID,
			Name:    f.Name,
			Type:    string(f.Type),
			Value:   f.Value,
			Options: f.Options,
		}
	}
	if !item.DateAdded.IsZero() {
		t := item.DateAdded
		resp.DateAdded = &t
	}
	if !item.LastModified.IsZero() {
		t := item.LastModified
		resp.LastModified = &t
	}
	return resp
}

func toItemResponses(items []domain.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = toItemResponse(item)
	}
	return out
}

// parseCategory resolves a path category ("books", "movies-tv",
// "MOVIES_TV").
func parseCategory(raw string) (domain.Category, error) {
	category, ok := domain.ParseCategory(raw)
	if !ok {
		return domain.CategoryUnknown, domainerrors.Validationf("unknown category %q", raw)
	}
	return category, nil
}
