package validation_test

import (
	"net/http"
	"testing"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/errors"
	"github.com/monomori/monomori-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestRequest struct {
	Category string `json:"category" validate:"required,oneof=BOOKS MUSIC"`
	Limit    int    `json:"limit" validate:"gte=0,lte=100"`
	Query    string `json:"query" validate:"max=10"`
}

func details(t *testing.T, err error) map[string]string {
	t.Helper()
	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr), "expected *errors.Error, got %T", err)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
	d, ok := domainErr.Details.(map[string]string)
	require.True(t, ok, "details should be a field map, got %T", domainErr.Details)
	return d
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(TestRequest{Category: "BOOKS", Limit: 20, Query: "dune"})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       TestRequest
		wantField string
		wantMsg   string
	}{
		{"missing required", TestRequest{Limit: 1}, "category", "is required"},
		{"oneof", TestRequest{Category: "TOYS"}, "category", "must be one of: BOOKS MUSIC"},
		{"lte", TestRequest{Category: "MUSIC", Limit: 101}, "limit", "must be less than or equal to 100"},
		{"max", TestRequest{Category: "MUSIC", Query: "far too long a query"}, "query", "must not exceed 10 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, details(t, err)[tt.wantField])
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(TestRequest{})
	require.Error(t, err)

	d := details(t, err)
	assert.Contains(t, d, "category")
	assert.NotContains(t, d, "Category")
}

func TestValidator_ValidateItem(t *testing.T) {
	v := validation.New()
	schema, ok := domain.SchemaFor(domain.CategoryBooks)
	require.True(t, ok)

	item := domain.NewItem(domain.CategoryBooks)
	item.Attributes["title"] = "Dune"
	assert.NoError(t, v.ValidateItem(schema, item))
}

func TestValidator_ValidateItem_MissingRequired(t *testing.T) {
	v := validation.New()
	schema, ok := domain.SchemaFor(domain.CategoryCustom)
	require.True(t, ok)

	tests := []struct {
		name  string
		attrs domain.Attributes
		want  []string
	}{
		{"absent", domain.Attributes{}, []string{"categoryName", "name"}},
		{"blank", domain.Attributes{"categoryName": "Plushies", "name": "   "}, []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := domain.NewItem(domain.CategoryCustom)
			item.Attributes = tt.attrs

			err := v.ValidateItem(schema, item)
			require.Error(t, err)
			d := details(t, err)
			assert.Len(t, d, len(tt.want))
			for _, field := range tt.want {
				assert.Equal(t, "is required", d[field])
			}
		})
	}
}

func TestValidator_ValidateItem_CustomFieldName(t *testing.T) {
	v := validation.New()
	schema, ok := domain.SchemaFor(domain.CategoryBooks)
	require.True(t, ok)

	item := domain.NewItem(domain.CategoryBooks)
	item.Attributes["title"] = "Dune"
	item.CustomFields.Fields = []domain.CustomField{
		{Name: "Signed", Type: domain.FieldTypeBoolean, Value: "true"},
		{Name: " ", Type: domain.FieldTypeTextSingle},
	}

	err := v.ValidateItem(schema, item)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"customFields[1].name": "is required"}, details(t, err))
}
