// Package validation checks request structs and catalogue items with
// go-playground/validator and reports failures as field-keyed domain
// validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/monomori/monomori-server/internal/domain"
	domainerrors "github.com/monomori/monomori-server/internal/errors"
)

const failedMessage = "validation failed"

//nolint:gochecknoglobals // Static message table
var messages = map[string]func(param string) string{
	"required": func(string) string { return "is required" },
	"notblank": func(string) string { return "is required" },
	"url":      func(string) string { return "must be a valid URL" },
	"uuid":     func(string) string { return "must be a valid UUID" },
	"min":      func(p string) string { return "must be at least " + p + " characters" },
	"max":      func(p string) string { return "must not exceed " + p + " characters" },
	"len":      func(p string) string { return "must be exactly " + p + " characters" },
	"oneof":    func(p string) string { return "must be one of: " + p },
	"gte":      func(p string) string { return "must be greater than or equal to " + p },
	"lte":      func(p string) string { return "must be less than or equal to " + p },
	"gt":       func(p string) string { return "must be greater than " + p },
	"lt":       func(p string) string { return "must be less than " + p },
}

// Validator wraps a configured validator.Validate.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that names fields by their JSON tag and knows
// the notblank rule.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "":
			return f.Name
		case "-":
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &Validator{v: v}
}

// Validate checks s against its validate tags.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	problems := make(map[string]string)
	if !collect(err, problems, "") {
		return err
	}
	return domainerrors.ValidationWithDetails(failedMessage, problems)
}

// ValidateItem checks item against its category schema. Required
// attributes must be present and not blank, and every custom field needs a
// name. Problems are keyed by attribute name, or customFields[i].name.
func (v *Validator) ValidateItem(schema *domain.Schema, item domain.Item) error {
	values := make(map[string]any)
	rules := make(map[string]any)
	for _, f := range schema.Fields {
		if f.Required {
			values[f.Name] = item.Attributes[f.Name]
			rules[f.Name] = "notblank"
		}
	}

	problems := make(map[string]string)
	for field, err := range v.v.ValidateMap(values, rules) {
		if e, ok := err.(error); !ok || !collect(e, problems, field) {
			problems[field] = "is invalid"
		}
	}
	for i, cf := range item.CustomFields.Fields {
		if err := v.v.Struct(cf); err != nil {
			collect(err, problems, fmt.Sprintf("customFields[%d].", i))
		}
	}

	if len(problems) > 0 {
		return domainerrors.ValidationWithDetails(failedMessage, problems)
	}
	return nil
}

// collect adds one message per failed field of err to problems. For struct
// errors prefix is prepended to each field name; for single values from
// ValidateMap it is the whole key. It reports false when err is not a
// validator error.
func collect(err error, problems map[string]string, prefix string) bool {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return false
	}
	for _, fe := range fieldErrs {
		key := prefix
		if fe.Field() != "" {
			key += fe.Field()
		}
		problems[key] = message(fe)
	}
	return true
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Tag()]; ok {
		return m(fe.Param())
	}
	return "is invalid"
}
