package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EmailPattern is the accepted local@domain.tld shape, case-insensitive.
var EmailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports fields by their json names and knows the
// email_pattern tag.
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("email_pattern", func(fl validator.FieldLevel) bool {
		return EmailPattern.MatchString(fl.Field().String())
	})

	return &CustomValidator{validator: v}
}

// RegisterValidation adds a custom tag to the underlying validator.
func (cv *CustomValidator) RegisterValidation(tag string, fn func(value string) bool) error {
	return cv.validator.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
}

func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

// FailedFields returns the json names of fields whose failing tag is one
// of tags, in declaration order and without duplicates. Slice elements
// are reported under the slice's name.
func FailedFields(err error, tags ...string) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	var fields []string
	seen := make(map[string]bool)
	for _, e := range validationErrors {
		if !hasTag(tags, e.Tag()) {
			continue
		}
		field := baseField(e.Field())
		if seen[field] {
			continue
		}
		seen[field] = true
		fields = append(fields, field)
	}
	return fields
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errs
	}

	for _, e := range validationErrors {
		field := baseField(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = field + " is required"
		case "email", "email_pattern":
			errs[field] = field + " must be a valid email address"
		case "min":
			errs[field] = field + " must be at least " + e.Param() + " characters"
		case "max":
			errs[field] = field + " must be at most " + e.Param() + " characters"
		case "gte":
			errs[field] = field + " must be greater than or equal to " + e.Param()
		case "lte":
			errs[field] = field + " must be less than or equal to " + e.Param()
		case "uuid":
			errs[field] = field + " must be a valid UUID"
		case "datetime":
			errs[field] = field + " must match the format " + e.Param()
		default:
			errs[field] = field + " is invalid"
		}
	}

	return errs
}

func hasTag(tags []string, tag string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func baseField(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i]
	}
	return field
}
