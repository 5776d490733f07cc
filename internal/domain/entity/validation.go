package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"anvil-esign/internal/payload"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their source names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get(payload.TagName), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return payload.SnakeCase(fld.Name)
		}
		return name
	})
	v.RegisterStructValidation(validateFillPDF, FillPDFPayload{})
	return v
}

func validateFillPDF(sl validator.StructLevel) {
	p := sl.Current().Interface().(FillPDFPayload)
	if m, ok := p.Data.(map[string]any); ok && len(m) == 0 {
		sl.ReportError(p.Data, "data", "Data", "notempty", "")
	}
}

// Validate checks v against its validate tags. The first failure is
// returned as a *ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error(), Err: err}
	}

	fe := fieldErrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	return &ValidationError{
		Field:   field,
		Message: describe(fe),
		Err:     err,
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notempty":
		return "cannot be empty"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
