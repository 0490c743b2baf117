package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"foodhub-api/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validate reads the same `binding` tags gin uses, so inputs are checked
// identically whether they arrive over HTTP or from another caller.
var validate = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	UseJSONFieldNames(v)
	return v
}()

// UseJSONFieldNames makes validation errors name fields the way clients send them
func UseJSONFieldNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// InputError converts a request binding failure into InvalidArgument
func InputError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperror.InvalidArgument(describeFieldError(verrs[0]))
	}
	return apperror.InvalidArgument("Invalid request body")
}

func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperror.InvalidArgument(describeFieldError(verrs[0]))
	}
	return apperror.InvalidArgument(err.Error())
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

// money columns are numeric(12,2); anything finer would be rounded differently per driver
func requireCents(name string, d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return apperror.InvalidArgument(name + " must have at most 2 decimal places")
	}
	return nil
}

func requirePositive(name string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return apperror.InvalidArgument(name + " must be greater than 0")
	}
	return requireCents(name, d)
}

func requireNonNegative(name string, d decimal.Decimal) error {
	if d.IsNegative() {
		return apperror.InvalidArgument(name + " must not be negative")
	}
	return requireCents(name, d)
}
