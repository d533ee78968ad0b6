package service

import (
	"errors"
	"reflect"
	"strings"

	"food-ordering-api/apperr"
	"food-ordering-api/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterValidations installs the custom tags and JSON field naming on v.
// It is shared with the HTTP binding engine so both report the same names.
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return models.IsObjectID(fl.Field().String())
	})
}

// check runs struct validation and maps failures to a ValidationError
func check(msg string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperr.FromValidator(msg, verrs)
	}
	return apperr.Validation(msg)
}

func isEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
