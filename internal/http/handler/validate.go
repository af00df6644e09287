package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form/json names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"form", "json"} {
			if name, _, _ := strings.Cut(fld.Tag.Get(key), ","); name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}()

// validationMessage turns the first field error into a sentence.
func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return "invalid input"
	}
	fe := ves[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
