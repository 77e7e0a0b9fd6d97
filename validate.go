package inkblog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eringen/inkblog/views"
)

// formValidator plugs go-playground/validator into echo.Context.Validate.
// Field names in errors are the struct's form tags.
type formValidator struct {
	v *validator.Validate
}

func newFormValidator() *formValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &formValidator{v: v}
}

func (fv *formValidator) Validate(i any) error {
	return fv.v.Struct(i)
}

// formErrors turns a validation failure into per-field messages. It
// returns nil when err is not a validation failure.
func formErrors(err error) views.FormErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(views.FormErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch tag := fe.Tag(); {
	case tag == "required":
		return "This field is required."
	case tag == "email":
		return "Enter a valid email address."
	case strings.HasPrefix(tag, "url"), strings.HasPrefix(tag, "http_url"):
		return "Enter a valid URL."
	case tag == "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	}
	return "Invalid value."
}
