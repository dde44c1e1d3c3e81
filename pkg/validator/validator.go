package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
}

type validator struct {
	v *playground.Validate
}

func New() Validator {
	v := playground.New()
	v.RegisterTagNameFunc(FieldName)
	return &validator{v: v}
}

func (v *validator) Validate(obj interface{}) error {
	if err := v.v.Struct(obj); err != nil {
		return errors.New(Format(err))
	}
	return nil
}

// FieldName reports a struct field by its mapstructure or json name so
// messages match what the caller actually sent.
func FieldName(fld reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Format renders validator errors as "field: rule" pairs; other errors pass
// through unchanged.
func Format(err error) string {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msg := fmt.Sprintf("%s: failed on %s", e.Field(), e.Tag())
		if e.Param() != "" {
			msg += "=" + e.Param()
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}
