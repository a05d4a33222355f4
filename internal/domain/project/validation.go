package project

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the required fields of a project before it is persisted.
// Whitespace-only values count as missing.
func Validate(p Project) error {
	trimmed := p
	trimmed.Name = strings.TrimSpace(p.Name)
	trimmed.MeetingURL = strings.TrimSpace(p.MeetingURL)
	trimmed.Prompt = strings.TrimSpace(p.Prompt)

	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(fields, ", "))
}
