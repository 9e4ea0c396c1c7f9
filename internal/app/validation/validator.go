package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"venuecal/internal/domain/selection"
	"venuecal/internal/domain/shared/daterange"
)

// ErrInvalid wraps every validation failure so the transport can map it to a client error.
var ErrInvalid = errors.New("validation: invalid request")

// StructValidator validates commands and queries using struct tags.
type StructValidator struct {
	v *validator.Validate
}

func New() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("isodate", isoDate)
	_ = v.RegisterValidation("isomonth", isoMonth)
	_ = v.RegisterValidation("selectionevent", selectionEvent)
	return &StructValidator{v: v}
}

func (s *StructValidator) Validate(_ context.Context, message any) error {
	if message == nil {
		return nil
	}
	rv := reflect.ValueOf(message)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	if err := s.v.Struct(message); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %s", ErrInvalid, describe(fieldErrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func describe(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := daterange.ParseInstant(fl.Field().String(), nil)
	return err == nil
}

func isoMonth(fl validator.FieldLevel) bool {
	_, err := daterange.ParseMonth(fl.Field().String(), nil)
	return err == nil
}

func selectionEvent(fl validator.FieldLevel) bool {
	switch selection.EventKind(fl.Field().String()) {
	case selection.EventPick, selection.EventHover, selection.EventClear:
		return true
	default:
		return false
	}
}
