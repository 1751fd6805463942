package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/lf9/taskdesk/internal/core/domain"
)

// Errors maps form field names to a single message each.
type Errors map[string]string

// Error joins the field messages in field order.
func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+e[k])
	}
	return strings.Join(msgs, "; ")
}

// Is makes Errors match domain.ErrInvalidInput.
func (e Errors) Is(target error) bool {
	return target == domain.ErrInvalidInput
}

type messenger interface {
	messages() map[string]string
}

// Validator wraps go-playground/validator with the client's custom rules
// and German per-field messages.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// NewValidator returns a Validator that judges dates against time.Now.
func NewValidator() *Validator {
	return NewValidatorAt(time.Now)
}

// NewValidatorAt returns a Validator with an injectable clock.
func NewValidatorAt(now func() time.Time) *Validator {
	fv := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: now}

	fv.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	_ = fv.v.RegisterValidation("hasdigit", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsDigit) >= 0
	})
	_ = fv.v.RegisterValidation("hasspecial", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), isSpecial) >= 0
	})
	_ = fv.v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	_ = fv.v.RegisterValidation("notpast", fv.notPast)
	return fv
}

// Validate checks form and returns Errors when any field fails.
func (fv *Validator) Validate(form any) error {
	err := fv.v.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	var table map[string]string
	if m, ok := form.(messenger); ok {
		table = m.messages()
	}
	out := make(Errors, len(ve))
	for _, fe := range ve {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		if msg, ok := table[fe.Field()+"."+fe.Tag()]; ok {
			out[fe.Field()] = msg
			continue
		}
		out[fe.Field()] = fieldError(fe)
	}
	return out
}

// notPast accepts a YYYY-MM-DD date that is today or later.
func (fv *Validator) notPast(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return false
	}
	now := fv.now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return !day.Before(today)
}

func isSpecial(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
}

// fieldError is the fallback message for fields without a specific one.
func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " ist erforderlich"
	case "min":
		return fmt.Sprintf("Mind. %s Zeichen", fe.Param())
	case "max":
		return fmt.Sprintf("Höchstens %s Zeichen", fe.Param())
	case "oneof":
		return fmt.Sprintf("Muss einer der Werte sein: %s", fe.Param())
	default:
		return fmt.Sprintf("%s ist ungültig (%s)", fe.Field(), fe.Tag())
	}
}
