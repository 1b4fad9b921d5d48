package notes

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	api "FastNotes/pkg/models"
)

// ValidationError is a rejected input, named by its JSON field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// noteFields is the common shape checked for creates and updates. Nil
// pointers are fields the caller did not supply.
type noteFields struct {
	Title    *string           `json:"title" validate:"omitnil,min=1,max=200"`
	Content  *string           `json:"content" validate:"omitnil,min=1,max=5000"`
	Status   *api.NoteStatus   `json:"status" validate:"omitnil,oneof=draft active done postponed"`
	Priority *api.NotePriority `json:"priority" validate:"omitnil,oneof=low medium high"`
	TagIDs   []uint            `json:"tag_ids" validate:"omitempty,unique"`
}

type nameField struct {
	Name string `json:"name" validate:"min=1,max=100"`
}

type tagNameField struct {
	Name string `json:"name" validate:"min=1,max=50"`
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	fe := errs[0]
	return invalid(fe.Field(), reason(fe))
}

// reasonOf returns the reason of a ValidationError, or its message.
func reasonOf(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Reason
	}
	return err.Error()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must not be empty"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "unique":
		return "must not contain duplicates"
	}
	return "is invalid"
}

// trimmed returns a pointer to the trimmed copy of s.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func checkReminder(t time.Time, now time.Time) error {
	if !t.After(now) {
		return invalid("reminder_date", "must be in the future")
	}
	return nil
}
