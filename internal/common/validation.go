package common

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// FieldError is one failed rule on one request field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + " " + e.Message
}

// Rule checks a single value. It returns nil when the value passes.
type Rule func(field string, value any) *FieldError

// Validator collects rule failures across the fields of one request.
type Validator struct {
	errs []FieldError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field applies rules to value in order and records every failure.
func (v *Validator) Field(field string, value any, rules ...Rule) *Validator {
	for _, rule := range rules {
		if fe := rule(field, value); fe != nil {
			v.errs = append(v.errs, *fe)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

func (v *Validator) Errors() []FieldError { return v.errs }

// ErrorMessage joins the failures for the response body.
func (v *Validator) ErrorMessage() string {
	msgs := make([]string, 0, len(v.errs))
	for _, fe := range v.errs {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

// Err returns the failures as an INVALID_INPUT AppError, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return NewAppError(KindInvalidInput, v.ErrorMessage(), ErrValidation)
}

func stringValue(value any) (string, bool) {
	switch s := value.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	default:
		return "", false
	}
}

// Required rejects nil and blank strings.
func Required(field string, value any) *FieldError {
	missing := value == nil
	switch s := value.(type) {
	case string:
		missing = strings.TrimSpace(s) == ""
	case *string:
		missing = s == nil || strings.TrimSpace(*s) == ""
	}
	if missing {
		return &FieldError{Field: field, Message: "is required"}
	}
	return nil
}

// MaxLength rejects strings longer than max runes. Non-strings pass.
func MaxLength(max int) Rule {
	return func(field string, value any) *FieldError {
		s, ok := stringValue(value)
		if ok && utf8.RuneCountInString(s) > max {
			return &FieldError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)}
		}
		return nil
	}
}

// OneOf accepts the empty string or one of allowed.
func OneOf(allowed ...string) Rule {
	return func(field string, value any) *FieldError {
		s, _ := stringValue(value)
		if s == "" {
			return nil
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return &FieldError{Field: field, Message: "must be one of " + strings.Join(allowed, ", ")}
	}
}

// UUID requires a parseable UUID string.
func UUID(field string, value any) *FieldError {
	s, ok := stringValue(value)
	if !ok {
		return &FieldError{Field: field, Message: "must be a string"}
	}
	if _, err := uuid.Parse(s); err != nil {
		return &FieldError{Field: field, Message: "must be a valid UUID"}
	}
	return nil
}
