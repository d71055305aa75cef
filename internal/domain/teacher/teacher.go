package teacher

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Teacher represents a teacher in the registry.
type Teacher struct {
	ID       string  `json:"id"`
	Name     string  `json:"name" validate:"required,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Subject  string  `json:"subject" validate:"required,max=50"`
	Phone    *string `json:"phone" validate:"omitempty,max=15"` // nil when not provided
	IsActive bool    `json:"is_active"`
}

// Clone returns a deep copy so callers never share the phone pointer with the store.
func (t *Teacher) Clone() *Teacher {
	c := *t
	if t.Phone != nil {
		p := *t.Phone
		c.Phone = &p
	}
	return &c
}

// NormalizeEmail lowercases the domain part of an address. The local part is
// kept as given.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field constraint and returns a *ValidationError listing
// each offending field, or nil.
func (t *Teacher) Validate() error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "max":
		return "ensure this value has at most " + fe.Param() + " characters"
	case "email":
		return "value is not a valid email address"
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}
