// Package validation holds the pure field validators shared by the auth and
// ticket forms and the JSON API.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/ticketapp/internal/domain"
)

// Field identifies a form input.
type Field string

const (
	FieldName            Field = "name"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
	FieldTitle           Field = "title"
	FieldStatus          Field = "status"
)

// Form carries raw submitted values keyed by field.
type Form map[Field]string

// Result is the outcome of validating one field.
type Result struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}

// Validator checks a single value. The form gives access to sibling fields.
type Validator func(value string, form Form) Result

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var valid = Result{IsValid: true}

func invalid(message string) Result {
	return Result{IsValid: false, Message: message}
}

// Email requires a non-empty address shaped like chars@chars.chars.
func Email(email string) Result {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return invalid("Email is required")
	}
	if !emailPattern.MatchString(trimmed) {
		return invalid("Please enter a valid email address")
	}
	return valid
}

// Password requires at least 8 characters after trimming.
func Password(password string) Result {
	trimmed := strings.TrimSpace(password)
	if trimmed == "" {
		return invalid("Password cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) < 8 {
		return invalid("Password must be at least 8 characters long")
	}
	return valid
}

// ConfirmPassword requires confirm to equal password exactly.
func ConfirmPassword(password, confirm string) Result {
	if strings.TrimSpace(confirm) == "" {
		return invalid("Please confirm your password")
	}
	if password != confirm {
		return invalid("Passwords do not match")
	}
	return valid
}

// Name requires at least 2 characters after trimming.
func Name(name string) Result {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("Name is required")
	}
	if utf8.RuneCountInString(trimmed) < 2 {
		return invalid("Name must be at least 2 characters long")
	}
	return valid
}

// Title requires a non-empty ticket title.
func Title(title string) Result {
	if strings.TrimSpace(title) == "" {
		return invalid("Title is required")
	}
	return valid
}

// Status accepts one of the ticket statuses; empty means the default.
func Status(status string) Result {
	if status == "" || domain.TicketStatus(status).Valid() {
		return valid
	}
	return invalid("Status must be open, in progress or closed")
}

var validators = map[Field]Validator{
	FieldName:            func(v string, _ Form) Result { return Name(v) },
	FieldEmail:           func(v string, _ Form) Result { return Email(v) },
	FieldPassword:        func(v string, _ Form) Result { return Password(v) },
	FieldConfirmPassword: func(v string, f Form) Result { return ConfirmPassword(f[FieldPassword], v) },
	FieldTitle:           func(v string, _ Form) Result { return Title(v) },
	FieldStatus:          func(v string, _ Form) Result { return Status(v) },
}

// For returns the validator of field. Unknown fields always validate.
func For(field Field) Validator {
	if v, ok := validators[field]; ok {
		return v
	}
	return func(string, Form) Result { return valid }
}

// ValidateField runs the validator of one field against value.
func ValidateField(field Field, value string, form Form) Result {
	return For(field)(value, form)
}

// ValidateForm validates fields in order and returns the failures keyed by
// field. An empty map means the form can be submitted.
func ValidateForm(form Form, fields ...Field) map[Field]string {
	failures := make(map[Field]string)
	for _, field := range fields {
		if res := ValidateField(field, form[field], form); !res.IsValid {
			failures[field] = res.Message
		}
	}
	return failures
}

// Details converts failures into the error details shape of the API.
func Details(failures map[Field]string) map[string]any {
	details := make(map[string]any, len(failures))
	for field, msg := range failures {
		details[string(field)] = msg
	}
	return details
}
