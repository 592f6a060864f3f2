package models

import (
	"strings"
	"time"
	"unicode"
)

type Field string

const (
	FieldFirstName   Field = "firstName"
	FieldLastName    Field = "lastName"
	FieldEmail       Field = "email"
	FieldPassword    Field = "password"
	FieldPhoneNumber Field = "phoneNumber"
	FieldRole        Field = "role"
)

// FormFields lists the fields in the order the registration page renders them.
var FormFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhoneNumber,
	FieldPassword,
	FieldRole,
}

// Label splits the camelCase field name into words: "phoneNumber" -> "phone Number".
func (f Field) Label() string {
	var b strings.Builder
	for _, r := range string(f) {
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// InputType is the html input type used for the field.
func (f Field) InputType() string {
	if f == FieldEmail {
		return "email"
	}
	return "text"
}

func ParseField(name string) (Field, bool) {
	for _, f := range FormFields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// RegistrationForm is the payload accepted by the registration API.
type RegistrationForm struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Role        string `json:"role" validate:"required"`
}

func (f RegistrationForm) Get(field Field) string {
	switch field {
	case FieldFirstName:
		return f.FirstName
	case FieldLastName:
		return f.LastName
	case FieldEmail:
		return f.Email
	case FieldPassword:
		return f.Password
	case FieldPhoneNumber:
		return f.PhoneNumber
	case FieldRole:
		return f.Role
	}
	return ""
}

// Set overwrites a single field and reports whether the field is known.
func (f *RegistrationForm) Set(field Field, value string) bool {
	switch field {
	case FieldFirstName:
		f.FirstName = value
	case FieldLastName:
		f.LastName = value
	case FieldEmail:
		f.Email = value
	case FieldPassword:
		f.Password = value
	case FieldPhoneNumber:
		f.PhoneNumber = value
	case FieldRole:
		f.Role = value
	default:
		return false
	}
	return true
}

func (f RegistrationForm) Trimmed() RegistrationForm {
	return RegistrationForm{
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		Email:       strings.TrimSpace(f.Email),
		Password:    strings.TrimSpace(f.Password),
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
		Role:        strings.TrimSpace(f.Role),
	}
}

// RegistrationResponse is a resolved answer of the registration API.
type RegistrationResponse struct {
	StatusCode int
	Message    string
}

type MessageKind string

const (
	MessageNone    MessageKind = ""
	MessageError   MessageKind = "error"
	MessageSuccess MessageKind = "success"
)

type StatusMessage struct {
	Kind MessageKind
	Text string
}

func (m StatusMessage) Visible() bool {
	return m.Kind != MessageNone
}

type Outcome string

const (
	OutcomeIgnored      Outcome = "ignored"
	OutcomeInvalid      Outcome = "invalid"
	OutcomeUnauthorized Outcome = "unauthorized"
	OutcomeRegistered   Outcome = "registered"
	OutcomeFailed       Outcome = "failed"
)

// Attempt is the statistics record of one submission. It never carries the password.
type Attempt struct {
	ID        string    `json:"id" db:"id"`
	Outcome   Outcome   `json:"outcome" db:"outcome"`
	Email     string    `json:"email" db:"email"`
	Role      string    `json:"role" db:"role"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
