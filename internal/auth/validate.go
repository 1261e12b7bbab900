package auth

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Registration limits.
const (
	MinPasswordLen = 6
	MaxPasswordLen = 10
	MinAge         = 12
	MaxAge         = 15
)

var (
	namePattern  = regexp.MustCompile(`^[A-Za-zÁÉÍÓÚÜÑáéíóúüñ ]+$`)
	emailPattern = regexp.MustCompile(`(?i)^[a-z][a-z0-9._%+-]*@(gmail\.com|hotmail\.com)$`)
)

// FieldError names the first invalid registration field.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }
func (e *FieldError) Unwrap() error { return e.Err }

// RegisterInput is a registration as received. Age is kept as text because
// clients send it both as a number and as a string.
type RegisterInput struct {
	Fullname string
	Email    string
	Password string
	Gender   string
	Age      string
}

// Registration is a validated, normalized RegisterInput.
type Registration struct {
	Fullname string
	Email    string // lower-cased
	Password string
	Gender   string // "", "M" or "F"
	Age      int
}

// ValidateRegistration checks the fields in a fixed order and reports the
// first failure.
func ValidateRegistration(in RegisterInput) (Registration, error) {
	fullname := strings.TrimSpace(in.Fullname)
	if fullname == "" || !namePattern.MatchString(fullname) {
		return Registration{}, &FieldError{Field: "fullname", Message: "use letters and spaces only"}
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailPattern.MatchString(email) {
		return Registration{}, &FieldError{Field: "email", Message: "must start with a letter and end in @gmail.com or @hotmail.com"}
	}

	age, err := strconv.Atoi(strings.TrimSpace(in.Age))
	if err != nil {
		return Registration{}, &FieldError{Field: "age", Message: "must be a whole number"}
	}
	if age < MinAge || age > MaxAge {
		return Registration{}, &FieldError{Field: "age", Message: "must be between 12 and 15"}
	}

	if n := utf8.RuneCountInString(in.Password); n < MinPasswordLen || n > MaxPasswordLen {
		return Registration{}, &FieldError{Field: "password", Message: "must be between 6 and 10 characters"}
	}

	gender := strings.TrimSpace(in.Gender)
	if gender != "" && gender != "M" && gender != "F" {
		return Registration{}, &FieldError{Field: "gender", Message: "use M or F"}
	}

	return Registration{
		Fullname: fullname,
		Email:    email,
		Password: in.Password,
		Gender:   gender,
		Age:      age,
	}, nil
}
