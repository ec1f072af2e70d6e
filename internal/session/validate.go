package session

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength     = 2
	MinPasswordLength = 6
)

// Form field names used in FieldError.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type fieldErrors []FieldError

func (f *fieldErrors) add(field, msg string) { *f = append(*f, FieldError{Field: field, Message: msg}) }

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ValidateRegistration checks name, email and password.
func ValidateRegistration(r Registration) error {
	var errs fieldErrors
	checkRegistration(&errs, r)
	return errs.err()
}

// ValidateRegistrationForm is ValidateRegistration plus the confirmation field.
func ValidateRegistrationForm(r Registration, confirm string) error {
	var errs fieldErrors
	checkRegistration(&errs, r)
	switch {
	case confirm == "":
		errs.add(FieldConfirmPassword, "confirm your password")
	case confirm != r.Password:
		errs.add(FieldConfirmPassword, "passwords do not match")
	}
	return errs.err()
}

// ValidateLogin checks that email is well formed and a password was given.
func ValidateLogin(c Credentials) error {
	var errs fieldErrors
	checkEmail(&errs, c.Email)
	if c.Password == "" {
		errs.add(FieldPassword, "enter your password")
	}
	return errs.err()
}

func checkRegistration(errs *fieldErrors, r Registration) {
	checkName(errs, r.Name)
	checkEmail(errs, r.Email)
	checkNewPassword(errs, r.Password)
}

func checkName(errs *fieldErrors, name string) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		errs.add(FieldName, "enter your name")
	case utf8.RuneCountInString(name) < MinNameLength:
		errs.add(FieldName, "name must be at least 2 characters")
	}
}

func checkEmail(errs *fieldErrors, email string) {
	switch {
	case strings.TrimSpace(email) == "":
		errs.add(FieldEmail, "enter your email")
	case !emailPattern.MatchString(email):
		errs.add(FieldEmail, "enter a valid email")
	}
}

func checkNewPassword(errs *fieldErrors, password string) {
	switch {
	case password == "":
		errs.add(FieldPassword, "enter a password")
	case utf8.RuneCountInString(password) < MinPasswordLength:
		errs.add(FieldPassword, "password must be at least 6 characters")
	}
}
