package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	namePattern  = regexp.MustCompile(`^[A-Za-z\s]+$`)
)

// SignUpForm is everything the sign-up screen collects.
type SignUpForm struct {
	Name            string `validate:"notblank,letters,mintrim=2"`
	Email           string `validate:"notblank,emailaddr"`
	Password        string `validate:"required,min=8,upper,lower,digit,special"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	AgreeToTerms    bool   `validate:"eq=true"`
}

// SignInForm is everything the sign-in screen collects.
type SignInForm struct {
	Email    string `validate:"notblank,emailaddr"`
	Password string `validate:"required"`
}

// Registration is the subset of SignUpForm the server receives.
type Registration struct {
	Name     string `validate:"notblank,letters,mintrim=2"`
	Email    string `validate:"notblank,emailaddr"`
	Password string `validate:"required,min=8,upper,lower,digit,special"`
}

// FormError reports the first field of a form that failed validation.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string { return e.Message }

// messages maps "Field.tag" to the text shown next to the field.
var messages = map[string]string{
	"Name.notblank":            "Name is required",
	"Name.letters":             "Name should only contain alphabets",
	"Name.mintrim":             "Name is too short",
	"Email.notblank":           "Email is required",
	"Email.emailaddr":          "Please enter a valid email address",
	"Password.required":        "Password is required",
	"Password.min":             "Password must be at least 8 characters long",
	"Password.upper":           "Password must contain at least one uppercase letter",
	"Password.lower":           "Password must contain at least one lowercase letter",
	"Password.digit":           "Password must contain at least one number",
	"Password.special":         "Password must contain at least one special character",
	"ConfirmPassword.required": "Please confirm your password",
	"ConfirmPassword.eqfield":  "Passwords do not match",
	"AgreeToTerms.eq":          "You must agree to the terms and conditions",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "letters", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "mintrim", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len([]rune(strings.TrimSpace(fl.Field().String()))) >= n
	})
	mustRegister(v, "emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	mustRegister(v, "upper", hasRune(unicode.IsUpper))
	mustRegister(v, "lower", hasRune(unicode.IsLower))
	mustRegister(v, "digit", hasRune(unicode.IsDigit))
	mustRegister(v, "special", hasRune(func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
	}))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func hasRune(pred func(rune) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), pred) >= 0
	}
}

// ValidateSignUp checks a sign-up form and returns the first failure as a *FormError.
func ValidateSignUp(form SignUpForm) error {
	return formError(validate.Struct(form))
}

// ValidateSignIn checks a sign-in form and returns the first failure as a *FormError.
func ValidateSignIn(form SignInForm) error {
	return formError(validate.Struct(form))
}

// ValidateRegistration checks the server-side part of a sign-up.
func ValidateRegistration(r Registration) error {
	return formError(validate.Struct(r))
}

// ValidatePassword checks a single password against the sign-up rules.
func ValidatePassword(password string) error {
	return ValidateRegistration(Registration{Name: "Placeholder", Email: "user@example.com", Password: password})
}

func formError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	first := verrs[0]
	msg, ok := messages[first.Field()+"."+first.Tag()]
	if !ok {
		msg = fmt.Sprintf("%s is invalid", first.Field())
	}
	return &FormError{Field: first.Field(), Message: msg}
}

// Strength grades a password for the sign-up strength meter.
type Strength string

const (
	StrengthWeak   Strength = "Weak"
	StrengthMedium Strength = "Medium"
	StrengthStrong Strength = "Strong"
)

// PasswordStrength scores password from 0 to 6: one point each for reaching
// 8 and 10 characters and for containing an uppercase letter, a lowercase
// letter, a digit and a symbol. An empty password scores 0 with no label.
func PasswordStrength(password string) (int, Strength) {
	if password == "" {
		return 0, ""
	}
	score := 0
	if len(password) >= 8 {
		score++
	}
	if len(password) >= 10 {
		score++
	}
	for _, pred := range []func(rune) bool{
		func(r rune) bool { return r >= 'A' && r <= 'Z' },
		func(r rune) bool { return r >= 'a' && r <= 'z' },
		func(r rune) bool { return r >= '0' && r <= '9' },
		func(r rune) bool {
			return !(r >= 'A' && r <= 'Z') && !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
		},
	} {
		if strings.IndexFunc(password, pred) >= 0 {
			score++
		}
	}

	switch {
	case score <= 2:
		return score, StrengthWeak
	case score <= 4:
		return score, StrengthMedium
	default:
		return score, StrengthStrong
	}
}
