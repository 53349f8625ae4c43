package auth

import (
	"errors"
	"testing"
)

func validSignUp() SignUpForm {
	return SignUpForm{
		Name:            "Ada Lovelace",
		Email:           "ada@example.com",
		Password:        "Engine#1843",
		ConfirmPassword: "Engine#1843",
		AgreeToTerms:    true,
	}
}

func TestValidateSignUp(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *SignUpForm)
		field   string
		message string
	}{
		{"valid", func(f *SignUpForm) {}, "", ""},
		{"blank name", func(f *SignUpForm) { f.Name = "   " }, "Name", "Name is required"},
		{"digits in name", func(f *SignUpForm) { f.Name = "Ada 2" }, "Name", "Name should only contain alphabets"},
		{"short name", func(f *SignUpForm) { f.Name = " A " }, "Name", "Name is too short"},
		{"missing email", func(f *SignUpForm) { f.Email = "" }, "Email", "Email is required"},
		{"bad email", func(f *SignUpForm) { f.Email = "ada@example" }, "Email", "Please enter a valid email address"},
		{"missing password", func(f *SignUpForm) { f.Password = "" }, "Password", "Password is required"},
		{"short password", func(f *SignUpForm) { f.Password = "Aa1!" }, "Password", "Password must be at least 8 characters long"},
		{"no uppercase", func(f *SignUpForm) { f.Password = "engine#1843" }, "Password", "Password must contain at least one uppercase letter"},
		{"no lowercase", func(f *SignUpForm) { f.Password = "ENGINE#1843" }, "Password", "Password must contain at least one lowercase letter"},
		{"no digit", func(f *SignUpForm) { f.Password = "Engine#abcd" }, "Password", "Password must contain at least one number"},
		{"no special", func(f *SignUpForm) { f.Password = "Engine18430" }, "Password", "Password must contain at least one special character"},
		{"missing confirmation", func(f *SignUpForm) { f.ConfirmPassword = "" }, "ConfirmPassword", "Please confirm your password"},
		{"mismatch", func(f *SignUpForm) { f.ConfirmPassword = "Engine#1844" }, "ConfirmPassword", "Passwords do not match"},
		{"terms", func(f *SignUpForm) { f.AgreeToTerms = false }, "AgreeToTerms", "You must agree to the terms and conditions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validSignUp()
			tt.mutate(&form)
			err := ValidateSignUp(form)
			if tt.message == "" {
				if err != nil {
					t.Fatalf("ValidateSignUp() error = %v, want nil", err)
				}
				return
			}
			var fe *FormError
			if !errors.As(err, &fe) {
				t.Fatalf("ValidateSignUp() error = %v, want *FormError", err)
			}
			if fe.Field != tt.field || fe.Message != tt.message {
				t.Errorf("got %s: %q, want %s: %q", fe.Field, fe.Message, tt.field, tt.message)
			}
		})
	}
}

func TestValidateSignUpReportsFirstField(t *testing.T) {
	err := ValidateSignUp(SignUpForm{})
	var fe *FormError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormError, got %v", err)
	}
	if fe.Field != "Name" {
		t.Errorf("expected Name to be reported first, got %s", fe.Field)
	}
}

func TestValidateSignIn(t *testing.T) {
	if err := ValidateSignIn(SignInForm{Email: "ada@example.com", Password: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ValidateSignIn(SignInForm{Email: "ada@example.com"})
	if err == nil || err.Error() != "Password is required" {
		t.Errorf("expected password error, got %v", err)
	}
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		score    int
		label    Strength
	}{
		{"", 0, ""},
		{"abc", 1, StrengthWeak},
		{"abcdefgh", 2, StrengthWeak},
		{"Abcdefgh1", 4, StrengthMedium},
		{"Abcdefgh1!", 6, StrengthStrong},
	}
	for _, tt := range tests {
		score, label := PasswordStrength(tt.password)
		if score != tt.score || label != tt.label {
			t.Errorf("PasswordStrength(%q) = %d %q, want %d %q", tt.password, score, label, tt.score, tt.label)
		}
	}
}
