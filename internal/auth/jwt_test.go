package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/mmynk/circles/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("ada@example.com", "Ada", "hash")

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email || claims.DisplayName != "Ada" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("expected a token ID")
	}
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Hour).Generate(models.NewUser("a@b.co", "A", "h"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := NewJWTManager("two", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute)
	token, err := m.Generate(models.NewUser("a@b.co", "A", "h"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTRevoke(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, _ := m.Generate(models.NewUser("a@b.co", "A", "h"))
	other, _ := m.Generate(models.NewUser("c@d.co", "C", "h"))

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	m.Revoke(claims)

	if _, err := m.Validate(token); !errors.Is(err, ErrRevokedToken) {
		t.Errorf("expected ErrRevokedToken, got %v", err)
	}
	if _, err := m.Validate(other); err != nil {
		t.Errorf("other token should stay valid, got %v", err)
	}
}
