package services

import (
	"strings"
	"testing"
	"time"

	"medimart_api/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)

	user := &models.User{ID: 42, Role: models.Role{Name: models.RoleDoctor}}
	token, err := svc.Generate(user)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.Role != models.RoleDoctor {
		t.Errorf("role = %s, want %s", claims.Role, models.RoleDoctor)
	}
	if claims.ID == "" {
		t.Error("token has no jti")
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, err := issuer.Generate(&models.User{ID: 1, Role: models.Role{Name: models.RolePatient}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := verifier.Parse(token); err == nil {
		t.Error("token issued under a different secret was accepted")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	svc := NewTokenService("unit-test-secret", -time.Minute)

	token, err := svc.Generate(&models.User{ID: 1, Role: models.Role{Name: models.RolePatient}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.Parse(token); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestTokenRejectsTampered(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)

	token, err := svc.Generate(&models.User{ID: 1, Role: models.Role{Name: models.RolePatient}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]
	if _, err := svc.Parse(tampered); err == nil {
		t.Error("tampered token was accepted")
	}
}
