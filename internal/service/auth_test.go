package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestValidateAccessToken_Valid(t *testing.T) {
	svc := service.NewAuthService("test-secret", false, zap.NewNop())
	token := signToken(t, "test-secret", "user-1", time.Now().Add(time.Hour))

	userID, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if userID != "user-1" {
		t.Errorf("expected user id 'user-1', got '%s'", userID)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	svc := service.NewAuthService("test-secret", false, zap.NewNop())
	token := signToken(t, "other-secret", "user-1", time.Now().Add(time.Hour))

	_, err := svc.ValidateAccessToken(token)
	var uErr *domain.ErrUnauthorized
	if !errors.As(err, &uErr) {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := service.NewAuthService("test-secret", false, zap.NewNop())
	token := signToken(t, "test-secret", "user-1", time.Now().Add(-time.Hour))

	_, err := svc.ValidateAccessToken(token)
	var uErr *domain.ErrUnauthorized
	if !errors.As(err, &uErr) {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestValidateAccessToken_NoSubject(t *testing.T) {
	svc := service.NewAuthService("test-secret", false, zap.NewNop())
	token := signToken(t, "test-secret", "", time.Now().Add(time.Hour))

	_, err := svc.ValidateAccessToken(token)
	var uErr *domain.ErrUnauthorized
	if !errors.As(err, &uErr) {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestValidateAccessToken_DevMode(t *testing.T) {
	svc := service.NewAuthService("test-secret", true, zap.NewNop())

	userID, err := svc.ValidateAccessToken("local-user")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if userID != "local-user" {
		t.Errorf("expected opaque token as user id, got '%s'", userID)
	}
}

func TestValidateAccessToken_DevModeStillVerifiesJWTs(t *testing.T) {
	svc := service.NewAuthService("test-secret", true, zap.NewNop())
	token := signToken(t, "other-secret", "user-1", time.Now().Add(time.Hour))

	_, err := svc.ValidateAccessToken(token)
	var uErr *domain.ErrUnauthorized
	if !errors.As(err, &uErr) {
		t.Errorf("expected unauthorized error for a badly signed JWT, got %v", err)
	}
}
