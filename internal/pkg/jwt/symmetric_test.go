package jwt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func newSymmetric(t *testing.T, clk clocker) *Symmetric {
	t.Helper()
	s, err := NewHS512(Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "otpgate",
		Audiences: []string{"otpgate-api"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      fixedID("jti-1"),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}
	return s
}

func TestGenerateVerify(t *testing.T) {
	// Arrange
	clk := clock.NewManual(time.Now())
	s := newSymmetric(t, clk)

	// Act
	token, err := s.Generate(42, "ada@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	claims, err := s.Verify(token)

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != 42 || claims.UserEmail != "ada@example.com" || claims.Subject != "42" || claims.ID != "jti-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyExpired(t *testing.T) {
	clk := clock.NewManual(time.Now())
	s := newSymmetric(t, clk)
	token, err := s.Generate(1, "a@b.co")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	clk.Advance(2 * time.Hour)
	_, err = s.Verify(token)

	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyTampered(t *testing.T) {
	s := newSymmetric(t, clock.NewManual(time.Now()))
	token, _ := s.Generate(1, "a@b.co")

	if _, err := s.Verify(token + "x"); err == nil {
		t.Fatal("expected tampered token to fail")
	}
}

func TestNewHS512ShortSecret(t *testing.T) {
	if _, err := NewHS512(Config{Secret: []byte("short")}); !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("expected ErrSigningKeyTooShort, got %v", err)
	}
}

func TestAuthContext(t *testing.T) {
	ctx := context.Background()
	if GetAuth(ctx) != nil {
		t.Fatal("expected no claims")
	}

	got := GetAuth(SetAuth(ctx, Claims{UserID: 7}))
	if got == nil || got.UserID != 7 {
		t.Fatalf("unexpected claims %+v", got)
	}
}
