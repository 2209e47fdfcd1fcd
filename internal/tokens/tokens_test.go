package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateServiceToken_ValidAndClaims(t *testing.T) {
	secret := "test-secret-32-bytes-should-be-long-enough"
	tokenStr, err := GenerateServiceToken(secret, "ops@example.com", 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateServiceToken error: %v", err)
	}

	v, err := NewHMACVerifier(secret)
	if err != nil {
		t.Fatalf("NewHMACVerifier error: %v", err)
	}
	tok, err := v.Verify(context.Background(), tokenStr)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		t.Fatalf("claims failed: %v", err)
	}
	if claims["sub"] != "ops@example.com" {
		t.Fatalf("unexpected sub claim: %v", claims["sub"])
	}
	if claims["iss"] != Issuer {
		t.Fatalf("unexpected iss claim: %v", claims["iss"])
	}
}

func TestVerify_ExpiredTokenFails(t *testing.T) {
	secret := "another-secret-32-bytes-longgggg"
	tokenStr, err := GenerateServiceToken(secret, "u2", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateServiceToken error: %v", err)
	}
	v, _ := NewHMACVerifier(secret)
	if _, err := v.Verify(context.Background(), tokenStr); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestVerify_WrongSecretFails(t *testing.T) {
	tokenStr, err := GenerateServiceToken("secret-one-32-bytes-xxxxxxxxxxxxxxxx", "u3", time.Minute)
	if err != nil {
		t.Fatalf("GenerateServiceToken error: %v", err)
	}
	v, _ := NewHMACVerifier("secret-two-32-bytes-yyyyyyyyyyyyyyyy")
	if _, err := v.Verify(context.Background(), tokenStr); err == nil {
		t.Fatalf("expected verification with wrong secret to fail")
	}
}

func TestVerify_RejectsForeignIssuerAndMissingExp(t *testing.T) {
	secret := "secret-three-32-bytes-zzzzzzzzzzzzzz"
	v, _ := NewHMACVerifier(secret)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "iss": "someone-else", "exp": time.Now().Add(time.Minute).Unix()})
	s, _ := foreign.SignedString([]byte(secret))
	if _, err := v.Verify(context.Background(), s); err == nil {
		t.Fatalf("expected foreign issuer to fail")
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "iss": Issuer})
	s, _ = noExp.SignedString([]byte(secret))
	if _, err := v.Verify(context.Background(), s); err == nil {
		t.Fatalf("expected token without exp to fail")
	}
}

func TestNoSecret(t *testing.T) {
	if _, err := GenerateServiceToken("", "x", time.Minute); err != ErrNoSecret {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}
	if _, err := NewHMACVerifier(""); err != ErrNoSecret {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}
}
