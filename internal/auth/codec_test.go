// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/acegrocer/acegrocer/internal/config"
	"github.com/acegrocer/acegrocer/internal/models"
)

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(&config.SecurityConfig{
		JWTSecret:  "test-secret-for-codec-tests",
		SessionTTL: 12 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenCodec failed: %v", err)
	}
	return codec
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue(42, models.RoleAdmin, "admin@example.com", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	cred := codec.Verify(token)
	if cred == nil {
		t.Fatal("Verify returned nil for a freshly issued token")
	}
	if cred.UserID != 42 {
		t.Errorf("UserID = %d, want 42", cred.UserID)
	}
	if cred.Role != models.RoleAdmin {
		t.Errorf("Role = %s, want ADMIN", cred.Role)
	}
	if cred.Email != "admin@example.com" {
		t.Errorf("Email = %s, want admin@example.com", cred.Email)
	}
	if !cred.IsAdmin() {
		t.Error("IsAdmin() = false for ADMIN credential")
	}
}

func TestTokenCodec_VerifyNormalizesFailuresToNil(t *testing.T) {
	codec := newTestCodec(t)

	valid, err := codec.Issue(1, models.RoleCustomer, "a@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// A token signed with a different secret.
	otherCodec, err := NewTokenCodec(&config.SecurityConfig{
		JWTSecret:  "a-completely-different-secret",
		SessionTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenCodec failed: %v", err)
	}
	foreign, err := otherCodec.Issue(1, models.RoleCustomer, "a@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// A structurally valid token with a tampered payload.
	parts := strings.Split(valid, ".")
	tampered := parts[0] + ".eyJyb2xlIjoiQURNSU4ifQ." + parts[2]

	cases := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"garbage", "not-a-jwt-at-all"},
		{"wrong secret", foreign},
		{"tampered payload", tampered},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if cred := codec.Verify(tc.token); cred != nil {
				t.Errorf("Verify(%s) = %+v, want nil", tc.name, cred)
			}
		})
	}
}

func TestTokenCodec_RejectsExpiredToken(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue(7, models.RoleCustomer, "x@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if cred := codec.Verify(token); cred != nil {
		t.Errorf("Verify accepted an expired token: %+v", cred)
	}
}

func TestTokenCodec_RejectsWrongSigningMethod(t *testing.T) {
	codec := newTestCodec(t)

	// alg=none with a well-formed claims set must never verify.
	claims := jwt.MapClaims{
		"sub":   "1",
		"role":  "ADMIN",
		"email": "evil@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing with none failed: %v", err)
	}

	if cred := codec.Verify(token); cred != nil {
		t.Errorf("Verify accepted an unsigned token: %+v", cred)
	}
}

func TestTokenCodec_RejectsBadSubjectAndRole(t *testing.T) {
	codec := newTestCodec(t)

	cases := []struct {
		name string
		sub  string
		role string
	}{
		{"non-numeric subject", "abc", "CUSTOMER"},
		{"zero subject", "0", "CUSTOMER"},
		{"negative subject", "-3", "CUSTOMER"},
		{"unknown role", "5", "SUPERUSER"},
		{"empty role", "5", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims := jwt.MapClaims{
				"sub":   tc.sub,
				"role":  tc.role,
				"email": "u@example.com",
				"exp":   time.Now().Add(time.Hour).Unix(),
			}
			raw := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
			token, err := raw.SignedString([]byte("test-secret-for-codec-tests"))
			if err != nil {
				t.Fatalf("signing failed: %v", err)
			}
			if cred := codec.Verify(token); cred != nil {
				t.Errorf("Verify accepted claims sub=%q role=%q: %+v", tc.sub, tc.role, cred)
			}
		})
	}
}

func TestNewTokenCodec_RequiresSecret(t *testing.T) {
	if _, err := NewTokenCodec(&config.SecurityConfig{SessionTTL: time.Hour}); err == nil {
		t.Error("NewTokenCodec accepted an empty secret")
	}
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("CheckPassword accepted the wrong password")
	}
}
