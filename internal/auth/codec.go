// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

// Package auth provides the session token codec and credential handling.
//
// A session credential is a compact HS256-signed assertion of identity
// (subject id, role, optional email) carried in an HTTP-only cookie. The
// codec is deliberately one-way about failures: Verify collapses every
// failure mode (absent, malformed, tampered, wrong key, expired) into the
// same "no identity" result, so callers handle exactly one anonymous branch.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/acegrocer/acegrocer/internal/config"
	"github.com/acegrocer/acegrocer/internal/models"
)

// Credential is the decoded identity asserted by a verified session token.
type Credential struct {
	UserID int64
	Role   models.Role
	Email  string
}

// IsAdmin reports whether the credential carries the admin role.
func (c *Credential) IsAdmin() bool {
	return c != nil && c.Role == models.RoleAdmin
}

// sessionClaims is the JWT claim set for a session token.
// Subject carries the user id as a decimal string per RFC 7519.
type sessionClaims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies session tokens with a process-wide
// symmetric secret using HMAC-SHA256.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a codec from the security configuration.
// The secret must be non-empty; config validation enforces a real secret
// in the production posture.
func NewTokenCodec(cfg *config.SecurityConfig) (*TokenCodec, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	return &TokenCodec{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.SessionTTL,
	}, nil
}

// Issue creates a signed session token for the given identity.
// The token expires after the given ttl; a non-positive ttl produces an
// already-expired token, which Verify will reject. A zero ttl means
// "use the configured default".
func (c *TokenCodec) Issue(userID int64, role models.Role, email string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = c.ttl
	}
	now := time.Now()
	claims := &sessionClaims{
		Role:  string(role),
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify validates a session token and returns the decoded credential.
//
// It returns nil for any token that is not trustworthy: malformed
// structure, bad signature, a token signed under a different secret, an
// unexpected signing algorithm, or an elapsed expiry. Callers must treat
// nil as "anonymous", never as a fault; the reason for rejection is
// intentionally not exposed.
func (c *TokenCodec) Verify(tokenString string) *Credential {
	if tokenString == "" {
		return nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Pin HMAC to prevent algorithm confusion attacks
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok {
		return nil
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil
	}

	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil
	}

	return &Credential{
		UserID: userID,
		Role:   role,
		Email:  claims.Email,
	}
}
