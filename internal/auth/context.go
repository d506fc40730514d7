// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package auth

import "context"

// contextKey is the private type for auth context keys.
type contextKey string

// credentialKey is the context key under which the gatekeeper stores the
// decoded session credential.
const credentialKey contextKey = "session_credential"

// ContextWithCredential returns a context carrying the decoded credential.
// A nil credential is stored as-is; readers treat it as anonymous.
func ContextWithCredential(ctx context.Context, cred *Credential) context.Context {
	return context.WithValue(ctx, credentialKey, cred)
}

// CredentialFromContext retrieves the session credential from context.
// Returns nil for anonymous requests.
func CredentialFromContext(ctx context.Context) *Credential {
	if cred, ok := ctx.Value(credentialKey).(*Credential); ok {
		return cred
	}
	return nil
}
