// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package api

import (
	"errors"
	"net/http"

	"github.com/acegrocer/acegrocer/internal/auth"
	"github.com/acegrocer/acegrocer/internal/database"
	"github.com/acegrocer/acegrocer/internal/logging"
	"github.com/acegrocer/acegrocer/internal/models"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

type mePatchRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=200"`
}

// userView is the public projection of a user account.
type userView struct {
	ID    int64       `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

func viewOf(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// handleRegister creates a customer account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	user, err := s.db.CreateUser(r.Context(), req.Email, req.Name, hash, models.RoleCustomer)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("User registered")
	respondJSON(w, http.StatusCreated, viewOf(user))
}

// handleLogin verifies credentials and sets the session cookie.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, codeInvalidCredentials, "Invalid credentials", nil)
			return
		}
		respondStoreError(w, r, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, codeInvalidCredentials, "Invalid credentials", nil)
		return
	}

	token, err := s.codec.Issue(user.ID, user.Role, user.Email, 0)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	s.cookies.SetSession(w, r, token)

	logging.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("User logged in")
	respondJSON(w, http.StatusOK, viewOf(user))
}

// handleLogout clears the session cookie. Always succeeds, even for
// anonymous callers.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.cookies.ClearSession(w, r)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleMe returns the current account, or a null user for anonymous
// callers. The null shape lets the storefront render its signed-out
// state without a 401 roundtrip.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	cred := auth.CredentialFromContext(r.Context())
	if cred == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	user, err := s.db.GetUserByID(r.Context(), cred.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Token outlived the account.
			respondJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
			return
		}
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": viewOf(user)})
}

// handleUpdateMe changes the caller's display name.
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	cred := auth.CredentialFromContext(r.Context())

	var req mePatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Name == nil {
		user, err := s.db.GetUserByID(r.Context(), cred.UserID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, viewOf(user))
		return
	}

	user, err := s.db.UpdateUserName(r.Context(), cred.UserID, *req.Name)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(user))
}
