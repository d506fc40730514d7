// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package api

import (
	"net/http"

	"github.com/acegrocer/acegrocer/internal/auth"
)

type cartAddRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Qty       int64 `json:"qty" validate:"required,min=1,max=100"`
}

// cartPatchRequest sets an exact quantity. Zero or negative removes the
// line, so qty has no lower bound here.
type cartPatchRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Qty       int64 `json:"qty" validate:"max=100"`
}

type cartRemoveRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// handleListCart serves the caller's cart with product details joined in.
func (s *Server) handleListCart(w http.ResponseWriter, r *http.Request) {
	cred := auth.CredentialFromContext(r.Context())

	items, err := s.db.ListCartItems(r.Context(), cred.UserID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// handleAddCartItem adds quantity to a cart line, creating it when absent.
func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	cred := auth.CredentialFromContext(r.Context())

	var req cartAddRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := s.db.AddCartItem(r.Context(), cred.UserID, req.ProductID, req.Qty)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"item": item})
}

// handleSetCartItemQty sets the exact quantity of a cart line. A qty of
// zero or less removes the line.
func (s *Server) handleSetCartItemQty(w http.ResponseWriter, r *http.Request) {
	cred := auth.CredentialFromContext(r.Context())

	var req cartPatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := s.db.SetCartItemQty(r.Context(), cred.UserID, req.ProductID, req.Qty)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	if item == nil {
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true, "removed": true})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"item": item})
}

// handleRemoveCartItem deletes a cart line.
func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cred := auth.CredentialFromContext(r.Context())

	var req cartRemoveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.db.RemoveCartItem(r.Context(), cred.UserID, req.ProductID); err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleCartCount returns the total quantity in the caller's cart.
// Anonymous callers get zero; the storefront badge polls this without
// caring about auth state.
func (s *Server) handleCartCount(w http.ResponseWriter, r *http.Request) {
	cred := auth.CredentialFromContext(r.Context())
	if cred == nil {
		respondJSON(w, http.StatusOK, map[string]int64{"count": 0})
		return
	}

	count, err := s.db.CartCount(r.Context(), cred.UserID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}
