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
	"github.com/acegrocer/acegrocer/internal/models"
)

// orderDetail adds the payment record to the order projection.
type orderDetail struct {
	models.Order
	Transaction *models.Transaction `json:"transaction,omitempty"`
}

// handleCheckout converts the caller's cart into a paid order.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	cred := auth.CredentialFromContext(r.Context())

	order, err := s.db.Checkout(r.Context(), cred.UserID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"orderId":    order.ID,
		"status":     order.Status,
		"totalCents": order.TotalCents,
	})
}

// handleListOrders serves the caller's order history, newest first.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	cred := auth.CredentialFromContext(r.Context())

	orders, err := s.db.ListOrdersForUser(r.Context(), cred.UserID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// handleGetOrder serves one of the caller's orders with its payment
// record. Someone else's order is a 404, not a 403; order IDs are not
// meant to leak existence. Admins may read any order.
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	cred := auth.CredentialFromContext(r.Context())

	id, err := urlParamID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid id", nil)
		return
	}

	var order *models.Order
	if cred.Role == models.RoleAdmin {
		order, err = s.db.GetOrder(r.Context(), id)
	} else {
		order, err = s.db.GetOrderForUser(r.Context(), cred.UserID, id)
	}
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	detail := orderDetail{Order: *order}
	tx, err := s.db.GetTransactionForOrder(r.Context(), order.ID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		respondStoreError(w, r, err)
		return
	}
	detail.Transaction = tx

	respondJSON(w, http.StatusOK, map[string]interface{}{"order": detail})
}
