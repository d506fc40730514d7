// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/acegrocer/acegrocer/internal/database"
	"github.com/acegrocer/acegrocer/internal/logging"
	"github.com/acegrocer/acegrocer/internal/models"
)

type adminOrderPatchRequest struct {
	ID     int64  `json:"id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,oneof=PENDING PAID SHIPPED DELIVERED CANCELED"`
}

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

// handleAdminListOrders serves the back-office order table: filterable
// by status, customer email and date range, sortable and paginated.
func (s *Server) handleAdminListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := database.OrderFilter{
		Email:    strings.TrimSpace(q.Get("email")),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
		Page:     1,
		PageSize: defaultOrderPageSize,
	}

	if raw := q.Get("status"); raw != "" {
		status := models.OrderStatus(raw)
		if !status.Valid() {
			respondError(w, http.StatusBadRequest, codeInvalidQuery, "Invalid query", map[string]string{
				"status": "must be one of PENDING, PAID, SHIPPED, DELIVERED, CANCELED",
			})
			return
		}
		filter.Status = status
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"from", &filter.From},
		{"to", &filter.To},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidQuery, "Invalid query", map[string]string{
				p.name: "must be an RFC 3339 timestamp",
			})
			return
		}
		*p.dst = &t
	}

	if raw := q.Get("sort"); raw != "" {
		switch raw {
		case "createdAt", "totalCents", "status", "userEmail":
		default:
			respondError(w, http.StatusBadRequest, codeInvalidQuery, "Invalid query", map[string]string{
				"sort": "must be one of createdAt, totalCents, status, userEmail",
			})
			return
		}
	}
	if raw := q.Get("order"); raw != "" && raw != "asc" && raw != "desc" {
		respondError(w, http.StatusBadRequest, codeInvalidQuery, "Invalid query", map[string]string{
			"order": "must be asc or desc",
		})
		return
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			respondError(w, http.StatusBadRequest, codeInvalidQuery, "Invalid query", map[string]string{
				"page": "must be a positive integer",
			})
			return
		}
		filter.Page = page
	}
	if raw := q.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxOrderPageSize {
			respondError(w, http.StatusBadRequest, codeInvalidQuery, "Invalid query", map[string]string{
				"pageSize": "must be between 1 and 100",
			})
			return
		}
		filter.PageSize = size
	}

	orders, total, err := s.db.ListOrdersAdmin(r.Context(), filter)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"orders":   orders,
		"page":     filter.Page,
		"pageSize": filter.PageSize,
		"total":    total,
	})
}

// handleAdminUpdateOrder sets an order's lifecycle state.
func (s *Server) handleAdminUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req adminOrderPatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := s.db.UpdateOrderStatus(r.Context(), req.ID, models.OrderStatus(req.Status))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("order_id", order.ID).
		Str("status", string(order.Status)).
		Msg("Order status updated")
	respondJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}
