// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/acegrocer/acegrocer/internal/database"
	"github.com/acegrocer/acegrocer/internal/logging"
	"github.com/acegrocer/acegrocer/internal/validation"
)

// Error codes surfaced in the error envelope.
const (
	codeInvalidJSON        = "INVALID_JSON"
	codeValidation         = "VALIDATION_ERROR"
	codeInvalidQuery       = "INVALID_QUERY"
	codeInvalidID          = "INVALID_ID"
	codeUnauthorized       = "UNAUTHORIZED"
	codeForbidden          = "FORBIDDEN"
	codeNotFound           = "NOT_FOUND"
	codeEmailTaken         = "EMAIL_TAKEN"
	codeSKUTaken           = "SKU_TAKEN"
	codeInvalidCredentials = "INVALID_CREDENTIALS"
	codeCartEmpty          = "CART_EMPTY"
	codeInsufficientStock  = "INSUFFICIENT_STOCK"
	codeInternal           = "INTERNAL"
)

// errorEnvelope is the uniform error body. The gatekeeper's 429 payload
// uses the same shape.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// respondJSON sends a JSON response. API responses are never cacheable;
// carts and sessions make everything per-user.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	respondJSON(w, status, &errorEnvelope{Error: errorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// respondStoreError maps store sentinel errors onto HTTP statuses and
// logs anything unexpected as a 500.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *database.StockError
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, "Not found", nil)
	case errors.Is(err, database.ErrEmailTaken):
		respondError(w, http.StatusConflict, codeEmailTaken, "Email already in use", nil)
	case errors.Is(err, database.ErrSKUTaken):
		respondError(w, http.StatusConflict, codeSKUTaken, "SKU already in use", nil)
	case errors.Is(err, database.ErrCartEmpty):
		respondError(w, http.StatusBadRequest, codeCartEmpty, "Cart is empty", nil)
	case errors.As(err, &stockErr):
		respondError(w, http.StatusConflict, codeInsufficientStock, "Insufficient stock", map[string]interface{}{
			"productId":   stockErr.ProductID,
			"productName": stockErr.ProductName,
			"requested":   stockErr.Requested,
			"available":   stockErr.Available,
		})
	default:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		respondError(w, http.StatusInternalServerError, codeInternal, "Internal server error", nil)
	}
}

// decodeAndValidate reads the request body into v and runs struct
// validation. It writes the error response itself and reports whether
// the handler may proceed.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidJSON, "Invalid JSON body", nil)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidJSON, "Invalid JSON body", nil)
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "Invalid payload", verr.Fields())
		return false
	}
	return true
}

// urlParamID extracts a positive integer {id} route parameter.
func urlParamID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
