// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/acegrocer/acegrocer/internal/database"
	"github.com/acegrocer/acegrocer/internal/models"
)

type productCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	PriceCents  int64   `json:"priceCents" validate:"gte=0"`
	SKU         string  `json:"sku" validate:"required,min=1"`
	Category    *string `json:"category" validate:"omitempty,min=1"`
	Stock       int64   `json:"stock" validate:"gte=0"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
}

type productPatchRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1"`
	Description optString `json:"description"`
	PriceCents  *int64    `json:"priceCents" validate:"omitempty,gte=0"`
	SKU         *string   `json:"sku" validate:"omitempty,min=1"`
	Category    optString `json:"category"`
	Stock       *int64    `json:"stock" validate:"omitempty,gte=0"`
	ImageURL    optString `json:"imageUrl"`
}

// optString distinguishes an absent field from an explicit null, which
// plain *string cannot. Null clears the column; absence leaves it alone.
type optString struct {
	set   bool
	value *string
}

func (o *optString) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		o.value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.value = &s
	return nil
}

// handleListProducts serves the catalog with optional search, category
// and price-range filters.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := database.ProductFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
	}

	for _, p := range []struct {
		name string
		dst  **int64
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			respondError(w, http.StatusBadRequest, codeInvalidQuery, "Invalid query", map[string]string{
				p.name: "must be a non-negative integer",
			})
			return
		}
		*p.dst = &v
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		respondError(w, http.StatusBadRequest, codeInvalidQuery, "Invalid query", map[string]string{
			"minPrice": "cannot be greater than maxPrice",
		})
		return
	}

	products, err := s.db.ListProducts(r.Context(), filter)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// handleGetProduct serves a single catalog entry.
func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid id", nil)
		return
	}

	product, err := s.db.GetProduct(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

// handleCreateProduct adds a catalog entry. Admin only.
func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := s.db.CreateProduct(r.Context(), &models.Product{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		SKU:         req.SKU,
		Category:    req.Category,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"product": product})
}

// handleUpdateProduct applies a partial catalog edit. Admin only.
// Description, category and imageUrl accept explicit nulls to clear them.
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid id", nil)
		return
	}

	var req productPatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if req.Description.set && req.Description.value != nil && len(*req.Description.value) > 2000 {
		respondError(w, http.StatusBadRequest, codeValidation, "Invalid payload", map[string]string{
			"description": "must be at most 2000 characters",
		})
		return
	}

	upd := database.ProductUpdate{
		Name:       req.Name,
		PriceCents: req.PriceCents,
		SKU:        req.SKU,
		Stock:      req.Stock,
	}
	if req.Description.set {
		upd.Description = &req.Description.value
	}
	if req.Category.set {
		upd.Category = &req.Category.value
	}
	if req.ImageURL.set {
		upd.ImageURL = &req.ImageURL.value
	}
	if upd.Name == nil && upd.Description == nil && upd.PriceCents == nil &&
		upd.SKU == nil && upd.Category == nil && upd.Stock == nil && upd.ImageURL == nil {
		respondError(w, http.StatusBadRequest, codeValidation, "No fields to update", nil)
		return
	}

	product, err := s.db.UpdateProduct(r.Context(), id, upd)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

// handleDeleteProduct removes a catalog entry. Admin only.
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Invalid id", nil)
		return
	}

	if err := s.db.DeleteProduct(r.Context(), id); err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
