// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package database

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the store. Handlers translate these into
// HTTP status codes.
var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already in use")
	ErrSKUTaken   = errors.New("sku already in use")
	ErrCartEmpty  = errors.New("cart is empty")
)

// StockError reports a checkout attempt that exceeds available stock.
type StockError struct {
	ProductID   int64
	ProductName string
	Requested   int64
	Available   int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): requested %d, available %d",
		e.ProductID, e.ProductName, e.Requested, e.Available)
}

// isUniqueConstraintError detects DuckDB unique/primary key violations.
// DuckDB surfaces these as constraint errors in the message text; the
// driver exposes no typed error for them.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "primary key constraint")
}
