// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package database

import (
	"context"
	"fmt"

	"github.com/acegrocer/acegrocer/internal/models"
)

// ListCartItems returns the user's cart lines joined with their products.
func (db *DB) ListCartItems(ctx context.Context, userID int64) ([]models.CartItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.user_id, c.product_id, c.qty,
		        p.id, p.name, p.description, p.price_cents, p.sku, p.category, p.stock, p.image_url, p.created_at
		 FROM cart_items c
		 JOIN products p ON p.id = c.product_id
		 WHERE c.user_id = ?
		 ORDER BY c.product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer closeQuietly(rows)

	items := []models.CartItem{}
	for rows.Next() {
		var it models.CartItem
		var p models.Product
		err := rows.Scan(&it.UserID, &it.ProductID, &it.Qty,
			&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.SKU, &p.Category, &p.Stock, &p.ImageURL, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		it.Product = &p
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddCartItem adds qty of a product to the cart, incrementing the existing
// line when one is present. The product must exist.
func (db *DB) AddCartItem(ctx context.Context, userID, productID, qty int64) (*models.CartItem, error) {
	if _, err := db.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, qty) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, product_id) DO UPDATE SET qty = cart_items.qty + excluded.qty`,
		userID, productID, qty)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return db.getCartItem(ctx, userID, productID)
}

// SetCartItemQty sets the exact quantity of a cart line, creating it when
// absent. A qty of zero or less removes the line; callers treat that as a
// successful removal, not an error.
func (db *DB) SetCartItemQty(ctx context.Context, userID, productID, qty int64) (*models.CartItem, error) {
	if qty <= 0 {
		// Removal of a non-existent line is fine.
		_, err := db.conn.ExecContext(ctx,
			`DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)
		if err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
		return nil, nil
	}

	if _, err := db.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, qty) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, product_id) DO UPDATE SET qty = excluded.qty`,
		userID, productID, qty)
	if err != nil {
		return nil, fmt.Errorf("failed to set cart item qty: %w", err)
	}

	return db.getCartItem(ctx, userID, productID)
}

// RemoveCartItem deletes a cart line. Returns ErrNotFound when absent.
func (db *DB) RemoveCartItem(ctx context.Context, userID, productID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CartCount returns the total quantity across the user's cart lines.
func (db *DB) CartCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(qty), 0) FROM cart_items WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}

func (db *DB) getCartItem(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	var it models.CartItem
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, product_id, qty FROM cart_items WHERE user_id = ? AND product_id = ?`,
		userID, productID).Scan(&it.UserID, &it.ProductID, &it.Qty)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}
	return &it, nil
}
