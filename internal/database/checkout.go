// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package database

import (
	"context"
	"fmt"

	"github.com/acegrocer/acegrocer/internal/logging"
	"github.com/acegrocer/acegrocer/internal/models"
)

// Payment records created at checkout. The provider is mocked; every
// authorization succeeds.
const (
	paymentProvider = "MOCK"
	paymentStatus   = "AUTHORIZED"
)

// Checkout converts the user's cart into a paid order inside a single SQL
// transaction: create the order, snapshot cart lines as order items at
// current prices, decrement stock, clear the cart, record the mock payment
// and mark the order PAID. Any failure rolls the whole thing back.
//
// Returns ErrCartEmpty for an empty cart and a *StockError when any line
// exceeds available stock.
func (db *DB) Checkout(ctx context.Context, userID int64) (*models.Order, error) {
	items, err := db.ListCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	var totalCents int64
	for _, it := range items {
		if it.Qty > it.Product.Stock {
			return nil, &StockError{
				ProductID:   it.ProductID,
				ProductName: it.Product.Name,
				Requested:   it.Qty,
				Available:   it.Product.Stock,
			}
		}
		totalCents += it.Qty * it.Product.PriceCents
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin checkout transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err.Error() != "sql: transaction has already been committed or rolled back" {
			logging.Debug().Err(err).Msg("Checkout rollback failed")
		}
	}()

	var order models.Order
	order.UserID = userID
	order.TotalCents = totalCents
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, total_cents, status) VALUES (?, ?, 'PENDING')
		 RETURNING id, created_at`, userID, totalCents).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, it := range items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, qty, price_cents) VALUES (?, ?, ?, ?)`,
			order.ID, it.ProductID, it.Qty, it.Product.PriceCents)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}

		// Re-check stock inside the transaction so two concurrent
		// checkouts cannot both drain the same inventory.
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
			it.Qty, it.ProductID, it.Qty)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, &StockError{
				ProductID:   it.ProductID,
				ProductName: it.Product.Name,
				Requested:   it.Qty,
				Available:   it.Product.Stock,
			}
		}

		order.Items = append(order.Items, models.OrderItem{
			OrderID:     order.ID,
			ProductID:   it.ProductID,
			Qty:         it.Qty,
			PriceCents:  it.Product.PriceCents,
			ProductName: it.Product.Name,
		})
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (order_id, amount_cents, status, provider) VALUES (?, ?, ?, ?)`,
		order.ID, totalCents, paymentStatus, paymentProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE orders SET status = 'PAID' WHERE id = ?`, order.ID); err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	order.Status = models.OrderPaid
	logging.Info().
		Int64("user_id", userID).
		Int64("order_id", order.ID).
		Int64("total_cents", totalCents).
		Msg("Checkout completed")
	return &order, nil
}
