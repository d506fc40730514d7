// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/acegrocer/acegrocer/internal/models"
)

// OrderFilter narrows an admin order listing. Zero values mean "no filter".
// Page numbering starts at 1.
type OrderFilter struct {
	Status   models.OrderStatus
	Email    string
	From     *time.Time
	To       *time.Time
	Sort     string // createdAt, totalCents, status, userEmail
	Order    string // asc or desc
	Page     int
	PageSize int
}

// Sortable columns, keyed by the API-facing field names.
var orderSortColumns = map[string]string{
	"createdAt":  "o.created_at",
	"totalCents": "o.total_cents",
	"status":     "o.status",
	"userEmail":  "u.email",
}

// ListOrdersForUser returns the user's orders newest first, each with its
// item lines (product names included).
func (db *DB) ListOrdersForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, total_cents, status, created_at
		 FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer closeQuietly(rows)

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := db.listOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// GetOrderForUser retrieves one of the user's orders with its item lines.
// Returns ErrNotFound when the order does not exist or belongs to someone else.
func (db *DB) GetOrderForUser(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, total_cents, status, created_at
		 FROM orders WHERE id = ? AND user_id = ?`, orderID, userID)

	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}

	items, err := db.listOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// GetOrder retrieves any order by ID with its item lines, regardless of
// owner. Back-office use only.
func (db *DB) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, total_cents, status, created_at
		 FROM orders WHERE id = ?`, orderID)

	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}

	items, err := db.listOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// ListOrdersAdmin returns a filtered, sorted, paginated page of all orders
// plus the total count matching the filter. User emails are joined in.
// An email filter that matches no user yields an empty page, not an error.
func (db *DB) ListOrdersAdmin(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	var conds []string
	var args []interface{}

	if filter.Status != "" {
		conds = append(conds, "o.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Email != "" {
		conds = append(conds, "u.email_lower = ?")
		args = append(args, strings.ToLower(filter.Email))
	}
	if filter.From != nil {
		conds = append(conds, "o.created_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conds = append(conds, "o.created_at <= ?")
		args = append(args, *filter.To)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM orders o JOIN users u ON u.id = o.user_id` + where
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	sortCol, ok := orderSortColumns[filter.Sort]
	if !ok {
		sortCol = "o.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		dir = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	query := fmt.Sprintf(
		`SELECT o.id, o.user_id, o.total_cents, o.status, o.created_at, u.email
		 FROM orders o JOIN users u ON u.id = o.user_id%s
		 ORDER BY %s %s, o.id %s LIMIT ? OFFSET ?`,
		where, sortCol, dir, dir)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer closeQuietly(rows)

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalCents, &status, &o.CreatedAt, &o.UserEmail); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Status = models.OrderStatus(status)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		items, err := db.listOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

// UpdateOrderStatus sets an order's lifecycle state and returns the updated
// order. Returns ErrNotFound when the order does not exist.
func (db *DB) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`, string(status), orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", orderID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, total_cents, status, created_at FROM orders WHERE id = ?`, orderID)
	return scanOrder(row)
}

// GetTransactionForOrder returns the payment record attached to an order.
func (db *DB) GetTransactionForOrder(ctx context.Context, orderID int64) (*models.Transaction, error) {
	var t models.Transaction
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, order_id, amount_cents, status, provider, created_at
		 FROM transactions WHERE order_id = ?`, orderID).
		Scan(&t.ID, &t.OrderID, &t.AmountCents, &t.Status, &t.Provider, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return &t, nil
}

func (db *DB) listOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT i.order_id, i.product_id, i.qty, i.price_cents, COALESCE(p.name, '')
		 FROM order_items i
		 LEFT JOIN products p ON p.id = i.product_id
		 WHERE i.order_id = ? ORDER BY i.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer closeQuietly(rows)

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.Qty, &it.PriceCents, &it.ProductName); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row *sql.Row) (*models.Order, error) {
	var o models.Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.TotalCents, &status, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	o.Status = models.OrderStatus(status)
	return &o, nil
}

func scanOrderRow(rows *sql.Rows) (*models.Order, error) {
	var o models.Order
	var status string
	if err := rows.Scan(&o.ID, &o.UserID, &o.TotalCents, &status, &o.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	o.Status = models.OrderStatus(status)
	return &o, nil
}
