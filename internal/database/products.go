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

	"github.com/acegrocer/acegrocer/internal/models"
)

// ProductFilter narrows a catalog listing. Zero values mean "no filter".
type ProductFilter struct {
	Search   string
	Category string
	MinPrice *int64
	MaxPrice *int64
}

// ProductUpdate carries a partial catalog edit. Nil fields are untouched.
// Description and Category distinguish "absent" (outer nil) from an
// explicit null (inner nil).
type ProductUpdate struct {
	Name        *string
	Description **string
	PriceCents  *int64
	SKU         *string
	Category    **string
	Stock       *int64
	ImageURL    **string
}

// ListProducts returns catalog entries matching the filter, newest first.
// Search matches name or description case-insensitively.
func (db *DB) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var conds []string
	var args []interface{}

	if filter.Search != "" {
		conds = append(conds, "(name ILIKE ? OR description ILIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price_cents >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price_cents <= ?")
		args = append(args, *filter.MaxPrice)
	}

	query := `SELECT id, name, description, price_cents, sku, category, stock, image_url, created_at FROM products`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer closeQuietly(rows)

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetProduct retrieves a catalog entry by ID. Returns ErrNotFound when absent.
func (db *DB) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, price_cents, sku, category, stock, image_url, created_at
		 FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProduct inserts a new catalog entry and returns it with the assigned ID.
func (db *DB) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO products (name, description, price_cents, sku, category, stock, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id, created_at`,
		p.Name, p.Description, p.PriceCents, p.SKU, p.Category, p.Stock, p.ImageURL)

	created := *p
	if err := row.Scan(&created.ID, &created.CreatedAt); err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrSKUTaken
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &created, nil
}

// UpdateProduct applies a partial edit and returns the updated row.
func (db *DB) UpdateProduct(ctx context.Context, id int64, upd ProductUpdate) (*models.Product, error) {
	var sets []string
	var args []interface{}

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.PriceCents != nil {
		sets = append(sets, "price_cents = ?")
		args = append(args, *upd.PriceCents)
	}
	if upd.SKU != nil {
		sets = append(sets, "sku = ?")
		args = append(args, *upd.SKU)
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.Stock != nil {
		sets = append(sets, "stock = ?")
		args = append(args, *upd.Stock)
	}
	if upd.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *upd.ImageURL)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, id)
	res, err := db.conn.ExecContext(ctx,
		fmt.Sprintf("UPDATE products SET %s WHERE id = ?", strings.Join(sets, ", ")), args...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrSKUTaken
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return db.GetProduct(ctx, id)
}

// DeleteProduct removes a catalog entry. Returns ErrNotFound when absent.
func (db *DB) DeleteProduct(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountProducts returns the total number of catalog entries.
func (db *DB) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func scanProduct(row *sql.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.SKU, &p.Category, &p.Stock, &p.ImageURL, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return &p, nil
}

func scanProductRow(rows *sql.Rows) (*models.Product, error) {
	var p models.Product
	err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.SKU, &p.Category, &p.Stock, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return &p, nil
}
