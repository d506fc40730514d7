// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates sequences, tables and indexes.
// All statements are idempotent so startup after a restart is a no-op.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		// DuckDB has no AUTOINCREMENT; numeric primary keys draw from
		// explicit sequences.
		`CREATE SEQUENCE IF NOT EXISTS seq_users START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_products START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_orders START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_order_items START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_transactions START 1`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_users'),
			email TEXT NOT NULL,
			email_lower TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'CUSTOMER',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS products (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_products'),
			name TEXT NOT NULL,
			description TEXT,
			price_cents BIGINT NOT NULL,
			sku TEXT NOT NULL UNIQUE,
			category TEXT,
			stock BIGINT NOT NULL DEFAULT 0,
			image_url TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Composite key: one row per (user, product) pair.
		`CREATE TABLE IF NOT EXISTS cart_items (
			user_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			qty BIGINT NOT NULL,
			PRIMARY KEY (user_id, product_id)
		)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_orders'),
			user_id BIGINT NOT NULL,
			total_cents BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// price_cents captures the unit price at checkout time; later
		// catalog edits never change a placed order.
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_order_items'),
			order_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			qty BIGINT NOT NULL,
			price_cents BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_transactions'),
			order_id BIGINT NOT NULL,
			amount_cents BIGINT NOT NULL,
			status TEXT NOT NULL,
			provider TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_order ON transactions(order_id)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}
