// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/acegrocer/acegrocer/internal/auth"
	"github.com/acegrocer/acegrocer/internal/config"
	"github.com/acegrocer/acegrocer/internal/logging"
	"github.com/acegrocer/acegrocer/internal/models"
)

func strPtr(s string) *string { return &s }

// starterProducts is the catalog seeded into an empty store.
var starterProducts = []models.Product{
	{
		Name:        "Bananas",
		Description: strPtr("Fresh bananas"),
		PriceCents:  199,
		SKU:         "BNN-001",
		Category:    strPtr("Fruit"),
		Stock:       120,
		ImageURL:    strPtr("https://images.unsplash.com/photo-1571772805064-2076a4cacc0a?q=80&w=1200&auto=format&fit=crop"),
	},
	{
		Name:        "Apples",
		Description: strPtr("Crisp apples"),
		PriceCents:  299,
		SKU:         "APL-001",
		Category:    strPtr("Fruit"),
		Stock:       80,
		ImageURL:    strPtr("https://images.unsplash.com/photo-1567306226416-28f0efdc88ce?q=80&w=1200&auto=format&fit=crop"),
	},
	{
		Name:        "Milk 2% 1L",
		Description: strPtr("Dairy milk"),
		PriceCents:  249,
		SKU:         "MLK-2-1L",
		Category:    strPtr("Dairy"),
		Stock:       50,
		ImageURL:    strPtr("https://images.unsplash.com/photo-1580983559361-9b3c5b8a76b4?q=80&w=1200&auto=format&fit=crop"),
	},
	{
		Name:        "Bread Loaf",
		Description: strPtr("Whole wheat bread"),
		PriceCents:  349,
		SKU:         "BRD-001",
		Category:    strPtr("Bakery"),
		Stock:       40,
		ImageURL:    strPtr("https://images.unsplash.com/photo-1549931319-a545dcf3bc73?q=80&w=1200&auto=format&fit=crop"),
	},
}

// Seed ensures the admin account exists and, when the store is empty,
// loads the starter catalog. It is idempotent across restarts.
func (db *DB) Seed(ctx context.Context, seedCfg *config.SeedConfig) error {
	if seedCfg.AdminEmail != "" && seedCfg.AdminPassword != "" {
		if err := db.seedAdmin(ctx, seedCfg.AdminEmail, seedCfg.AdminPassword); err != nil {
			return err
		}
	}

	count, err := db.CountProducts(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := range starterProducts {
		p := starterProducts[i]
		if _, err := db.CreateProduct(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.SKU, err)
		}
	}
	logging.Info().Int("products", len(starterProducts)).Msg("Seeded starter catalog")
	return nil
}

// seedAdmin creates the admin account when it does not already exist.
// An existing user with the same email keeps its password but is promoted
// to ADMIN, matching a fresh deployment that reuses an old database file.
func (db *DB) seedAdmin(ctx context.Context, email, password string) error {
	existing, err := db.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		if existing.Role != models.RoleAdmin {
			if _, err := db.conn.ExecContext(ctx,
				`UPDATE users SET role = 'ADMIN' WHERE id = ?`, existing.ID); err != nil {
				return fmt.Errorf("failed to promote admin user: %w", err)
			}
			logging.Info().Str("email", email).Msg("Promoted existing user to admin")
		}
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if _, err := db.CreateUser(ctx, email, "Admin", hash, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	logging.Info().Str("email", email).Msg("Seeded admin user")
	return nil
}
