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

// CreateUser inserts a new user and returns it with the assigned ID.
// Email uniqueness is case-insensitive via the email_lower column.
func (db *DB) CreateUser(ctx context.Context, email, name, passwordHash string, role models.Role) (*models.User, error) {
	emailLower := strings.ToLower(email)
	now := time.Now().UTC()

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO users (email, email_lower, name, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		email, emailLower, name, passwordHash, string(role), now)

	var id int64
	if err := row.Scan(&id); err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:           id,
		Email:        email,
		EmailLower:   emailLower,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
	}, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
// Returns ErrNotFound when no such user exists.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, email, email_lower, name, password_hash, role, created_at
		 FROM users WHERE email_lower = ?`,
		strings.ToLower(email))
	return scanUser(row)
}

// GetUserByID retrieves a user by ID. Returns ErrNotFound when absent.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, email, email_lower, name, password_hash, role, created_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// UpdateUserName changes a user's display name and returns the updated row.
func (db *DB) UpdateUserName(ctx context.Context, id int64, name string) (*models.User, error) {
	res, err := db.conn.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return db.GetUserByID(ctx, id)
}

// CountUsers returns the total number of registered users.
func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.EmailLower, &u.Name, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Role = models.Role(role)
	return &u, nil
}
