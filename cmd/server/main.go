// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

// Package main is the entry point for the AceGrocer API server.
//
// AceGrocer is a small e-commerce storefront with an admin back-office.
// Every /api request passes through the gatekeeper middleware, which
// assigns request IDs, decodes the session cookie, applies fixed-window
// rate limits to sensitive routes, sets security headers and feeds the
// metrics collector.
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables over config.yaml over
//     built-in defaults (Koanf v2)
//  2. Logging: zerolog, JSON or console format
//  3. Database: embedded DuckDB, schema creation and seeding
//  4. Gatekeeper: token codec, rate limiter, metrics collector
//  5. Authorization: embedded Casbin role policy
//  6. Supervision: suture tree running the HTTP server and the rate
//     limit window sweeper
//
// Shutdown is graceful on SIGINT and SIGTERM: the listener drains
// in-flight requests (10s timeout) before the database closes.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acegrocer/acegrocer/internal/api"
	"github.com/acegrocer/acegrocer/internal/auth"
	"github.com/acegrocer/acegrocer/internal/authz"
	"github.com/acegrocer/acegrocer/internal/config"
	"github.com/acegrocer/acegrocer/internal/database"
	"github.com/acegrocer/acegrocer/internal/logging"
	"github.com/acegrocer/acegrocer/internal/metrics"
	"github.com/acegrocer/acegrocer/internal/middleware"
	"github.com/acegrocer/acegrocer/internal/ratelimit"
	"github.com/acegrocer/acegrocer/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting AceGrocer")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("Database close was not clean")
		}
	}()

	if cfg.Database.SeedData {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Seed(seedCtx, &cfg.Seed); err != nil {
			seedCancel()
			logging.Fatal().Err(err).Msg("Failed to seed database")
		}
		seedCancel()
	}

	codec, err := auth.NewTokenCodec(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create token codec")
	}
	cookies := auth.NewCookieManager(&cfg.Security)
	limiter := ratelimit.New(&cfg.RateLimit)
	collector := metrics.New()
	gate := middleware.NewGatekeeper(cfg, codec, cookies, limiter, collector)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create authorization enforcer")
	}

	server := api.NewServer(cfg, db, codec, cookies, collector, enforcer, gate)

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddAPIService(api.NewHTTPService(&cfg.Server, server.Routes()))
	tree.AddMaintenanceService(ratelimit.NewSweeper(limiter, ratelimit.DefaultSweepInterval))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor exited with error")
		os.Exit(1)
	}

	logging.Info().Msg("Shutdown complete")
}
