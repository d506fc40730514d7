// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

// Package api provides HTTP routing and request handlers using the Chi
// router. Every /api route passes through the gatekeeper middleware
// first, so handlers can assume request IDs, metrics accounting and a
// decoded session credential are already in place.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acegrocer/acegrocer/internal/auth"
	"github.com/acegrocer/acegrocer/internal/authz"
	"github.com/acegrocer/acegrocer/internal/config"
	"github.com/acegrocer/acegrocer/internal/database"
	"github.com/acegrocer/acegrocer/internal/logging"
	"github.com/acegrocer/acegrocer/internal/metrics"
	"github.com/acegrocer/acegrocer/internal/middleware"
)

// Server bundles the handler dependencies and builds the router.
type Server struct {
	cfg       *config.Config
	db        *database.DB
	codec     *auth.TokenCodec
	cookies   *auth.CookieManager
	collector *metrics.Collector
	enforcer  *authz.Enforcer
	gate      *middleware.Gatekeeper
	promReg   *prometheus.Registry
}

// NewServer wires the API server from its collaborators.
func NewServer(
	cfg *config.Config,
	db *database.DB,
	codec *auth.TokenCodec,
	cookies *auth.CookieManager,
	collector *metrics.Collector,
	enforcer *authz.Enforcer,
	gate *middleware.Gatekeeper,
) *Server {
	// Private registry so the exposition carries only storefront metrics.
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collector)

	return &Server{
		cfg:       cfg,
		db:        db,
		codec:     codec,
		cookies:   cookies,
		collector: collector,
		enforcer:  enforcer,
		gate:      gate,
		promReg:   promReg,
	}
}

// Routes builds the complete HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Global middleware stack, applied to all routes in order. The
	// gatekeeper runs before CORS so throttling and metrics cover
	// preflight traffic inside its scope too.
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.gate.Handler)
	r.Use(corsHandler(s.cfg.Server.CORSOrigins))

	// Health endpoints: unauthenticated, permissively rate limited for
	// monitoring probes.
	r.Route("/api/health", func(r chi.Router) {
		r.Use(healthRateLimit())
		r.Get("/", s.handleHealthLive)
		r.Get("/live", s.handleHealthLive)
		r.Get("/ready", s.handleHealthReady)
	})

	// Public storefront surface.
	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/logout", s.handleLogout)
	r.Get("/api/me", s.handleMe)
	r.Get("/api/products", s.handleListProducts)
	r.Get("/api/products/{id}", s.handleGetProduct)
	r.Get("/api/cart/count", s.handleCartCount)

	// Authenticated surface, gated by the Casbin policy.
	r.Group(func(r chi.Router) {
		r.Use(authorize(s.enforcer))

		r.Patch("/api/me", s.handleUpdateMe)

		r.Get("/api/cart", s.handleListCart)
		r.Post("/api/cart", s.handleAddCartItem)
		r.Patch("/api/cart", s.handleSetCartItemQty)
		r.Delete("/api/cart", s.handleRemoveCartItem)

		r.Post("/api/checkout", s.handleCheckout)

		r.Get("/api/orders", s.handleListOrders)
		r.Get("/api/orders/{id}", s.handleGetOrder)

		r.Post("/api/products", s.handleCreateProduct)
		r.Patch("/api/products/{id}", s.handleUpdateProduct)
		r.Delete("/api/products/{id}", s.handleDeleteProduct)

		r.Get("/api/admin/orders", s.handleAdminListOrders)
		r.Patch("/api/admin/orders", s.handleAdminUpdateOrder)

		r.Get("/api/metrics", s.handleMetrics)
		r.With(requireAdmin).Handle("/api/metrics/prom",
			promhttp.HandlerFor(s.promReg, promhttp.HandlerOpts{}))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, codeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}

// HTTPService runs the HTTP server under suture supervision.
type HTTPService struct {
	server *http.Server
	addr   string
}

// NewHTTPService builds the supervised HTTP server around the router.
func NewHTTPService(cfg *config.ServerConfig, handler http.Handler) *HTTPService {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &HTTPService{
		addr: addr,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Timeout,
			WriteTimeout:      cfg.Timeout,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Serve implements suture.Service. It blocks until the context is
// canceled, then drains in-flight requests.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.addr).Msg("HTTP server listening")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("HTTP server shutdown was not clean")
		}
		return ctx.Err()
	}
}

// String names the service in supervisor logs.
func (s *HTTPService) String() string {
	return "http-server"
}
