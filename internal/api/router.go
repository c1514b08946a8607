/**
 * @description
 * This file sets up the HTTP router for the bank-system. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies the
 * necessary middleware. Registration is the only unauthenticated write; every
 * other endpoint sits behind Basic authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mie-h/bank-system/internal/app"
)

// Routes creates and returns the router for the bank-system.
func Routes(h *Handlers, service *app.Service) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Public routes
	r.Post("/auth/register", h.RegisterHandler)

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(BasicAuthMiddleware(service))

		r.Get("/auth/me", h.MeHandler)
		r.Get("/users/{username}", h.LookupUserHandler)

		r.Post("/accounts", h.CreateAccountHandler)
		r.Get("/accounts", h.ListAccountsHandler)
		r.Get("/accounts/{accountID}", h.GetAccountHandler)

		r.Post("/transactions/deposit", h.DepositHandler)
		r.Post("/transactions/withdrawal", h.WithdrawalHandler)
		r.Post("/transactions/transfer", h.TransferHandler)
		r.Get("/transactions/account/{accountID}", h.ListTransactionsHandler)
	})

	return r
}
