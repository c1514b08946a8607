/**
 * @description
 * This file contains the HTTP handlers for the bank-system's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as
 * the bridge between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, errors, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mie-h/bank-system/internal/app"
	"github.com/mie-h/bank-system/internal/domain"
	"github.com/mie-h/bank-system/internal/store"
)

// Handlers holds the application service that handlers will use.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type accountResponse struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

func buildAccountResponse(account *domain.Account) accountResponse {
	return accountResponse{ID: account.ID.String(), Balance: account.Balance}
}

// RegisterHandler handles new user registration. This is the only unauthenticated
// write endpoint.
func (h *Handlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		h.writeError(w, http.StatusUnprocessableEntity, "Username and password are required")
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			h.writeError(w, http.StatusConflict, "Username already exists")
			return
		}
		log.Printf("level=error component=api endpoint=register msg=\"registration failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Could not register user")
		return
	}

	h.writeJSON(w, http.StatusCreated, userResponse{ID: user.ID.String(), Username: user.Username})
}

// MeHandler returns the currently authenticated user.
func (h *Handlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	user, err := h.service.LookupUserByID(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=me msg=\"lookup failed\" user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not load user")
		return
	}

	h.writeJSON(w, http.StatusOK, userResponse{ID: user.ID.String(), Username: user.Username})
}

// LookupUserHandler checks whether a username exists.
func (h *Handlers) LookupUserHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.service.LookupUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("level=error component=api endpoint=lookup_user msg=\"lookup failed\" username=%s err=%v", username, err)
		h.writeError(w, http.StatusInternalServerError, "Could not look up user")
		return
	}

	h.writeJSON(w, http.StatusOK, userResponse{ID: user.ID.String(), Username: user.Username})
}

// CreateAccountHandler opens a new account for the authenticated user.
func (h *Handlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	account, err := h.service.CreateAccount(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=create_account msg=\"account creation failed\" user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	h.writeJSON(w, http.StatusCreated, buildAccountResponse(account))
}

// ListAccountsHandler returns all of the authenticated user's accounts.
func (h *Handlers) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	accounts, err := h.service.ListAccounts(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_accounts msg=\"listing failed\" user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not list accounts")
		return
	}

	responses := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, buildAccountResponse(&accounts[i]))
	}
	h.writeJSON(w, http.StatusOK, responses)
}

// GetAccountHandler returns one of the authenticated user's accounts by ID.
func (h *Handlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	account, err := h.service.GetAccount(r.Context(), userID, accountID)
	if err != nil {
		h.writeServiceError(w, "get_account", err)
		return
	}

	h.writeJSON(w, http.StatusOK, buildAccountResponse(account))
}

// DepositHandler credits one of the authenticated user's accounts.
func (h *Handlers) DepositHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req domain.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.service.Deposit(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, "deposit", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, record)
}

// WithdrawalHandler debits one of the authenticated user's accounts.
func (h *Handlers) WithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req domain.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.service.Withdraw(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, "withdrawal", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, record)
}

// TransferHandler moves funds from one of the authenticated user's accounts to
// any existing account.
func (h *Handlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.service.Transfer(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, "transfer", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, record)
}

// ListTransactionsHandler returns the ledger entries for one of the
// authenticated user's accounts, newest first.
func (h *Handlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), userID, accountID)
	if err != nil {
		h.writeServiceError(w, "list_transactions", err)
		return
	}

	h.writeJSON(w, http.StatusOK, transactions)
}

// writeServiceError maps the service's sentinel errors onto HTTP status codes.
func (h *Handlers) writeServiceError(w http.ResponseWriter, endpoint string, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidAmount):
		h.writeError(w, http.StatusUnprocessableEntity, "Amount must be positive")
	case errors.Is(err, app.ErrSameAccountTransfer):
		h.writeError(w, http.StatusUnprocessableEntity, "Cannot transfer to the same account")
	case errors.Is(err, store.ErrInsufficientFunds):
		h.writeError(w, http.StatusBadRequest, "Insufficient funds in this account")
	case errors.Is(err, store.ErrNotAccountOwner):
		h.writeError(w, http.StatusForbidden, "Account does not belong to you")
	case errors.Is(err, store.ErrAccountNotFound):
		h.writeError(w, http.StatusNotFound, "Account not found")
	case errors.Is(err, store.ErrDestinationAccountNotFound):
		h.writeError(w, http.StatusNotFound, "Destination account not found")
	case errors.Is(err, store.ErrConcurrentUpdate):
		h.writeError(w, http.StatusConflict, "Concurrent update, please retry")
	default:
		log.Printf("level=error component=api endpoint=%s msg=\"request failed\" err=%v", endpoint, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeJSON is a helper for writing JSON responses.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
