package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mie-h/bank-system/internal/app"
)

func TestGetUserID_MissingFromContext(t *testing.T) {
	if _, ok := GetUserID(context.Background()); ok {
		t.Fatal("expected no user ID on an empty context")
	}
}

func TestBasicAuthMiddleware_SetsUserIDOnContext(t *testing.T) {
	repo := newBankRepoStub()
	alice := repo.addUser("alice", "pw")
	service := app.NewService(repo, nil, bcrypt.MinCost)

	var captured uuid.UUID
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, found = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := BasicAuthMiddleware(service)(next)

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req.SetBasicAuth("alice", "pw")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !found {
		t.Fatal("expected user ID on request context")
	}
	if captured != alice.ID {
		t.Fatalf("expected user ID %s, got %s", alice.ID, captured)
	}
}

func TestBasicAuthMiddleware_ChallengesMissingCredentials(t *testing.T) {
	repo := newBankRepoStub()
	service := app.NewService(repo, nil, bcrypt.MinCost)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run without credentials")
	})
	handler := BasicAuthMiddleware(service)(next)

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("expected WWW-Authenticate challenge header")
	}
}
