/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the bank-system. By defining an interface,
 * we decouple the application's business logic from the specific database
 * implementation (PostgreSQL), making the code more modular and easier to test.
 *
 * The three money-movement methods (Deposit, Withdraw, Transfer) are atomic units:
 * each implementation must verify ownership, apply the balance mutation, and append
 * the ledger record as a single all-or-nothing operation with no externally visible
 * intermediate state.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - github.com/shopspring/decimal: For exact monetary amounts.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mie-h/bank-system/internal/domain"
)

var (
	ErrUserNotFound               = errors.New("user not found")
	ErrUsernameTaken              = errors.New("username already exists")
	ErrAccountNotFound            = errors.New("account not found")
	ErrDestinationAccountNotFound = errors.New("destination account not found")
	ErrNotAccountOwner            = errors.New("account does not belong to requester")
	ErrInsufficientFunds          = errors.New("insufficient funds")
	ErrConcurrentUpdate           = errors.New("concurrent update detected")
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// User methods
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Account methods
	CreateAccount(ctx context.Context, ownerID uuid.UUID) (*domain.Account, error)
	FindAccountForOwner(ctx context.Context, accountID, ownerID uuid.UUID) (*domain.Account, error)
	ListAccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error)

	// Money movement. Each call runs as one database transaction: the ownership
	// and sufficiency predicates are part of the UPDATE itself, and the ledger
	// record is inserted in the same transaction, so a record exists if and only
	// if the balance mutation committed.
	Deposit(ctx context.Context, requesterID, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error)
	Withdraw(ctx context.Context, requesterID, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error)
	Transfer(ctx context.Context, requesterID, fromAccountID, toAccountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error)

	// Transaction history, newest first.
	ListTransactionsForAccount(ctx context.Context, requesterID, accountID uuid.UUID) ([]domain.Transaction, error)
}
