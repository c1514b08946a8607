/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the SQL queries for users, accounts, and the transaction ledger.
 *
 * The money-movement methods are the heart of the service. Each one runs a single
 * database transaction around one chained-CTE statement: a conditional UPDATE whose
 * WHERE clause carries the ownership and sufficiency predicates, followed by an
 * INSERT into `transactions` that only fires when the UPDATE produced a row. A
 * separate check-then-write sequence would admit a window where a concurrent
 * request changes the balance between check and write; folding the predicate into
 * the UPDATE closes it. When the statement affects zero rows, a classification
 * query inside the same (about to roll back) transaction decides which failure to
 * report.
 *
 * @dependencies
 * - context, errors, fmt: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - github.com/shopspring/decimal: Exact monetary amounts.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mie-h/bank-system/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateUser inserts a new user with a pre-hashed password.
func (r *PostgresRepository) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	user := &domain.User{Username: username, PasswordHash: passwordHash}
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, username, passwordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// FindUserByUsername retrieves a user from the database by their username.
func (r *PostgresRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	err := r.db.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID retrieves a user from the database by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateAccount opens a new account with a zero balance for the given owner.
func (r *PostgresRepository) CreateAccount(ctx context.Context, ownerID uuid.UUID) (*domain.Account, error) {
	account := &domain.Account{UserID: ownerID, Balance: decimal.Zero}
	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, 0)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// FindAccountForOwner retrieves an account scoped to its owner. Accounts belonging
// to other users are reported as not found, matching the read surface of the API.
func (r *PostgresRepository) FindAccountForOwner(ctx context.Context, accountID, ownerID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, user_id, balance, created_at FROM accounts WHERE id = $1 AND user_id = $2`
	err := r.db.QueryRow(ctx, query, accountID, ownerID).Scan(&account.ID, &account.UserID, &account.Balance, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// ListAccountsByOwner retrieves all of a user's accounts, most recent first.
func (r *PostgresRepository) ListAccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error) {
	query := `
		SELECT id, user_id, balance, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.Balance, &account.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// depositQuery credits an account the requester owns and appends the ledger row in
// the same statement. The INSERT only fires when the UPDATE matched a row.
const depositQuery = `
	WITH credited AS (
		UPDATE accounts
		SET balance = balance + $3
		WHERE id = $2 AND user_id = $1
		RETURNING id
	)
	INSERT INTO transactions (from_account_id, to_account_id, amount)
	SELECT NULL, credited.id, $3 FROM credited
	RETURNING id, created_at
`

// Deposit atomically credits one of the requester's accounts and records the movement.
func (r *PostgresRepository) Deposit(ctx context.Context, requesterID, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	record := &domain.Transaction{ToAccountID: &accountID, Amount: amount}
	err = tx.QueryRow(ctx, depositQuery, requesterID, accountID, amount).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if classified := r.classifyMovementFailure(ctx, tx, requesterID, accountID, decimal.Zero); classified != nil {
				return nil, classified
			}
			return nil, ErrConcurrentUpdate
		}
		return nil, classifyPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyPgError(err)
	}
	return record, nil
}

// withdrawQuery debits an account the requester owns, but only when the balance
// covers the amount; sufficiency is part of the UPDATE predicate so the balance
// can never be driven below zero by a concurrent withdrawal.
const withdrawQuery = `
	WITH debited AS (
		UPDATE accounts
		SET balance = balance - $3
		WHERE id = $2 AND user_id = $1 AND balance >= $3
		RETURNING id
	)
	INSERT INTO transactions (from_account_id, to_account_id, amount)
	SELECT debited.id, NULL, $3 FROM debited
	RETURNING id, created_at
`

// Withdraw atomically debits one of the requester's accounts and records the movement.
func (r *PostgresRepository) Withdraw(ctx context.Context, requesterID, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	record := &domain.Transaction{FromAccountID: &accountID, Amount: amount}
	err = tx.QueryRow(ctx, withdrawQuery, requesterID, accountID, amount).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if classified := r.classifyMovementFailure(ctx, tx, requesterID, accountID, amount); classified != nil {
				return nil, classified
			}
			return nil, ErrConcurrentUpdate
		}
		return nil, classifyPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyPgError(err)
	}
	return record, nil
}

// transferQuery debits the source (ownership and funds in the predicate), credits
// the destination only if the debit happened, and records the movement only if
// both sides happened. Zero rows out of the INSERT means the whole unit is void.
const transferQuery = `
	WITH debited AS (
		UPDATE accounts
		SET balance = balance - $4
		WHERE id = $2 AND user_id = $1 AND balance >= $4
		RETURNING id
	), credited AS (
		UPDATE accounts
		SET balance = balance + $4
		WHERE id = $3 AND EXISTS (SELECT 1 FROM debited)
		RETURNING id
	)
	INSERT INTO transactions (from_account_id, to_account_id, amount)
	SELECT debited.id, credited.id, $4
	FROM debited JOIN credited ON TRUE
	RETURNING id, created_at
`

// Transfer atomically moves funds between two accounts. The source must belong to
// the requester; the destination only has to exist. If any step fails the
// transaction rolls back with no partial debit and no ledger row.
func (r *PostgresRepository) Transfer(ctx context.Context, requesterID, fromAccountID, toAccountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	record := &domain.Transaction{FromAccountID: &fromAccountID, ToAccountID: &toAccountID, Amount: amount}
	err = tx.QueryRow(ctx, transferQuery, requesterID, fromAccountID, toAccountID, amount).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Order matters: if the destination exists, the debit is what failed
			// and never ran, so the source row still shows its pre-statement
			// state. If the destination is missing, the debit may already have
			// applied inside this doomed transaction, which would make a source
			// balance read unreliable.
			var exists bool
			if checkErr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, toAccountID).Scan(&exists); checkErr != nil {
				return nil, checkErr
			}
			if !exists {
				return nil, ErrDestinationAccountNotFound
			}
			if sourceErr := r.classifyMovementFailure(ctx, tx, requesterID, fromAccountID, amount); sourceErr != nil {
				return nil, sourceErr
			}
			// Both sides look viable now, so the state must have shifted under
			// the statement. Report it as a retryable conflict.
			return nil, ErrConcurrentUpdate
		}
		return nil, classifyPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyPgError(err)
	}
	return record, nil
}

// ListTransactionsForAccount retrieves the ledger rows touching an account,
// newest first. The requester must own the account: a missing account reports
// ErrAccountNotFound, someone else's account reports ErrNotAccountOwner.
func (r *PostgresRepository) ListTransactionsForAccount(ctx context.Context, requesterID, accountID uuid.UUID) ([]domain.Transaction, error) {
	var ownerID uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT user_id FROM accounts WHERE id = $1`, accountID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if ownerID != requesterID {
		return nil, ErrNotAccountOwner
	}

	query := `
		SELECT id, from_account_id, to_account_id, amount, created_at
		FROM transactions
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var record domain.Transaction
		if err := rows.Scan(&record.ID, &record.FromAccountID, &record.ToAccountID, &record.Amount, &record.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, record)
	}
	return transactions, rows.Err()
}

// classifyMovementFailure decides which sentinel to report after a guarded UPDATE
// matched zero rows. It reads the account inside the same transaction that is
// about to roll back, so the classification sees the state the UPDATE saw.
// A nil return means the account was viable for the requested debit (the failure
// lies elsewhere in the statement, e.g. a missing transfer destination).
func (r *PostgresRepository) classifyMovementFailure(ctx context.Context, tx pgx.Tx, requesterID, accountID uuid.UUID, debitAmount decimal.Decimal) error {
	var ownerID uuid.UUID
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT user_id, balance FROM accounts WHERE id = $1`, accountID).Scan(&ownerID, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	if ownerID != requesterID {
		return ErrNotAccountOwner
	}
	if balance.LessThan(debitAmount) {
		return ErrInsufficientFunds
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// classifyPgError maps serialization failures and deadlocks to ErrConcurrentUpdate
// so callers can surface them as retryable conflicts instead of opaque 500s.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return ErrConcurrentUpdate
		}
	}
	return err
}
