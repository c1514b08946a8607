/**
 * @description
 * This file contains the core business logic for the bank-system. The `Service`
 * struct orchestrates the money-movement operations, coordinating between the
 * database repository and the event producer.
 *
 * Key features:
 * - Validates request payloads before any store interaction (positive amounts,
 *   distinct transfer endpoints).
 * - Delegates the atomic ownership-check + balance-mutation + ledger-insert unit
 *   to the repository, which executes it as one database transaction.
 * - Publishes an event per committed movement; publishing is best-effort and
 *   never rolls back a committed transaction.
 *
 * @dependencies
 * - context, errors, log: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For event publishing.
 */

package app

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/mie-h/bank-system/internal/domain"
	"github.com/mie-h/bank-system/internal/store"
	"github.com/mie-h/bank-system/pkg/rabbitmq"
)

var (
	// ErrInvalidAmount rejects zero or negative amounts before any store call.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrSameAccountTransfer rejects transfers where source and destination match.
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")
)

// Service provides the core business logic for the bank-system.
type Service struct {
	repo       store.Repository
	events     rabbitmq.Publisher
	bcryptCost int
}

// NewService creates a new service instance.
func NewService(repo store.Repository, events rabbitmq.Publisher, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		events:     events,
		bcryptCost: bcryptCost,
	}
}

// CreateAccount opens a new zero-balance account for the requester.
func (s *Service) CreateAccount(ctx context.Context, ownerID uuid.UUID) (*domain.Account, error) {
	account, err := s.repo.CreateAccount(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=app msg=\"account created\" account_id=%s user_id=%s", account.ID, ownerID)
	return account, nil
}

// GetAccount retrieves one of the requester's accounts.
func (s *Service) GetAccount(ctx context.Context, requesterID, accountID uuid.UUID) (*domain.Account, error) {
	return s.repo.FindAccountForOwner(ctx, accountID, requesterID)
}

// ListAccounts retrieves all of the requester's accounts.
func (s *Service) ListAccounts(ctx context.Context, requesterID uuid.UUID) ([]domain.Account, error) {
	return s.repo.ListAccountsByOwner(ctx, requesterID)
}

// Deposit credits one of the requester's accounts. The ownership check, the
// balance mutation and the ledger insert run as one atomic unit in the store.
func (s *Service) Deposit(ctx context.Context, requesterID uuid.UUID, req domain.DepositRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	record, err := s.repo.Deposit(ctx, requesterID, req.AccountID, req.Amount)
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=app msg=\"deposit completed\" transaction_id=%s account_id=%s amount=%s", record.ID, req.AccountID, req.Amount)
	s.publishTransactionEvent(ctx, record)
	return record, nil
}

// Withdraw debits one of the requester's accounts. Fails with
// store.ErrInsufficientFunds when the balance does not cover the amount.
func (s *Service) Withdraw(ctx context.Context, requesterID uuid.UUID, req domain.WithdrawalRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	record, err := s.repo.Withdraw(ctx, requesterID, req.AccountID, req.Amount)
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=app msg=\"withdrawal completed\" transaction_id=%s account_id=%s amount=%s", record.ID, req.AccountID, req.Amount)
	s.publishTransactionEvent(ctx, record)
	return record, nil
}

// Transfer moves funds from one of the requester's accounts to any existing
// account. Receiving does not require ownership; sending does.
func (s *Service) Transfer(ctx context.Context, requesterID uuid.UUID, req domain.TransferRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, ErrSameAccountTransfer
	}

	record, err := s.repo.Transfer(ctx, requesterID, req.FromAccountID, req.ToAccountID, req.Amount)
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=app msg=\"transfer completed\" transaction_id=%s from=%s to=%s amount=%s", record.ID, req.FromAccountID, req.ToAccountID, req.Amount)
	s.publishTransactionEvent(ctx, record)
	return record, nil
}

// ListTransactions retrieves the ledger rows for one of the requester's
// accounts, newest first.
func (s *Service) ListTransactions(ctx context.Context, requesterID, accountID uuid.UUID) ([]domain.Transaction, error) {
	return s.repo.ListTransactionsForAccount(ctx, requesterID, accountID)
}

// publishTransactionEvent emits a committed movement to the broker. Failures are
// logged and swallowed: the ledger row has already committed and is the source
// of truth.
func (s *Service) publishTransactionEvent(ctx context.Context, record *domain.Transaction) {
	if s.events == nil {
		return
	}
	event := rabbitmq.TransactionEvent{
		TransactionID: record.ID,
		Kind:          record.Type(),
		FromAccountID: record.FromAccountID,
		ToAccountID:   record.ToAccountID,
		Amount:        record.Amount,
		CreatedAt:     record.CreatedAt,
	}
	if err := s.events.PublishTransactionEvent(ctx, event); err != nil {
		log.Printf("level=warn component=app msg=\"transaction event publish failed\" transaction_id=%s err=%v", record.ID, err)
	}
}
