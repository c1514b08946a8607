package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mie-h/bank-system/internal/domain"
	"github.com/mie-h/bank-system/internal/store"
	"github.com/mie-h/bank-system/pkg/rabbitmq"
)

type movementRepoStub struct {
	store.Repository

	record      *domain.Transaction
	depositErr  error
	withdrawErr error
	transferErr error

	depositCalled  bool
	withdrawCalled bool
	transferCalled bool
}

func (s *movementRepoStub) Deposit(ctx context.Context, requesterID, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	s.depositCalled = true
	if s.depositErr != nil {
		return nil, s.depositErr
	}
	return s.record, nil
}

func (s *movementRepoStub) Withdraw(ctx context.Context, requesterID, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	s.withdrawCalled = true
	if s.withdrawErr != nil {
		return nil, s.withdrawErr
	}
	return s.record, nil
}

func (s *movementRepoStub) Transfer(ctx context.Context, requesterID, fromAccountID, toAccountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	s.transferCalled = true
	if s.transferErr != nil {
		return nil, s.transferErr
	}
	return s.record, nil
}

type publisherStub struct {
	events []rabbitmq.TransactionEvent
}

func (p *publisherStub) PublishTransactionEvent(ctx context.Context, event rabbitmq.TransactionEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *publisherStub) Close() {}

func depositRecord(accountID uuid.UUID, amount decimal.Decimal) *domain.Transaction {
	return &domain.Transaction{
		ID:          uuid.New(),
		ToAccountID: &accountID,
		Amount:      amount,
		CreatedAt:   time.Now(),
	}
}

func TestDeposit_RejectsNonPositiveAmountBeforeStore(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{name: "zero amount", amount: decimal.Zero},
		{name: "negative amount", amount: decimal.NewFromInt(-50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &movementRepoStub{}
			events := &publisherStub{}
			svc := NewService(repo, events, 4)

			_, err := svc.Deposit(context.Background(), uuid.New(), domain.DepositRequest{
				AccountID: uuid.New(),
				Amount:    tt.amount,
			})
			if err != ErrInvalidAmount {
				t.Fatalf("expected ErrInvalidAmount, got %v", err)
			}
			if repo.depositCalled {
				t.Fatal("expected no store interaction for an invalid amount")
			}
			if len(events.events) != 0 {
				t.Fatalf("expected no events, got %d", len(events.events))
			}
		})
	}
}

func TestDeposit_PublishesEventOnSuccess(t *testing.T) {
	accountID := uuid.New()
	amount := decimal.NewFromInt(100)
	repo := &movementRepoStub{record: depositRecord(accountID, amount)}
	events := &publisherStub{}
	svc := NewService(repo, events, 4)

	record, err := svc.Deposit(context.Background(), uuid.New(), domain.DepositRequest{
		AccountID: accountID,
		Amount:    amount,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !record.Amount.Equal(amount) {
		t.Fatalf("expected amount %s, got %s", amount, record.Amount)
	}
	if len(events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.events))
	}
	if events.events[0].Kind != "deposit" {
		t.Fatalf("expected kind deposit, got %q", events.events[0].Kind)
	}
	if events.events[0].TransactionID != record.ID {
		t.Fatalf("expected event for transaction %s, got %s", record.ID, events.events[0].TransactionID)
	}
}

func TestWithdraw_PassesThroughStoreErrorsWithoutEvents(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
	}{
		{name: "insufficient funds", repoErr: store.ErrInsufficientFunds},
		{name: "not account owner", repoErr: store.ErrNotAccountOwner},
		{name: "account not found", repoErr: store.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &movementRepoStub{withdrawErr: tt.repoErr}
			events := &publisherStub{}
			svc := NewService(repo, events, 4)

			_, err := svc.Withdraw(context.Background(), uuid.New(), domain.WithdrawalRequest{
				AccountID: uuid.New(),
				Amount:    decimal.NewFromInt(150),
			})
			if err != tt.repoErr {
				t.Fatalf("expected %v, got %v", tt.repoErr, err)
			}
			if len(events.events) != 0 {
				t.Fatalf("expected no events on failure, got %d", len(events.events))
			}
		})
	}
}

func TestTransfer_RejectsSameAccountBeforeStore(t *testing.T) {
	repo := &movementRepoStub{}
	events := &publisherStub{}
	svc := NewService(repo, events, 4)

	accountID := uuid.New()
	_, err := svc.Transfer(context.Background(), uuid.New(), domain.TransferRequest{
		FromAccountID: accountID,
		ToAccountID:   accountID,
		Amount:        decimal.NewFromInt(10),
	})
	if err != ErrSameAccountTransfer {
		t.Fatalf("expected ErrSameAccountTransfer, got %v", err)
	}
	if repo.transferCalled {
		t.Fatal("expected no store interaction for a same-account transfer")
	}
}

func TestTransfer_PublishesTransferEvent(t *testing.T) {
	from := uuid.New()
	to := uuid.New()
	amount := decimal.NewFromInt(50)
	repo := &movementRepoStub{record: &domain.Transaction{
		ID:            uuid.New(),
		FromAccountID: &from,
		ToAccountID:   &to,
		Amount:        amount,
		CreatedAt:     time.Now(),
	}}
	events := &publisherStub{}
	svc := NewService(repo, events, 4)

	_, err := svc.Transfer(context.Background(), uuid.New(), domain.TransferRequest{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.events))
	}
	if events.events[0].Kind != "transfer" {
		t.Fatalf("expected kind transfer, got %q", events.events[0].Kind)
	}
}

func TestDeposit_NilPublisherDoesNotPanic(t *testing.T) {
	accountID := uuid.New()
	amount := decimal.NewFromInt(25)
	repo := &movementRepoStub{record: depositRecord(accountID, amount)}
	svc := NewService(repo, nil, 4)

	if _, err := svc.Deposit(context.Background(), uuid.New(), domain.DepositRequest{
		AccountID: accountID,
		Amount:    amount,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
