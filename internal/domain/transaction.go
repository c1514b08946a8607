/**
 * @description
 * This file defines the transaction ledger record and the request payloads for
 * the three money-movement operations. Transaction rows are immutable: they are
 * inserted in the same database transaction as the balance mutation they record
 * and are never updated afterwards.
 *
 * @notes
 * - FromAccountID/ToAccountID are pointers because exactly one of them is null
 *   for a pure deposit or withdrawal; both are set for a transfer.
 * - Amounts are `decimal.Decimal` and always positive.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction represents a committed money movement. Maps to the `transactions` table.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	FromAccountID *uuid.UUID      `json:"from,omitempty"`
	ToAccountID   *uuid.UUID      `json:"to,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Type reports which kind of movement this record describes.
func (t Transaction) Type() string {
	switch {
	case t.FromAccountID != nil && t.ToAccountID != nil:
		return "transfer"
	case t.ToAccountID != nil:
		return "deposit"
	default:
		return "withdrawal"
	}
}

// DepositRequest is the payload for crediting one of the requester's accounts.
type DepositRequest struct {
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// WithdrawalRequest is the payload for debiting one of the requester's accounts.
type WithdrawalRequest struct {
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// TransferRequest is the payload for moving funds between two accounts. The
// source must belong to the requester; the destination may belong to anyone.
type TransferRequest struct {
	FromAccountID uuid.UUID       `json:"from"`
	ToAccountID   uuid.UUID       `json:"to"`
	Amount        decimal.Decimal `json:"amount"`
}
