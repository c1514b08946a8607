/**
 * @description
 * This file defines the account domain model. An account belongs to exactly one
 * user and holds a balance that is only ever mutated through the money-movement
 * operations in internal/app and internal/store.
 *
 * @notes
 * - Balances are `decimal.Decimal` (NUMERIC in PostgreSQL) rather than a float,
 *   so amounts round-trip exactly. The invariant balance >= 0 is enforced by the
 *   guarded UPDATE in the store layer and by a CHECK constraint in the schema.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account represents a bank account. Maps to the `accounts` table.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}
