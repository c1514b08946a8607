/**
 * @description
 * This file defines the user domain model and the request/response shapes for
 * registration and authentication. The password never leaves the API boundary:
 * only its bcrypt hash is stored, and the hash is excluded from JSON output.
 *
 * @dependencies
 * - time: Standard Go library.
 * - github.com/google/uuid: For user identifiers.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user. Maps to the `users` table.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the payload for creating a new user.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
