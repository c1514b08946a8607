/**
 * @description
 * This file contains the credential handling for the bank-system: registration
 * with bcrypt password hashing and per-request verification. Plaintext passwords
 * are hashed immediately and never stored or logged.
 *
 * @notes
 * - Authenticate runs a bcrypt comparison even when the username is unknown, so
 *   the response time does not reveal whether a username exists.
 *
 * @dependencies
 * - context, errors, log: Standard Go libraries.
 * - golang.org/x/crypto/bcrypt: Slow, salted password hashing.
 * - internal/domain, internal/store: Domain models and data access.
 */

package app

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mie-h/bank-system/internal/domain"
	"github.com/mie-h/bank-system/internal/store"
)

// ErrInvalidCredentials is returned for an unknown username or a password
// mismatch. The two cases are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash is compared against when the username does not exist, to keep
// verification timing uniform with the password-mismatch path.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("bank-system-timing-pad"), bcrypt.DefaultCost)

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			log.Printf("level=warn component=app msg=\"registration rejected\" reason=username_taken username=%s", username)
		}
		return nil, err
	}

	log.Printf("level=info component=app msg=\"user registered\" user_id=%s username=%s", user.ID, user.Username)
	return user, nil
}

// Authenticate verifies a username/password pair and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// LookupUser reports whether a username exists.
func (s *Service) LookupUser(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindUserByUsername(ctx, username)
}

// LookupUserByID retrieves a user by their ID.
func (s *Service) LookupUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.FindUserByID(ctx, userID)
}
