// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/internal/access"
	"github.com/arcadelabs/arcade/pkg/errutil"
)

// User represents a platform account.
type User struct {
	ID             ulid.ULID
	Username       string
	PasswordHash   string
	Role           access.Role
	AvatarID       *ulid.ULID // nil until the user picks an avatar
	FailedAttempts int
	Locked         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser creates a validated User with a fresh ID and hashed password.
func NewUser(username, passwordHash string, role access.Role) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_EMPTY_HASH").Errorf("password hash cannot be empty")
	}
	if !role.Valid() {
		return nil, oops.Code("ACCESS_INVALID_ROLE").
			With("role", role.String()).
			Wrap(errutil.Validation("invalid role"))
	}
	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateUsername validates a signup username. The message is part of the
// external contract.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").
			Wrap(errutil.Validation("username cannot be empty"))
	}
	return nil
}

// ValidatePassword validates a signup password. The message is part of the
// external contract.
func ValidatePassword(password string) error {
	if password == "" {
		return oops.Code("AUTH_INVALID_PASSWORD").
			Wrap(errutil.Validation("password cannot be empty"))
	}
	return nil
}

// Metadata is the public slice of a user another client may see: who they
// are and which avatar they wear.
type Metadata struct {
	UserID   ulid.ULID
	AvatarID *ulid.ULID
}

// UserRepository manages user persistence.
//
// RecordFailure and RecordSuccess must apply their counter updates
// atomically per user; concurrent failed attempts must not lose updates.
type UserRepository interface {
	// Create stores a new user. Returns ErrDuplicate (wrapped) if the
	// username is already taken; the existence check and insert are a
	// single atomic operation.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetBulk retrieves the users with the given IDs. Unknown IDs are
	// silently skipped.
	GetBulk(ctx context.Context, ids []ulid.ULID) ([]*User, error)

	// RecordFailure atomically increments the failed-attempt counter and
	// locks the account once the counter reaches threshold. Returns the
	// post-increment counter and lock state.
	RecordFailure(ctx context.Context, id ulid.ULID, threshold int) (failures int, locked bool, err error)

	// RecordSuccess resets the failed-attempt counter.
	RecordSuccess(ctx context.Context, id ulid.ULID) error

	// Unlock clears the lock and counter for a username.
	Unlock(ctx context.Context, username string) error

	// UpdatePassword replaces the password hash.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// SetAvatar records the user's chosen avatar.
	SetAvatar(ctx context.Context, id, avatarID ulid.ULID) error
}
