// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/internal/access"
	"github.com/arcadelabs/arcade/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user. The username unique index makes the existence
// check and the insert one atomic operation.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := db(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (
			id, username, password_hash, role, avatar_id,
			failed_attempts, locked, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		user.ID.String(),
		user.Username,
		user.PasswordHash,
		user.Role.String(),
		ulidToStringPtr(user.AvatarID),
		user.FailedAttempts,
		user.Locked,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("USER_DUPLICATE").
				With("username", user.Username).
				Wrap(auth.ErrDuplicate)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("username", user.Username).
			Wrap(unavailable(err))
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `
		SELECT id, username, password_hash, role, avatar_id,
		       failed_attempts, locked, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id.String())
	return r.scanUser(row, "id", id.String())
}

// GetByUsername retrieves a user by username (case-insensitive).
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `
		SELECT id, username, password_hash, role, avatar_id,
		       failed_attempts, locked, created_at, updated_at
		FROM users
		WHERE LOWER(username) = LOWER($1)
	`, username)
	return r.scanUser(row, "username", username)
}

// GetBulk retrieves the users with the given IDs. Unknown IDs are skipped.
func (r *UserRepository) GetBulk(ctx context.Context, ids []ulid.ULID) ([]*auth.User, error) {
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}

	rows, err := db(ctx, r.pool).Query(ctx, `
		SELECT id, username, password_hash, role, avatar_id,
		       failed_attempts, locked, created_at, updated_at
		FROM users
		WHERE id = ANY($1)
	`, idStrs)
	if err != nil {
		return nil, oops.Code("USER_GET_BULK_FAILED").Wrap(unavailable(err))
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user, err := r.scanUser(rows, "id", "")
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_GET_BULK_FAILED").Wrap(unavailable(err))
	}
	return users, nil
}

// RecordFailure atomically increments the failure counter and locks the
// account once the counter reaches threshold. The single UPDATE makes
// concurrent failed attempts safe against lost updates.
func (r *UserRepository) RecordFailure(ctx context.Context, id ulid.ULID, threshold int) (int, bool, error) {
	var failures int
	var locked bool
	err := db(ctx, r.pool).QueryRow(ctx, `
		UPDATE users
		SET failed_attempts = failed_attempts + 1,
		    locked = locked OR failed_attempts + 1 >= $2,
		    updated_at = $3
		WHERE id = $1
		RETURNING failed_attempts, locked
	`, id.String(), threshold, time.Now()).Scan(&failures, &locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return 0, false, oops.Code("USER_RECORD_FAILURE_FAILED").
			With("id", id.String()).
			Wrap(unavailable(err))
	}
	return failures, locked, nil
}

// RecordSuccess resets the failure counter.
func (r *UserRepository) RecordSuccess(ctx context.Context, id ulid.ULID) error {
	_, err := db(ctx, r.pool).Exec(ctx, `
		UPDATE users
		SET failed_attempts = 0, updated_at = $2
		WHERE id = $1
	`, id.String(), time.Now())
	if err != nil {
		return oops.Code("USER_RECORD_SUCCESS_FAILED").
			With("id", id.String()).
			Wrap(unavailable(err))
	}
	return nil
}

// Unlock clears the lock and counter for a username.
func (r *UserRepository) Unlock(ctx context.Context, username string) error {
	result, err := db(ctx, r.pool).Exec(ctx, `
		UPDATE users
		SET failed_attempts = 0, locked = FALSE, updated_at = $2
		WHERE LOWER(username) = LOWER($1)
	`, username, time.Now())
	if err != nil {
		return oops.Code("USER_UNLOCK_FAILED").
			With("username", username).
			Wrap(unavailable(err))
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces the password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := db(ctx, r.pool).Exec(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), passwordHash, time.Now())
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("id", id.String()).
			Wrap(unavailable(err))
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// SetAvatar records the user's chosen avatar.
func (r *UserRepository) SetAvatar(ctx context.Context, id, avatarID ulid.ULID) error {
	result, err := db(ctx, r.pool).Exec(ctx, `
		UPDATE users
		SET avatar_id = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), avatarID.String(), time.Now())
	if err != nil {
		return oops.Code("USER_SET_AVATAR_FAILED").
			With("id", id.String()).
			Wrap(unavailable(err))
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) scanUser(row pgx.Row, field, value string) (*auth.User, error) {
	var (
		user      auth.User
		idStr     string
		roleStr   string
		avatarStr *string
	)
	err := row.Scan(
		&idStr,
		&user.Username,
		&user.PasswordHash,
		&roleStr,
		&avatarStr,
		&user.FailedAttempts,
		&user.Locked,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With(field, value).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").
			With(field, value).
			Wrap(unavailable(err))
	}

	user.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "parse id").
			With("id", idStr).
			Wrap(err)
	}
	user.Role, err = access.ParseRole(roleStr)
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "parse role").
			With("id", idStr).
			Wrap(err)
	}
	user.AvatarID, err = parseOptionalULID(avatarStr, "avatar_id")
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").
			With("id", idStr).
			Wrap(err)
	}
	return &user, nil
}
