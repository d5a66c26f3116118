// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/internal/access"
	"github.com/arcadelabs/arcade/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := db(ctx, r.pool).Exec(ctx, `
		INSERT INTO sessions (id, user_id, role, token_hash, issued_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		session.ID.String(),
		session.UserID.String(),
		session.Role.String(),
		session.TokenHash,
		session.IssuedAt,
		session.ExpiresAt,
		session.RevokedAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("session_id", session.ID.String()).
			Wrap(unavailable(err))
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `
		SELECT id, user_id, role, token_hash, issued_at, expires_at, revoked_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash)

	var (
		session   auth.Session
		idStr     string
		userIDStr string
		roleStr   string
	)
	err := row.Scan(
		&idStr,
		&userIDStr,
		&roleStr,
		&session.TokenHash,
		&session.IssuedAt,
		&session.ExpiresAt,
		&session.RevokedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").Wrap(unavailable(err))
	}

	session.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "parse id").
			With("id", idStr).
			Wrap(err)
	}
	session.UserID, err = ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "parse user_id").
			With("user_id", userIDStr).
			Wrap(err)
	}
	session.Role, err = access.ParseRole(roleStr)
	if err != nil {
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "parse role").
			With("id", idStr).
			Wrap(err)
	}
	return &session, nil
}

// Revoke marks the session with the given token hash as revoked.
// Unknown and already-revoked sessions are not errors.
func (r *SessionRepository) Revoke(ctx context.Context, tokenHash string) error {
	_, err := db(ctx, r.pool).Exec(ctx, `
		UPDATE sessions
		SET revoked_at = $2
		WHERE token_hash = $1 AND revoked_at IS NULL
	`, tokenHash, time.Now())
	if err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").Wrap(unavailable(err))
	}
	return nil
}

// RevokeAllForUser revokes every active session of the given user.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID ulid.ULID) error {
	_, err := db(ctx, r.pool).Exec(ctx, `
		UPDATE sessions
		SET revoked_at = $2
		WHERE user_id = $1 AND revoked_at IS NULL
	`, userID.String(), time.Now())
	if err != nil {
		return oops.Code("SESSION_REVOKE_ALL_FAILED").
			With("user_id", userID.String()).
			Wrap(unavailable(err))
	}
	return nil
}
