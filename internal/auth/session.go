// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/internal/access"
)

// SessionTokenBytes is the entropy of a session token (hex-encoded on the wire).
const SessionTokenBytes = 32

// Session is a revocable authorization grant bound to one user and role.
// Only the SHA256 hash of the bearer token is persisted.
type Session struct {
	ID        ulid.ULID
	UserID    ulid.ULID
	Role      access.Role
	TokenHash string
	IssuedAt  time.Time
	ExpiresAt *time.Time // nil when sessions never expire implicitly
	RevokedAt *time.Time
}

// NewSession creates a validated Session. ttl of zero means no implicit
// expiry; the session lives until revoked.
func NewSession(userID ulid.ULID, role access.Role, tokenHash string, ttl time.Duration) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if !role.Valid() {
		return nil, oops.Code("SESSION_INVALID_ROLE").Errorf("role %q is not valid", role)
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}

	now := time.Now()
	s := &Session{
		ID:        ulid.Make(),
		UserID:    userID,
		Role:      role,
		TokenHash: tokenHash,
		IssuedAt:  now,
	}
	if ttl > 0 {
		expires := now.Add(ttl)
		s.ExpiresAt = &expires
	}
	return s, nil
}

// Active reports whether the session still authorizes operations at t.
func (s *Session) Active(t time.Time) bool {
	if s.RevokedAt != nil {
		return false
	}
	if s.ExpiresAt != nil && t.After(*s.ExpiresAt) {
		return false
	}
	return true
}

// GenerateSessionToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error). The plaintext token goes to
// the client; only the hash is stored.
func GenerateSessionToken() (token, hash string, err error) {
	raw := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(raw); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	token = hex.EncodeToString(raw)
	return token, HashSessionToken(token), nil
}

// HashSessionToken computes the SHA256 hash of a session token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash retrieves a session by its token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Revoke marks the session with the given token hash as revoked.
	// Revoking an unknown or already-revoked session is not an error.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeAllForUser revokes every session of the given user. Idempotent.
	RevokeAllForUser(ctx context.Context, userID ulid.ULID) error
}

// Transactor runs a function within a single storage transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
