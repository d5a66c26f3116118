// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

// Package authtest provides in-memory fakes for auth dependencies.
package authtest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/arcadelabs/arcade/internal/auth"
)

// UserRepo is an in-memory auth.UserRepository. Safe for concurrent use.
type UserRepo struct {
	mu    sync.Mutex
	users map[ulid.ULID]*auth.User

	// Err, when set, is returned by every method.
	Err error
}

// NewUserRepo creates an empty UserRepo.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[ulid.ULID]*auth.User)}
}

func (r *UserRepo) Create(_ context.Context, user *auth.User) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, user.Username) {
			return auth.ErrDuplicate
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *UserRepo) GetBulk(_ context.Context, ids []ulid.ULID) ([]*auth.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*auth.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *UserRepo) RecordFailure(_ context.Context, id ulid.ULID, threshold int) (int, bool, error) {
	if r.Err != nil {
		return 0, false, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, false, auth.ErrNotFound
	}
	u.FailedAttempts++
	if u.FailedAttempts >= threshold {
		u.Locked = true
	}
	return u.FailedAttempts, u.Locked, nil
}

func (r *UserRepo) RecordSuccess(_ context.Context, id ulid.ULID) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.FailedAttempts = 0
	return nil
}

func (r *UserRepo) Unlock(_ context.Context, username string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			u.FailedAttempts = 0
			u.Locked = false
			return nil
		}
	}
	return auth.ErrNotFound
}

func (r *UserRepo) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *UserRepo) SetAvatar(_ context.Context, id, avatarID ulid.ULID) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	av := avatarID
	u.AvatarID = &av
	return nil
}

// Seed inserts a user directly, bypassing uniqueness checks.
func (r *UserRepo) Seed(user *auth.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
}

// Get returns the stored user, or nil.
func (r *UserRepo) Get(id ulid.ULID) *auth.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// SessionRepo is an in-memory auth.SessionRepository. Safe for concurrent use.
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session

	// Err, when set, is returned by every method.
	Err error
}

// NewSessionRepo creates an empty SessionRepo.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]*auth.Session)}
}

func (r *SessionRepo) Create(_ context.Context, session *auth.Session) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.TokenHash] = &cp
	return nil
}

func (r *SessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenHash]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepo) Revoke(_ context.Context, tokenHash string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[tokenHash]; ok && s.RevokedAt == nil {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (r *SessionRepo) RevokeAllForUser(_ context.Context, userID ulid.ULID) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

// ActiveCount returns the number of unrevoked sessions for a user.
func (r *SessionRepo) ActiveCount(userID ulid.ULID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			n++
		}
	}
	return n
}

// Tx is a pass-through auth.Transactor.
type Tx struct{}

func (Tx) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// AvatarDirectory is an auth.AvatarDirectory backed by a set of known ids.
type AvatarDirectory struct {
	IDs map[ulid.ULID]bool
}

func (d AvatarDirectory) AvatarExists(_ context.Context, id ulid.ULID) (bool, error) {
	return d.IDs[id], nil
}
