// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/internal/access"
	"github.com/arcadelabs/arcade/pkg/errutil"
)

// dummyPasswordHash is verified against when a username doesn't resolve, so
// unknown and known usernames take comparable time. It can never match a
// real password.
//
//nolint:gosec // G101: intentionally fake hash for timing uniformity, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AvatarDirectory is the slice of the element catalog the auth service needs:
// checking that an avatar template exists before binding it to a user.
type AvatarDirectory interface {
	AvatarExists(ctx context.Context, id ulid.ULID) (bool, error)
}

// ServiceConfig holds dependencies for Service.
type ServiceConfig struct {
	Users      UserRepository
	Sessions   SessionRepository
	Hasher     PasswordHasher
	Avatars    AvatarDirectory
	Tx         Transactor
	SessionTTL time.Duration // zero means sessions never expire implicitly
	Logger     *slog.Logger
}

// Service provides credential, lockout, and session operations.
type Service struct {
	users      UserRepository
	sessions   SessionRepository
	hasher     PasswordHasher
	avatars    AvatarDirectory
	tx         Transactor
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewService creates a new Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if cfg.Sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if cfg.Hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if cfg.Avatars == nil {
		return nil, oops.Errorf("avatar directory is required")
	}
	if cfg.Tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:      cfg.Users,
		sessions:   cfg.Sessions,
		hasher:     cfg.Hasher,
		avatars:    cfg.Avatars,
		tx:         cfg.Tx,
		sessionTTL: cfg.SessionTTL,
		logger:     logger,
	}, nil
}

// SignUp registers a new account and returns its ID.
func (s *Service) SignUp(ctx context.Context, username, password string, role access.Role) (ulid.ULID, error) {
	if err := ValidateUsername(username); err != nil {
		return ulid.ULID{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return ulid.ULID{}, err
	}
	if !role.Valid() {
		return ulid.ULID{}, oops.Code("ACCESS_INVALID_ROLE").
			With("role", role.String()).
			Wrap(errutil.Validation("invalid role"))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return ulid.ULID{}, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(username, hash, role)
	if err != nil {
		return ulid.ULID{}, err
	}

	// Uniqueness is enforced by the store in the same operation as the
	// insert, so concurrent signups with the same username cannot both
	// succeed.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return ulid.ULID{}, oops.Code("USER_EXISTS").
				With("username", username).
				Wrap(errutil.Conflict("user already exists"))
		}
		return ulid.ULID{}, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	s.logger.Info("user signed up", "user_id", user.ID.String(), "role", role.String())
	return user.ID, nil
}

// SignIn authenticates an account and issues a bearer session token.
//
// The lockout guard runs before credential verification: a locked account
// fails fast and its password is never checked. Failure counting is strictly
// per resolved account; attempts against unknown usernames touch no counter.
func (s *Service) SignIn(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Still burn a hash verification so unknown usernames are
			// not distinguishable by response time.
			_, _ = s.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // timing only
			return "", oops.Code("AUTH_UNKNOWN_USERNAME").
				Wrap(errutil.NotFound("Invalid username"))
		}
		return "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}

	if user.Locked {
		return "", oops.Code("AUTH_ACCOUNT_LOCKED").
			With("user_id", user.ID.String()).
			Wrap(errutil.Locked(LockedMessage))
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "verify password").
			Wrap(errutil.Unavailable("service temporarily unavailable"))
	}
	if !valid {
		failures, locked, recErr := s.users.RecordFailure(ctx, user.ID, LockoutThreshold)
		if recErr != nil {
			errutil.LogError(s.logger, "failed to record sign-in failure", recErr)
		} else if locked {
			s.logger.Warn("account locked after repeated failures",
				"user_id", user.ID.String(), "failures", failures)
		}
		return "", oops.Code("AUTH_INVALID_PASSWORD").
			With("user_id", user.ID.String()).
			Wrap(errutil.Auth("Invalid password"))
	}

	if err := s.users.RecordSuccess(ctx, user.ID); err != nil {
		// Sign-in still succeeds; the counter reset is best effort.
		errutil.LogError(s.logger, "failed to reset failure counter", err)
	}

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	session, err := NewSession(user.ID, user.Role, tokenHash, s.sessionTTL)
	if err != nil {
		return "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "create session").
			Wrap(err)
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	return token, nil
}

// Resolve validates a bearer token and returns the identity it grants.
// Absent, malformed, revoked, and expired tokens all fail identically; the
// caller cannot tell which case occurred.
func (s *Service) Resolve(ctx context.Context, token string) (access.Identity, error) {
	invalid := func() (access.Identity, error) {
		return access.Identity{}, oops.Code("SESSION_INVALID").
			Wrap(errutil.Auth("Unauthorized Access"))
	}

	if token == "" {
		return invalid()
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalid()
		}
		return access.Identity{}, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}
	if !session.Active(time.Now()) {
		return invalid()
	}

	return access.Identity{UserID: session.UserID, Role: session.Role}, nil
}

// SignOut revokes the session behind the given token. Revoking an unknown
// or already-revoked token is not an error at this layer.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, HashSessionToken(token)); err != nil {
		return oops.Code("AUTH_SIGNOUT_FAILED").
			With("operation", "revoke session").
			Wrap(err)
	}
	return nil
}

// ChangePassword verifies the current password, replaces the hash, and
// revokes every existing session of the account in the same transaction.
// A session issued just before the change is unusable afterwards.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_UNKNOWN_USERNAME").
				Wrap(errutil.NotFound("Invalid username"))
		}
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}

	valid, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "verify password").
			Wrap(errutil.Unavailable("service temporarily unavailable"))
	}
	if !valid {
		return oops.Code("AUTH_INVALID_PASSWORD").
			With("user_id", user.ID.String()).
			Wrap(errutil.Auth("Invalid password"))
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return err
		}
		return s.sessions.RevokeAllForUser(ctx, user.ID)
	})
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "rotate password").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	s.logger.Info("password changed", "user_id", user.ID.String())
	return nil
}

// SetAvatar binds an avatar template to the user's metadata.
func (s *Service) SetAvatar(ctx context.Context, userID, avatarID ulid.ULID) error {
	exists, err := s.avatars.AvatarExists(ctx, avatarID)
	if err != nil {
		return oops.Code("AUTH_SET_AVATAR_FAILED").
			With("operation", "check avatar").
			Wrap(err)
	}
	if !exists {
		return oops.Code("AVATAR_NOT_FOUND").
			With("avatar_id", avatarID.String()).
			Wrap(errutil.NotFound("Invalid avatar id"))
	}
	if err := s.users.SetAvatar(ctx, userID, avatarID); err != nil {
		return oops.Code("AUTH_SET_AVATAR_FAILED").
			With("operation", "set avatar").
			Wrap(err)
	}
	return nil
}

// MetadataBulk returns the public metadata for the given user IDs.
// Unknown IDs are skipped.
func (s *Service) MetadataBulk(ctx context.Context, ids []ulid.ULID) ([]Metadata, error) {
	users, err := s.users.GetBulk(ctx, ids)
	if err != nil {
		return nil, oops.Code("AUTH_METADATA_BULK_FAILED").Wrap(err)
	}
	out := make([]Metadata, 0, len(users))
	for _, u := range users {
		out = append(out, Metadata{UserID: u.ID, AvatarID: u.AvatarID})
	}
	return out, nil
}

// Unlock clears the lockout for a username. Administrative reset only.
func (s *Service) Unlock(ctx context.Context, username string) error {
	if err := s.users.Unlock(ctx, username); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_UNKNOWN_USERNAME").
				Wrap(errutil.NotFound("Invalid username"))
		}
		return oops.Code("AUTH_UNLOCK_FAILED").
			With("username", username).
			Wrap(err)
	}
	s.logger.Info("account unlocked", "username", username)
	return nil
}
