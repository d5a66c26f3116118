// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

// Package access provides role-based authorization for Arcade operations.
package access

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/pkg/errutil"
)

// Role is the closed set of account roles.
type Role string

// Account roles.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole converts a wire-level role string ("admin" or "user") to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", oops.Code("ACCESS_INVALID_ROLE").
			With("role", s).
			Wrap(errutil.Validation("invalid role"))
	}
	return r, nil
}

// Authorize reports whether role satisfies required. Admin satisfies every
// check; user satisfies only user-level checks. Roles outside the closed set
// never authorize anything.
func Authorize(role, required Role) bool {
	switch required {
	case RoleAdmin:
		return role == RoleAdmin
	case RoleUser:
		return role == RoleUser || role == RoleAdmin
	default:
		return false
	}
}

// Identity is a resolved session: the authenticated user and their role.
type Identity struct {
	UserID ulid.ULID
	Role   Role
}
