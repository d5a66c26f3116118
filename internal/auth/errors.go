// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package auth

import "errors"

// ErrNotFound is returned by repositories when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by repositories when a uniqueness constraint is violated.
var ErrDuplicate = errors.New("duplicate")
