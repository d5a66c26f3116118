// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

// Package auth provides account credentials, failed-attempt lockout, and
// bearer session management for the Arcade platform.
package auth
