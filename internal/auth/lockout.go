// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package auth

// LockoutThreshold is the number of consecutive failed sign-in attempts that
// locks an account.
const LockoutThreshold = 5

// LockedMessage is the caller-facing message for a locked account. It is
// part of the tested external contract.
const LockedMessage = "Account locked as you did 5 failed attempts"

// Locks reports whether the given consecutive-failure count triggers a
// lockout. There is no automatic unlock; a locked account stays locked until
// an administrative reset.
func Locks(failures int) bool {
	return failures >= LockoutThreshold
}
