// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

// Package errutil provides the error taxonomy shared by all Arcade services
// and helpers for logging and testing errors.
package errutil

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the stable failure categories the
// transport layer maps to status codes.
type Kind string

// Error kinds.
const (
	KindValidation  Kind = "validation"
	KindConflict    Kind = "conflict"
	KindNotFound    Kind = "not_found"
	KindAuth        Kind = "auth"
	KindLocked      Kind = "locked"
	KindForbidden   Kind = "forbidden"
	KindUnavailable Kind = "unavailable"
	KindUnknown     Kind = "unknown"
)

// Error is a classified error with a caller-facing message. Domain packages
// wrap these with oops for codes and context; the message is part of the
// tested external contract and must stay stable.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation reports malformed or missing input. Always the caller's fault.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown id or name.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Auth reports a bad credential or an invalid session.
func Auth(format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(format, args...)}
}

// Locked reports an account lockout. Kept distinct from Auth so the
// transport layer can report the specific reason.
func Locked(format string, args ...any) *Error {
	return &Error{Kind: KindLocked, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports an authenticated but unpermitted request.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Unavailable reports a transient storage or dependency failure. Safe for
// the caller to retry; never retried internally.
func Unavailable(format string, args ...any) *Error {
	return &Error{Kind: KindUnavailable, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindUnknown if err carries no
// classification anywhere in its chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage returns the stable caller-facing message of err, or fallback
// if err carries none.
func UserMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fallback
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
