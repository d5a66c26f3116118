// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package web

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/arcadelabs/arcade/pkg/errutil"
)

// statusFor maps an error kind to the HTTP status the API contract promises.
// Client mistakes are 400, anything about who you are is 403, and storage
// trouble is 503.
func statusFor(kind errutil.Kind) int {
	switch kind {
	case errutil.KindValidation, errutil.KindConflict, errutil.KindNotFound:
		return http.StatusBadRequest
	case errutil.KindAuth, errutil.KindLocked, errutil.KindForbidden:
		return http.StatusForbidden
	case errutil.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error as a JSON body. Classified errors surface their
// contract message; anything unclassified is logged and hidden behind a
// generic 500.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	kind := errutil.KindOf(err)
	if kind == errutil.KindUnknown {
		errutil.LogError(s.logger, "request failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
	return c.Status(statusFor(kind)).JSON(fiber.Map{
		"message": errutil.UserMessage(err, "Internal server error"),
	})
}

// failWithStatus writes the error's contract message under a fixed status,
// for routes that override the default kind mapping.
func (s *Server) failWithStatus(c *fiber.Ctx, err error, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"message": errutil.UserMessage(err, "Internal server error"),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": message})
}
