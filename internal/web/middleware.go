// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package web

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/arcadelabs/arcade/internal/access"
)

// requireAuth resolves the bearer token into an identity. Missing, malformed,
// and revoked tokens all get the same response so a probe learns nothing
// about which failure it hit.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"message": "Unauthorized Access",
		})
	}

	identity, err := s.auth.Resolve(c.UserContext(), token)
	if err != nil {
		return s.fail(c, err)
	}

	c.SetUserContext(access.WithIdentity(c.UserContext(), identity))
	return c.Next()
}

// requireAdmin gates a route on the admin role. Must run after requireAuth.
func (s *Server) requireAdmin(c *fiber.Ctx) error {
	identity := identityFrom(c)
	if !access.Authorize(identity.Role, access.RoleAdmin) {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"message": "You are not authorized to access this route",
		})
	}
	return c.Next()
}

// identityFrom returns the identity stored by requireAuth. The zero value is
// only possible on routes that skipped the middleware, which is a wiring bug.
func identityFrom(c *fiber.Ctx) access.Identity {
	identity, _ := access.IdentityFrom(c.UserContext())
	return identity
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
