// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package web

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"

	"github.com/arcadelabs/arcade/internal/access"
	"github.com/arcadelabs/arcade/pkg/errutil"
)

type signUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Type     string `json:"type"`
}

func (s *Server) handleSignUp(c *fiber.Ctx) error {
	var req signUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	role := access.RoleUser
	if req.Type != "" {
		parsed, err := access.ParseRole(req.Type)
		if err != nil {
			return s.fail(c, err)
		}
		role = parsed
	}

	userID, err := s.auth.SignUp(c.UserContext(), req.Username, req.Password, role)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(fiber.Map{"userId": userID.String()})
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignIn(c *fiber.Ctx) error {
	var req signInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	token, err := s.auth.SignIn(c.UserContext(), req.Username, req.Password)
	if err != nil {
		s.recordSignIn(err)
		// Unknown usernames surface as 403 here: sign-in failures are all
		// authentication failures from the caller's point of view.
		if errutil.IsKind(err, errutil.KindNotFound) {
			return s.failWithStatus(c, err, http.StatusForbidden)
		}
		return s.fail(c, err)
	}

	s.recordSignIn(nil)
	return c.JSON(fiber.Map{"token": token})
}

func (s *Server) recordSignIn(err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err == nil:
		s.metrics.RecordSignIn("ok")
	case errutil.IsKind(err, errutil.KindLocked):
		s.metrics.RecordSignIn("locked")
	default:
		s.metrics.RecordSignIn("invalid")
	}
}

func (s *Server) handleSignOut(c *fiber.Ctx) error {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if err := s.auth.SignOut(c.UserContext(), token); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

type changePasswordRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

// handleChangePassword is unauthenticated: the request proves possession of
// the current password instead of a session token.
func (s *Server) handleChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	if err := s.auth.ChangePassword(c.UserContext(), req.Username, req.Password, req.NewPassword); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

type updateMetadataRequest struct {
	AvatarID string `json:"avatarId"`
}

func (s *Server) handleUpdateMetadata(c *fiber.Ctx) error {
	var req updateMetadataRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	avatarID, err := ulid.Parse(req.AvatarID)
	if err != nil {
		return badRequest(c, "Invalid avatar id")
	}

	identity := identityFrom(c)
	if err := s.auth.SetAvatar(c.UserContext(), identity.UserID, avatarID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Metadata updated successfully"})
}

func (s *Server) handleMetadataBulk(c *fiber.Ctx) error {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		return badRequest(c, "invalid id list")
	}

	metadata, err := s.auth.MetadataBulk(c.UserContext(), ids)
	if err != nil {
		return s.fail(c, err)
	}

	// Resolve avatar ids to image urls in one round trip.
	avatarIDs := make([]ulid.ULID, 0, len(metadata))
	for _, m := range metadata {
		if m.AvatarID != nil {
			avatarIDs = append(avatarIDs, *m.AvatarID)
		}
	}
	avatars, err := s.catalog.AvatarsBulk(c.UserContext(), avatarIDs)
	if err != nil {
		return s.fail(c, err)
	}
	images := make(map[ulid.ULID]string, len(avatars))
	for _, a := range avatars {
		images[a.ID] = a.ImageURL
	}

	out := make([]fiber.Map, 0, len(metadata))
	for _, m := range metadata {
		entry := fiber.Map{"userId": m.UserID.String()}
		if m.AvatarID != nil {
			entry["imageUrl"] = images[*m.AvatarID]
		}
		out = append(out, entry)
	}
	return c.JSON(fiber.Map{"avatars": out})
}

type unlockRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleUnlock(c *fiber.Ctx) error {
	var req unlockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	if err := s.auth.Unlock(c.UserContext(), req.Username); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account unlocked"})
}

// parseIDList parses the bulk query format "[id1,id2]"; bare comma-separated
// lists are accepted too.
func parseIDList(raw string) ([]ulid.ULID, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]ulid.ULID, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		id, err := ulid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
