// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"

	"github.com/arcadelabs/arcade/internal/catalog"
)

func (s *Server) handleListAvatars(c *fiber.Ctx) error {
	avatars, err := s.catalog.ListAvatars(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}

	out := make([]fiber.Map, 0, len(avatars))
	for _, a := range avatars {
		out = append(out, fiber.Map{
			"id":       a.ID.String(),
			"imageUrl": a.ImageURL,
			"name":     a.Name,
		})
	}
	return c.JSON(fiber.Map{"avatars": out})
}

type createElementRequest struct {
	ImageURL string `json:"imageUrl"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Static   bool   `json:"static"`
}

func (s *Server) handleCreateElement(c *fiber.Ctx) error {
	var req createElementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	id, err := s.catalog.CreateElement(c.UserContext(), catalog.ElementSpec{
		ImageURL: req.ImageURL,
		Width:    req.Width,
		Height:   req.Height,
		Static:   req.Static,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"id": id.String()})
}

type updateElementRequest struct {
	ImageURL string `json:"imageUrl"`
}

func (s *Server) handleUpdateElement(c *fiber.Ctx) error {
	elementID, err := ulid.Parse(c.Params("elementId"))
	if err != nil {
		return badRequest(c, "element not found")
	}

	var req updateElementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	if err := s.catalog.UpdateElement(c.UserContext(), elementID, req.ImageURL); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Element updated"})
}

type createAvatarRequest struct {
	ImageURL string `json:"imageUrl"`
	Name     string `json:"name"`
}

func (s *Server) handleCreateAvatar(c *fiber.Ctx) error {
	var req createAvatarRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	id, err := s.catalog.CreateAvatar(c.UserContext(), catalog.AvatarSpec{
		ImageURL: req.ImageURL,
		Name:     req.Name,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"avatarId": id.String()})
}

type mapPlacementRequest struct {
	ElementID string `json:"elementId"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

type createMapRequest struct {
	Name            string                `json:"name"`
	Dimensions      string                `json:"dimensions"`
	Thumbnail       string                `json:"thumbnail"`
	DefaultElements []mapPlacementRequest `json:"defaultElements"`
}

func (s *Server) handleCreateMap(c *fiber.Ctx) error {
	var req createMapRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	placements := make([]catalog.Placement, 0, len(req.DefaultElements))
	for _, p := range req.DefaultElements {
		elementID, err := ulid.Parse(p.ElementID)
		if err != nil {
			return badRequest(c, "element not found")
		}
		placements = append(placements, catalog.Placement{
			ElementID: elementID,
			X:         p.X,
			Y:         p.Y,
		})
	}

	id, err := s.catalog.CreateMap(c.UserContext(), catalog.MapSpec{
		Name:              req.Name,
		Dimensions:        req.Dimensions,
		Thumbnail:         req.Thumbnail,
		DefaultPlacements: placements,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"id": id.String()})
}
