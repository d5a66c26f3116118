// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
)

type createSpaceRequest struct {
	Name       string `json:"name"`
	Dimensions string `json:"dimensions"`
	MapID      string `json:"mapId"`
}

func (s *Server) handleCreateSpace(c *fiber.Ctx) error {
	var req createSpaceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	var mapID *ulid.ULID
	if req.MapID != "" {
		id, err := ulid.Parse(req.MapID)
		if err != nil {
			return badRequest(c, "Map not found")
		}
		mapID = &id
	}

	identity := identityFrom(c)
	spaceID, err := s.spaces.CreateSpace(c.UserContext(), identity.UserID, req.Name, req.Dimensions, mapID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"spaceId": spaceID.String()})
}

func (s *Server) handleListSpaces(c *fiber.Ctx) error {
	identity := identityFrom(c)
	spaces, err := s.spaces.ListSpaces(c.UserContext(), identity.UserID)
	if err != nil {
		return s.fail(c, err)
	}

	out := make([]fiber.Map, 0, len(spaces))
	for _, sp := range spaces {
		out = append(out, fiber.Map{
			"id":         sp.ID.String(),
			"name":       sp.Name,
			"dimensions": sp.Dimensions.String(),
		})
	}
	return c.JSON(fiber.Map{"spaces": out})
}

func (s *Server) handleGetSpace(c *fiber.Ctx) error {
	spaceID, err := ulid.Parse(c.Params("spaceId"))
	if err != nil {
		return badRequest(c, "Space not found")
	}

	detail, err := s.spaces.GetSpace(c.UserContext(), spaceID)
	if err != nil {
		return s.fail(c, err)
	}

	elements := make([]fiber.Map, 0, len(detail.Elements))
	for _, pe := range detail.Elements {
		elements = append(elements, fiber.Map{
			"id": pe.Instance.ID.String(),
			"element": fiber.Map{
				"id":       pe.Template.ID.String(),
				"imageUrl": pe.Template.ImageURL,
				"width":    pe.Template.Width,
				"height":   pe.Template.Height,
				"static":   pe.Template.Static,
			},
			"x": pe.Instance.X,
			"y": pe.Instance.Y,
		})
	}
	return c.JSON(fiber.Map{
		"dimensions": detail.Space.Dimensions.String(),
		"elements":   elements,
	})
}

func (s *Server) handleDeleteSpace(c *fiber.Ctx) error {
	spaceID, err := ulid.Parse(c.Params("spaceId"))
	if err != nil {
		return badRequest(c, "Space not found")
	}

	identity := identityFrom(c)
	if err := s.spaces.DeleteSpace(c.UserContext(), identity.UserID, spaceID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Space deleted"})
}

type placeElementRequest struct {
	SpaceID   string `json:"spaceId"`
	ElementID string `json:"elementId"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

func (s *Server) handlePlaceElement(c *fiber.Ctx) error {
	var req placeElementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	spaceID, err := ulid.Parse(req.SpaceID)
	if err != nil {
		return badRequest(c, "Space not found")
	}
	elementID, err := ulid.Parse(req.ElementID)
	if err != nil {
		return badRequest(c, "element not found")
	}

	identity := identityFrom(c)
	instanceID, err := s.spaces.PlaceElement(c.UserContext(), identity.UserID, spaceID, elementID, req.X, req.Y)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordPlacement("rejected")
		}
		return s.fail(c, err)
	}
	if s.metrics != nil {
		s.metrics.RecordPlacement("ok")
	}
	return c.JSON(fiber.Map{"id": instanceID.String()})
}

type removeElementRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleRemoveElement(c *fiber.Ctx) error {
	var req removeElementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}

	instanceID, err := ulid.Parse(req.ID)
	if err != nil {
		return badRequest(c, "element not found")
	}

	identity := identityFrom(c)
	if err := s.spaces.RemoveElement(c.UserContext(), identity.UserID, instanceID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Element removed"})
}
