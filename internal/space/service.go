// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package space

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/internal/catalog"
	"github.com/arcadelabs/arcade/pkg/errutil"
)

// Catalog is the slice of the element catalog the space model consults:
// template lookup for placements and blueprints for seeding.
type Catalog interface {
	Element(ctx context.Context, id ulid.ULID) (*catalog.Element, error)
	ElementsBulk(ctx context.Context, ids []ulid.ULID) ([]*catalog.Element, error)
	Map(ctx context.Context, id ulid.ULID) (*catalog.Map, error)
}

// ServiceConfig holds dependencies for Service.
type ServiceConfig struct {
	Repo    Repository
	Catalog Catalog
	Logger  *slog.Logger
}

// Service provides space operations.
type Service struct {
	repo    Repository
	catalog Catalog
	logger  *slog.Logger
}

// NewService creates a new Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repo == nil {
		return nil, oops.Errorf("space repository is required")
	}
	if cfg.Catalog == nil {
		return nil, oops.Errorf("catalog is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: cfg.Repo, catalog: cfg.Catalog, logger: logger}, nil
}

// CreateSpace creates a space for ownerID. Either dimensions ("WxH") or
// mapID must be given. With a mapID, dimensions come from the blueprint and
// its default placements are cloned as fresh element instances with
// lifecycles independent of the blueprint.
func (s *Service) CreateSpace(ctx context.Context, ownerID ulid.ULID, name, dimensions string, mapID *ulid.ULID) (ulid.ULID, error) {
	if name == "" {
		return ulid.ULID{}, oops.Code("SPACE_INVALID").
			Wrap(errutil.Validation("name cannot be empty"))
	}

	var (
		dims catalog.Dimensions
		seed []*Element
		err  error
	)
	switch {
	case mapID != nil:
		m, mapErr := s.catalog.Map(ctx, *mapID)
		if mapErr != nil {
			return ulid.ULID{}, mapErr
		}
		dims = m.Dimensions
		seed = make([]*Element, 0, len(m.DefaultPlacements))
		now := time.Now()
		for _, p := range m.DefaultPlacements {
			seed = append(seed, &Element{
				ID:        ulid.Make(),
				ElementID: p.ElementID,
				X:         p.X,
				Y:         p.Y,
				CreatedAt: now,
			})
		}
	case dimensions != "":
		dims, err = catalog.ParseDimensions(dimensions)
		if err != nil {
			return ulid.ULID{}, err
		}
	default:
		return ulid.ULID{}, oops.Code("SPACE_INVALID").
			Wrap(errutil.Validation("dimensions or mapId is required"))
	}

	sp := &Space{
		ID:         ulid.Make(),
		OwnerID:    ownerID,
		Name:       name,
		Dimensions: dims,
		CreatedAt:  time.Now(),
	}
	for _, e := range seed {
		e.SpaceID = sp.ID
	}

	if err := s.repo.CreateSpace(ctx, sp, seed); err != nil {
		return ulid.ULID{}, oops.Code("SPACE_CREATE_FAILED").
			With("space_id", sp.ID.String()).
			Wrap(err)
	}

	s.logger.Info("space created",
		"space_id", sp.ID.String(),
		"owner_id", ownerID.String(),
		"dimensions", dims.String(),
		"seeded", len(seed))
	return sp.ID, nil
}

// DeleteSpace removes a space. Only the owner may delete it.
func (s *Service) DeleteSpace(ctx context.Context, requesterID, spaceID ulid.ULID) error {
	sp, err := s.getSpace(ctx, spaceID)
	if err != nil {
		return err
	}
	if sp.OwnerID.Compare(requesterID) != 0 {
		return oops.Code("SPACE_FORBIDDEN").
			With("space_id", spaceID.String()).
			With("requester_id", requesterID.String()).
			Wrap(errutil.Forbidden("Unauthorized"))
	}
	if err := s.repo.DeleteSpace(ctx, spaceID); err != nil {
		return oops.Code("SPACE_DELETE_FAILED").
			With("space_id", spaceID.String()).
			Wrap(err)
	}
	return nil
}

// ListSpaces returns every space owned by the given user.
func (s *Service) ListSpaces(ctx context.Context, ownerID ulid.ULID) ([]*Space, error) {
	spaces, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, oops.Code("SPACE_LIST_FAILED").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	return spaces, nil
}

// GetSpace returns a space's dimensions and its complete element set with
// resolved templates.
func (s *Service) GetSpace(ctx context.Context, spaceID ulid.ULID) (*Detail, error) {
	sp, err := s.getSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	instances, err := s.repo.ListElements(ctx, spaceID)
	if err != nil {
		return nil, oops.Code("SPACE_GET_FAILED").
			With("space_id", spaceID.String()).
			Wrap(err)
	}

	templateIDs := make([]ulid.ULID, 0, len(instances))
	seen := make(map[ulid.ULID]struct{}, len(instances))
	for _, inst := range instances {
		if _, ok := seen[inst.ElementID]; !ok {
			seen[inst.ElementID] = struct{}{}
			templateIDs = append(templateIDs, inst.ElementID)
		}
	}

	templates := make(map[ulid.ULID]*catalog.Element, len(templateIDs))
	if len(templateIDs) > 0 {
		resolved, err := s.catalog.ElementsBulk(ctx, templateIDs)
		if err != nil {
			return nil, oops.Code("SPACE_GET_FAILED").
				With("space_id", spaceID.String()).
				Wrap(err)
		}
		for _, t := range resolved {
			templates[t.ID] = t
		}
	}

	detail := &Detail{Space: sp, Elements: make([]PlacedElement, 0, len(instances))}
	for _, inst := range instances {
		detail.Elements = append(detail.Elements, PlacedElement{
			Instance: inst,
			Template: templates[inst.ElementID],
		})
	}
	return detail, nil
}

// PlaceElement inserts an element instance at (x, y). The bounds check runs
// before any mutation; an out-of-bounds request leaves the space unchanged.
// Any authenticated user who can resolve the space may place.
func (s *Service) PlaceElement(ctx context.Context, requesterID, spaceID, elementID ulid.ULID, x, y int) (ulid.ULID, error) {
	sp, err := s.getSpace(ctx, spaceID)
	if err != nil {
		return ulid.ULID{}, err
	}

	if _, err := s.catalog.Element(ctx, elementID); err != nil {
		return ulid.ULID{}, err
	}

	if err := ValidatePlacement(sp.Dimensions, x, y); err != nil {
		return ulid.ULID{}, err
	}

	instance := &Element{
		ID:        ulid.Make(),
		SpaceID:   spaceID,
		ElementID: elementID,
		X:         x,
		Y:         y,
		CreatedAt: time.Now(),
	}
	if err := s.repo.AddElement(ctx, instance); err != nil {
		return ulid.ULID{}, oops.Code("PLACEMENT_FAILED").
			With("space_id", spaceID.String()).
			With("element_id", elementID.String()).
			Wrap(err)
	}
	return instance.ID, nil
}

// RemoveElement deletes an element instance. A valid session suffices; the
// authorization scope matches placement.
func (s *Service) RemoveElement(ctx context.Context, requesterID, instanceID ulid.ULID) error {
	if _, err := s.repo.GetElement(ctx, instanceID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("SPACE_ELEMENT_NOT_FOUND").
				With("instance_id", instanceID.String()).
				Wrap(errutil.NotFound("element not found"))
		}
		return oops.Code("SPACE_ELEMENT_GET_FAILED").
			With("instance_id", instanceID.String()).
			Wrap(err)
	}
	if err := s.repo.RemoveElement(ctx, instanceID); err != nil {
		return oops.Code("SPACE_ELEMENT_REMOVE_FAILED").
			With("instance_id", instanceID.String()).
			Wrap(err)
	}
	return nil
}

func (s *Service) getSpace(ctx context.Context, spaceID ulid.ULID) (*Space, error) {
	sp, err := s.repo.GetSpace(ctx, spaceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SPACE_NOT_FOUND").
				With("space_id", spaceID.String()).
				Wrap(errutil.NotFound("Space not found"))
		}
		return nil, oops.Code("SPACE_GET_FAILED").
			With("space_id", spaceID.String()).
			Wrap(err)
	}
	return sp, nil
}
