// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/pkg/errutil"
)

// ElementSpec describes a new element template.
type ElementSpec struct {
	ImageURL string
	Width    int
	Height   int
	Static   bool
}

// AvatarSpec describes a new avatar template.
type AvatarSpec struct {
	ImageURL string
	Name     string
}

// MapSpec describes a new map blueprint.
type MapSpec struct {
	Name              string
	Dimensions        string // "WxH"
	Thumbnail         string
	DefaultPlacements []Placement
}

// Service provides catalog operations. Admin gating happens at the boundary;
// the service itself only validates input.
type Service struct {
	repo Repository
}

// NewService creates a new Service.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, oops.Errorf("catalog repository is required")
	}
	return &Service{repo: repo}, nil
}

// CreateElement inserts a new element template and returns its id.
func (s *Service) CreateElement(ctx context.Context, spec ElementSpec) (ulid.ULID, error) {
	if spec.ImageURL == "" {
		return ulid.ULID{}, oops.Code("ELEMENT_INVALID").
			Wrap(errutil.Validation("imageUrl cannot be empty"))
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return ulid.ULID{}, oops.Code("ELEMENT_INVALID").
			With("width", spec.Width).
			With("height", spec.Height).
			Wrap(errutil.Validation("element size must be positive"))
	}

	element := &Element{
		ID:        ulid.Make(),
		ImageURL:  spec.ImageURL,
		Width:     spec.Width,
		Height:    spec.Height,
		Static:    spec.Static,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateElement(ctx, element); err != nil {
		return ulid.ULID{}, oops.Code("ELEMENT_CREATE_FAILED").Wrap(err)
	}
	return element.ID, nil
}

// UpdateElement replaces the image of an existing element template. The
// update is visible immediately to every space referencing the element.
func (s *Service) UpdateElement(ctx context.Context, id ulid.ULID, imageURL string) error {
	if imageURL == "" {
		return oops.Code("ELEMENT_INVALID").
			Wrap(errutil.Validation("imageUrl cannot be empty"))
	}
	if err := s.repo.UpdateElementImage(ctx, id, imageURL); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("ELEMENT_NOT_FOUND").
				With("element_id", id.String()).
				Wrap(errutil.NotFound("element not found"))
		}
		return oops.Code("ELEMENT_UPDATE_FAILED").
			With("element_id", id.String()).
			Wrap(err)
	}
	return nil
}

// Element retrieves one element template.
func (s *Service) Element(ctx context.Context, id ulid.ULID) (*Element, error) {
	element, err := s.repo.GetElement(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ELEMENT_NOT_FOUND").
				With("element_id", id.String()).
				Wrap(errutil.NotFound("element not found"))
		}
		return nil, oops.Code("ELEMENT_GET_FAILED").
			With("element_id", id.String()).
			Wrap(err)
	}
	return element, nil
}

// ElementsBulk retrieves the element templates with the given ids.
// Unknown ids are skipped.
func (s *Service) ElementsBulk(ctx context.Context, ids []ulid.ULID) ([]*Element, error) {
	elements, err := s.repo.GetElementsBulk(ctx, ids)
	if err != nil {
		return nil, oops.Code("ELEMENT_BULK_FAILED").Wrap(err)
	}
	return elements, nil
}

// CreateAvatar inserts a new avatar template and returns its id.
func (s *Service) CreateAvatar(ctx context.Context, spec AvatarSpec) (ulid.ULID, error) {
	if spec.ImageURL == "" {
		return ulid.ULID{}, oops.Code("AVATAR_INVALID").
			Wrap(errutil.Validation("imageUrl cannot be empty"))
	}
	if spec.Name == "" {
		return ulid.ULID{}, oops.Code("AVATAR_INVALID").
			Wrap(errutil.Validation("name cannot be empty"))
	}

	avatar := &Avatar{
		ID:        ulid.Make(),
		ImageURL:  spec.ImageURL,
		Name:      spec.Name,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateAvatar(ctx, avatar); err != nil {
		return ulid.ULID{}, oops.Code("AVATAR_CREATE_FAILED").Wrap(err)
	}
	return avatar.ID, nil
}

// ListAvatars returns every avatar template.
func (s *Service) ListAvatars(ctx context.Context) ([]*Avatar, error) {
	avatars, err := s.repo.ListAvatars(ctx)
	if err != nil {
		return nil, oops.Code("AVATAR_LIST_FAILED").Wrap(err)
	}
	return avatars, nil
}

// AvatarsBulk retrieves the avatar templates with the given ids.
// Unknown ids are skipped.
func (s *Service) AvatarsBulk(ctx context.Context, ids []ulid.ULID) ([]*Avatar, error) {
	avatars, err := s.repo.GetAvatarsBulk(ctx, ids)
	if err != nil {
		return nil, oops.Code("AVATAR_BULK_FAILED").Wrap(err)
	}
	return avatars, nil
}

// AvatarExists reports whether an avatar template exists. Satisfies the auth
// service's AvatarDirectory.
func (s *Service) AvatarExists(ctx context.Context, id ulid.ULID) (bool, error) {
	_, err := s.repo.GetAvatar(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, oops.Code("AVATAR_GET_FAILED").
			With("avatar_id", id.String()).
			Wrap(err)
	}
	return true, nil
}

// CreateMap inserts a new map blueprint and returns its id. Default
// placements must reference existing elements and lie within the map bounds.
func (s *Service) CreateMap(ctx context.Context, spec MapSpec) (ulid.ULID, error) {
	if spec.Name == "" {
		return ulid.ULID{}, oops.Code("MAP_INVALID").
			Wrap(errutil.Validation("name cannot be empty"))
	}
	dims, err := ParseDimensions(spec.Dimensions)
	if err != nil {
		return ulid.ULID{}, err
	}

	if len(spec.DefaultPlacements) > 0 {
		ids := make([]ulid.ULID, 0, len(spec.DefaultPlacements))
		seen := make(map[ulid.ULID]struct{}, len(spec.DefaultPlacements))
		for _, p := range spec.DefaultPlacements {
			if !dims.Contains(p.X, p.Y) {
				return ulid.ULID{}, oops.Code("MAP_INVALID").
					With("x", p.X).
					With("y", p.Y).
					Wrap(errutil.Validation("element lies outside the dimensions"))
			}
			if _, ok := seen[p.ElementID]; !ok {
				seen[p.ElementID] = struct{}{}
				ids = append(ids, p.ElementID)
			}
		}
		elements, err := s.repo.GetElementsBulk(ctx, ids)
		if err != nil {
			return ulid.ULID{}, oops.Code("MAP_CREATE_FAILED").Wrap(err)
		}
		if len(elements) != len(ids) {
			return ulid.ULID{}, oops.Code("ELEMENT_NOT_FOUND").
				Wrap(errutil.NotFound("element not found"))
		}
	}

	m := &Map{
		ID:                ulid.Make(),
		Name:              spec.Name,
		Dimensions:        dims,
		Thumbnail:         spec.Thumbnail,
		DefaultPlacements: spec.DefaultPlacements,
		CreatedAt:         time.Now(),
	}
	if err := s.repo.CreateMap(ctx, m); err != nil {
		return ulid.ULID{}, oops.Code("MAP_CREATE_FAILED").Wrap(err)
	}
	return m.ID, nil
}

// Map retrieves one map blueprint with its default placements.
func (s *Service) Map(ctx context.Context, id ulid.ULID) (*Map, error) {
	m, err := s.repo.GetMap(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("MAP_NOT_FOUND").
				With("map_id", id.String()).
				Wrap(errutil.NotFound("map not found"))
		}
		return nil, oops.Code("MAP_GET_FAILED").
			With("map_id", id.String()).
			Wrap(err)
	}
	return m, nil
}
