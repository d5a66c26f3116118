// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

// Package space contains the space model: bounded 2D areas owned by users
// and the element instances placed inside them.
package space

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/arcadelabs/arcade/internal/catalog"
)

// ErrNotFound is returned by repositories when a space or element instance
// does not exist.
var ErrNotFound = errors.New("not found")

// Space is a bounded 2D area owned by a user. Dimensions are immutable after
// creation.
type Space struct {
	ID         ulid.ULID
	OwnerID    ulid.ULID
	Name       string
	Dimensions catalog.Dimensions
	CreatedAt  time.Time
}

// Element is one concrete placement of a catalog element inside a space.
// It references the template by id; template updates fan out to every
// instance.
type Element struct {
	ID        ulid.ULID
	SpaceID   ulid.ULID
	ElementID ulid.ULID
	X         int
	Y         int
	CreatedAt time.Time
}

// PlacedElement pairs an element instance with its resolved template.
type PlacedElement struct {
	Instance *Element
	Template *catalog.Element
}

// Detail is a space with its full current element set.
type Detail struct {
	Space    *Space
	Elements []PlacedElement
}

// Repository manages space persistence.
type Repository interface {
	// CreateSpace stores a new space together with its seed elements (if
	// any) as one atomic operation.
	CreateSpace(ctx context.Context, s *Space, seed []*Element) error

	// GetSpace retrieves a space by id.
	GetSpace(ctx context.Context, id ulid.ULID) (*Space, error)

	// DeleteSpace removes a space and its element instances.
	DeleteSpace(ctx context.Context, id ulid.ULID) error

	// ListByOwner returns every space owned by the given user.
	ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*Space, error)

	// AddElement stores a new element instance.
	AddElement(ctx context.Context, e *Element) error

	// GetElement retrieves an element instance by id.
	GetElement(ctx context.Context, id ulid.ULID) (*Element, error)

	// RemoveElement deletes an element instance.
	RemoveElement(ctx context.Context, id ulid.ULID) error

	// ListElements returns every element instance in a space.
	ListElements(ctx context.Context, spaceID ulid.ULID) ([]*Element, error)
}
