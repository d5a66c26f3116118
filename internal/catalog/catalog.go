// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

// Package catalog contains the admin-curated template types: elements,
// avatars, and maps. Templates are shared by reference; every space or user
// holding a template id sees in-place updates immediately.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/pkg/errutil"
)

// ErrNotFound is returned by repositories when a template does not exist.
var ErrNotFound = errors.New("not found")

// Dimensions is a bounded 2D area, serialized as "WxH".
type Dimensions struct {
	Width  int
	Height int
}

// ParseDimensions parses a "WxH" string with positive integer sides.
func ParseDimensions(s string) (Dimensions, error) {
	invalid := func() (Dimensions, error) {
		return Dimensions{}, oops.Code("INVALID_DIMENSIONS").
			With("dimensions", s).
			Wrap(errutil.Validation("invalid dimensions"))
	}

	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return invalid()
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return invalid()
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return invalid()
	}
	return Dimensions{Width: width, Height: height}, nil
}

// String returns the "WxH" form.
func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Contains reports whether (x, y) lies within [0, Width) x [0, Height).
func (d Dimensions) Contains(x, y int) bool {
	return x >= 0 && x < d.Width && y >= 0 && y < d.Height
}

// Element is a reusable visual template referenced by placements.
type Element struct {
	ID        ulid.ULID
	ImageURL  string
	Width     int
	Height    int
	Static    bool
	CreatedAt time.Time
}

// Avatar is a user-selectable appearance template.
type Avatar struct {
	ID        ulid.ULID
	ImageURL  string
	Name      string
	CreatedAt time.Time
}

// Placement is one default element position inside a map blueprint.
type Placement struct {
	ElementID ulid.ULID
	X         int
	Y         int
}

// Map is an admin-authored blueprint of dimensions plus default placements,
// used only to seed new spaces.
type Map struct {
	ID                ulid.ULID
	Name              string
	Dimensions        Dimensions
	Thumbnail         string
	DefaultPlacements []Placement
	CreatedAt         time.Time
}

// Repository manages template persistence.
type Repository interface {
	CreateElement(ctx context.Context, element *Element) error
	GetElement(ctx context.Context, id ulid.ULID) (*Element, error)
	GetElementsBulk(ctx context.Context, ids []ulid.ULID) ([]*Element, error)
	// UpdateElementImage mutates the template in place; the change fans out
	// to every space referencing the element.
	UpdateElementImage(ctx context.Context, id ulid.ULID, imageURL string) error

	CreateAvatar(ctx context.Context, avatar *Avatar) error
	GetAvatar(ctx context.Context, id ulid.ULID) (*Avatar, error)
	GetAvatarsBulk(ctx context.Context, ids []ulid.ULID) ([]*Avatar, error)
	ListAvatars(ctx context.Context) ([]*Avatar, error)

	CreateMap(ctx context.Context, m *Map) error
	GetMap(ctx context.Context, id ulid.ULID) (*Map, error)
}
