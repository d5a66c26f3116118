// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package catalog_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadelabs/arcade/internal/catalog"
	"github.com/arcadelabs/arcade/internal/catalog/catalogtest"
	"github.com/arcadelabs/arcade/pkg/errutil"
)

func newService(t *testing.T) (*catalog.Service, *catalogtest.Repo) {
	t.Helper()
	repo := catalogtest.NewRepo()
	svc, err := catalog.NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestService_CreateElement(t *testing.T) {
	ctx := context.Background()

	t.Run("creates element", func(t *testing.T) {
		svc, _ := newService(t)

		id, err := svc.CreateElement(ctx, catalog.ElementSpec{
			ImageURL: "https://cdn.example.com/chair.png",
			Width:    1,
			Height:   1,
		})
		require.NoError(t, err)

		e, err := svc.Element(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/chair.png", e.ImageURL)
		assert.False(t, e.Static)
	})

	t.Run("empty image url", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.CreateElement(ctx, catalog.ElementSpec{Width: 1, Height: 1})
		errutil.AssertKind(t, err, errutil.KindValidation)
		assert.Equal(t, "imageUrl cannot be empty", errutil.UserMessage(err, ""))
	})

	t.Run("non-positive size", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.CreateElement(ctx, catalog.ElementSpec{ImageURL: "x.png", Width: 0, Height: 1})
		errutil.AssertKind(t, err, errutil.KindValidation)
	})
}

func TestService_UpdateElement(t *testing.T) {
	ctx := context.Background()

	t.Run("updates image in place", func(t *testing.T) {
		svc, _ := newService(t)
		id, err := svc.CreateElement(ctx, catalog.ElementSpec{ImageURL: "old.png", Width: 1, Height: 1})
		require.NoError(t, err)

		require.NoError(t, svc.UpdateElement(ctx, id, "new.png"))

		e, err := svc.Element(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "new.png", e.ImageURL)
	})

	t.Run("unknown element", func(t *testing.T) {
		svc, _ := newService(t)

		err := svc.UpdateElement(ctx, ulid.Make(), "new.png")
		errutil.AssertKind(t, err, errutil.KindNotFound)
		assert.Equal(t, "element not found", errutil.UserMessage(err, ""))
	})

	t.Run("empty image url", func(t *testing.T) {
		svc, _ := newService(t)

		err := svc.UpdateElement(ctx, ulid.Make(), "")
		errutil.AssertKind(t, err, errutil.KindValidation)
	})
}

func TestService_Avatars(t *testing.T) {
	ctx := context.Background()

	t.Run("create and list", func(t *testing.T) {
		svc, _ := newService(t)

		id, err := svc.CreateAvatar(ctx, catalog.AvatarSpec{ImageURL: "timmy.png", Name: "Timmy"})
		require.NoError(t, err)

		avatars, err := svc.ListAvatars(ctx)
		require.NoError(t, err)
		require.Len(t, avatars, 1)
		assert.Equal(t, id, avatars[0].ID)
		assert.Equal(t, "Timmy", avatars[0].Name)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.CreateAvatar(ctx, catalog.AvatarSpec{Name: "Timmy"})
		errutil.AssertKind(t, err, errutil.KindValidation)
		assert.Equal(t, "imageUrl cannot be empty", errutil.UserMessage(err, ""))

		_, err = svc.CreateAvatar(ctx, catalog.AvatarSpec{ImageURL: "timmy.png"})
		errutil.AssertKind(t, err, errutil.KindValidation)
		assert.Equal(t, "name cannot be empty", errutil.UserMessage(err, ""))
	})

	t.Run("exists", func(t *testing.T) {
		svc, _ := newService(t)
		id, err := svc.CreateAvatar(ctx, catalog.AvatarSpec{ImageURL: "timmy.png", Name: "Timmy"})
		require.NoError(t, err)

		ok, err := svc.AvatarExists(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.AvatarExists(ctx, ulid.Make())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestService_CreateMap(t *testing.T) {
	ctx := context.Background()

	seedElement := func(t *testing.T, svc *catalog.Service) ulid.ULID {
		t.Helper()
		id, err := svc.CreateElement(ctx, catalog.ElementSpec{ImageURL: "e.png", Width: 1, Height: 1})
		require.NoError(t, err)
		return id
	}

	t.Run("creates map with placements", func(t *testing.T) {
		svc, _ := newService(t)
		elementID := seedElement(t, svc)

		id, err := svc.CreateMap(ctx, catalog.MapSpec{
			Name:       "Office",
			Dimensions: "100x200",
			Thumbnail:  "thumb.png",
			DefaultPlacements: []catalog.Placement{
				{ElementID: elementID, X: 0, Y: 0},
				{ElementID: elementID, X: 99, Y: 199},
			},
		})
		require.NoError(t, err)

		m, err := svc.Map(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "100x200", m.Dimensions.String())
		assert.Len(t, m.DefaultPlacements, 2)
	})

	t.Run("empty name", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.CreateMap(ctx, catalog.MapSpec{Dimensions: "100x200"})
		errutil.AssertKind(t, err, errutil.KindValidation)
		assert.Equal(t, "name cannot be empty", errutil.UserMessage(err, ""))
	})

	t.Run("malformed dimensions", func(t *testing.T) {
		svc, _ := newService(t)

		for _, dims := range []string{"", "100", "100x", "x200", "0x200", "-1x200", "axb"} {
			_, err := svc.CreateMap(ctx, catalog.MapSpec{Name: "Office", Dimensions: dims})
			errutil.AssertKind(t, err, errutil.KindValidation)
			assert.Equal(t, "invalid dimensions", errutil.UserMessage(err, ""), "dims=%q", dims)
		}
	})

	t.Run("placement outside bounds", func(t *testing.T) {
		svc, _ := newService(t)
		elementID := seedElement(t, svc)

		_, err := svc.CreateMap(ctx, catalog.MapSpec{
			Name:       "Office",
			Dimensions: "100x200",
			DefaultPlacements: []catalog.Placement{
				{ElementID: elementID, X: 100, Y: 0},
			},
		})
		errutil.AssertKind(t, err, errutil.KindValidation)
		assert.Equal(t, "element lies outside the dimensions", errutil.UserMessage(err, ""))
	})

	t.Run("unknown element in placements", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.CreateMap(ctx, catalog.MapSpec{
			Name:       "Office",
			Dimensions: "100x200",
			DefaultPlacements: []catalog.Placement{
				{ElementID: ulid.Make(), X: 0, Y: 0},
			},
		})
		errutil.AssertKind(t, err, errutil.KindNotFound)
		assert.Equal(t, "element not found", errutil.UserMessage(err, ""))
	})
}

func TestParseDimensions(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d, err := catalog.ParseDimensions("100x200")
		require.NoError(t, err)
		assert.Equal(t, 100, d.Width)
		assert.Equal(t, 200, d.Height)
		assert.Equal(t, "100x200", d.String())
	})

	t.Run("contains", func(t *testing.T) {
		d, err := catalog.ParseDimensions("10x20")
		require.NoError(t, err)

		assert.True(t, d.Contains(0, 0))
		assert.True(t, d.Contains(9, 19))
		assert.False(t, d.Contains(10, 0))
		assert.False(t, d.Contains(0, 20))
		assert.False(t, d.Contains(-1, 0))
		assert.False(t, d.Contains(0, -1))
	})
}
