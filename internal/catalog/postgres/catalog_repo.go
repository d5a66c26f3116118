// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

// Package postgres implements the catalog repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/internal/catalog"
	"github.com/arcadelabs/arcade/pkg/errutil"
)

// Repository implements catalog.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func unavailable(err error) error {
	return oops.Code("STORAGE_UNAVAILABLE").
		With("cause", err.Error()).
		Wrap(errutil.Unavailable("service temporarily unavailable"))
}

// CreateElement stores a new element template.
func (r *Repository) CreateElement(ctx context.Context, element *catalog.Element) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO elements (id, image_url, width, height, static, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		element.ID.String(),
		element.ImageURL,
		element.Width,
		element.Height,
		element.Static,
		element.CreatedAt,
	)
	if err != nil {
		return oops.Code("ELEMENT_CREATE_FAILED").
			With("element_id", element.ID.String()).
			Wrap(unavailable(err))
	}
	return nil
}

// GetElement retrieves an element template by id.
func (r *Repository) GetElement(ctx context.Context, id ulid.ULID) (*catalog.Element, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, image_url, width, height, static, created_at
		FROM elements
		WHERE id = $1
	`, id.String())

	element, err := scanElement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ELEMENT_NOT_FOUND").
			With("element_id", id.String()).
			Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ELEMENT_GET_FAILED").
			With("element_id", id.String()).
			Wrap(unavailable(err))
	}
	return element, nil
}

// GetElementsBulk retrieves the element templates with the given ids.
func (r *Repository) GetElementsBulk(ctx context.Context, ids []ulid.ULID) ([]*catalog.Element, error) {
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, image_url, width, height, static, created_at
		FROM elements
		WHERE id = ANY($1)
	`, idStrs)
	if err != nil {
		return nil, oops.Code("ELEMENT_BULK_FAILED").Wrap(unavailable(err))
	}
	defer rows.Close()

	var elements []*catalog.Element
	for rows.Next() {
		element, err := scanElement(rows)
		if err != nil {
			return nil, oops.Code("ELEMENT_BULK_FAILED").Wrap(err)
		}
		elements = append(elements, element)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ELEMENT_BULK_FAILED").Wrap(unavailable(err))
	}
	return elements, nil
}

// UpdateElementImage replaces the image of an element template in place.
func (r *Repository) UpdateElementImage(ctx context.Context, id ulid.ULID, imageURL string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE elements SET image_url = $2 WHERE id = $1
	`, id.String(), imageURL)
	if err != nil {
		return oops.Code("ELEMENT_UPDATE_FAILED").
			With("element_id", id.String()).
			Wrap(unavailable(err))
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ELEMENT_NOT_FOUND").
			With("element_id", id.String()).
			Wrap(catalog.ErrNotFound)
	}
	return nil
}

// CreateAvatar stores a new avatar template.
func (r *Repository) CreateAvatar(ctx context.Context, avatar *catalog.Avatar) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO avatars (id, image_url, name, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		avatar.ID.String(),
		avatar.ImageURL,
		avatar.Name,
		avatar.CreatedAt,
	)
	if err != nil {
		return oops.Code("AVATAR_CREATE_FAILED").
			With("avatar_id", avatar.ID.String()).
			Wrap(unavailable(err))
	}
	return nil
}

// GetAvatar retrieves an avatar template by id.
func (r *Repository) GetAvatar(ctx context.Context, id ulid.ULID) (*catalog.Avatar, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, image_url, name, created_at
		FROM avatars
		WHERE id = $1
	`, id.String())

	avatar, err := scanAvatar(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("AVATAR_NOT_FOUND").
			With("avatar_id", id.String()).
			Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("AVATAR_GET_FAILED").
			With("avatar_id", id.String()).
			Wrap(unavailable(err))
	}
	return avatar, nil
}

// GetAvatarsBulk retrieves the avatar templates with the given ids.
func (r *Repository) GetAvatarsBulk(ctx context.Context, ids []ulid.ULID) ([]*catalog.Avatar, error) {
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, image_url, name, created_at
		FROM avatars
		WHERE id = ANY($1)
	`, idStrs)
	if err != nil {
		return nil, oops.Code("AVATAR_BULK_FAILED").Wrap(unavailable(err))
	}
	defer rows.Close()
	return collectAvatars(rows)
}

// ListAvatars returns every avatar template, oldest first.
func (r *Repository) ListAvatars(ctx context.Context) ([]*catalog.Avatar, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, image_url, name, created_at
		FROM avatars
		ORDER BY created_at
	`)
	if err != nil {
		return nil, oops.Code("AVATAR_LIST_FAILED").Wrap(unavailable(err))
	}
	defer rows.Close()
	return collectAvatars(rows)
}

// CreateMap stores a new map blueprint with its default placements.
func (r *Repository) CreateMap(ctx context.Context, m *catalog.Map) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("MAP_CREATE_FAILED").Wrap(unavailable(err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, `
		INSERT INTO maps (id, name, width, height, thumbnail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		m.ID.String(),
		m.Name,
		m.Dimensions.Width,
		m.Dimensions.Height,
		m.Thumbnail,
		m.CreatedAt,
	)
	if err != nil {
		return oops.Code("MAP_CREATE_FAILED").
			With("map_id", m.ID.String()).
			Wrap(unavailable(err))
	}

	for ord, p := range m.DefaultPlacements {
		_, err = tx.Exec(ctx, `
			INSERT INTO map_elements (map_id, ord, element_id, x, y)
			VALUES ($1, $2, $3, $4, $5)
		`, m.ID.String(), ord, p.ElementID.String(), p.X, p.Y)
		if err != nil {
			return oops.Code("MAP_CREATE_FAILED").
				With("map_id", m.ID.String()).
				With("ord", ord).
				Wrap(unavailable(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("MAP_CREATE_FAILED").
			With("map_id", m.ID.String()).
			Wrap(unavailable(err))
	}
	return nil
}

// GetMap retrieves a map blueprint with its default placements in order.
func (r *Repository) GetMap(ctx context.Context, id ulid.ULID) (*catalog.Map, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, width, height, thumbnail, created_at
		FROM maps
		WHERE id = $1
	`, id.String())

	var (
		m     catalog.Map
		idStr string
	)
	err := row.Scan(&idStr, &m.Name, &m.Dimensions.Width, &m.Dimensions.Height, &m.Thumbnail, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MAP_NOT_FOUND").
			With("map_id", id.String()).
			Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("MAP_GET_FAILED").
			With("map_id", id.String()).
			Wrap(unavailable(err))
	}
	m.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("MAP_SCAN_FAILED").With("id", idStr).Wrap(err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT element_id, x, y
		FROM map_elements
		WHERE map_id = $1
		ORDER BY ord
	`, id.String())
	if err != nil {
		return nil, oops.Code("MAP_GET_FAILED").
			With("map_id", id.String()).
			Wrap(unavailable(err))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p            catalog.Placement
			elementIDStr string
		)
		if err := rows.Scan(&elementIDStr, &p.X, &p.Y); err != nil {
			return nil, oops.Code("MAP_SCAN_FAILED").
				With("map_id", id.String()).
				Wrap(unavailable(err))
		}
		p.ElementID, err = ulid.Parse(elementIDStr)
		if err != nil {
			return nil, oops.Code("MAP_SCAN_FAILED").
				With("element_id", elementIDStr).
				Wrap(err)
		}
		m.DefaultPlacements = append(m.DefaultPlacements, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MAP_GET_FAILED").
			With("map_id", id.String()).
			Wrap(unavailable(err))
	}
	return &m, nil
}

func scanElement(row pgx.Row) (*catalog.Element, error) {
	var (
		element catalog.Element
		idStr   string
	)
	err := row.Scan(&idStr, &element.ImageURL, &element.Width, &element.Height, &element.Static, &element.CreatedAt)
	if err != nil {
		return nil, err
	}
	element.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ELEMENT_SCAN_FAILED").With("id", idStr).Wrap(err)
	}
	return &element, nil
}

func scanAvatar(row pgx.Row) (*catalog.Avatar, error) {
	var (
		avatar catalog.Avatar
		idStr  string
	)
	err := row.Scan(&idStr, &avatar.ImageURL, &avatar.Name, &avatar.CreatedAt)
	if err != nil {
		return nil, err
	}
	avatar.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("AVATAR_SCAN_FAILED").With("id", idStr).Wrap(err)
	}
	return &avatar, nil
}

func collectAvatars(rows pgx.Rows) ([]*catalog.Avatar, error) {
	var avatars []*catalog.Avatar
	for rows.Next() {
		avatar, err := scanAvatar(rows)
		if err != nil {
			return nil, oops.Code("AVATAR_SCAN_FAILED").Wrap(err)
		}
		avatars = append(avatars, avatar)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("AVATAR_LIST_FAILED").Wrap(unavailable(err))
	}
	return avatars, nil
}
