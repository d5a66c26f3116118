// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

// Package postgres implements the space repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/internal/space"
	"github.com/arcadelabs/arcade/pkg/errutil"
)

// Repository implements space.Repository using PostgreSQL.
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

// CreateSpace stores a new space and its seed elements in one transaction.
func (r *Repository) CreateSpace(ctx context.Context, s *space.Space, seed []*space.Element) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("SPACE_CREATE_FAILED").Wrap(unavailable(err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, `
		INSERT INTO spaces (id, owner_id, name, width, height, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		s.ID.String(),
		s.OwnerID.String(),
		s.Name,
		s.Dimensions.Width,
		s.Dimensions.Height,
		s.CreatedAt,
	)
	if err != nil {
		return oops.Code("SPACE_CREATE_FAILED").
			With("space_id", s.ID.String()).
			Wrap(unavailable(err))
	}

	for _, e := range seed {
		_, err = tx.Exec(ctx, `
			INSERT INTO space_elements (id, space_id, element_id, x, y, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ID.String(), e.SpaceID.String(), e.ElementID.String(), e.X, e.Y, e.CreatedAt)
		if err != nil {
			return oops.Code("SPACE_CREATE_FAILED").
				With("space_id", s.ID.String()).
				With("element_id", e.ElementID.String()).
				Wrap(unavailable(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("SPACE_CREATE_FAILED").
			With("space_id", s.ID.String()).
			Wrap(unavailable(err))
	}
	return nil
}

// GetSpace retrieves a space by id.
func (r *Repository) GetSpace(ctx context.Context, id ulid.ULID) (*space.Space, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, width, height, created_at
		FROM spaces
		WHERE id = $1
	`, id.String())

	var (
		s          space.Space
		idStr      string
		ownerIDStr string
	)
	err := row.Scan(&idStr, &ownerIDStr, &s.Name, &s.Dimensions.Width, &s.Dimensions.Height, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SPACE_NOT_FOUND").
			With("space_id", id.String()).
			Wrap(space.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SPACE_GET_FAILED").
			With("space_id", id.String()).
			Wrap(unavailable(err))
	}

	s.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SPACE_SCAN_FAILED").With("id", idStr).Wrap(err)
	}
	s.OwnerID, err = ulid.Parse(ownerIDStr)
	if err != nil {
		return nil, oops.Code("SPACE_SCAN_FAILED").With("owner_id", ownerIDStr).Wrap(err)
	}
	return &s, nil
}

// DeleteSpace removes a space; its element instances go with it via the
// foreign key cascade.
func (r *Repository) DeleteSpace(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM spaces WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("SPACE_DELETE_FAILED").
			With("space_id", id.String()).
			Wrap(unavailable(err))
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SPACE_NOT_FOUND").
			With("space_id", id.String()).
			Wrap(space.ErrNotFound)
	}
	return nil
}

// ListByOwner returns every space owned by the given user, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*space.Space, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, name, width, height, created_at
		FROM spaces
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID.String())
	if err != nil {
		return nil, oops.Code("SPACE_LIST_FAILED").
			With("owner_id", ownerID.String()).
			Wrap(unavailable(err))
	}
	defer rows.Close()

	var spaces []*space.Space
	for rows.Next() {
		var (
			s          space.Space
			idStr      string
			ownerIDStr string
		)
		if err := rows.Scan(&idStr, &ownerIDStr, &s.Name, &s.Dimensions.Width, &s.Dimensions.Height, &s.CreatedAt); err != nil {
			return nil, oops.Code("SPACE_SCAN_FAILED").Wrap(unavailable(err))
		}
		s.ID, err = ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("SPACE_SCAN_FAILED").With("id", idStr).Wrap(err)
		}
		s.OwnerID, err = ulid.Parse(ownerIDStr)
		if err != nil {
			return nil, oops.Code("SPACE_SCAN_FAILED").With("owner_id", ownerIDStr).Wrap(err)
		}
		spaces = append(spaces, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SPACE_LIST_FAILED").Wrap(unavailable(err))
	}
	return spaces, nil
}

// AddElement stores a new element instance.
func (r *Repository) AddElement(ctx context.Context, e *space.Element) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO space_elements (id, space_id, element_id, x, y, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		e.ID.String(),
		e.SpaceID.String(),
		e.ElementID.String(),
		e.X,
		e.Y,
		e.CreatedAt,
	)
	if err != nil {
		return oops.Code("SPACE_ELEMENT_ADD_FAILED").
			With("space_id", e.SpaceID.String()).
			Wrap(unavailable(err))
	}
	return nil
}

// GetElement retrieves an element instance by id.
func (r *Repository) GetElement(ctx context.Context, id ulid.ULID) (*space.Element, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, space_id, element_id, x, y, created_at
		FROM space_elements
		WHERE id = $1
	`, id.String())

	e, err := scanElement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SPACE_ELEMENT_NOT_FOUND").
			With("instance_id", id.String()).
			Wrap(space.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SPACE_ELEMENT_GET_FAILED").
			With("instance_id", id.String()).
			Wrap(unavailable(err))
	}
	return e, nil
}

// RemoveElement deletes an element instance.
func (r *Repository) RemoveElement(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM space_elements WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("SPACE_ELEMENT_REMOVE_FAILED").
			With("instance_id", id.String()).
			Wrap(unavailable(err))
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SPACE_ELEMENT_NOT_FOUND").
			With("instance_id", id.String()).
			Wrap(space.ErrNotFound)
	}
	return nil
}

// ListElements returns every element instance in a space, oldest first.
func (r *Repository) ListElements(ctx context.Context, spaceID ulid.ULID) ([]*space.Element, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, space_id, element_id, x, y, created_at
		FROM space_elements
		WHERE space_id = $1
		ORDER BY created_at
	`, spaceID.String())
	if err != nil {
		return nil, oops.Code("SPACE_ELEMENT_LIST_FAILED").
			With("space_id", spaceID.String()).
			Wrap(unavailable(err))
	}
	defer rows.Close()

	var elements []*space.Element
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return nil, oops.Code("SPACE_ELEMENT_SCAN_FAILED").Wrap(err)
		}
		elements = append(elements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SPACE_ELEMENT_LIST_FAILED").Wrap(unavailable(err))
	}
	return elements, nil
}

func scanElement(row pgx.Row) (*space.Element, error) {
	var (
		e            space.Element
		idStr        string
		spaceIDStr   string
		elementIDStr string
	)
	err := row.Scan(&idStr, &spaceIDStr, &elementIDStr, &e.X, &e.Y, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SPACE_ELEMENT_SCAN_FAILED").With("id", idStr).Wrap(err)
	}
	e.SpaceID, err = ulid.Parse(spaceIDStr)
	if err != nil {
		return nil, oops.Code("SPACE_ELEMENT_SCAN_FAILED").With("space_id", spaceIDStr).Wrap(err)
	}
	e.ElementID, err = ulid.Parse(elementIDStr)
	if err != nil {
		return nil, oops.Code("SPACE_ELEMENT_SCAN_FAILED").With("element_id", elementIDStr).Wrap(err)
	}
	return &e, nil
}
