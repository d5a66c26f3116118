// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

// Package catalogtest provides an in-memory fake for the catalog repository.
package catalogtest

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/arcadelabs/arcade/internal/catalog"
)

// Repo is an in-memory catalog.Repository. Safe for concurrent use.
type Repo struct {
	mu       sync.Mutex
	elements map[ulid.ULID]*catalog.Element
	avatars  map[ulid.ULID]*catalog.Avatar
	maps     map[ulid.ULID]*catalog.Map

	// Err, when set, is returned by every method.
	Err error
}

// NewRepo creates an empty Repo.
func NewRepo() *Repo {
	return &Repo{
		elements: make(map[ulid.ULID]*catalog.Element),
		avatars:  make(map[ulid.ULID]*catalog.Avatar),
		maps:     make(map[ulid.ULID]*catalog.Map),
	}
}

func (r *Repo) CreateElement(_ context.Context, element *catalog.Element) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *element
	r.elements[element.ID] = &cp
	return nil
}

func (r *Repo) GetElement(_ context.Context, id ulid.ULID) (*catalog.Element, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.elements[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *Repo) GetElementsBulk(_ context.Context, ids []ulid.ULID) ([]*catalog.Element, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*catalog.Element, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.elements[id]; ok {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *Repo) UpdateElementImage(_ context.Context, id ulid.ULID, imageURL string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.elements[id]
	if !ok {
		return catalog.ErrNotFound
	}
	e.ImageURL = imageURL
	return nil
}

func (r *Repo) CreateAvatar(_ context.Context, avatar *catalog.Avatar) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *avatar
	r.avatars[avatar.ID] = &cp
	return nil
}

func (r *Repo) GetAvatar(_ context.Context, id ulid.ULID) (*catalog.Avatar, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.avatars[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *Repo) GetAvatarsBulk(_ context.Context, ids []ulid.ULID) ([]*catalog.Avatar, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*catalog.Avatar, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.avatars[id]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *Repo) ListAvatars(_ context.Context) ([]*catalog.Avatar, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*catalog.Avatar, 0, len(r.avatars))
	for _, a := range r.avatars {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *Repo) CreateMap(_ context.Context, m *catalog.Map) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	cp.DefaultPlacements = append([]catalog.Placement(nil), m.DefaultPlacements...)
	r.maps[m.ID] = &cp
	return nil
}

func (r *Repo) GetMap(_ context.Context, id ulid.ULID) (*catalog.Map, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.maps[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *m
	cp.DefaultPlacements = append([]catalog.Placement(nil), m.DefaultPlacements...)
	return &cp, nil
}
