// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

// Package spacetest provides an in-memory fake for the space repository.
package spacetest

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/arcadelabs/arcade/internal/space"
)

// Repo is an in-memory space.Repository. Safe for concurrent use.
type Repo struct {
	mu       sync.Mutex
	spaces   map[ulid.ULID]*space.Space
	elements map[ulid.ULID]*space.Element

	// Err, when set, is returned by every method.
	Err error
}

// NewRepo creates an empty Repo.
func NewRepo() *Repo {
	return &Repo{
		spaces:   make(map[ulid.ULID]*space.Space),
		elements: make(map[ulid.ULID]*space.Element),
	}
}

func (r *Repo) CreateSpace(_ context.Context, s *space.Space, seed []*space.Element) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.spaces[s.ID] = &cp
	for _, e := range seed {
		ecp := *e
		r.elements[e.ID] = &ecp
	}
	return nil
}

func (r *Repo) GetSpace(_ context.Context, id ulid.ULID) (*space.Space, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.spaces[id]
	if !ok {
		return nil, space.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *Repo) DeleteSpace(_ context.Context, id ulid.ULID) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.spaces[id]; !ok {
		return space.ErrNotFound
	}
	delete(r.spaces, id)
	for eid, e := range r.elements {
		if e.SpaceID == id {
			delete(r.elements, eid)
		}
	}
	return nil
}

func (r *Repo) ListByOwner(_ context.Context, ownerID ulid.ULID) ([]*space.Space, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*space.Space, 0)
	for _, s := range r.spaces {
		if s.OwnerID == ownerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *Repo) AddElement(_ context.Context, e *space.Element) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.elements[e.ID] = &cp
	return nil
}

func (r *Repo) GetElement(_ context.Context, id ulid.ULID) (*space.Element, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.elements[id]
	if !ok {
		return nil, space.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *Repo) RemoveElement(_ context.Context, id ulid.ULID) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.elements[id]; !ok {
		return space.ErrNotFound
	}
	delete(r.elements, id)
	return nil
}

func (r *Repo) ListElements(_ context.Context, spaceID ulid.ULID) ([]*space.Element, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*space.Element, 0)
	for _, e := range r.elements {
		if e.SpaceID == spaceID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ElementCount returns the number of stored element instances.
func (r *Repo) ElementCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.elements)
}
