package services

import (
	"context"
	"errors"

	"github.com/anonto42/inkwell/backend/internal/repositories"
)

// ToggleOutcome describes what a Toggle call did to the relation.
type ToggleOutcome int

const (
	// Created means this call inserted the relation.
	Created ToggleOutcome = iota + 1
	// AlreadyPresent means a concurrent insert of the same relation won.
	AlreadyPresent
	// Removed means this call deleted the relation.
	Removed
	// RemovedConcurrently means the relation was gone by the time this call
	// tried to delete it.
	RemovedConcurrently
)

// Present reports whether the relation exists after the call.
func (o ToggleOutcome) Present() bool { return o == Created || o == AlreadyPresent }

// Owned reports whether this call changed the relation itself, i.e. whether
// derived counters must move.
func (o ToggleOutcome) Owned() bool { return o == Created || o == Removed }

// Relation is one (actor, subject) edge as seen by Toggle. Find returns
// repositories.ErrNotFound when the edge is absent and Create returns
// repositories.ErrDuplicate when it lost an insert race.
type Relation[R any] struct {
	Find   func(ctx context.Context) (*R, error)
	Create func(ctx context.Context) error
	Delete func(ctx context.Context, existing *R) (bool, error)
}

// Toggle removes the relation when present and creates it otherwise. The
// check and the write are not atomic; the unique index decides races.
func Toggle[R any](ctx context.Context, rel Relation[R]) (ToggleOutcome, error) {
	existing, err := rel.Find(ctx)
	switch {
	case err == nil:
		removed, err := rel.Delete(ctx, existing)
		if err != nil {
			return 0, err
		}
		if !removed {
			return RemovedConcurrently, nil
		}
		return Removed, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return 0, err
	}

	if err := rel.Create(ctx); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return AlreadyPresent, nil
		}
		return 0, err
	}
	return Created, nil
}
