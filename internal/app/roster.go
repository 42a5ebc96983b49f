package app

import (
	"context"
	"fmt"

	"github.com/ringside-hq/ringside/internal/domain"
)

// RosterService handles the plain record-keeping side of the roster:
// creating and listing entities. Lifecycle changes live in LifecycleService.
type RosterService struct {
	store domain.Store
	clock domain.Clock
}

// NewRosterService creates a service with the given adapters.
func NewRosterService(store domain.Store, clock domain.Clock) *RosterService {
	return &RosterService{store: store, clock: clock}
}

// Create persists a new entity in its initial lifecycle status.
func (s *RosterService) Create(ctx context.Context, typ domain.EntityType, name, hometown string) (domain.Entity, error) {
	if !typ.Valid() {
		return domain.Entity{}, fmt.Errorf("unknown entity type %q", typ)
	}

	e := domain.NewEntity(newID(), typ, name, hometown, s.clock.Now())

	if err := s.store.CreateEntity(ctx, e); err != nil {
		return domain.Entity{}, fmt.Errorf("creating %s: %w", typ, err)
	}

	return e, nil
}

// Get returns an entity by its unique identifier.
func (s *RosterService) Get(ctx context.Context, id string) (domain.Entity, error) {
	return s.store.GetEntity(ctx, id)
}

// List returns entities matching the given filter.
func (s *RosterService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Entity, error) {
	return s.store.ListEntities(ctx, filter)
}

// RefreshStatus re-derives the cached status from the period history and
// persists it. Used after restoring a soft-deleted record, or whenever the
// cache is suspected of drifting from the periods.
func (s *RosterService) RefreshStatus(ctx context.Context, id string) (domain.Entity, error) {
	var entity domain.Entity
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		e, err := tx.GetEntity(ctx, id)
		if err != nil {
			return err
		}
		history, err := tx.History(ctx, e.Ref())
		if err != nil {
			return err
		}
		now := s.clock.Now()
		e.Status = domain.DeriveStatus(e.Type, history, now)
		e.UpdatedAt = now
		if err := tx.UpdateEntity(ctx, e); err != nil {
			return err
		}
		entity = e
		return nil
	})
	if err != nil {
		return domain.Entity{}, err
	}
	return entity, nil
}

// History returns the full period history of an entity, oldest first.
func (s *RosterService) History(ctx context.Context, id string) ([]domain.Period, error) {
	e, err := s.store.GetEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.History(ctx, e.Ref())
}
