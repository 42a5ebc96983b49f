package domain

import (
	"context"
	"time"
)

// EntityRepository defines the persistence contract for entity records.
type EntityRepository interface {
	CreateEntity(ctx context.Context, e Entity) error
	GetEntity(ctx context.Context, id string) (Entity, error)
	ListEntities(ctx context.Context, filter ListFilter) ([]Entity, error)
	UpdateEntity(ctx context.Context, e Entity) error
}

// ListFilter holds optional criteria for listing entities.
type ListFilter struct {
	Type   *EntityType
	Status *Status
	Limit  int
	Offset int
}

// PeriodStore persists the time-boxed condition records every status is
// derived from. Writes must run inside the transaction scope supplied by
// Store.WithTx; the store enforces the one-open-period invariant at write
// time so the deriver never has to.
type PeriodStore interface {
	// OpenPeriod starts a new period. It fails with OpenPeriodExistsError
	// (AmbiguousMemberError for membership kinds) when an open period of the
	// same kind already exists for the owner; for counterpart-keyed kinds
	// the check is per counterpart.
	OpenPeriod(ctx context.Context, owner EntityRef, kind PeriodKind, startedAt time.Time, counterpart *EntityRef) (Period, error)

	// ClosePeriod ends the single open period of the given kind, failing
	// with NoOpenPeriodError when there is none.
	ClosePeriod(ctx context.Context, owner EntityRef, kind PeriodKind, endedAt time.Time) (Period, error)

	// ClosePeriodFor ends the open period of a counterpart-keyed kind that
	// matches the given counterpart.
	ClosePeriodFor(ctx context.Context, owner EntityRef, kind PeriodKind, counterpart EntityRef, endedAt time.Time) (Period, error)

	// FindOpen returns the open period of the given kind, or nil.
	FindOpen(ctx context.Context, owner EntityRef, kind PeriodKind) (*Period, error)

	// CurrentPeriod returns the period of the given kind covering asOf, or
	// nil. A future-dated open period does not qualify.
	CurrentPeriod(ctx context.Context, owner EntityRef, kind PeriodKind, asOf time.Time) (*Period, error)

	// Periods returns all periods of one kind for an owner, oldest first.
	Periods(ctx context.Context, owner EntityRef, kind PeriodKind) ([]Period, error)

	// PeriodsBetween returns the periods of one kind overlapping [from, to),
	// oldest first.
	PeriodsBetween(ctx context.Context, owner EntityRef, kind PeriodKind, from, to time.Time) ([]Period, error)

	// History returns every period an owner has, all kinds, oldest first.
	History(ctx context.Context, owner EntityRef) ([]Period, error)

	// OpenPeriodsByCounterpart returns all open periods of one kind pointing
	// at the given counterpart: the current members of a group, the current
	// clients of a manager.
	OpenPeriodsByCounterpart(ctx context.Context, counterpart EntityRef, kind PeriodKind) ([]Period, error)

	// ReschedulePeriod moves the start of an existing period. Used to
	// re-date a future-dated period instead of opening a duplicate.
	ReschedulePeriod(ctx context.Context, id string, startedAt time.Time) error
}

// Store is the full persistence port: entities, periods, and the
// transaction scope that makes a validated transition atomic. WithTx
// serializes concurrent transitions on the same entity; a nested call joins
// the enclosing transaction.
type Store interface {
	EntityRepository
	PeriodStore

	WithTx(ctx context.Context, fn func(Store) error) error
}

// StatusChanged is emitted after every committed transition. Delivery is
// best-effort: a publish failure is logged, never rolled back into the
// transition.
type StatusChanged struct {
	Entity Entity
	From   Status
	To     Status
	At     time.Time
}

// EventPublisher defines the contract for emitting status-changed events to
// external observers.
type EventPublisher interface {
	Publish(ctx context.Context, change StatusChanged) error
}

// TransitionValidator decides whether an event is legal from a status and
// names the indicative destination.
type TransitionValidator interface {
	Apply(ctx context.Context, typ EntityType, current Status, event Event) (Status, error)
}

// Clock supplies the current instant. Core logic never reads the wall clock
// directly, so tests can pin time.
type Clock interface {
	Now() time.Time
}

// BookingGateway answers whether an entity is already booked on a given
// event date. Match assembly owns the bookings; this core only consults
// them.
type BookingGateway interface {
	HasBookingOn(ctx context.Context, ref EntityRef, date time.Time) (bool, error)
}
