package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrEntityNotFound = errors.New("entity not found")
)

// NameConflictError is returned when an entity name is already taken within
// its type.
type NameConflictError struct {
	Type EntityType
	Name string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("%s name %q is already in use", e.Type, e.Name)
}

// TransitionError is returned when a lifecycle event is not allowed from the
// entity's status as of the effective date.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s: entity is %s", e.Event, e.Current)
}

// NoOpenPeriodError is returned when closing a period of a kind that has no
// open instance. Transitions are validated before any write, so seeing this
// error means a bug or a lost race, never a user mistake.
type NoOpenPeriodError struct {
	Owner EntityRef
	Kind  PeriodKind
}

func (e *NoOpenPeriodError) Error() string {
	return fmt.Sprintf("no open %s period for %s %s", e.Kind, e.Owner.Type, e.Owner.ID)
}

// OpenPeriodExistsError is the write-time guard for the one-open-period
// invariant: opening a period while another of the same kind is still open.
type OpenPeriodExistsError struct {
	Owner EntityRef
	Kind  PeriodKind
}

func (e *OpenPeriodExistsError) Error() string {
	return fmt.Sprintf("%s %s already has an open %s period", e.Owner.Type, e.Owner.ID, e.Kind)
}

// PeriodOverlapError is the write-time guard for the non-overlap invariant:
// opening or re-dating a period so that it would cover time already covered
// by a closed period of the same kind.
type PeriodOverlapError struct {
	Owner EntityRef
	Kind  PeriodKind
}

func (e *PeriodOverlapError) Error() string {
	return fmt.Sprintf("%s period for %s %s would overlap an existing one", e.Kind, e.Owner.Type, e.Owner.ID)
}

// PeriodBoundsError is returned when a close would end a period before it
// started.
type PeriodBoundsError struct {
	Owner EntityRef
	Kind  PeriodKind
}

func (e *PeriodBoundsError) Error() string {
	return fmt.Sprintf("%s period for %s %s cannot end before it starts", e.Kind, e.Owner.Type, e.Owner.ID)
}

// AmbiguousMemberError is returned when an entity is added to a group while
// it still has an open membership of that group type.
type AmbiguousMemberError struct {
	Member EntityRef
	Kind   PeriodKind
}

func (e *AmbiguousMemberError) Error() string {
	return fmt.Sprintf("%s %s already has an open %s period", e.Member.Type, e.Member.ID, e.Kind)
}

// InvalidMemberError is returned when an entity type cannot take the
// requested place in a relationship: a title joining a stable, a referee as
// champion, a wrestler managing clients.
type InvalidMemberError struct {
	Member EntityRef
	Role   string
}

func (e *InvalidMemberError) Error() string {
	return fmt.Sprintf("%s %s cannot be a %s", e.Member.Type, e.Member.ID, e.Role)
}
