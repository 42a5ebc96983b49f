package domain

import "time"

// PeriodKind names one family of time-boxed condition records.
type PeriodKind string

const (
	KindEmployment        PeriodKind = "employment"
	KindInjury            PeriodKind = "injury"
	KindSuspension        PeriodKind = "suspension"
	KindRetirement        PeriodKind = "retirement"
	KindActivity          PeriodKind = "activity"
	KindStableMembership  PeriodKind = "stable_membership"
	KindTagTeamMembership PeriodKind = "tag_team_membership"
	KindChampionship      PeriodKind = "championship"
	KindManagement        PeriodKind = "management"
)

// KeyedByCounterpart reports whether an owner may hold several open periods
// of this kind at once, one per counterpart. Management is the only such
// kind: a manager handles any number of clients concurrently.
func (k PeriodKind) KeyedByCounterpart() bool {
	return k == KindManagement
}

// Membership reports whether this kind records membership in a group.
func (k PeriodKind) Membership() bool {
	return k == KindStableMembership || k == KindTagTeamMembership
}

// Period is a time-boxed record of one condition instance: an employment, an
// injury, a stable membership, a title reign. EndedAt == nil marks the open
// period, the currently active instance of that condition. Periods are
// closed by setting EndedAt and are never deleted; the full set per owner is
// the audit trail every status is derived from.
//
// Counterpart is set for membership (the group joined), championship (the
// reigning champion), and management (the managed client); nil otherwise.
type Period struct {
	ID          string
	Owner       EntityRef
	Kind        PeriodKind
	Counterpart *EntityRef
	StartedAt   time.Time
	EndedAt     *time.Time
}

// Open reports whether the period has no end recorded yet.
func (p Period) Open() bool {
	return p.EndedAt == nil
}

// ActiveAt reports whether the period covers the given instant. A period
// starting exactly at the instant is active; one ending exactly at the
// instant is not.
func (p Period) ActiveAt(at time.Time) bool {
	return !p.StartedAt.After(at) && (p.EndedAt == nil || p.EndedAt.After(at))
}
