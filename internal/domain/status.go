package domain

import "time"

// Status is the single discrete lifecycle state derived from an entity's
// period history at a given instant.
type Status string

// Roster member statuses (wrestlers, managers, referees, tag teams).
// Injured and suspended imply an active employment underneath.
const (
	StatusUnemployed       Status = "unemployed"
	StatusFutureEmployment Status = "future_employment"
	StatusEmployed         Status = "employed"
	StatusInjured          Status = "injured"
	StatusSuspended        Status = "suspended"
	StatusReleased         Status = "released"
	StatusRetired          Status = "retired"
)

// Stable and title statuses. Retired is shared with roster members.
const (
	StatusUnactivated          Status = "unactivated"
	StatusPendingEstablishment Status = "pending_establishment"
	StatusActive               Status = "active"
	StatusInactive             Status = "inactive"
)

// DeriveStatus computes the status of an entity of the given type from its
// period history at the given instant. The cached Entity.Status field is a
// copy of this result taken at write time; callers that need the truth ask
// here.
//
// Periods of the same kind never overlap (enforced at write time), so the
// derivation never has to break ties.
func DeriveStatus(typ EntityType, periods []Period, asOf time.Time) Status {
	if typ.HasActivity() {
		return deriveActivityStatus(periods, asOf)
	}
	return deriveRosterStatus(periods, asOf)
}

// deriveRosterStatus applies the roster precedence: retired beats
// everything, suspension beats injury, injury beats plain employment, then
// future employment, then released, then unemployed.
func deriveRosterStatus(periods []Period, asOf time.Time) Status {
	var employed, injured, suspended, future, past bool

	for _, p := range periods {
		switch p.Kind {
		case KindRetirement:
			if p.Open() && !p.StartedAt.After(asOf) {
				return StatusRetired
			}
		case KindEmployment:
			switch {
			case p.ActiveAt(asOf):
				employed = true
			case p.StartedAt.After(asOf):
				future = true
			default:
				past = true
			}
		case KindInjury:
			if p.ActiveAt(asOf) {
				injured = true
			}
		case KindSuspension:
			if p.ActiveAt(asOf) {
				suspended = true
			}
		}
	}

	switch {
	case employed && suspended:
		return StatusSuspended
	case employed && injured:
		return StatusInjured
	case employed:
		return StatusEmployed
	case future:
		return StatusFutureEmployment
	case past:
		return StatusReleased
	default:
		return StatusUnemployed
	}
}

// deriveActivityStatus applies the stable/title precedence: retired, active,
// pending establishment, then inactive for anything that has been activated
// before and unactivated for anything that never was.
func deriveActivityStatus(periods []Period, asOf time.Time) Status {
	var active, pending, ever bool

	for _, p := range periods {
		switch p.Kind {
		case KindRetirement:
			if p.Open() && !p.StartedAt.After(asOf) {
				return StatusRetired
			}
		case KindActivity:
			ever = true
			switch {
			case p.ActiveAt(asOf):
				active = true
			case p.StartedAt.After(asOf):
				pending = true
			}
		}
	}

	switch {
	case active:
		return StatusActive
	case pending:
		return StatusPendingEstablishment
	case ever:
		return StatusInactive
	default:
		return StatusUnactivated
	}
}
