package domain

// Event represents a lifecycle action requested against an entity.
type Event string

const (
	EventEmploy      Event = "employ"
	EventRelease     Event = "release"
	EventInjure      Event = "injure"
	EventClearInjury Event = "clear_injury"
	EventSuspend     Event = "suspend"
	EventReinstate   Event = "reinstate"
	EventRetire      Event = "retire"
	EventUnretire    Event = "unretire"
	EventActivate    Event = "activate"
	EventDeactivate  Event = "deactivate"
	EventDisband     Event = "disband"
	EventReunite     Event = "reunite"
)

// Relationship events are not part of the transition tables below; they are
// validated by the membership and championship workflows themselves but
// share the transition error shape.
const (
	EventJoinGroup     Event = "join_group"
	EventLeaveGroup    Event = "leave_group"
	EventAssignManager Event = "assign_manager"
	EventRemoveManager Event = "remove_manager"
	EventWinTitle      Event = "win_title"
	EventVacateTitle   Event = "vacate_title"
)

// Transition defines a valid state change: an event moves an entity from Src
// to Dst. Dst is indicative only; after a transition the status is always
// re-derived from the period history, so a future-dated employ still lands
// on future_employment.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// RosterTransitions defines all valid state changes for wrestlers, managers,
// referees, and tag teams. Employing out of retirement closes the retirement
// record (it stays in the history); unretiring is the comeback path and
// opens a fresh employment.
var RosterTransitions = []Transition{
	{Event: EventEmploy, Src: StatusUnemployed, Dst: StatusEmployed},
	{Event: EventEmploy, Src: StatusReleased, Dst: StatusEmployed},
	{Event: EventEmploy, Src: StatusFutureEmployment, Dst: StatusEmployed},
	{Event: EventEmploy, Src: StatusRetired, Dst: StatusEmployed},
	{Event: EventRelease, Src: StatusEmployed, Dst: StatusReleased},
	{Event: EventRelease, Src: StatusInjured, Dst: StatusReleased},
	{Event: EventRelease, Src: StatusSuspended, Dst: StatusReleased},
	{Event: EventInjure, Src: StatusEmployed, Dst: StatusInjured},
	{Event: EventClearInjury, Src: StatusInjured, Dst: StatusEmployed},
	{Event: EventSuspend, Src: StatusEmployed, Dst: StatusSuspended},
	{Event: EventReinstate, Src: StatusSuspended, Dst: StatusEmployed},
	{Event: EventRetire, Src: StatusUnemployed, Dst: StatusRetired},
	{Event: EventRetire, Src: StatusFutureEmployment, Dst: StatusRetired},
	{Event: EventRetire, Src: StatusEmployed, Dst: StatusRetired},
	{Event: EventRetire, Src: StatusInjured, Dst: StatusRetired},
	{Event: EventRetire, Src: StatusSuspended, Dst: StatusRetired},
	{Event: EventRetire, Src: StatusReleased, Dst: StatusRetired},
	{Event: EventUnretire, Src: StatusRetired, Dst: StatusEmployed},
}

// TitleTransitions defines all valid state changes for titles.
var TitleTransitions = []Transition{
	{Event: EventActivate, Src: StatusUnactivated, Dst: StatusActive},
	{Event: EventActivate, Src: StatusPendingEstablishment, Dst: StatusActive},
	{Event: EventActivate, Src: StatusInactive, Dst: StatusActive},
	{Event: EventDeactivate, Src: StatusActive, Dst: StatusInactive},
	{Event: EventRetire, Src: StatusUnactivated, Dst: StatusRetired},
	{Event: EventRetire, Src: StatusPendingEstablishment, Dst: StatusRetired},
	{Event: EventRetire, Src: StatusActive, Dst: StatusRetired},
	{Event: EventRetire, Src: StatusInactive, Dst: StatusRetired},
	{Event: EventUnretire, Src: StatusRetired, Dst: StatusActive},
}

// StableTransitions defines all valid state changes for stables: the title
// table plus disbanding (which scatters the members without retiring them)
// and reuniting.
var StableTransitions = append(append([]Transition{}, TitleTransitions...),
	Transition{Event: EventDisband, Src: StatusActive, Dst: StatusInactive},
	Transition{Event: EventReunite, Src: StatusInactive, Dst: StatusActive},
)

// TransitionsFor returns the transition table governing the given entity
// type.
func TransitionsFor(typ EntityType) []Transition {
	switch typ {
	case TypeStable:
		return StableTransitions
	case TypeTitle:
		return TitleTransitions
	default:
		return RosterTransitions
	}
}
