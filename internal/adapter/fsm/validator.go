package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/ringside-hq/ringside/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// eventTables holds the looplab/fsm event descriptions per entity type,
// converted once from the domain transition tables. Transitions with the
// same event+destination collapse into a single EventDesc with multiple
// source states (e.g., retire is valid from every non-retired status).
var eventTables = buildEventTables()

func buildEventTables() map[domain.EntityType][]loopfsm.EventDesc {
	out := make(map[domain.EntityType][]loopfsm.EventDesc, len(domain.EntityTypes))
	for _, typ := range domain.EntityTypes {
		out[typ] = buildEvents(domain.TransitionsFor(typ))
	}
	return out
}

func buildEvents(transitions []domain.Transition) []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range transitions {
		k := key{event: string(t.Event), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Validator implements domain.TransitionValidator using looplab/fsm.
// It creates a short-lived FSM instance per Apply call, initialized with
// the entity's current status. This is necessary because looplab/fsm is
// stateful (it tracks the current state internally).
type Validator struct{}

// New creates a new FSM-backed transition validator.
func New() *Validator {
	return &Validator{}
}

// Apply checks if the given event is valid from the current status under
// the entity type's transition table and returns the indicative destination
// status. Returns a domain.TransitionError if the transition is not
// allowed.
func (v *Validator) Apply(ctx context.Context, typ domain.EntityType, current domain.Status, event domain.Event) (domain.Status, error) {
	machine := loopfsm.NewFSM(string(current), eventTables[typ], nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return "", &domain.TransitionError{
				Event:   event,
				Current: current,
			}
		}
		return "", err
	}

	return domain.Status(machine.Current()), nil
}
