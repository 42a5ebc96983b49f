package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ringside-hq/ringside/internal/domain"
)

// LifecycleService executes lifecycle transitions. Each transition validates
// the event against the status derived as of the effective date, opens and
// closes periods, runs cascading effects on dependent entities inside the
// same transaction, refreshes the cached status, and announces the change.
//
// Every transition accepts an explicit effective date, which may lie in the
// past (backfilling history) or the future (scheduling); the zero time means
// "now" per the injected clock.
type LifecycleService struct {
	store     domain.Store
	validator domain.TransitionValidator
	publisher domain.EventPublisher
	clock     domain.Clock
}

// NewLifecycleService creates a service with the given adapters.
func NewLifecycleService(store domain.Store, validator domain.TransitionValidator, publisher domain.EventPublisher, clock domain.Clock) *LifecycleService {
	return &LifecycleService{
		store:     store,
		validator: validator,
		publisher: publisher,
		clock:     clock,
	}
}

// Employ hires a roster member, or re-dates a scheduled employment.
func (s *LifecycleService) Employ(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventEmploy, effective)
}

// Release ends a roster member's employment and their open relationships
// with third parties. The third parties themselves are untouched.
func (s *LifecycleService) Release(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventRelease, effective)
}

// Injure opens an injury period for an employed roster member.
func (s *LifecycleService) Injure(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventInjure, effective)
}

// ClearInjury ends the open injury period.
func (s *LifecycleService) ClearInjury(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventClearInjury, effective)
}

// Suspend opens a suspension period for an employed roster member.
func (s *LifecycleService) Suspend(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventSuspend, effective)
}

// Reinstate ends the open suspension period.
func (s *LifecycleService) Reinstate(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventReinstate, effective)
}

// Retire moves an entity into retirement. Retiring a stable retires its
// current members as well.
func (s *LifecycleService) Retire(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventRetire, effective)
}

// Unretire is the comeback path: it closes the retirement and opens a fresh
// employment (roster members) or activation (stables and titles).
func (s *LifecycleService) Unretire(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventUnretire, effective)
}

// Activate debuts or reactivates a stable or title.
func (s *LifecycleService) Activate(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventActivate, effective)
}

// Deactivate pulls an active stable or title out of circulation.
func (s *LifecycleService) Deactivate(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventDeactivate, effective)
}

// Disband deactivates a stable and ends all current memberships without
// retiring the members.
func (s *LifecycleService) Disband(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventDisband, effective)
}

// Reunite reactivates a disbanded stable. Prior members are not restored.
func (s *LifecycleService) Reunite(ctx context.Context, id string, effective time.Time) (domain.Entity, error) {
	return s.run(ctx, id, domain.EventReunite, effective)
}

// Apply dispatches a transition by event name. The HTTP adapter uses this to
// expose one uniform transition endpoint.
func (s *LifecycleService) Apply(ctx context.Context, id string, event domain.Event, effective time.Time) (domain.Entity, error) {
	switch event {
	case domain.EventEmploy, domain.EventRelease, domain.EventInjure, domain.EventClearInjury,
		domain.EventSuspend, domain.EventReinstate, domain.EventRetire, domain.EventUnretire,
		domain.EventActivate, domain.EventDeactivate, domain.EventDisband, domain.EventReunite:
		return s.run(ctx, id, event, effective)
	default:
		return domain.Entity{}, fmt.Errorf("unknown lifecycle event %q", event)
	}
}

// CurrentStatus derives the status as of the given instant (zero means now)
// straight from the period history, bypassing the cached column.
func (s *LifecycleService) CurrentStatus(ctx context.Context, id string, asOf time.Time) (domain.Status, error) {
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	e, err := s.store.GetEntity(ctx, id)
	if err != nil {
		return "", err
	}
	history, err := s.store.History(ctx, e.Ref())
	if err != nil {
		return "", err
	}
	return domain.DeriveStatus(e.Type, history, asOf), nil
}

// run executes one transition as a single atomic unit and announces the
// resulting status changes after commit.
func (s *LifecycleService) run(ctx context.Context, id string, event domain.Event, effective time.Time) (domain.Entity, error) {
	if effective.IsZero() {
		effective = s.clock.Now()
	}

	var (
		entity  domain.Entity
		changes []domain.StatusChanged
	)
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		var err error
		entity, changes, err = s.apply(ctx, tx, id, event, effective)
		return err
	})
	if err != nil {
		return domain.Entity{}, err
	}

	s.announce(ctx, changes)
	return entity, nil
}

// apply performs one transition inside tx and returns the resulting entity
// along with every status change it caused, cascades included.
func (s *LifecycleService) apply(ctx context.Context, tx domain.Store, id string, event domain.Event, effective time.Time) (domain.Entity, []domain.StatusChanged, error) {
	e, err := tx.GetEntity(ctx, id)
	if err != nil {
		return domain.Entity{}, nil, err
	}

	history, err := tx.History(ctx, e.Ref())
	if err != nil {
		return domain.Entity{}, nil, err
	}
	from := domain.DeriveStatus(e.Type, history, effective)

	if _, err := s.validator.Apply(ctx, e.Type, from, event); err != nil {
		return domain.Entity{}, nil, err
	}

	cascaded, err := s.mutate(ctx, tx, e, event, effective)
	if err != nil {
		return domain.Entity{}, nil, err
	}

	history, err = tx.History(ctx, e.Ref())
	if err != nil {
		return domain.Entity{}, nil, err
	}
	now := s.clock.Now()
	e.Status = domain.DeriveStatus(e.Type, history, now)
	e.UpdatedAt = now
	if err := tx.UpdateEntity(ctx, e); err != nil {
		return domain.Entity{}, nil, fmt.Errorf("caching status: %w", err)
	}

	changes := append([]domain.StatusChanged{{Entity: e, From: from, To: e.Status, At: effective}}, cascaded...)
	return e, changes, nil
}

// mutate applies the period writes for one validated event.
func (s *LifecycleService) mutate(ctx context.Context, tx domain.Store, e domain.Entity, event domain.Event, effective time.Time) ([]domain.StatusChanged, error) {
	ref := e.Ref()

	switch event {
	case domain.EventEmploy:
		open, err := tx.FindOpen(ctx, ref, domain.KindEmployment)
		if err != nil {
			return nil, err
		}
		if open != nil {
			// Re-date the scheduled start instead of stacking periods.
			if open.StartedAt.After(s.clock.Now()) {
				return nil, tx.ReschedulePeriod(ctx, open.ID, effective)
			}
			return nil, &domain.TransitionError{Event: event, Current: domain.StatusEmployed}
		}
		// Employing out of retirement closes the retirement record; it
		// stays in the history.
		if err := s.closeIfOpen(ctx, tx, ref, domain.KindRetirement, effective); err != nil {
			return nil, err
		}
		_, err = tx.OpenPeriod(ctx, ref, domain.KindEmployment, effective, nil)
		return nil, err

	case domain.EventRelease:
		if _, err := tx.ClosePeriod(ctx, ref, domain.KindEmployment, effective); err != nil {
			return nil, err
		}
		for _, kind := range []domain.PeriodKind{domain.KindInjury, domain.KindSuspension} {
			if err := s.closeIfOpen(ctx, tx, ref, kind, effective); err != nil {
				return nil, err
			}
		}
		return nil, s.endAffiliations(ctx, tx, e, effective)

	case domain.EventInjure:
		_, err := tx.OpenPeriod(ctx, ref, domain.KindInjury, effective, nil)
		return nil, err

	case domain.EventClearInjury:
		_, err := tx.ClosePeriod(ctx, ref, domain.KindInjury, effective)
		return nil, err

	case domain.EventSuspend:
		_, err := tx.OpenPeriod(ctx, ref, domain.KindSuspension, effective, nil)
		return nil, err

	case domain.EventReinstate:
		_, err := tx.ClosePeriod(ctx, ref, domain.KindSuspension, effective)
		return nil, err

	case domain.EventRetire:
		return s.retire(ctx, tx, e, effective)

	case domain.EventUnretire:
		if _, err := tx.ClosePeriod(ctx, ref, domain.KindRetirement, effective); err != nil {
			return nil, err
		}
		kind := domain.KindEmployment
		if e.Type.HasActivity() {
			kind = domain.KindActivity
		}
		_, err := tx.OpenPeriod(ctx, ref, kind, effective, nil)
		return nil, err

	case domain.EventActivate, domain.EventReunite:
		open, err := tx.FindOpen(ctx, ref, domain.KindActivity)
		if err != nil {
			return nil, err
		}
		if open != nil {
			if open.StartedAt.After(s.clock.Now()) {
				return nil, tx.ReschedulePeriod(ctx, open.ID, effective)
			}
			return nil, &domain.TransitionError{Event: event, Current: domain.StatusActive}
		}
		_, err = tx.OpenPeriod(ctx, ref, domain.KindActivity, effective, nil)
		return nil, err

	case domain.EventDeactivate:
		_, err := tx.ClosePeriod(ctx, ref, domain.KindActivity, effective)
		return nil, err

	case domain.EventDisband:
		if _, err := tx.ClosePeriod(ctx, ref, domain.KindActivity, effective); err != nil {
			return nil, err
		}
		members, err := tx.OpenPeriodsByCounterpart(ctx, ref, domain.KindStableMembership)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if _, err := tx.ClosePeriod(ctx, m.Owner, domain.KindStableMembership, effective); err != nil {
				return nil, err
			}
		}
		return nil, nil

	default:
		return nil, &domain.TransitionError{Event: event, Current: e.Status}
	}
}

// retire moves any entity into retirement. A retiring stable first retires
// its current members; the cascade stops at tag teams and does not reach
// their individual wrestlers.
func (s *LifecycleService) retire(ctx context.Context, tx domain.Store, e domain.Entity, effective time.Time) ([]domain.StatusChanged, error) {
	ref := e.Ref()
	var cascaded []domain.StatusChanged

	if e.Type == domain.TypeStable {
		members, err := tx.OpenPeriodsByCounterpart(ctx, ref, domain.KindStableMembership)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			_, changes, err := s.apply(ctx, tx, m.Owner.ID, domain.EventRetire, effective)
			if err != nil {
				return nil, fmt.Errorf("retiring member %s: %w", m.Owner.ID, err)
			}
			cascaded = append(cascaded, changes...)
		}
	}

	if e.Type.HasActivity() {
		if err := s.closeIfOpen(ctx, tx, ref, domain.KindActivity, effective); err != nil {
			return nil, err
		}
		if e.Type == domain.TypeTitle {
			// A retired title cannot stay held.
			if err := s.closeIfOpen(ctx, tx, ref, domain.KindChampionship, effective); err != nil {
				return nil, err
			}
		}
	} else {
		for _, kind := range []domain.PeriodKind{domain.KindEmployment, domain.KindInjury, domain.KindSuspension} {
			if err := s.closeIfOpen(ctx, tx, ref, kind, effective); err != nil {
				return nil, err
			}
		}
		if err := s.endAffiliations(ctx, tx, e, effective); err != nil {
			return nil, err
		}
	}

	_, err := tx.OpenPeriod(ctx, ref, domain.KindRetirement, effective, nil)
	return cascaded, err
}

// endAffiliations closes the entity's open relationships with third
// parties: group memberships for wrestlers and tag teams, client management
// for managers.
func (s *LifecycleService) endAffiliations(ctx context.Context, tx domain.Store, e domain.Entity, at time.Time) error {
	ref := e.Ref()

	switch {
	case e.Type == domain.TypeManager:
		clients, err := tx.Periods(ctx, ref, domain.KindManagement)
		if err != nil {
			return err
		}
		for _, p := range clients {
			if !p.Open() || p.Counterpart == nil {
				continue
			}
			if _, err := tx.ClosePeriodFor(ctx, ref, domain.KindManagement, *p.Counterpart, at); err != nil {
				return err
			}
		}
	case e.Type.CanBeMember():
		if err := s.closeIfOpen(ctx, tx, ref, domain.KindStableMembership, at); err != nil {
			return err
		}
		if e.Type == domain.TypeWrestler {
			if err := s.closeIfOpen(ctx, tx, ref, domain.KindTagTeamMembership, at); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *LifecycleService) closeIfOpen(ctx context.Context, tx domain.Store, ref domain.EntityRef, kind domain.PeriodKind, at time.Time) error {
	open, err := tx.FindOpen(ctx, ref, kind)
	if err != nil || open == nil {
		return err
	}
	_, err = tx.ClosePeriod(ctx, ref, kind, at)
	return err
}

// announce delivers status-changed events after commit. Failures are logged
// and dropped: observers are best-effort, the transition already happened.
func (s *LifecycleService) announce(ctx context.Context, changes []domain.StatusChanged) {
	for _, change := range changes {
		if err := s.publisher.Publish(ctx, change); err != nil {
			slog.WarnContext(ctx, "publishing status change",
				"entity_id", change.Entity.ID,
				"from", change.From,
				"to", change.To,
				"error", err,
			)
		}
	}
}
