package app

import (
	"context"
	"time"

	"github.com/ringside-hq/ringside/internal/domain"
)

// ReignSummary is the read model for championship queries.
type ReignSummary struct {
	Champion     domain.EntityRef
	ChampionName string
	WonAt        time.Time
	LostAt       *time.Time
	Days         int
}

// ChampionshipService records title reigns and serves reign queries. A
// title holds at most one open reign; crowning a new champion closes the
// previous reign at the same instant.
type ChampionshipService struct {
	store domain.Store
	clock domain.Clock
}

// NewChampionshipService creates a service with the given adapters.
func NewChampionshipService(store domain.Store, clock domain.Clock) *ChampionshipService {
	return &ChampionshipService{store: store, clock: clock}
}

// WinTitle crowns a new champion at the given instant (zero means now).
// The title must be active as of that instant; the champion must be a
// wrestler or a tag team that has not retired.
func (s *ChampionshipService) WinTitle(ctx context.Context, titleID string, champion domain.EntityRef, wonAt time.Time) (domain.Period, error) {
	if wonAt.IsZero() {
		wonAt = s.clock.Now()
	}

	var reign domain.Period
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		title, err := s.title(ctx, tx, titleID)
		if err != nil {
			return err
		}

		champ, err := tx.GetEntity(ctx, champion.ID)
		if err != nil {
			return err
		}
		if champ.Type != domain.TypeWrestler && champ.Type != domain.TypeTagTeam {
			return &domain.InvalidMemberError{Member: champ.Ref(), Role: "champion"}
		}

		champHistory, err := tx.History(ctx, champ.Ref())
		if err != nil {
			return err
		}
		if status := domain.DeriveStatus(champ.Type, champHistory, wonAt); status == domain.StatusRetired {
			return &domain.TransitionError{Event: domain.EventWinTitle, Current: status}
		}

		history, err := tx.History(ctx, title.Ref())
		if err != nil {
			return err
		}
		if status := domain.DeriveStatus(title.Type, history, wonAt); status != domain.StatusActive {
			return &domain.TransitionError{Event: domain.EventWinTitle, Current: status}
		}

		// The losing champion's reign ends the instant the new one begins.
		if open, err := tx.FindOpen(ctx, title.Ref(), domain.KindChampionship); err != nil {
			return err
		} else if open != nil {
			if _, err := tx.ClosePeriod(ctx, title.Ref(), domain.KindChampionship, wonAt); err != nil {
				return err
			}
		}

		champRef := champ.Ref()
		reign, err = tx.OpenPeriod(ctx, title.Ref(), domain.KindChampionship, wonAt, &champRef)
		return err
	})
	if err != nil {
		return domain.Period{}, err
	}
	return reign, nil
}

// VacateTitle ends the open reign without crowning a successor.
func (s *ChampionshipService) VacateTitle(ctx context.Context, titleID string, at time.Time) error {
	if at.IsZero() {
		at = s.clock.Now()
	}
	return s.store.WithTx(ctx, func(tx domain.Store) error {
		title, err := s.title(ctx, tx, titleID)
		if err != nil {
			return err
		}
		_, err = tx.ClosePeriod(ctx, title.Ref(), domain.KindChampionship, at)
		return err
	})
}

// CurrentChampion returns the reign covering now, or nil when the title is
// vacant.
func (s *ChampionshipService) CurrentChampion(ctx context.Context, titleID string) (*ReignSummary, error) {
	title, err := s.title(ctx, s.store, titleID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p, err := s.store.CurrentPeriod(ctx, title.Ref(), domain.KindChampionship, now)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	return s.summarize(ctx, domain.ReignOf(*p), now)
}

// LongestReigningChampion returns the longest reign in the title's history,
// measuring an open reign up to now and breaking ties in favor of the
// earliest win. Returns nil when the title has never been held.
func (s *ChampionshipService) LongestReigningChampion(ctx context.Context, titleID string) (*ReignSummary, error) {
	title, err := s.title(ctx, s.store, titleID)
	if err != nil {
		return nil, err
	}

	reigns, err := s.store.Periods(ctx, title.Ref(), domain.KindChampionship)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	best := domain.LongestReign(reigns, now)
	if best == nil {
		return nil, nil
	}

	return s.summarize(ctx, *best, now)
}

func (s *ChampionshipService) summarize(ctx context.Context, r domain.Reign, now time.Time) (*ReignSummary, error) {
	champ, err := s.store.GetEntity(ctx, r.Champion.ID)
	if err != nil {
		return nil, err
	}
	return &ReignSummary{
		Champion:     r.Champion,
		ChampionName: champ.Name,
		WonAt:        r.WonAt,
		LostAt:       r.LostAt,
		Days:         int(r.Length(now).Hours() / 24),
	}, nil
}

func (s *ChampionshipService) title(ctx context.Context, store domain.Store, id string) (domain.Entity, error) {
	title, err := store.GetEntity(ctx, id)
	if err != nil {
		return domain.Entity{}, err
	}
	if title.Type != domain.TypeTitle {
		return domain.Entity{}, &domain.InvalidMemberError{Member: title.Ref(), Role: "title"}
	}
	return title, nil
}
