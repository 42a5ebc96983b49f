package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ringside-hq/ringside/internal/domain"
)

func TestWinTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title := f.create(t, domain.TypeTitle, "World Title")
	w := f.create(t, domain.TypeWrestler, "El Fantasma")
	f.activate(t, title.ID, day(0))
	f.employ(t, w.ID, day(0))

	reign, err := f.championship.WinTitle(ctx, title.ID, w.Ref(), day(1))
	if err != nil {
		t.Fatalf("WinTitle: %v", err)
	}
	if reign.Counterpart == nil || reign.Counterpart.ID != w.ID {
		t.Errorf("reign counterpart = %+v, want %s", reign.Counterpart, w.ID)
	}

	f.clock.now = day(5)
	champ, err := f.championship.CurrentChampion(ctx, title.ID)
	if err != nil {
		t.Fatalf("CurrentChampion: %v", err)
	}
	if champ == nil || champ.Champion.ID != w.ID {
		t.Fatalf("champion = %+v, want %s", champ, w.ID)
	}
	if champ.ChampionName != "El Fantasma" {
		t.Errorf("ChampionName = %q, want %q", champ.ChampionName, "El Fantasma")
	}
}

func TestWinTitle_InactiveTitle(t *testing.T) {
	f := newFixture(t)
	title := f.create(t, domain.TypeTitle, "World Title")
	w := f.create(t, domain.TypeWrestler, "El Fantasma")
	f.employ(t, w.ID, day(0))

	_, err := f.championship.WinTitle(context.Background(), title.ID, w.Ref(), day(1))
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Event != domain.EventWinTitle || trErr.Current != domain.StatusUnactivated {
		t.Errorf("error = %+v, want win_title on unactivated", trErr)
	}
}

func TestWinTitle_SuccessionClosesPreviousReign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title := f.create(t, domain.TypeTitle, "World Title")
	w1 := f.create(t, domain.TypeWrestler, "Alpha")
	w2 := f.create(t, domain.TypeWrestler, "Beta")
	f.activate(t, title.ID, day(0))
	f.employ(t, w1.ID, day(0))
	f.employ(t, w2.ID, day(0))

	if _, err := f.championship.WinTitle(ctx, title.ID, w1.Ref(), day(1)); err != nil {
		t.Fatalf("first WinTitle: %v", err)
	}
	if _, err := f.championship.WinTitle(ctx, title.ID, w2.Ref(), day(30)); err != nil {
		t.Fatalf("second WinTitle: %v", err)
	}

	reigns, err := f.store.Periods(ctx, title.Ref(), domain.KindChampionship)
	if err != nil {
		t.Fatalf("Periods: %v", err)
	}
	if len(reigns) != 2 {
		t.Fatalf("got %d reigns, want 2", len(reigns))
	}
	// The losing reign ends the instant the new one begins.
	first, second := reigns[0], reigns[1]
	if first.EndedAt == nil || !first.EndedAt.Equal(second.StartedAt) {
		t.Errorf("first reign ends %v, second starts %v, want equal", first.EndedAt, second.StartedAt)
	}

	f.clock.now = day(40)
	champ, err := f.championship.CurrentChampion(ctx, title.ID)
	if err != nil {
		t.Fatalf("CurrentChampion: %v", err)
	}
	if champ == nil || champ.Champion.ID != w2.ID {
		t.Errorf("champion = %+v, want %s", champ, w2.ID)
	}
}

func TestWinTitle_TagTeamChampion(t *testing.T) {
	f := newFixture(t)
	title := f.create(t, domain.TypeTitle, "Tag Titles")
	tt := f.create(t, domain.TypeTagTeam, "Los Hermanos")
	f.activate(t, title.ID, day(0))
	f.employ(t, tt.ID, day(0))

	if _, err := f.championship.WinTitle(context.Background(), title.ID, tt.Ref(), day(1)); err != nil {
		t.Fatalf("WinTitle: %v", err)
	}
}

func TestWinTitle_RefereeCannotHoldTitle(t *testing.T) {
	f := newFixture(t)
	title := f.create(t, domain.TypeTitle, "World Title")
	ref := f.create(t, domain.TypeReferee, "Justo")
	f.activate(t, title.ID, day(0))
	f.employ(t, ref.ID, day(0))

	_, err := f.championship.WinTitle(context.Background(), title.ID, ref.Ref(), day(1))
	var invErr *domain.InvalidMemberError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvalidMemberError, got %v", err)
	}
	if invErr.Role != "champion" {
		t.Errorf("role = %q, want %q", invErr.Role, "champion")
	}
}

func TestWinTitle_RetiredChampion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title := f.create(t, domain.TypeTitle, "World Title")
	w := f.create(t, domain.TypeWrestler, "El Fantasma")
	f.activate(t, title.ID, day(0))
	f.employ(t, w.ID, day(0))

	f.clock.now = day(5)
	if _, err := f.lifecycle.Retire(ctx, w.ID, day(5)); err != nil {
		t.Fatalf("Retire: %v", err)
	}

	_, err := f.championship.WinTitle(ctx, title.ID, w.Ref(), day(6))
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Event != domain.EventWinTitle {
		t.Errorf("event = %q, want %q", trErr.Event, domain.EventWinTitle)
	}
	if trErr.Current != domain.StatusRetired {
		t.Errorf("current = %q, want %q", trErr.Current, domain.StatusRetired)
	}
}

func TestWinTitle_NotATitle(t *testing.T) {
	f := newFixture(t)
	w1 := f.create(t, domain.TypeWrestler, "Alpha")
	w2 := f.create(t, domain.TypeWrestler, "Beta")
	f.employ(t, w1.ID, day(0))
	f.employ(t, w2.ID, day(0))

	_, err := f.championship.WinTitle(context.Background(), w1.ID, w2.Ref(), day(1))
	var invErr *domain.InvalidMemberError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvalidMemberError, got %v", err)
	}
	if invErr.Role != "title" {
		t.Errorf("role = %q, want %q", invErr.Role, "title")
	}
}

func TestVacateTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title := f.create(t, domain.TypeTitle, "World Title")
	w := f.create(t, domain.TypeWrestler, "El Fantasma")
	f.activate(t, title.ID, day(0))
	f.employ(t, w.ID, day(0))

	if _, err := f.championship.WinTitle(ctx, title.ID, w.Ref(), day(1)); err != nil {
		t.Fatalf("WinTitle: %v", err)
	}

	f.clock.now = day(30)
	if err := f.championship.VacateTitle(ctx, title.ID, day(30)); err != nil {
		t.Fatalf("VacateTitle: %v", err)
	}

	champ, err := f.championship.CurrentChampion(ctx, title.ID)
	if err != nil {
		t.Fatalf("CurrentChampion: %v", err)
	}
	if champ != nil {
		t.Errorf("vacated title should have no champion, got %+v", champ)
	}
}

func TestVacateTitle_AlreadyVacant(t *testing.T) {
	f := newFixture(t)
	title := f.create(t, domain.TypeTitle, "World Title")
	f.activate(t, title.ID, day(0))

	err := f.championship.VacateTitle(context.Background(), title.ID, day(1))
	var noErr *domain.NoOpenPeriodError
	if !errors.As(err, &noErr) {
		t.Fatalf("expected NoOpenPeriodError, got %v", err)
	}
}

func TestCurrentChampion_Vacant(t *testing.T) {
	f := newFixture(t)
	title := f.create(t, domain.TypeTitle, "World Title")
	f.activate(t, title.ID, day(0))

	champ, err := f.championship.CurrentChampion(context.Background(), title.ID)
	if err != nil {
		t.Fatalf("CurrentChampion: %v", err)
	}
	if champ != nil {
		t.Errorf("never-held title should have no champion, got %+v", champ)
	}
}

func TestLongestReigningChampion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title := f.create(t, domain.TypeTitle, "World Title")
	w1 := f.create(t, domain.TypeWrestler, "Alpha")
	w2 := f.create(t, domain.TypeWrestler, "Beta")
	f.activate(t, title.ID, day(0))
	f.employ(t, w1.ID, day(0))
	f.employ(t, w2.ID, day(0))

	// Alpha holds for 40 days, Beta's run is still going at 20.
	if _, err := f.championship.WinTitle(ctx, title.ID, w1.Ref(), day(1)); err != nil {
		t.Fatalf("WinTitle: %v", err)
	}
	if _, err := f.championship.WinTitle(ctx, title.ID, w2.Ref(), day(41)); err != nil {
		t.Fatalf("WinTitle: %v", err)
	}

	f.clock.now = day(61)
	best, err := f.championship.LongestReigningChampion(ctx, title.ID)
	if err != nil {
		t.Fatalf("LongestReigningChampion: %v", err)
	}
	if best == nil || best.Champion.ID != w1.ID {
		t.Fatalf("longest = %+v, want %s", best, w1.ID)
	}
	if best.Days != 40 {
		t.Errorf("Days = %d, want 40", best.Days)
	}
	if best.LostAt == nil || !best.LostAt.Equal(day(41)) {
		t.Errorf("LostAt = %v, want %v", best.LostAt, day(41))
	}

	// Once Beta's open reign outlasts Alpha's, the crown changes hands.
	f.clock.now = day(100)
	best, err = f.championship.LongestReigningChampion(ctx, title.ID)
	if err != nil {
		t.Fatalf("LongestReigningChampion: %v", err)
	}
	if best == nil || best.Champion.ID != w2.ID {
		t.Fatalf("longest = %+v, want %s", best, w2.ID)
	}
	if best.LostAt != nil {
		t.Errorf("open reign LostAt = %v, want nil", best.LostAt)
	}
}

func TestLongestReigningChampion_NeverHeld(t *testing.T) {
	f := newFixture(t)
	title := f.create(t, domain.TypeTitle, "World Title")

	best, err := f.championship.LongestReigningChampion(context.Background(), title.ID)
	if err != nil {
		t.Fatalf("LongestReigningChampion: %v", err)
	}
	if best != nil {
		t.Errorf("expected nil, got %+v", best)
	}
}
