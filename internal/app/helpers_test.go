package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/ringside-hq/ringside/internal/adapter/fsm"
	"github.com/ringside-hq/ringside/internal/adapter/sqlite"
	"github.com/ringside-hq/ringside/internal/app"
	"github.com/ringside-hq/ringside/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

// fixedClock is a mutable test clock; tests advance it by assigning now.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

// capturePublisher records every published status change.
type capturePublisher struct {
	changes []domain.StatusChanged
}

func (p *capturePublisher) Publish(_ context.Context, change domain.StatusChanged) error {
	p.changes = append(p.changes, change)
	return nil
}

// stubBookings marks specific (entity, day) pairs as booked.
type stubBookings struct {
	booked map[string]bool
}

func (b *stubBookings) HasBookingOn(_ context.Context, ref domain.EntityRef, date time.Time) (bool, error) {
	return b.booked[ref.ID+"@"+date.Format("2006-01-02")], nil
}

// fixture wires every service against a real store and the FSM validator,
// with a pinned clock and a capturing publisher.
type fixture struct {
	store        *sqlite.Store
	clock        *fixedClock
	pub          *capturePublisher
	bookings     *stubBookings
	roster       *app.RosterService
	lifecycle    *app.LifecycleService
	membership   *app.MembershipService
	availability *app.AvailabilityService
	championship *app.ChampionshipService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlite.New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := &fixedClock{now: day(0)}
	pub := &capturePublisher{}
	bookings := &stubBookings{booked: make(map[string]bool)}

	return &fixture{
		store:        store,
		clock:        clock,
		pub:          pub,
		bookings:     bookings,
		roster:       app.NewRosterService(store, clock),
		lifecycle:    app.NewLifecycleService(store, fsm.New(), pub, clock),
		membership:   app.NewMembershipService(store, clock),
		availability: app.NewAvailabilityService(store, bookings, clock),
		championship: app.NewChampionshipService(store, clock),
	}
}

func (f *fixture) create(t *testing.T, typ domain.EntityType, name string) domain.Entity {
	t.Helper()
	e, err := f.roster.Create(context.Background(), typ, name, "")
	if err != nil {
		t.Fatalf("creating %s %s: %v", typ, name, err)
	}
	return e
}

func (f *fixture) employ(t *testing.T, id string, effective time.Time) domain.Entity {
	t.Helper()
	e, err := f.lifecycle.Employ(context.Background(), id, effective)
	if err != nil {
		t.Fatalf("employing %s: %v", id, err)
	}
	return e
}

func (f *fixture) activate(t *testing.T, id string, effective time.Time) domain.Entity {
	t.Helper()
	e, err := f.lifecycle.Activate(context.Background(), id, effective)
	if err != nil {
		t.Fatalf("activating %s: %v", id, err)
	}
	return e
}
