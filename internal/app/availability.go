package app

import (
	"context"
	"time"

	"github.com/ringside-hq/ringside/internal/domain"
)

// AvailabilityService answers whether an entity is usable in a match on a
// given date: effectively employed (or active, for titles) and not already
// booked. Bookings belong to the match-assembly collaborator behind the
// BookingGateway port.
type AvailabilityService struct {
	store    domain.Store
	bookings domain.BookingGateway
	clock    domain.Clock
}

// NewAvailabilityService creates a service with the given adapters.
func NewAvailabilityService(store domain.Store, bookings domain.BookingGateway, clock domain.Clock) *AvailabilityService {
	return &AvailabilityService{store: store, bookings: bookings, clock: clock}
}

// IsAvailable reports whether the entity can be booked on the given date
// (zero means now). Wrestlers, tag teams, and referees must be employed and
// clear of injury, suspension, and retirement; titles must be active and not
// already staked. A scheduled employment whose start has passed counts as
// employed. Entity types that cannot appear in a match are never available.
func (s *AvailabilityService) IsAvailable(ctx context.Context, id string, date time.Time) (bool, error) {
	if date.IsZero() {
		date = s.clock.Now()
	}

	e, err := s.store.GetEntity(ctx, id)
	if err != nil {
		return false, err
	}

	history, err := s.store.History(ctx, e.Ref())
	if err != nil {
		return false, err
	}
	status := domain.DeriveStatus(e.Type, history, date)

	switch {
	case e.Type == domain.TypeTitle:
		if status != domain.StatusActive {
			return false, nil
		}
	case e.Type.Bookable():
		if status != domain.StatusEmployed {
			return false, nil
		}
	default:
		return false, nil
	}

	booked, err := s.bookings.HasBookingOn(ctx, e.Ref(), date)
	if err != nil {
		return false, err
	}
	return !booked, nil
}
