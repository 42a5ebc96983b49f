package domain_test

import (
	"testing"
	"time"

	"github.com/ringside-hq/ringside/internal/domain"
)

func TestPeriod_ActiveAt_Boundaries(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	p := domain.Period{StartedAt: start, EndedAt: &end}

	// Start is inclusive, end is exclusive.
	if !p.ActiveAt(start) {
		t.Error("period should be active at its start instant")
	}
	if p.ActiveAt(end) {
		t.Error("period should not be active at its end instant")
	}
	if !p.ActiveAt(start.Add(time.Hour)) {
		t.Error("period should be active inside its span")
	}
	if p.ActiveAt(start.Add(-time.Second)) {
		t.Error("period should not be active before it starts")
	}
}

func TestPeriod_ActiveAt_OpenPeriod(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := domain.Period{StartedAt: start}

	if !p.Open() {
		t.Error("period without end should be open")
	}
	if !p.ActiveAt(start.AddDate(10, 0, 0)) {
		t.Error("open period should be active arbitrarily far in the future")
	}
	if p.ActiveAt(start.Add(-time.Second)) {
		t.Error("future-dated open period should not be active before its start")
	}
}

func TestPeriodKind_KeyedByCounterpart(t *testing.T) {
	if !domain.KindManagement.KeyedByCounterpart() {
		t.Error("management should be keyed by counterpart")
	}
	for _, kind := range []domain.PeriodKind{
		domain.KindEmployment, domain.KindChampionship,
		domain.KindStableMembership, domain.KindTagTeamMembership,
	} {
		if kind.KeyedByCounterpart() {
			t.Errorf("%s should not be keyed by counterpart", kind)
		}
	}
}

func TestPeriodKind_Membership(t *testing.T) {
	if !domain.KindStableMembership.Membership() || !domain.KindTagTeamMembership.Membership() {
		t.Error("membership kinds should report Membership")
	}
	if domain.KindEmployment.Membership() || domain.KindManagement.Membership() {
		t.Error("non-membership kinds should not report Membership")
	}
}
