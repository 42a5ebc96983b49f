package app

import (
	"context"
	"time"

	"github.com/ringside-hq/ringside/internal/domain"
)

// MembershipService manages time-boxed membership of wrestlers and tag
// teams inside stables and tag teams, plus manager/client relationships.
// A member holds at most one open membership per group type: a wrestler
// cannot be in two stables at once, but may be in one stable and one tag
// team independently.
type MembershipService struct {
	store domain.Store
	clock domain.Clock
}

// NewMembershipService creates a service with the given adapters.
func NewMembershipService(store domain.Store, clock domain.Clock) *MembershipService {
	return &MembershipService{store: store, clock: clock}
}

// AddMember opens a membership period for the member in the group.
//
// Managers are accepted and ignored: their association with a group is
// transitive through the wrestlers and tag teams they manage, so the call is
// a deliberate no-op kept for interface symmetry.
func (s *MembershipService) AddMember(ctx context.Context, groupID, memberID string, joinedAt time.Time) error {
	if joinedAt.IsZero() {
		joinedAt = s.clock.Now()
	}
	return s.store.WithTx(ctx, func(tx domain.Store) error {
		group, kind, err := s.group(ctx, tx, groupID)
		if err != nil {
			return err
		}
		return s.addMember(ctx, tx, group, kind, memberID, joinedAt)
	})
}

// RemoveMember ends the member's open membership period in the group.
func (s *MembershipService) RemoveMember(ctx context.Context, groupID, memberID string, leftAt time.Time) error {
	if leftAt.IsZero() {
		leftAt = s.clock.Now()
	}
	return s.store.WithTx(ctx, func(tx domain.Store) error {
		group, err := tx.GetEntity(ctx, groupID)
		if err != nil {
			return err
		}
		kind, ok := domain.MembershipKind(group.Type)
		if !ok {
			return &domain.InvalidMemberError{Member: group.Ref(), Role: "group"}
		}

		member, err := tx.GetEntity(ctx, memberID)
		if err != nil {
			return err
		}
		if member.Type == domain.TypeManager {
			return nil
		}

		open, err := tx.FindOpen(ctx, member.Ref(), kind)
		if err != nil {
			return err
		}
		if open == nil || open.Counterpart == nil || open.Counterpart.ID != group.ID {
			return &domain.NoOpenPeriodError{Owner: member.Ref(), Kind: kind}
		}

		_, err = tx.ClosePeriod(ctx, member.Ref(), kind, leftAt)
		return err
	})
}

// ReplaceMembers reconciles the group's current roster against the desired
// member set: current members missing from the set leave, new ones join,
// members present in both are untouched. Removals run first so a member
// moving between roles never collides with itself.
func (s *MembershipService) ReplaceMembers(ctx context.Context, groupID string, memberIDs []string, effective time.Time) error {
	if effective.IsZero() {
		effective = s.clock.Now()
	}
	return s.store.WithTx(ctx, func(tx domain.Store) error {
		group, kind, err := s.group(ctx, tx, groupID)
		if err != nil {
			return err
		}

		current, err := tx.OpenPeriodsByCounterpart(ctx, group.Ref(), kind)
		if err != nil {
			return err
		}

		desired := make(map[string]bool, len(memberIDs))
		for _, id := range memberIDs {
			desired[id] = true
		}

		kept := make(map[string]bool, len(current))
		for _, p := range current {
			if desired[p.Owner.ID] {
				kept[p.Owner.ID] = true
				continue
			}
			if _, err := tx.ClosePeriod(ctx, p.Owner, kind, effective); err != nil {
				return err
			}
		}

		for _, id := range memberIDs {
			if kept[id] {
				continue
			}
			if err := s.addMember(ctx, tx, group, kind, id, effective); err != nil {
				return err
			}
			kept[id] = true
		}
		return nil
	})
}

// CurrentMembers returns the entities with an open membership in the group.
func (s *MembershipService) CurrentMembers(ctx context.Context, groupID string) ([]domain.Entity, error) {
	group, err := s.store.GetEntity(ctx, groupID)
	if err != nil {
		return nil, err
	}
	kind, ok := domain.MembershipKind(group.Type)
	if !ok {
		return nil, &domain.InvalidMemberError{Member: group.Ref(), Role: "group"}
	}

	open, err := s.store.OpenPeriodsByCounterpart(ctx, group.Ref(), kind)
	if err != nil {
		return nil, err
	}

	members := make([]domain.Entity, 0, len(open))
	for _, p := range open {
		m, err := s.store.GetEntity(ctx, p.Owner.ID)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// AssignManager opens a management period between a manager and a client
// wrestler or tag team. A manager may handle any number of clients, but
// only one open period per client.
func (s *MembershipService) AssignManager(ctx context.Context, managerID, clientID string, startedAt time.Time) error {
	if startedAt.IsZero() {
		startedAt = s.clock.Now()
	}
	return s.store.WithTx(ctx, func(tx domain.Store) error {
		mgr, err := tx.GetEntity(ctx, managerID)
		if err != nil {
			return err
		}
		if mgr.Type != domain.TypeManager {
			return &domain.InvalidMemberError{Member: mgr.Ref(), Role: "manager"}
		}

		client, err := tx.GetEntity(ctx, clientID)
		if err != nil {
			return err
		}
		if !client.Type.CanBeMember() {
			return &domain.InvalidMemberError{Member: client.Ref(), Role: "managed client"}
		}

		history, err := tx.History(ctx, mgr.Ref())
		if err != nil {
			return err
		}
		if status := domain.DeriveStatus(mgr.Type, history, startedAt); status == domain.StatusRetired {
			return &domain.TransitionError{Event: domain.EventAssignManager, Current: status}
		}

		clientRef := client.Ref()
		_, err = tx.OpenPeriod(ctx, mgr.Ref(), domain.KindManagement, startedAt, &clientRef)
		return err
	})
}

// RemoveManager ends the management period between a manager and a client.
func (s *MembershipService) RemoveManager(ctx context.Context, managerID, clientID string, endedAt time.Time) error {
	if endedAt.IsZero() {
		endedAt = s.clock.Now()
	}
	return s.store.WithTx(ctx, func(tx domain.Store) error {
		mgr, err := tx.GetEntity(ctx, managerID)
		if err != nil {
			return err
		}
		client, err := tx.GetEntity(ctx, clientID)
		if err != nil {
			return err
		}
		_, err = tx.ClosePeriodFor(ctx, mgr.Ref(), domain.KindManagement, client.Ref(), endedAt)
		return err
	})
}

// CurrentClients returns the entities the manager currently manages.
func (s *MembershipService) CurrentClients(ctx context.Context, managerID string) ([]domain.Entity, error) {
	mgr, err := s.store.GetEntity(ctx, managerID)
	if err != nil {
		return nil, err
	}

	periods, err := s.store.Periods(ctx, mgr.Ref(), domain.KindManagement)
	if err != nil {
		return nil, err
	}

	var clients []domain.Entity
	for _, p := range periods {
		if !p.Open() || p.Counterpart == nil {
			continue
		}
		c, err := s.store.GetEntity(ctx, p.Counterpart.ID)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// group loads a group entity, resolves its membership kind, and rejects
// retired groups.
func (s *MembershipService) group(ctx context.Context, tx domain.Store, id string) (domain.Entity, domain.PeriodKind, error) {
	g, err := tx.GetEntity(ctx, id)
	if err != nil {
		return domain.Entity{}, "", err
	}
	kind, ok := domain.MembershipKind(g.Type)
	if !ok {
		return domain.Entity{}, "", &domain.InvalidMemberError{Member: g.Ref(), Role: "group"}
	}

	history, err := tx.History(ctx, g.Ref())
	if err != nil {
		return domain.Entity{}, "", err
	}
	if status := domain.DeriveStatus(g.Type, history, s.clock.Now()); status == domain.StatusRetired {
		return domain.Entity{}, "", &domain.TransitionError{Event: domain.EventJoinGroup, Current: status}
	}

	return g, kind, nil
}

// addMember performs the membership write inside an existing transaction.
func (s *MembershipService) addMember(ctx context.Context, tx domain.Store, group domain.Entity, kind domain.PeriodKind, memberID string, joinedAt time.Time) error {
	member, err := tx.GetEntity(ctx, memberID)
	if err != nil {
		return err
	}
	if member.Type == domain.TypeManager {
		return nil
	}
	if !member.Type.CanBeMember() || (group.Type == domain.TypeTagTeam && member.Type != domain.TypeWrestler) {
		return &domain.InvalidMemberError{Member: member.Ref(), Role: "member of a " + string(group.Type)}
	}

	history, err := tx.History(ctx, member.Ref())
	if err != nil {
		return err
	}
	if status := domain.DeriveStatus(member.Type, history, joinedAt); status == domain.StatusRetired {
		return &domain.TransitionError{Event: domain.EventJoinGroup, Current: status}
	}

	groupRef := group.Ref()
	_, err = tx.OpenPeriod(ctx, member.Ref(), kind, joinedAt, &groupRef)
	return err
}
