package domain

import "time"

// EntityType discriminates the entity families managed by the promotion.
type EntityType string

const (
	TypeWrestler EntityType = "wrestler"
	TypeManager  EntityType = "manager"
	TypeReferee  EntityType = "referee"
	TypeTagTeam  EntityType = "tag_team"
	TypeStable   EntityType = "stable"
	TypeTitle    EntityType = "title"
)

// EntityTypes lists every valid entity type.
var EntityTypes = []EntityType{
	TypeWrestler, TypeManager, TypeReferee, TypeTagTeam, TypeStable, TypeTitle,
}

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HasEmployment reports whether entities of this type are hired and released
// through employment periods.
func (t EntityType) HasEmployment() bool {
	return t == TypeWrestler || t == TypeManager || t == TypeReferee || t == TypeTagTeam
}

// HasActivity reports whether entities of this type run on activation
// periods instead of employment (stables and titles).
func (t EntityType) HasActivity() bool {
	return t == TypeStable || t == TypeTitle
}

// IsGroup reports whether entities of this type hold members through
// membership periods.
func (t EntityType) IsGroup() bool {
	return t == TypeStable || t == TypeTagTeam
}

// CanBeMember reports whether entities of this type may join a group.
// Managers are deliberately excluded: their association with a group is
// transitive through the wrestlers and tag teams they manage.
func (t EntityType) CanBeMember() bool {
	return t == TypeWrestler || t == TypeTagTeam
}

// Bookable reports whether entities of this type can be booked into a match.
func (t EntityType) Bookable() bool {
	return t == TypeWrestler || t == TypeTagTeam || t == TypeReferee
}

// EntityRef identifies an entity across polymorphic relations: period
// ownership, group membership, title reigns, management.
type EntityRef struct {
	Type EntityType
	ID   string
}

// Entity is one roster record: a wrestler, manager, referee, tag team,
// stable, or title. Status caches the derived lifecycle status so listings
// can filter without replaying period history; the periods themselves remain
// the source of truth.
type Entity struct {
	ID        string
	Type      EntityType
	Name      string
	Hometown  string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ref returns the polymorphic reference for this entity.
func (e Entity) Ref() EntityRef {
	return EntityRef{Type: e.Type, ID: e.ID}
}

// NewEntity creates an entity in its initial lifecycle status: unemployed
// for roster members, unactivated for stables and titles.
func NewEntity(id string, typ EntityType, name, hometown string, now time.Time) Entity {
	status := StatusUnemployed
	if typ.HasActivity() {
		status = StatusUnactivated
	}
	return Entity{
		ID:        id,
		Type:      typ,
		Name:      name,
		Hometown:  hometown,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MembershipKind returns the period kind that records membership in groups
// of the given type. The second return is false when the type cannot hold
// members.
func MembershipKind(group EntityType) (PeriodKind, bool) {
	switch group {
	case TypeStable:
		return KindStableMembership, true
	case TypeTagTeam:
		return KindTagTeamMembership, true
	default:
		return "", false
	}
}
