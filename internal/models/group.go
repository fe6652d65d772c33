package models

// Member roles within a group.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// GroupMember associates a user with a group.
type GroupMember struct {
	// UserID is the member's user identifier.
	UserID UserID

	// Role is "admin" or "member". Admins can add and remove members.
	Role string

	// JoinedAt is the Unix timestamp when the user joined the group.
	JoinedAt int64
}

// Group represents a set of users who share expenses.
// Each group operates in a single nominal currency; no conversion is done.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID GroupID

	// Name is the display name (e.g. "Roommates", "Lisbon Trip").
	Name string

	// Description is an optional free-text description.
	Description string

	// Icon is an emoji or short glyph shown in listings.
	Icon string

	// Category tags the kind of group: trip, home, couple, friends,
	// work or other.
	Category string

	// Currency is the nominal currency code for all amounts in the group.
	Currency string

	// Members is the current membership list, in join order.
	Members []GroupMember

	// CreatedBy is the user who created the group. Only the creator can
	// archive it.
	CreatedBy UserID

	// Archived marks the group as deleted without destroying its history.
	Archived bool

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// MemberIDs returns the current member ids in join order.
func (g *Group) MemberIDs() []UserID {
	ids := make([]UserID, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

// HasMember reports whether the user is a current member.
func (g *Group) HasMember(id UserID) bool {
	for _, m := range g.Members {
		if m.UserID == id {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user is an admin of the group.
func (g *Group) IsAdmin(id UserID) bool {
	for _, m := range g.Members {
		if m.UserID == id && m.Role == RoleAdmin {
			return true
		}
	}
	return false
}
