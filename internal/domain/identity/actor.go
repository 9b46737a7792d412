package identity

// ===============================
// Roles
// ===============================

type Role string

const (
	RoleVolunteer    Role = "volunteer"
	RoleOrganization Role = "organization"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleVolunteer, RoleOrganization, RoleAdmin:
		return true
	}
	return false
}

// ===============================
// Actor
// ===============================

// Actor is the identity on whose behalf an operation runs. It is always
// passed explicitly; no operation reads the current user from ambient state.
type Actor struct {
	UserID         uint
	Role           Role
	OrganizationID *uint
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Owns reports whether the actor is the given user.
func (a Actor) Owns(userID uint) bool {
	return a.UserID != 0 && a.UserID == userID
}

// ManagesOrganization is true for admins and for organization users
// attached to orgID.
func (a Actor) ManagesOrganization(orgID uint) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == RoleOrganization &&
		a.OrganizationID != nil &&
		*a.OrganizationID == orgID
}
