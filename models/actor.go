package models

// Actor is the authenticated caller, resolved once by the auth middleware
// and carried through the request context. Controllers and services use it
// for ownership checks instead of re-deriving the role from the database.
type Actor struct {
	UserID     uint
	Role       string
	StudioID   uint
	DesignerID uint
	CustomerID uint
}

// NewActor builds an Actor from a user row, flattening the optional links.
func NewActor(u *User) Actor {
	a := Actor{UserID: u.ID, Role: u.Role}
	if u.StudioID != nil {
		a.StudioID = *u.StudioID
	}
	if u.DesignerID != nil {
		a.DesignerID = *u.DesignerID
	}
	if u.CustomerID != nil {
		a.CustomerID = *u.CustomerID
	}
	return a
}

// IsStaff reports whether the actor manages studio resources.
func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleStudio
}

// CanManageStudio reports whether the actor may act on resources owned by
// the given studio.
func (a Actor) CanManageStudio(studioID uint) bool {
	if a.Role == RoleAdmin {
		return true
	}
	return a.Role == RoleStudio && a.StudioID == studioID
}
