// Package actor describes the caller identity handed to every service call.
package actor

import "strings"

const (
	RoleUser        = "USER"
	RoleInstructor  = "INSTRUCTOR"
	RoleCenterAdmin = "CENTER_ADMIN"
	RoleAdmin       = "ADMIN"
)

// Actor is supplied by the identity layer per request and never read from
// shared state.
type Actor struct {
	UserID   uint
	Roles    []string
	CenterID *uint
}

// System is used by scheduled jobs.
var System = Actor{Roles: []string{RoleAdmin}}

func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// IsPlatformAdmin reports whether the actor administers the whole platform.
func (a Actor) IsPlatformAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// AdministersCenter reports whether the actor is a platform admin or the
// admin of the given center.
func (a Actor) AdministersCenter(centerID *uint) bool {
	if a.IsPlatformAdmin() {
		return true
	}
	if !a.HasRole(RoleCenterAdmin) || a.CenterID == nil || centerID == nil {
		return false
	}
	return *a.CenterID == *centerID
}

func (a Actor) String() string {
	return strings.Join(a.Roles, ",")
}
