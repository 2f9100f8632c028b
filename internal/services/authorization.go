package services

import "github.com/atomizehq/atomize/internal/models"

// Access is the guard's three-valued outcome. Denied covers both "not
// yours" and "does not exist" so a denial never leaks existence.
type Access int

const (
	AccessDenied Access = iota
	AccessOwner
	AccessPrivileged
)

func (access Access) Allowed() bool {
	return access != AccessDenied
}

// IdentityAccess grants only the owning user.
func IdentityAccess(identity models.Identity, found bool, userID uint) Access {
	if !found || identity.UserID != userID {
		return AccessDenied
	}
	return AccessOwner
}

// HabitAccess grants the owner; public habits are readable by anyone when
// allowPublic is set (narrow reads pass false).
func HabitAccess(habit models.Habit, found bool, userID uint, allowPublic bool) Access {
	if !found {
		return AccessDenied
	}
	if habit.UserID == userID {
		return AccessOwner
	}
	if allowPublic && habit.IsPublic {
		return AccessPrivileged
	}
	return AccessDenied
}

// CompletionAccess grants only the user the completion was recorded for.
func CompletionAccess(completion models.Completion, found bool, userID uint) Access {
	if !found || completion.UserID != userID {
		return AccessDenied
	}
	return AccessOwner
}

// SquadAccess classifies a user against a squad: the stored owner_id wins,
// then an active admin membership counts as privileged. Inactive
// memberships confer nothing.
func SquadAccess(squad models.Squad, found bool, membership models.SquadMember, hasMembership bool, userID uint) Access {
	if !found {
		return AccessDenied
	}
	if squad.OwnerID == userID {
		return AccessOwner
	}
	if hasMembership && membership.IsActive &&
		(membership.Role == models.RoleOwner || membership.Role == models.RoleAdmin) {
		return AccessPrivileged
	}
	return AccessDenied
}

// IsActiveMember reports plain active membership, the bar for reading a
// non-public squad.
func IsActiveMember(membership models.SquadMember, hasMembership bool) bool {
	return hasMembership && membership.IsActive
}
