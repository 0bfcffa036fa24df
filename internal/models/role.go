package models

import "fmt"

type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleSupervisor   Role = "Supervisor"
	RoleCoordinator  Role = "Coordinator"
	RoleCollaborator Role = "Collaborator"
)

// BaselineRole is the assignee role every auto-provisioned user receives.
const BaselineRole = RoleCollaborator

// roleRank orders roles from most to least privileged.
var roleRank = map[Role]int{
	RoleAdmin:        40,
	RoleSupervisor:   30,
	RoleCoordinator:  20,
	RoleCollaborator: 10,
}

// Roles lists the known roles by descending rank.
func Roles() []Role {
	return []Role{RoleAdmin, RoleSupervisor, RoleCoordinator, RoleCollaborator}
}

// ParseRole returns the Role named by s.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank is zero for unknown roles.
func (r Role) Rank() int {
	return roleRank[r]
}

// IsElevated reports whether r has board-wide mutation rights.
func (r Role) IsElevated() bool {
	return r.Rank() > roleRank[BaselineRole]
}
