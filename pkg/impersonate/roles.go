package impersonate

import "github.com/genera-edu/rbac/pkg/role"

// impersonableRoles is the fixed set offered in the developer role picker.
// Network supervisor and community manager sessions are created by assigning
// the real role instead, so they are not listed here.
var impersonableRoles = []role.RoleType{
	role.RoleAdmin,
	role.RoleConsultant,
	role.RoleSchoolLeadership,
	role.RoleGenerationLeader,
	role.RoleCommunityLeader,
	role.RoleParticipant,
}

// IsImpersonable reports whether the role can be picked for impersonation
func IsImpersonable(rt role.RoleType) bool {
	for _, r := range impersonableRoles {
		if r == rt {
			return true
		}
	}
	return false
}

// AvailableRoles returns the static impersonable-role catalog with display
// metadata and the scope each role needs before a session can start.
func AvailableRoles() []ImpersonableRole {
	catalog := make([]ImpersonableRole, 0, len(impersonableRoles))
	for _, rt := range impersonableRoles {
		req, err := role.RequirementsFor(rt)
		if err != nil {
			continue
		}
		catalog = append(catalog, ImpersonableRole{
			Role:           rt,
			Name:           role.Names[rt],
			Description:    role.Descriptions[rt],
			RequiresSchool: req.RequiresSchool,
			AllowsGlobal:   req.AllowsGlobal,
		})
	}
	return catalog
}
