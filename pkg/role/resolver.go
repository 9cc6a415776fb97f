package role

import (
	"log/slog"
	"strconv"

	"github.com/genera-edu/rbac/pkg/config"
)

// HighestRole returns the most privileged role type among the active
// assignments, under PrivilegeOrder. Inactive assignments never contribute.
func HighestRole(assignments []RoleAssignment) (RoleType, bool) {
	held := make(map[RoleType]bool, len(assignments))
	for _, a := range assignments {
		if a.IsActive {
			held[a.RoleType] = true
		}
	}
	for _, rt := range PrivilegeOrder {
		if held[rt] {
			return rt, true
		}
	}
	return "", false
}

// ResolveCapabilities turns a user's active assignments, plus an optional
// legacy single-role fallback, into one capability set.
//
// A legacy admin value dominates regardless of any other assignments present.
// Otherwise the single most privileged active role wins; capabilities are
// never unioned across simultaneously held roles. With no assignments at all
// the participant defaults apply.
func ResolveCapabilities(assignments []RoleAssignment, legacyRole string) CapabilitySet {
	if legacyRole == string(RoleAdmin) {
		return catalog[RoleAdmin]
	}

	rt, ok := HighestRole(assignments)
	if !ok {
		if legacyRole != "" {
			if set, found := catalog[RoleType(legacyRole)]; found {
				return set
			}
		}
		return catalog[RoleParticipant]
	}

	set, err := Capabilities(rt)
	if err != nil {
		// A role type outside the catalog is a configuration error. Surface
		// it immediately in development; in production degrade to the most
		// restrictive defaults rather than granting access.
		if config.IsDevelopment() {
			panic(err)
		}
		slog.Error("capability lookup for unknown role type, using participant defaults", "role_type", rt, "err", err)
		return catalog[RoleParticipant]
	}
	return set
}

// HasCapability reports whether any active assignment's role grants the
// capability selected by pick.
func HasCapability(assignments []RoleAssignment, pick func(CapabilitySet) bool) bool {
	for _, a := range assignments {
		if !a.IsActive {
			continue
		}
		set, ok := catalog[a.RoleType]
		if !ok {
			continue
		}
		if pick(set) {
			return true
		}
	}
	return false
}

// DataScope is the visibility filter derived from a user's highest role:
// the level plus, for scoped levels, the identifier of the subtree.
type DataScope struct {
	Level     ScopeLevel `json:"level"`
	ContextID string     `json:"context_id,omitempty"`
}

// DataScopeFor computes the report-filtering scope from active assignments.
// The highest privilege role decides the level; its assignment supplies the
// scope identifier in normalized string form.
func DataScopeFor(assignments []RoleAssignment) DataScope {
	rt, ok := HighestRole(assignments)
	if !ok {
		return DataScope{Level: ScopeIndividual}
	}

	var picked *RoleAssignment
	for i := range assignments {
		if assignments[i].IsActive && assignments[i].RoleType == rt {
			picked = &assignments[i]
			break
		}
	}
	if picked == nil {
		return DataScope{Level: ScopeIndividual}
	}

	set := catalog[rt]
	switch set.ReportingScope {
	case ScopeGlobal:
		return DataScope{Level: ScopeGlobal}
	case ScopeNetwork:
		if picked.NetworkID != nil {
			return DataScope{Level: ScopeNetwork, ContextID: picked.NetworkID.String()}
		}
		return DataScope{Level: ScopeNetwork}
	case ScopeSchool:
		if picked.SchoolID != nil {
			return DataScope{Level: ScopeSchool, ContextID: strconv.FormatInt(*picked.SchoolID, 10)}
		}
		return DataScope{Level: ScopeSchool}
	case ScopeGeneration:
		if picked.GenerationID != nil {
			return DataScope{Level: ScopeGeneration, ContextID: picked.GenerationID.String()}
		}
		return DataScope{Level: ScopeGeneration}
	case ScopeCommunity:
		if picked.CommunityID != nil {
			return DataScope{Level: ScopeCommunity, ContextID: picked.CommunityID.String()}
		}
		return DataScope{Level: ScopeCommunity}
	default:
		return DataScope{Level: ScopeIndividual}
	}
}
