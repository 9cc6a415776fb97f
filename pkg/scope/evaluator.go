package scope

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/genera-edu/rbac/pkg/role"
)

// ScopedAccess describes the organizational reach of one role type for a
// principal: either platform-wide, or limited to a set of scope identifiers
// in normalized string form.
type ScopedAccess struct {
	Global   bool                `json:"global"`
	ScopeIDs map[string]struct{} `json:"scope_ids"`
}

// Contains reports whether the normalized id is within the scoped set.
func (s ScopedAccess) Contains(id string) bool {
	_, ok := s.ScopeIDs[id]
	return ok
}

// NormalizeID converts a scope identifier to its canonical string form.
// Identifiers arrive as integers from relational columns and as strings or
// UUIDs from request payloads; equality checks across the two forms must go
// through this normalization. Returns false for nil, empty or nil-UUID values.
func NormalizeID(v any) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return id, id != ""
	case int:
		return strconv.Itoa(id), true
	case int32:
		return strconv.FormatInt(int64(id), 10), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case uint64:
		return strconv.FormatUint(id, 10), true
	case uuid.UUID:
		if id == uuid.Nil {
			return "", false
		}
		return id.String(), true
	case *int64:
		if id == nil {
			return "", false
		}
		return strconv.FormatInt(*id, 10), true
	case *uuid.UUID:
		if id == nil || *id == uuid.Nil {
			return "", false
		}
		return id.String(), true
	case fmt.Stringer:
		s := id.String()
		return s, s != ""
	default:
		return fmt.Sprintf("%v", id), true
	}
}

// levelFor maps a role type to the organizational level its assignments are
// scoped at.
func levelFor(rt role.RoleType) role.ScopeLevel {
	switch rt {
	case role.RoleAdmin:
		return role.ScopeGlobal
	case role.RoleConsultant, role.RoleSchoolLeadership:
		return role.ScopeSchool
	case role.RoleGenerationLeader:
		return role.ScopeGeneration
	case role.RoleCommunityLeader, role.RoleCommunityManager, role.RoleParticipant:
		return role.ScopeCommunity
	case role.RoleNetworkSupervisor:
		return role.ScopeNetwork
	default:
		return role.ScopeIndividual
	}
}

// assignmentScopeID extracts the normalized scope identifier of an assignment
// at the given level.
func assignmentScopeID(a role.RoleAssignment, level role.ScopeLevel) (string, bool) {
	switch level {
	case role.ScopeSchool:
		return NormalizeID(a.SchoolID)
	case role.ScopeGeneration:
		return NormalizeID(a.GenerationID)
	case role.ScopeCommunity:
		return NormalizeID(a.CommunityID)
	case role.ScopeNetwork:
		return NormalizeID(a.NetworkID)
	default:
		return "", false
	}
}

// ForRole scans the active assignments of the given role type and reduces
// them to a ScopedAccess.
//
// A single assignment with a missing scope at the role's level makes the
// whole role global when the role supports platform-wide reach, no matter how
// many scoped assignments coexist, and the scoped-id set is then empty.
// Inactive assignments never contribute.
func ForRole(rt role.RoleType, assignments []role.RoleAssignment) ScopedAccess {
	access := ScopedAccess{ScopeIDs: make(map[string]struct{})}

	if rt == role.RoleAdmin {
		for _, a := range assignments {
			if a.IsActive && a.RoleType == role.RoleAdmin {
				return ScopedAccess{Global: true, ScopeIDs: make(map[string]struct{})}
			}
		}
		return access
	}

	level := levelFor(rt)
	req, err := role.RequirementsFor(rt)
	if err != nil {
		return access
	}

	for _, a := range assignments {
		if !a.IsActive || a.RoleType != rt {
			continue
		}
		id, ok := assignmentScopeID(a, level)
		if !ok {
			if req.AllowsGlobal {
				return ScopedAccess{Global: true, ScopeIDs: make(map[string]struct{})}
			}
			continue
		}
		access.ScopeIDs[id] = struct{}{}
	}

	return access
}

// Target carries the scope identifiers of the entity an access decision is
// about. Fields accept whatever representation the caller has on hand
// (integer column value, string, UUID); normalization happens inside the
// evaluator.
type Target struct {
	SchoolID     any
	GenerationID any
	CommunityID  any
	NetworkID    any
}

// AccessContext is the full input to one object-level access decision.
type AccessContext struct {
	// Role is the principal's effective role for this decision
	Role role.RoleType
	// Assignments are the principal's active role assignments
	Assignments []role.RoleAssignment
	// Target identifies the entity being accessed
	Target Target
	// PrincipalID is the user the decision is about
	PrincipalID uuid.UUID
	// OwnerOrFacilitator marks target-level ownership (e.g. the principal is
	// the target's designated facilitator)
	OwnerOrFacilitator bool
}

// targetScopeID extracts the target identifier at the given level.
func targetScopeID(t Target, level role.ScopeLevel) (string, bool) {
	switch level {
	case role.ScopeSchool:
		return NormalizeID(t.SchoolID)
	case role.ScopeGeneration:
		return NormalizeID(t.GenerationID)
	case role.ScopeCommunity:
		return NormalizeID(t.CommunityID)
	case role.ScopeNetwork:
		return NormalizeID(t.NetworkID)
	default:
		return "", false
	}
}

// Evaluate decides whether the principal may act on the target. The policy is
// default-deny with allow rules evaluated in order:
//
//  1. The admin role is allowed.
//  2. A role that is global for its type is allowed.
//  3. A scoped role is allowed iff the target's corresponding scope id is in
//     the role's scoped-id set.
//  4. Target-level ownership, or membership in the target's community, is
//     allowed even when rules 1-3 deny.
//  5. Everything else is denied.
func Evaluate(ctx AccessContext) bool {
	if ctx.Role == role.RoleAdmin {
		return true
	}

	access := ForRole(ctx.Role, ctx.Assignments)
	if access.Global {
		return true
	}

	if id, ok := targetScopeID(ctx.Target, levelFor(ctx.Role)); ok && access.Contains(id) {
		return true
	}

	if ctx.OwnerOrFacilitator {
		return true
	}

	// Membership override: the principal belongs to the target's community
	// through any of their active assignments.
	if communityID, ok := NormalizeID(ctx.Target.CommunityID); ok {
		for _, a := range ctx.Assignments {
			if !a.IsActive {
				continue
			}
			if id, ok := NormalizeID(a.CommunityID); ok && id == communityID {
				return true
			}
		}
	}

	return false
}
