package role

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func activeAssignment(rt RoleType) RoleAssignment {
	return RoleAssignment{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		RoleType:   rt,
		IsActive:   true,
		AssignedAt: time.Now(),
	}
}

func TestHighestRole(t *testing.T) {
	t.Run("picks most privileged active role", func(t *testing.T) {
		assignments := []RoleAssignment{
			activeAssignment(RoleParticipant),
			activeAssignment(RoleConsultant),
			activeAssignment(RoleCommunityLeader),
		}

		rt, ok := HighestRole(assignments)
		assert.True(t, ok)
		assert.Equal(t, RoleConsultant, rt)
	})

	t.Run("ignores inactive assignments", func(t *testing.T) {
		admin := activeAssignment(RoleAdmin)
		admin.IsActive = false
		assignments := []RoleAssignment{
			admin,
			activeAssignment(RoleParticipant),
		}

		rt, ok := HighestRole(assignments)
		assert.True(t, ok)
		assert.Equal(t, RoleParticipant, rt)
	})

	t.Run("no active assignments", func(t *testing.T) {
		_, ok := HighestRole(nil)
		assert.False(t, ok)
	})
}

func TestResolveCapabilities(t *testing.T) {
	t.Run("legacy admin dominates everything", func(t *testing.T) {
		assignments := []RoleAssignment{activeAssignment(RoleParticipant)}

		caps := ResolveCapabilities(assignments, "admin")
		assert.True(t, caps.CanDeleteUsers)
		assert.True(t, caps.CanManageSchools)
		assert.Equal(t, ScopeGlobal, caps.ReportingScope)
	})

	t.Run("highest role wins, no union", func(t *testing.T) {
		// school_leadership outranks community_leader; the resolved set
		// must be exactly the school_leadership one.
		assignments := []RoleAssignment{
			activeAssignment(RoleCommunityLeader),
			activeAssignment(RoleSchoolLeadership),
		}

		caps := ResolveCapabilities(assignments, "")
		assert.Equal(t, ScopeSchool, caps.ReportingScope)
		assert.False(t, caps.CanAssignCourses)
	})

	t.Run("consultant grants course assignment", func(t *testing.T) {
		caps := ResolveCapabilities([]RoleAssignment{activeAssignment(RoleConsultant)}, "")
		assert.True(t, caps.CanAssignCourses)
		assert.False(t, caps.CanCreateCourses)
		assert.Equal(t, ScopeSchool, caps.ReportingScope)
	})

	t.Run("no assignments falls back to legacy role", func(t *testing.T) {
		caps := ResolveCapabilities(nil, string(RoleConsultant))
		assert.True(t, caps.CanAssignCourses)
	})

	t.Run("nothing at all yields participant defaults", func(t *testing.T) {
		caps := ResolveCapabilities(nil, "")
		assert.False(t, caps.CanAssignCourses)
		assert.False(t, caps.CanCreateUsers)
		assert.Equal(t, ScopeIndividual, caps.ReportingScope)
	})
}

func TestHasCapability(t *testing.T) {
	assignments := []RoleAssignment{
		activeAssignment(RoleParticipant),
		activeAssignment(RoleConsultant),
	}

	assert.True(t, HasCapability(assignments, func(c CapabilitySet) bool {
		return c.CanAssignCourses
	}))
	assert.False(t, HasCapability(assignments, func(c CapabilitySet) bool {
		return c.CanDeleteCourses
	}))
}

func TestDataScopeFor(t *testing.T) {
	t.Run("admin is global with no context id", func(t *testing.T) {
		scope := DataScopeFor([]RoleAssignment{activeAssignment(RoleAdmin)})
		assert.Equal(t, ScopeGlobal, scope.Level)
		assert.Empty(t, scope.ContextID)
	})

	t.Run("school scope uses decimal school id", func(t *testing.T) {
		schoolID := int64(123)
		a := activeAssignment(RoleSchoolLeadership)
		a.SchoolID = &schoolID

		scope := DataScopeFor([]RoleAssignment{a})
		assert.Equal(t, ScopeSchool, scope.Level)
		assert.Equal(t, "123", scope.ContextID)
	})

	t.Run("community scope uses the community uuid", func(t *testing.T) {
		communityID := uuid.New()
		a := activeAssignment(RoleCommunityLeader)
		a.CommunityID = &communityID

		scope := DataScopeFor([]RoleAssignment{a})
		assert.Equal(t, ScopeCommunity, scope.Level)
		assert.Equal(t, communityID.String(), scope.ContextID)
	})

	t.Run("no assignments means individual", func(t *testing.T) {
		scope := DataScopeFor(nil)
		assert.Equal(t, ScopeIndividual, scope.Level)
	})
}

func TestValidateAssignment(t *testing.T) {
	t.Run("school leadership requires a school", func(t *testing.T) {
		err := ValidateAssignment(RoleSchoolLeadership, OrganizationalScope{})
		assert.ErrorIs(t, err, ErrMissingScope)
	})

	t.Run("consultant without school is platform wide", func(t *testing.T) {
		err := ValidateAssignment(RoleConsultant, OrganizationalScope{})
		assert.NoError(t, err)
	})

	t.Run("unknown role type", func(t *testing.T) {
		err := ValidateAssignment(RoleType("superuser"), OrganizationalScope{})
		assert.ErrorIs(t, err, ErrUnknownRoleType)
	})
}
