package role

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RoleType identifies one of the platform's fixed roles.
type RoleType string

const (
	// RoleAdmin is platform staff with full control (global admin)
	RoleAdmin RoleType = "admin"
	// RoleConsultant is an instructor assigned to specific schools, or globally
	RoleConsultant RoleType = "consultant"
	// RoleSchoolLeadership is a school-level administrator
	RoleSchoolLeadership RoleType = "school_leadership"
	// RoleGenerationLeader leads one generation within a school
	RoleGenerationLeader RoleType = "generation_leader"
	// RoleCommunityLeader leads a growth community
	RoleCommunityLeader RoleType = "community_leader"
	// RoleNetworkSupervisor has reporting access over a network of schools
	RoleNetworkSupervisor RoleType = "network_supervisor"
	// RoleCommunityManager manages content and reports
	RoleCommunityManager RoleType = "community_manager"
	// RoleParticipant is a regular course participant
	RoleParticipant RoleType = "participant"
)

var (
	ErrUnknownRoleType = errors.New("unknown role type")
	ErrMissingScope    = errors.New("role requires an organizational scope")
	ErrNotAuthorized   = errors.New("only administrators can manage role assignments")
)

// PrivilegeOrder is the total order over role types, highest privilege first.
// Capability resolution and data-scope computation pick the first held role
// in this order.
var PrivilegeOrder = []RoleType{
	RoleAdmin,
	RoleConsultant,
	RoleSchoolLeadership,
	RoleGenerationLeader,
	RoleCommunityLeader,
	RoleNetworkSupervisor,
	RoleCommunityManager,
	RoleParticipant,
}

// Known reports whether rt is one of the fixed role types.
func Known(rt RoleType) bool {
	_, ok := catalog[rt]
	return ok
}

// ScopeLevel is the breadth of reporting or feedback visibility a role grants.
type ScopeLevel string

const (
	ScopeGlobal     ScopeLevel = "global"
	ScopeNetwork    ScopeLevel = "network"
	ScopeSchool     ScopeLevel = "school"
	ScopeGeneration ScopeLevel = "generation"
	ScopeCommunity  ScopeLevel = "community"
	ScopeIndividual ScopeLevel = "individual"
)

// CapabilitySet is the static catalog entry for one role type.
type CapabilitySet struct {
	// Course management
	CanCreateCourses  bool `json:"can_create_courses"`
	CanEditAllCourses bool `json:"can_edit_all_courses"`
	CanDeleteCourses  bool `json:"can_delete_courses"`
	CanAssignCourses  bool `json:"can_assign_courses"`

	// User management
	CanCreateUsers bool `json:"can_create_users"`
	CanEditUsers   bool `json:"can_edit_users"`
	CanDeleteUsers bool `json:"can_delete_users"`
	CanAssignRoles bool `json:"can_assign_roles"`

	// Organizational management
	CanManageSchools     bool `json:"can_manage_schools"`
	CanManageGenerations bool `json:"can_manage_generations"`
	CanManageCommunities bool `json:"can_manage_communities"`

	// Reporting and analytics
	ReportingScope ScopeLevel `json:"reporting_scope"`
	FeedbackScope  ScopeLevel `json:"feedback_scope"`
}

// catalog holds the static capability set per role type. Configuration data,
// not computed.
var catalog = map[RoleType]CapabilitySet{
	RoleAdmin: {
		CanCreateCourses:     true,
		CanEditAllCourses:    true,
		CanDeleteCourses:     true,
		CanAssignCourses:     true,
		CanCreateUsers:       true,
		CanEditUsers:         true,
		CanDeleteUsers:       true,
		CanAssignRoles:       true,
		CanManageSchools:     true,
		CanManageGenerations: true,
		CanManageCommunities: true,
		ReportingScope:       ScopeGlobal,
		FeedbackScope:        ScopeGlobal,
	},
	RoleConsultant: {
		CanAssignCourses: true,
		ReportingScope:   ScopeSchool,
		FeedbackScope:    ScopeSchool,
	},
	RoleSchoolLeadership: {
		ReportingScope: ScopeSchool,
		FeedbackScope:  ScopeSchool,
	},
	RoleGenerationLeader: {
		ReportingScope: ScopeGeneration,
		FeedbackScope:  ScopeGeneration,
	},
	RoleCommunityLeader: {
		ReportingScope: ScopeCommunity,
		FeedbackScope:  ScopeCommunity,
	},
	RoleNetworkSupervisor: {
		ReportingScope: ScopeNetwork,
		FeedbackScope:  ScopeNetwork,
	},
	RoleCommunityManager: {
		ReportingScope: ScopeIndividual,
		FeedbackScope:  ScopeIndividual,
	},
	RoleParticipant: {
		ReportingScope: ScopeIndividual,
		FeedbackScope:  ScopeIndividual,
	},
}

// Capabilities returns the static capability set for a role type.
func Capabilities(rt RoleType) (CapabilitySet, error) {
	set, ok := catalog[rt]
	if !ok {
		return catalog[RoleParticipant], fmt.Errorf("%w: %q", ErrUnknownRoleType, rt)
	}
	return set, nil
}

// Names holds the display name per role type.
var Names = map[RoleType]string{
	RoleAdmin:             "Global Administrator",
	RoleConsultant:        "Consultant",
	RoleSchoolLeadership:  "School Leadership",
	RoleGenerationLeader:  "Generation Leader",
	RoleCommunityLeader:   "Community Leader",
	RoleNetworkSupervisor: "Network Supervisor",
	RoleCommunityManager:  "Community Manager",
	RoleParticipant:       "Participant",
}

// Descriptions holds the display description per role type.
var Descriptions = map[RoleType]string{
	RoleAdmin:             "Platform staff with full control of the platform",
	RoleConsultant:        "Instructor assigned to specific schools, or platform-wide",
	RoleSchoolLeadership:  "School-level administration",
	RoleGenerationLeader:  "Leader of one generation within a school",
	RoleCommunityLeader:   "Leader of a growth community",
	RoleNetworkSupervisor: "Reporting access limited to one network of schools",
	RoleCommunityManager:  "Access to content, dashboards and reports",
	RoleParticipant:       "Regular course participant",
}

// Requirements describes the organizational scope a role assignment must carry.
type Requirements struct {
	RequiresSchool bool
	// AllowsGlobal marks roles where a missing scope means platform-wide
	// reach rather than an invalid assignment.
	AllowsGlobal bool
	Description  string
}

var requirements = map[RoleType]Requirements{
	RoleAdmin:             {AllowsGlobal: true, Description: "Global role - no organizational scope required"},
	RoleConsultant:        {AllowsGlobal: true, Description: "Assigned to specific schools; no school means platform-wide"},
	RoleSchoolLeadership:  {RequiresSchool: true, Description: "Must be assigned to a specific school"},
	RoleGenerationLeader:  {RequiresSchool: true, Description: "Must be assigned to a school and generation"},
	RoleCommunityLeader:   {RequiresSchool: true, Description: "Must be assigned to a school (community auto-created)"},
	RoleNetworkSupervisor: {AllowsGlobal: true, Description: "Network-level role - no specific school required"},
	RoleCommunityManager:  {Description: "Content management role - no organizational scope required"},
	RoleParticipant:       {RequiresSchool: true, Description: "Must be assigned to a specific school"},
}

// RequirementsFor returns the organizational requirements for a role type.
func RequirementsFor(rt RoleType) (Requirements, error) {
	req, ok := requirements[rt]
	if !ok {
		return Requirements{}, fmt.Errorf("%w: %q", ErrUnknownRoleType, rt)
	}
	return req, nil
}

// OrganizationalScope carries the scope identifiers for a role assignment.
type OrganizationalScope struct {
	SchoolID     *int64
	GenerationID *uuid.UUID
	CommunityID  *uuid.UUID
	NetworkID    *uuid.UUID
}

// ValidateAssignment checks that the organizational scope satisfies the
// role's requirements.
func ValidateAssignment(rt RoleType, scope OrganizationalScope) error {
	req, err := RequirementsFor(rt)
	if err != nil {
		return err
	}
	if req.RequiresSchool && scope.SchoolID == nil {
		return fmt.Errorf("%w: %s requires a school", ErrMissingScope, Names[rt])
	}
	return nil
}
