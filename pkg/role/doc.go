// Package role provides the role catalog and role assignment store for the
// RBAC core.
//
// This package manages the fixed eight-role hierarchy, the static capability
// catalog per role type, and user-role assignments with support for
// PostgreSQL and alternative storage backends through repository interfaces.
//
// # Overview
//
// The role package provides:
//   - The fixed role-type enumeration and its total privilege order
//   - The static capability catalog (course/user/org management flags plus
//     reporting and feedback scopes)
//   - Capability resolution: most-privileged-role-wins with a legacy
//     single-role fallback where a legacy admin always dominates
//   - Role assignment lifecycle with organizational-scope validation
//   - Repository pattern for database abstraction
//
// # Basic Usage
//
//	import "github.com/genera-edu/rbac/pkg/role"
//
//	// Create service
//	repo := role.NewPostgresAssignmentRepository(pool)
//	service := role.NewAssignmentService(repo)
//
//	// Assign a role (assigner must be a global admin)
//	schoolID := int64(42)
//	assignment, err := service.AssignRole(ctx, userID, role.RoleConsultant,
//		role.OrganizationalScope{SchoolID: &schoolID}, adminID)
//
//	// Resolve capabilities
//	caps, err := service.CapabilitiesForUser(ctx, userID, "")
//	if caps.CanAssignCourses {
//		// ...
//	}
//
// # Capability Resolution
//
// ResolveCapabilities is a pure function of its inputs. A legacy fallback
// equal to the admin role returns the admin capability set verbatim no matter
// what else is held. Otherwise the single highest-privilege active role under
// PrivilegeOrder decides the whole set; capabilities of simultaneously held
// roles are never unioned. No assignments at all yields participant defaults.
//
// An unknown role type panics in development and degrades to participant
// defaults in production (see pkg/config.IsDevelopment).
package role
