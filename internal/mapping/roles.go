// Package mapping translates PHP backend rows and vocabularies into the
// fixed view-model types in internal/models, and back where the backend
// needs its own vocabulary in requests.
//
// Every function here is total: unknown input maps to a documented default
// instead of failing.
package mapping

import (
	"strings"

	"github.com/xelth-com/mfgtrack/internal/models"
)

// backendRoles maps lowercased backend role strings to frontend roles
var backendRoles = map[string]models.Role{
	"admin":             models.RoleAdmin,
	"administrator":     models.RoleAdmin,
	"engineer":          models.RolePlanningEngineer,
	"planning_engineer": models.RolePlanningEngineer,
	"planner":           models.RolePlanningEngineer,
	"supervisor":        models.RoleSupervisor,
	"technician":        models.RoleProductionWorker,
	"production_worker": models.RoleProductionWorker,
	"worker":            models.RoleProductionWorker,
	"test_personnel":    models.RoleTestPersonnel,
	"tester":            models.RoleTestPersonnel,
	"quality_inspector": models.RoleQualityInspector,
	"inspector":         models.RoleQualityInspector,
	"quality":           models.RoleQualityInspector,
}

// frontendRoles maps frontend roles to what the backend can store.
// The backend has no tester or inspector role, so several roles collapse
// onto "technician" and the round trip is lossy.
var frontendRoles = map[models.Role]string{
	models.RoleAdmin:            "engineer",
	models.RolePlanningEngineer: "engineer",
	models.RoleSupervisor:       "supervisor",
	models.RoleProductionWorker: "technician",
	models.RoleTestPersonnel:    "technician",
	models.RoleQualityInspector: "technician",
}

// DefaultBackendRole is sent for roles the backend table does not know
const DefaultBackendRole = "technician"

// AdminUsername always normalizes to the Admin role
const AdminUsername = "admin"

// MapRole converts a backend role string to a frontend role.
// The user named "admin" is always Admin whatever the backend says.
func MapRole(backendRole, username string) models.Role {
	if strings.EqualFold(strings.TrimSpace(username), AdminUsername) {
		return models.RoleAdmin
	}
	if role, ok := backendRoles[strings.ToLower(strings.TrimSpace(backendRole))]; ok {
		return role
	}
	return models.RoleProductionWorker
}

// MapRoleToBackend converts a frontend role to the backend vocabulary
func MapRoleToBackend(role models.Role) string {
	if r, ok := frontendRoles[role]; ok {
		return r
	}
	return DefaultBackendRole
}
