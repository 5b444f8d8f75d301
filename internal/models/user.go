package models

// Role is the fixed set of dashboard roles a user can hold.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleProductionWorker Role = "production_worker"
	RoleTestPersonnel    Role = "test_personnel"
	RoleQualityInspector Role = "quality_inspector"
	RoleSupervisor       Role = "supervisor"
	RolePlanningEngineer Role = "planning_engineer"
)

// AllRoles lists every role in display order
var AllRoles = []Role{
	RoleAdmin,
	RolePlanningEngineer,
	RoleSupervisor,
	RoleProductionWorker,
	RoleTestPersonnel,
	RoleQualityInspector,
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsTechnician reports whether the role works on the shop floor
func (r Role) IsTechnician() bool {
	return r == RoleProductionWorker || r == RoleTestPersonnel || r == RoleQualityInspector
}

// User represents a dashboard user
// Convention: backend snake_case row -> Go PascalCase -> JSON camelCase
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
}

// UserInput carries the fields of a create or update user request.
// Empty Password on update keeps the existing one.
type UserInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
}
