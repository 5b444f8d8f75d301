// Package access decides which dashboard a user may open.
package access

import "github.com/xelth-com/mfgtrack/internal/models"

// LoginPath is where anonymous visitors are sent
const LoginPath = "/login"

// Decision is the outcome of a role check. Redirect is empty when Allowed.
type Decision struct {
	Allowed  bool
	Redirect string
}

// RequireRole allows user when its role is one of permitted.
// No user goes to the login page, a wrong role goes back to its own dashboard.
func RequireRole(user *models.User, permitted ...models.Role) Decision {
	if user == nil {
		return Decision{Redirect: LoginPath}
	}
	for _, r := range permitted {
		if user.Role == r {
			return Decision{Allowed: true}
		}
	}
	return Decision{Redirect: HomePath(user.Role)}
}

// HomePath is the dashboard a role lands on after login
func HomePath(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/admin"
	case models.RolePlanningEngineer:
		return "/planning"
	case models.RoleSupervisor:
		return "/supervisor"
	case models.RoleProductionWorker, models.RoleTestPersonnel, models.RoleQualityInspector:
		return "/technician"
	}
	return LoginPath
}
