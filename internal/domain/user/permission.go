package user

type Permission string

const (
	// PermissionCompensationView covers every structure in the company.
	// Employees always see their own structure without it.
	PermissionCompensationView   Permission = "compensation.view"
	PermissionCompensationManage Permission = "compensation.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionCompensationView,
		PermissionCompensationManage,
	},
	RoleManager: {
		// Manager can review structures but not commit them
		PermissionCompensationView,
	},
	RoleEmployee: {},
	RolePending: {
		// Pending role has no permissions
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
