package rbac

// Permissions.
const (
	PermissionCommentCreate    = "comment:create"
	PermissionCommentDeleteAny = "comment:delete_any"
	PermissionEntityWrite      = "entity:write"
	PermissionEntityDelete     = "entity:delete"
	PermissionGroupManage      = "group:manage"
	PermissionOutboxReplay     = "outbox:replay"
)

// Roles.
const (
	RoleMember  = "member"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

var rolePermissions = map[string][]string{
	RoleMember: {
		PermissionCommentCreate,
		PermissionEntityWrite,
	},
	RoleManager: {
		PermissionCommentCreate,
		PermissionEntityWrite,
		PermissionEntityDelete,
		PermissionGroupManage,
	},
	RoleAdmin: {
		PermissionCommentCreate,
		PermissionCommentDeleteAny,
		PermissionEntityWrite,
		PermissionEntityDelete,
		PermissionGroupManage,
		PermissionOutboxReplay,
	},
}

// Normalize maps unknown role strings to RoleMember.
func Normalize(role string) string {
	if _, ok := rolePermissions[role]; ok {
		return role
	}
	return RoleMember
}

// HasPermission reports whether role grants permission.
func HasPermission(role, permission string) bool {
	for _, p := range rolePermissions[Normalize(role)] {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission is HasPermission returning a *PermissionDeniedError.
func CheckPermission(role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{Role: role, Permission: permission}
	}
	return nil
}

// PermissionDeniedError reports a missing permission.
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
