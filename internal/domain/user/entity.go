package user

type Role string

const (
	RoleKiosk    Role = "kiosk"    // Attendance terminal
	RoleHR       Role = "hr"       // HR operator - full access
	RoleApprover Role = "approver" // Department payroll approver
)

func (r Role) IsValid() bool {
	switch r {
	case RoleKiosk, RoleHR, RoleApprover:
		return true
	}
	return false
}

// Principal is the authenticated caller taken from the access token.
type Principal struct {
	UserID string
	Role   Role
}

// Can checks if the principal's role has a specific permission
func (p Principal) Can(permission Permission) bool {
	return HasPermission(p.Role, permission)
}
