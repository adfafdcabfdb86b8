package user

type Permission string

const (
	// Attendance
	PermissionAttendanceRecord  Permission = "attendance.record"
	PermissionAttendanceViewAll Permission = "attendance.view_all"

	// Payroll
	PermissionPayrollView      Permission = "payroll.view"
	PermissionPayrollManage    Permission = "payroll.manage"
	PermissionPayrollApprove   Permission = "payroll.approve"
	PermissionPayrollPay       Permission = "payroll.pay"
	PermissionPayrollConfigure Permission = "payroll.configure"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleHR: {
		// HR has all permissions
		PermissionAttendanceRecord,
		PermissionAttendanceViewAll,
		PermissionPayrollView,
		PermissionPayrollManage,
		PermissionPayrollApprove,
		PermissionPayrollPay,
		PermissionPayrollConfigure,
	},
	RoleApprover: {
		PermissionAttendanceViewAll,
		PermissionPayrollView,
		PermissionPayrollApprove,
	},
	RoleKiosk: {
		PermissionAttendanceRecord,
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
