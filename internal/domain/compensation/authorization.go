package compensation

import "github.com/cmlabs-hris/hris-compensation-go/internal/domain/user"

// Authorize checks that actor may commit a structure change for subject.
// Nobody may commit their own structure, even with full management rights.
// Read-only previews do not go through here.
func Authorize(actor Actor, subject Subject) error {
	if IsSelf(actor, subject) {
		return ErrSelfApprovalDenied
	}
	if !user.HasPermission(user.Role(actor.Role), user.PermissionCompensationManage) {
		return ErrPermissionDenied
	}
	return nil
}

// CanView reports whether actor may read the structure of subjectEmployeeID.
func CanView(actor Actor, subjectEmployeeID string) bool {
	if user.HasPermission(user.Role(actor.Role), user.PermissionCompensationView) {
		return true
	}
	return actor.EmployeeID != "" && actor.EmployeeID == subjectEmployeeID
}

// CanPreview reports whether actor may run what-if calculations.
func CanPreview(actor Actor) bool {
	return user.HasPermission(user.Role(actor.Role), user.PermissionCompensationView)
}

// IsSelf matches on either identity so a token without an employee_id claim
// still cannot reach its own record.
func IsSelf(actor Actor, subject Subject) bool {
	if actor.EmployeeID != "" && actor.EmployeeID == subject.EmployeeID {
		return true
	}
	return actor.UserID != "" && actor.UserID == subject.UserID
}
