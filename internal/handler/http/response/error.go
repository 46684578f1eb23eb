package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/validator"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// First match wins.
var errorMappings = []errorMapping{
	{auth.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token expired"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token"},

	{user.ErrManagerAccessRequired, http.StatusForbidden, "FORBIDDEN", "Manager access required"},
	{user.ErrCompanyIDRequired, http.StatusForbidden, "FORBIDDEN", "Company membership required"},

	{employee.ErrEmployeeNotFound, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "Employee not found"},
	{employee.ErrEmployeeInactive, http.StatusConflict, "EMPLOYEE_INACTIVE", "Employee is not active"},

	{compensation.ErrSelfApprovalDenied, http.StatusForbidden, "SELF_APPROVAL_DENIED", "You cannot change your own salary structure"},
	{compensation.ErrPermissionDenied, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions for salary structures"},
	{compensation.ErrStructureNotFound, http.StatusNotFound, "STRUCTURE_NOT_FOUND", "Salary structure not found"},
	{compensation.ErrStructureAlreadyExists, http.StatusConflict, "STRUCTURE_EXISTS", "Salary structure already exists for this employee"},
	{compensation.ErrStaleStructure, http.StatusConflict, "STALE_STRUCTURE", "Salary structure was modified by another request, reload and retry"},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		Fail(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", validationErrs.ToMap())
		return
	}

	var overAllocated *compensation.OverAllocatedError
	if errors.As(err, &overAllocated) {
		Fail(w, http.StatusUnprocessableEntity, "OVER_ALLOCATED", "Salary components exceed the monthly wage",
			map[string]string{"shortfall": overAllocated.Shortfall.StringFixed(2)})
		return
	}

	// Missing claims name the claim, so the message is the error itself.
	if errors.Is(err, auth.ErrMissingClaim) {
		Fail(w, http.StatusUnauthorized, "MISSING_CLAIM", err.Error(), nil)
		return
	}
	if errors.Is(err, compensation.ErrInvalidMagnitude) || errors.Is(err, compensation.ErrUnknownMode) {
		BadRequest(w, err.Error(), nil)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			Fail(w, m.status, m.code, m.message, nil)
			return
		}
	}
	Fail(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred", nil)
}
