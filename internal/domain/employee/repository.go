package employee

import "context"

type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when the employee does not exist
	// in companyID.
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
}
