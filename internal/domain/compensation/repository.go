package compensation

import "context"

// StructureRepository stores salary structure configurations.
// All methods are scoped by companyID.
type StructureRepository interface {
	GetByEmployeeID(ctx context.Context, employeeID string, companyID string) (Structure, error)
	// GetByEmployeeIDForUpdate locks the row until the surrounding transaction ends.
	GetByEmployeeIDForUpdate(ctx context.Context, employeeID string, companyID string) (Structure, error)
	Create(ctx context.Context, structure Structure) (Structure, error)
	// Update writes the configuration if the stored version still equals
	// structure.Version and returns the row with the bumped version.
	Update(ctx context.Context, structure Structure) (Structure, error)
	DeleteByEmployeeID(ctx context.Context, employeeID string, companyID string) error
	List(ctx context.Context, companyID string, filter StructureFilter) ([]Structure, error)
	Count(ctx context.Context, companyID string, filter StructureFilter) (int64, error)
	// ListAll returns every structure of the company, for overview totals.
	ListAll(ctx context.Context, companyID string) ([]Structure, error)
}

// Transactor runs fn inside a single database transaction. Repository calls
// made with the ctx passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
