package compensation

import (
	"context"

	"github.com/shopspring/decimal"
)

// CompensationService defines business logic for salary structures.
// Company and actor come from the JWT claims in ctx.
type CompensationService interface {
	// GetStructure returns the stored configuration with its resolved view.
	GetStructure(ctx context.Context, employeeID string) (StructureResponse, error)

	// PreviewStructure merges req over the stored configuration and resolves
	// it without persisting. Over-allocation is reported, not rejected.
	PreviewStructure(ctx context.Context, req UpdateStructureRequest) (PreviewResponse, error)

	// PreviewDraft resolves a complete configuration that is not stored anywhere.
	PreviewDraft(ctx context.Context, req ConfigurationPayload) (PreviewResponse, error)

	// UpdateStructure commits a change (manage permission, never on self).
	UpdateStructure(ctx context.Context, req UpdateStructureRequest) (StructureResponse, error)

	InitializeStructure(ctx context.Context, req InitializeStructureRequest) (StructureResponse, error)
	DeleteStructure(ctx context.Context, employeeID string) error
	ListStructures(ctx context.Context, filter StructureFilter) (ListStructureResponse, error)

	// ExportSalarySlip renders the resolved structure as a PDF.
	ExportSalarySlip(ctx context.Context, employeeID string) ([]byte, error)

	// Event variants run without a JWT; the producer is trusted.
	InitializeFromEvent(ctx context.Context, companyID, employeeID string, monthlyWage *decimal.Decimal) error
	DeleteFromEvent(ctx context.Context, companyID, employeeID string) error
}
