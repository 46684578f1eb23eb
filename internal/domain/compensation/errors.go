package compensation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrStructureNotFound      = errors.New("salary structure not found")
	ErrStructureAlreadyExists = errors.New("salary structure already exists for this employee")
	ErrStaleStructure         = errors.New("salary structure was modified by another request")
	ErrInvalidMagnitude       = errors.New("invalid component magnitude")
	ErrOverAllocated          = errors.New("salary components exceed the monthly wage")
	ErrSelfApprovalDenied     = errors.New("cannot update your own salary structure")
	ErrPermissionDenied       = errors.New("insufficient permissions to manage salary structures")
	ErrUnknownMode            = errors.New("unknown computation mode")
)

// OverAllocatedError reports how far the configured components exceed the wage.
type OverAllocatedError struct {
	Shortfall decimal.Decimal
}

func (e *OverAllocatedError) Error() string {
	return fmt.Sprintf("%s by %s", ErrOverAllocated.Error(), e.Shortfall.StringFixed(2))
}

func (e *OverAllocatedError) Is(target error) bool {
	return target == ErrOverAllocated
}
