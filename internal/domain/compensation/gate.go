package compensation

import "github.com/shopspring/decimal"

// DefaultTolerance absorbs rounding noise when judging the residual.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Gate classifies resolved structures. It never blocks a calculation; callers
// decide whether an OVER_ALLOCATED result stops a commit.
type Gate struct {
	Tolerance decimal.Decimal
}

func NewGate(tolerance decimal.Decimal) Gate {
	if tolerance.IsNegative() {
		tolerance = tolerance.Neg()
	}
	return Gate{Tolerance: tolerance}
}

// Validate reports OVER_ALLOCATED iff FixedAllowance < -Tolerance.
func (g Gate) Validate(resolved ResolvedStructure) ValidationResult {
	if resolved.FixedAllowance.LessThan(g.Tolerance.Neg()) {
		return ValidationResult{
			Status:    StatusOverAllocated,
			Shortfall: resolved.FixedAllowance.Neg(),
		}
	}
	return ValidationResult{Status: StatusFeasible, Shortfall: decimal.Zero}
}

// Validate runs the gate with DefaultTolerance.
func Validate(resolved ResolvedStructure) ValidationResult {
	return NewGate(DefaultTolerance).Validate(resolved)
}
