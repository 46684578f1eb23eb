package compensation

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComputationMode selects how a component magnitude is interpreted.
type ComputationMode string

const (
	ModeFixed   ComputationMode = "fixed"
	ModePercent ComputationMode = "percent"
)

func (m ComputationMode) IsValid() bool {
	return m == ModeFixed || m == ModePercent
}

// ComponentName identifies a configurable pay component.
type ComponentName string

const (
	ComponentBasic              ComponentName = "basic"
	ComponentHouseRentAllowance ComponentName = "house_rent_allowance"
	ComponentStandardAllowance  ComponentName = "standard_allowance"
	ComponentPerformanceBonus   ComponentName = "performance_bonus"
	ComponentTravelAllowance    ComponentName = "travel_allowance"
)

// EvaluationOrder is the fixed order in which components are resolved.
// A component may only reference components that appear before it.
var EvaluationOrder = []ComponentName{
	ComponentBasic,
	ComponentHouseRentAllowance,
	ComponentStandardAllowance,
	ComponentPerformanceBonus,
	ComponentTravelAllowance,
}

// BaseReference names the quantity a PERCENT magnitude is applied to.
type BaseReference string

const (
	BaseMonthlyWage   BaseReference = "monthly_wage"
	BaseResolvedBasic BaseReference = "resolved_basic"
)

// BaseReferenceOf returns the base of a component. The mapping is fixed by
// component identity.
func BaseReferenceOf(name ComponentName) BaseReference {
	if name == ComponentHouseRentAllowance {
		return BaseResolvedBasic
	}
	return BaseMonthlyWage
}

// CompensationInput is the wage baseline for one calculation.
type CompensationInput struct {
	MonthlyWage        decimal.Decimal
	WorkingDaysPerWeek int
	BreakTimeHours     decimal.Decimal
}

type ComponentRule struct {
	Mode      ComputationMode
	Magnitude decimal.Decimal
}

func Fixed(amount decimal.Decimal) ComponentRule {
	return ComponentRule{Mode: ModeFixed, Magnitude: amount}
}

func Percent(points decimal.Decimal) ComponentRule {
	return ComponentRule{Mode: ModePercent, Magnitude: points}
}

// ComponentRules holds one rule per named component.
type ComponentRules struct {
	Basic              ComponentRule
	HouseRentAllowance ComponentRule
	StandardAllowance  ComponentRule
	PerformanceBonus   ComponentRule
	TravelAllowance    ComponentRule
}

// Rule returns the rule configured for name.
func (r ComponentRules) Rule(name ComponentName) (ComponentRule, bool) {
	switch name {
	case ComponentBasic:
		return r.Basic, true
	case ComponentHouseRentAllowance:
		return r.HouseRentAllowance, true
	case ComponentStandardAllowance:
		return r.StandardAllowance, true
	case ComponentPerformanceBonus:
		return r.PerformanceBonus, true
	case ComponentTravelAllowance:
		return r.TravelAllowance, true
	}
	return ComponentRule{}, false
}

type StatutoryRule struct {
	ProvidentFundRate decimal.Decimal // percent of resolved basic, per side
	ProfessionalTax   decimal.Decimal // flat monthly amount
}

// Configuration is the durable compensation setup of one employee.
type Configuration struct {
	Input     CompensationInput
	Rules     ComponentRules
	Statutory StatutoryRule
}

// Structure - salary_structures row. Resolved amounts are never stored.
type Structure struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Configuration
	Version   int
	UpdatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// ResolvedStructure is the derived pay breakdown of a configuration.
type ResolvedStructure struct {
	MonthlyWage decimal.Decimal
	YearlyWage  decimal.Decimal

	Basic              decimal.Decimal
	HouseRentAllowance decimal.Decimal
	StandardAllowance  decimal.Decimal
	PerformanceBonus   decimal.Decimal
	TravelAllowance    decimal.Decimal

	AllocatedSum   decimal.Decimal
	FixedAllowance decimal.Decimal // signed residual
	GrossEarnings  decimal.Decimal

	ProvidentFundEmployee decimal.Decimal
	ProvidentFundEmployer decimal.Decimal
	ProfessionalTax       decimal.Decimal
	EmployeeDeductions    decimal.Decimal
	NetPay                decimal.Decimal

	EffectiveDeductionRate decimal.Decimal
	TotalAllowances        decimal.Decimal
	EmployerCost           decimal.Decimal

	// EffectivePercent is each component relative to its base, plus the
	// fixed allowance relative to wage.
	EffectivePercent map[string]decimal.Decimal
}

// Amount returns the resolved amount of a named component.
func (r ResolvedStructure) Amount(name ComponentName) decimal.Decimal {
	switch name {
	case ComponentBasic:
		return r.Basic
	case ComponentHouseRentAllowance:
		return r.HouseRentAllowance
	case ComponentStandardAllowance:
		return r.StandardAllowance
	case ComponentPerformanceBonus:
		return r.PerformanceBonus
	case ComponentTravelAllowance:
		return r.TravelAllowance
	}
	return decimal.Zero
}

// FeasibilityStatus enum
type FeasibilityStatus string

const (
	StatusFeasible      FeasibilityStatus = "FEASIBLE"
	StatusOverAllocated FeasibilityStatus = "OVER_ALLOCATED"
)

type ValidationResult struct {
	Status    FeasibilityStatus
	Shortfall decimal.Decimal
}

// Err returns an *OverAllocatedError when the structure is over-allocated.
func (v ValidationResult) Err() error {
	if v.Status == StatusOverAllocated {
		return &OverAllocatedError{Shortfall: v.Shortfall}
	}
	return nil
}

// Actor is the authenticated caller acting on a structure.
type Actor struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       string
}

// Subject is the employee whose structure is acted on. UserID is empty when
// the employee has no login.
type Subject struct {
	EmployeeID string
	UserID     string
}
