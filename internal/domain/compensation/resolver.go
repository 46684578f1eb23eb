package compensation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the minor-unit precision of resolved amounts.
const CurrencyPlaces = 2

// RatePlaces is the precision of EffectiveDeductionRate.
const RatePlaces = 4

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// roundCurrency rounds half away from zero, which is half-up for the
// non-negative amounts produced by component rules.
func roundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

func applyRule(rule ComponentRule, base decimal.Decimal) (decimal.Decimal, error) {
	switch rule.Mode {
	case ModeFixed:
		return roundCurrency(rule.Magnitude), nil
	case ModePercent:
		return roundCurrency(base.Mul(rule.Magnitude).Div(hundred)), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownMode, rule.Mode)
	}
}

func percentOf(part, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(base).Round(CurrencyPlaces)
}

// Resolve derives the pay breakdown of a configuration. Components are
// resolved in EvaluationOrder. A negative residual is returned as is; judging
// feasibility is left to the Gate. The only error is a malformed rule mode.
func Resolve(input CompensationInput, rules ComponentRules, statutory StatutoryRule) (ResolvedStructure, error) {
	wage := input.MonthlyWage
	resolved := make(map[ComponentName]decimal.Decimal, len(EvaluationOrder))

	allocated := decimal.Zero
	for _, name := range EvaluationOrder {
		rule, _ := rules.Rule(name)

		base := wage
		if BaseReferenceOf(name) == BaseResolvedBasic {
			base = resolved[ComponentBasic]
		}

		amount, err := applyRule(rule, base)
		if err != nil {
			return ResolvedStructure{}, fmt.Errorf("resolve %s: %w", name, err)
		}
		resolved[name] = amount
		allocated = allocated.Add(amount)
	}

	basic := resolved[ComponentBasic]
	fixedAllowance := roundCurrency(wage.Sub(allocated))

	pfEmployee := roundCurrency(basic.Mul(statutory.ProvidentFundRate).Div(hundred))
	pfEmployer := roundCurrency(basic.Mul(statutory.ProvidentFundRate).Div(hundred))

	gross := allocated
	if fixedAllowance.IsPositive() {
		gross = gross.Add(fixedAllowance)
	}

	professionalTax := roundCurrency(statutory.ProfessionalTax)
	deductions := pfEmployee.Add(professionalTax)
	net := gross.Sub(deductions)

	rate := decimal.Zero
	if gross.IsPositive() {
		rate = gross.Sub(net).Div(gross).Round(RatePlaces)
	}

	// Payroll overview groups the residual with standard and travel allowances.
	totalAllowances := resolved[ComponentStandardAllowance].
		Add(decimal.Max(fixedAllowance, decimal.Zero)).
		Add(resolved[ComponentTravelAllowance])

	out := ResolvedStructure{
		MonthlyWage:            wage,
		YearlyWage:             wage.Mul(monthsInYear),
		Basic:                  basic,
		HouseRentAllowance:     resolved[ComponentHouseRentAllowance],
		StandardAllowance:      resolved[ComponentStandardAllowance],
		PerformanceBonus:       resolved[ComponentPerformanceBonus],
		TravelAllowance:        resolved[ComponentTravelAllowance],
		AllocatedSum:           allocated,
		FixedAllowance:         fixedAllowance,
		GrossEarnings:          gross,
		ProvidentFundEmployee:  pfEmployee,
		ProvidentFundEmployer:  pfEmployer,
		ProfessionalTax:        professionalTax,
		EmployeeDeductions:     deductions,
		NetPay:                 net,
		EffectiveDeductionRate: rate,
		TotalAllowances:        totalAllowances,
		EmployerCost:           gross.Add(pfEmployer),
		EffectivePercent:       make(map[string]decimal.Decimal, len(EvaluationOrder)+1),
	}

	for _, name := range EvaluationOrder {
		base := wage
		if BaseReferenceOf(name) == BaseResolvedBasic {
			base = basic
		}
		out.EffectivePercent[string(name)] = percentOf(resolved[name], base)
	}
	out.EffectivePercent["fixed_allowance"] = percentOf(fixedAllowance, wage)

	return out, nil
}

// ResolveConfiguration is Resolve over a stored Configuration.
func ResolveConfiguration(cfg Configuration) (ResolvedStructure, error) {
	return Resolve(cfg.Input, cfg.Rules, cfg.Statutory)
}
