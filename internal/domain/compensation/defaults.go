package compensation

import "github.com/shopspring/decimal"

// Defaults is the configuration applied when an employee is onboarded.
type Defaults struct {
	BasicPercent            decimal.Decimal
	HouseRentPercent        decimal.Decimal // of resolved basic
	StandardAllowance       decimal.Decimal
	PerformanceBonusPercent decimal.Decimal
	TravelAllowancePercent  decimal.Decimal
	ProvidentFundRate       decimal.Decimal
	ProfessionalTax         decimal.Decimal
	WorkingDaysPerWeek      int
	BreakTimeHours          decimal.Decimal
}

func StandardDefaults() Defaults {
	return Defaults{
		BasicPercent:            decimal.NewFromInt(50),
		HouseRentPercent:        decimal.NewFromInt(50),
		StandardAllowance:       decimal.NewFromInt(4167),
		PerformanceBonusPercent: decimal.RequireFromString("8.33"),
		TravelAllowancePercent:  decimal.RequireFromString("8.33"),
		ProvidentFundRate:       decimal.NewFromInt(12),
		ProfessionalTax:         decimal.NewFromInt(200),
		WorkingDaysPerWeek:      5,
		BreakTimeHours:          decimal.NewFromInt(1),
	}
}

// Configuration builds the onboarding configuration for wage.
func (d Defaults) Configuration(wage decimal.Decimal) Configuration {
	return Configuration{
		Input: CompensationInput{
			MonthlyWage:        wage,
			WorkingDaysPerWeek: d.WorkingDaysPerWeek,
			BreakTimeHours:     d.BreakTimeHours,
		},
		Rules: ComponentRules{
			Basic:              Percent(d.BasicPercent),
			HouseRentAllowance: Percent(d.HouseRentPercent),
			StandardAllowance:  Fixed(d.StandardAllowance),
			PerformanceBonus:   Percent(d.PerformanceBonusPercent),
			TravelAllowance:    Percent(d.TravelAllowancePercent),
		},
		Statutory: StatutoryRule{
			ProvidentFundRate: d.ProvidentFundRate,
			ProfessionalTax:   d.ProfessionalTax,
		},
	}
}
