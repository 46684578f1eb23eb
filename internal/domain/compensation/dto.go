package compensation

import (
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CONFIGURATION DTOs ==========

type ComponentRulePayload struct {
	Mode      ComputationMode `json:"mode" validate:"required,oneof=fixed percent"`
	Magnitude decimal.Decimal `json:"magnitude"`
}

func (p ComponentRulePayload) toRule() ComponentRule {
	return ComponentRule{Mode: p.Mode, Magnitude: p.Magnitude}
}

func rulePayload(r ComponentRule) ComponentRulePayload {
	return ComponentRulePayload{Mode: r.Mode, Magnitude: r.Magnitude}
}

// ConfigurationPayload is a complete configuration, used for drafts.
type ConfigurationPayload struct {
	MonthlyWage        decimal.Decimal      `json:"monthly_wage"`
	WorkingDaysPerWeek int                  `json:"working_days_per_week" validate:"min=1,max=7"`
	BreakTimeHours     decimal.Decimal      `json:"break_time_hours"`
	Basic              ComponentRulePayload `json:"basic"`
	HouseRentAllowance ComponentRulePayload `json:"house_rent_allowance"`
	StandardAllowance  ComponentRulePayload `json:"standard_allowance"`
	PerformanceBonus   ComponentRulePayload `json:"performance_bonus"`
	TravelAllowance    ComponentRulePayload `json:"travel_allowance"`
	ProvidentFundRate  decimal.Decimal      `json:"provident_fund_rate"`
	ProfessionalTax    decimal.Decimal      `json:"professional_tax"`
}

func (p *ConfigurationPayload) Validate() error {
	return validator.Struct(p)
}

func (p ConfigurationPayload) ToConfiguration() Configuration {
	return Configuration{
		Input: CompensationInput{
			MonthlyWage:        p.MonthlyWage,
			WorkingDaysPerWeek: p.WorkingDaysPerWeek,
			BreakTimeHours:     p.BreakTimeHours,
		},
		Rules: ComponentRules{
			Basic:              p.Basic.toRule(),
			HouseRentAllowance: p.HouseRentAllowance.toRule(),
			StandardAllowance:  p.StandardAllowance.toRule(),
			PerformanceBonus:   p.PerformanceBonus.toRule(),
			TravelAllowance:    p.TravelAllowance.toRule(),
		},
		Statutory: StatutoryRule{
			ProvidentFundRate: p.ProvidentFundRate,
			ProfessionalTax:   p.ProfessionalTax,
		},
	}
}

// NewConfigurationPayload is the inverse of ToConfiguration.
func NewConfigurationPayload(cfg Configuration) ConfigurationPayload {
	return ConfigurationPayload{
		MonthlyWage:        cfg.Input.MonthlyWage,
		WorkingDaysPerWeek: cfg.Input.WorkingDaysPerWeek,
		BreakTimeHours:     cfg.Input.BreakTimeHours,
		Basic:              rulePayload(cfg.Rules.Basic),
		HouseRentAllowance: rulePayload(cfg.Rules.HouseRentAllowance),
		StandardAllowance:  rulePayload(cfg.Rules.StandardAllowance),
		PerformanceBonus:   rulePayload(cfg.Rules.PerformanceBonus),
		TravelAllowance:    rulePayload(cfg.Rules.TravelAllowance),
		ProvidentFundRate:  cfg.Statutory.ProvidentFundRate,
		ProfessionalTax:    cfg.Statutory.ProfessionalTax,
	}
}

// UpdateStructureRequest is a partial edit merged over the stored
// configuration. Version, when set, must match the stored version.
type UpdateStructureRequest struct {
	EmployeeID         string                `json:"-" validate:"required,uuid"`
	Version            *int                  `json:"version,omitempty" validate:"omitempty,min=1"`
	MonthlyWage        *decimal.Decimal      `json:"monthly_wage,omitempty"`
	WorkingDaysPerWeek *int                  `json:"working_days_per_week,omitempty" validate:"omitempty,min=1,max=7"`
	BreakTimeHours     *decimal.Decimal      `json:"break_time_hours,omitempty"`
	Basic              *ComponentRulePayload `json:"basic,omitempty"`
	HouseRentAllowance *ComponentRulePayload `json:"house_rent_allowance,omitempty"`
	StandardAllowance  *ComponentRulePayload `json:"standard_allowance,omitempty"`
	PerformanceBonus   *ComponentRulePayload `json:"performance_bonus,omitempty"`
	TravelAllowance    *ComponentRulePayload `json:"travel_allowance,omitempty"`
	ProvidentFundRate  *decimal.Decimal      `json:"provident_fund_rate,omitempty"`
	ProfessionalTax    *decimal.Decimal      `json:"professional_tax,omitempty"`
}

func (r *UpdateStructureRequest) Validate() error {
	return validator.Struct(r)
}

// IsEmpty reports whether the request changes nothing.
func (r *UpdateStructureRequest) IsEmpty() bool {
	return r.MonthlyWage == nil && r.WorkingDaysPerWeek == nil && r.BreakTimeHours == nil &&
		r.Basic == nil && r.HouseRentAllowance == nil && r.StandardAllowance == nil &&
		r.PerformanceBonus == nil && r.TravelAllowance == nil &&
		r.ProvidentFundRate == nil && r.ProfessionalTax == nil
}

// ApplyTo returns cfg with every field set in r overwritten.
func (r *UpdateStructureRequest) ApplyTo(cfg Configuration) Configuration {
	if r.MonthlyWage != nil {
		cfg.Input.MonthlyWage = *r.MonthlyWage
	}
	if r.WorkingDaysPerWeek != nil {
		cfg.Input.WorkingDaysPerWeek = *r.WorkingDaysPerWeek
	}
	if r.BreakTimeHours != nil {
		cfg.Input.BreakTimeHours = *r.BreakTimeHours
	}
	if r.Basic != nil {
		cfg.Rules.Basic = r.Basic.toRule()
	}
	if r.HouseRentAllowance != nil {
		cfg.Rules.HouseRentAllowance = r.HouseRentAllowance.toRule()
	}
	if r.StandardAllowance != nil {
		cfg.Rules.StandardAllowance = r.StandardAllowance.toRule()
	}
	if r.PerformanceBonus != nil {
		cfg.Rules.PerformanceBonus = r.PerformanceBonus.toRule()
	}
	if r.TravelAllowance != nil {
		cfg.Rules.TravelAllowance = r.TravelAllowance.toRule()
	}
	if r.ProvidentFundRate != nil {
		cfg.Statutory.ProvidentFundRate = *r.ProvidentFundRate
	}
	if r.ProfessionalTax != nil {
		cfg.Statutory.ProfessionalTax = *r.ProfessionalTax
	}
	return cfg
}

// InitializeStructureRequest creates the default structure of a new employee.
// A nil MonthlyWage starts at zero.
type InitializeStructureRequest struct {
	EmployeeID  string           `json:"employee_id" validate:"required,uuid"`
	MonthlyWage *decimal.Decimal `json:"monthly_wage,omitempty"`
}

func (r *InitializeStructureRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	if r.MonthlyWage != nil && r.MonthlyWage.IsNegative() {
		return validator.ValidationErrors{{Field: "monthly_wage", Message: "must be non-negative"}}
	}
	return nil
}

// ========== RESPONSE DTOs ==========

type ResolvedResponse struct {
	MonthlyWage            decimal.Decimal            `json:"monthly_wage"`
	YearlyWage             decimal.Decimal            `json:"yearly_wage"`
	Basic                  decimal.Decimal            `json:"basic"`
	HouseRentAllowance     decimal.Decimal            `json:"house_rent_allowance"`
	StandardAllowance      decimal.Decimal            `json:"standard_allowance"`
	PerformanceBonus       decimal.Decimal            `json:"performance_bonus"`
	TravelAllowance        decimal.Decimal            `json:"travel_allowance"`
	AllocatedSum           decimal.Decimal            `json:"allocated_sum"`
	FixedAllowance         decimal.Decimal            `json:"fixed_allowance"`
	GrossEarnings          decimal.Decimal            `json:"gross_earnings"`
	ProvidentFundEmployee  decimal.Decimal            `json:"provident_fund_employee"`
	ProvidentFundEmployer  decimal.Decimal            `json:"provident_fund_employer"`
	ProfessionalTax        decimal.Decimal            `json:"professional_tax"`
	EmployeeDeductions     decimal.Decimal            `json:"employee_deductions"`
	NetPay                 decimal.Decimal            `json:"net_pay"`
	EffectiveDeductionRate decimal.Decimal            `json:"effective_deduction_rate"`
	TotalAllowances        decimal.Decimal            `json:"total_allowances"`
	EmployerCost           decimal.Decimal            `json:"employer_cost"`
	EffectivePercent       map[string]decimal.Decimal `json:"effective_percent"`
}

func NewResolvedResponse(r ResolvedStructure) ResolvedResponse {
	return ResolvedResponse{
		MonthlyWage:            r.MonthlyWage,
		YearlyWage:             r.YearlyWage,
		Basic:                  r.Basic,
		HouseRentAllowance:     r.HouseRentAllowance,
		StandardAllowance:      r.StandardAllowance,
		PerformanceBonus:       r.PerformanceBonus,
		TravelAllowance:        r.TravelAllowance,
		AllocatedSum:           r.AllocatedSum,
		FixedAllowance:         r.FixedAllowance,
		GrossEarnings:          r.GrossEarnings,
		ProvidentFundEmployee:  r.ProvidentFundEmployee,
		ProvidentFundEmployer:  r.ProvidentFundEmployer,
		ProfessionalTax:        r.ProfessionalTax,
		EmployeeDeductions:     r.EmployeeDeductions,
		NetPay:                 r.NetPay,
		EffectiveDeductionRate: r.EffectiveDeductionRate,
		TotalAllowances:        r.TotalAllowances,
		EmployerCost:           r.EmployerCost,
		EffectivePercent:       r.EffectivePercent,
	}
}

type ValidationResponse struct {
	Status    FeasibilityStatus `json:"status"`
	Shortfall decimal.Decimal   `json:"shortfall"`
}

// PreviewResponse is a what-if calculation. It is returned even when the
// configuration is over-allocated.
type PreviewResponse struct {
	Configuration ConfigurationPayload `json:"configuration"`
	Resolved      ResolvedResponse     `json:"resolved"`
	Validation    ValidationResponse   `json:"validation"`
}

func NewPreviewResponse(cfg Configuration, resolved ResolvedStructure, result ValidationResult) PreviewResponse {
	return PreviewResponse{
		Configuration: NewConfigurationPayload(cfg),
		Resolved:      NewResolvedResponse(resolved),
		Validation:    ValidationResponse{Status: result.Status, Shortfall: result.Shortfall},
	}
}

type StructureResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	EmployeeCode *string `json:"employee_code,omitempty"`
	Version      int     `json:"version"`
	UpdatedBy    *string `json:"updated_by,omitempty"`
	UpdatedAt    string  `json:"updated_at"`
	PreviewResponse
}

type StructureFilter struct {
	Search *string `json:"search,omitempty"`
	Status *string `json:"status,omitempty"` // FEASIBLE or OVER_ALLOCATED
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

func (f *StructureFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{string(StatusFeasible), string(StatusOverAllocated)}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'FEASIBLE' or 'OVER_ALLOCATED'"})
	}
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "must be non-negative"})
	}
	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "must be between 0 and 100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StructureSummary is one row of the payroll overview.
type StructureSummary struct {
	EmployeeID      string            `json:"employee_id"`
	EmployeeName    *string           `json:"employee_name,omitempty"`
	EmployeeCode    *string           `json:"employee_code,omitempty"`
	MonthlyWage     decimal.Decimal   `json:"monthly_wage"`
	Basic           decimal.Decimal   `json:"basic"`
	TotalAllowances decimal.Decimal   `json:"total_allowances"`
	TotalDeductions decimal.Decimal   `json:"total_deductions"`
	GrossEarnings   decimal.Decimal   `json:"gross_earnings"`
	NetPay          decimal.Decimal   `json:"net_pay"`
	EmployerCost    decimal.Decimal   `json:"employer_cost"`
	Status          FeasibilityStatus `json:"status"`
	Version         int               `json:"version"`
}

type StructureTotals struct {
	TotalEmployees     int             `json:"total_employees"`
	TotalMonthlyWage   decimal.Decimal `json:"total_monthly_wage"`
	TotalAllowances    decimal.Decimal `json:"total_allowances"`
	TotalDeductions    decimal.Decimal `json:"total_deductions"`
	TotalNetPay        decimal.Decimal `json:"total_net_pay"`
	TotalEmployerCost  decimal.Decimal `json:"total_employer_cost"`
	OverAllocatedCount int             `json:"over_allocated_count"`
}

type ListStructureResponse struct {
	Data       []StructureSummary `json:"data"`
	Totals     StructureTotals    `json:"totals"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
}
