package compensation

import (
	"fmt"

	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// DefaultMaxPercent caps PERCENT magnitudes and the provident fund rate.
var DefaultMaxPercent = decimal.NewFromInt(1000)

const (
	minWorkingDays = 1
	maxWorkingDays = 7
)

var hoursInDay = decimal.NewFromInt(24)

// numericBound mirrors a salary_structures NUMERIC(p,s) column.
type numericBound struct {
	places int32
	limit  decimal.Decimal // exclusive
}

var (
	amountBound    = numericBound{places: 2, limit: decimal.New(1, 13)} // NUMERIC(15,2)
	magnitudeBound = numericBound{places: 4, limit: decimal.New(1, 11)} // NUMERIC(15,4)
	rateBound      = numericBound{places: 4, limit: decimal.New(1, 4)}  // NUMERIC(8,4)
	hoursBound     = numericBound{places: 2, limit: decimal.New(1, 3)}  // NUMERIC(5,2)
)

// check reports a value the column would reject or silently round.
func (b numericBound) check(field string, v decimal.Decimal) *validator.ValidationError {
	if v.GreaterThanOrEqual(b.limit) {
		return &validator.ValidationError{Field: field, Message: "must be less than " + b.limit.String()}
	}
	if !v.Equal(v.Round(b.places)) {
		return &validator.ValidationError{Field: field, Message: fmt.Sprintf("must have at most %d decimal places", b.places)}
	}
	return nil
}

// fieldOf maps a component to its request field name.
func fieldOf(name ComponentName) string {
	return string(name)
}

// SanitizeConfiguration rejects configurations that must never reach the
// resolver. Magnitude problems are reported as ValidationErrors that also
// match ErrInvalidMagnitude.
func SanitizeConfiguration(cfg Configuration, maxPercent decimal.Decimal) error {
	var errs validator.ValidationErrors
	magnitudeFailed := false

	if cfg.Input.MonthlyWage.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "monthly_wage", Message: "must be non-negative"})
	} else if e := amountBound.check("monthly_wage", cfg.Input.MonthlyWage); e != nil {
		errs = append(errs, *e)
		magnitudeFailed = true
	}
	if cfg.Input.WorkingDaysPerWeek < minWorkingDays || cfg.Input.WorkingDaysPerWeek > maxWorkingDays {
		errs = append(errs, validator.ValidationError{
			Field:   "working_days_per_week",
			Message: fmt.Sprintf("must be between %d and %d", minWorkingDays, maxWorkingDays),
		})
	}
	if cfg.Input.BreakTimeHours.IsNegative() || cfg.Input.BreakTimeHours.GreaterThan(hoursInDay) {
		errs = append(errs, validator.ValidationError{Field: "break_time_hours", Message: "must be between 0 and 24"})
	} else if e := hoursBound.check("break_time_hours", cfg.Input.BreakTimeHours); e != nil {
		errs = append(errs, *e)
	}

	for _, name := range EvaluationOrder {
		rule, _ := cfg.Rules.Rule(name)
		field := fieldOf(name)

		if !rule.Mode.IsValid() {
			errs = append(errs, validator.ValidationError{Field: field + ".mode", Message: "must be 'fixed' or 'percent'"})
			continue
		}
		if rule.Magnitude.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + ".magnitude", Message: "must be non-negative"})
			magnitudeFailed = true
			continue
		}
		if rule.Mode == ModePercent && rule.Magnitude.GreaterThan(maxPercent) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".magnitude",
				Message: "percentage must not exceed " + maxPercent.String(),
			})
			magnitudeFailed = true
			continue
		}
		if e := magnitudeBound.check(field+".magnitude", rule.Magnitude); e != nil {
			errs = append(errs, *e)
			magnitudeFailed = true
		}
	}

	if cfg.Statutory.ProvidentFundRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "provident_fund_rate", Message: "must be non-negative"})
		magnitudeFailed = true
	} else if cfg.Statutory.ProvidentFundRate.GreaterThan(maxPercent) {
		errs = append(errs, validator.ValidationError{
			Field:   "provident_fund_rate",
			Message: "percentage must not exceed " + maxPercent.String(),
		})
		magnitudeFailed = true
	} else if e := rateBound.check("provident_fund_rate", cfg.Statutory.ProvidentFundRate); e != nil {
		errs = append(errs, *e)
		magnitudeFailed = true
	}
	if cfg.Statutory.ProfessionalTax.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "professional_tax", Message: "must be non-negative"})
		magnitudeFailed = true
	} else if e := amountBound.check("professional_tax", cfg.Statutory.ProfessionalTax); e != nil {
		errs = append(errs, *e)
		magnitudeFailed = true
	}

	if len(errs) == 0 {
		return nil
	}
	if magnitudeFailed {
		return fmt.Errorf("%w: %w", ErrInvalidMagnitude, errs)
	}
	return errs
}
