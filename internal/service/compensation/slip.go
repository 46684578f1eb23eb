package compensation

import (
	"context"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/payslip"
	"go.uber.org/zap"
)

// ExportSalarySlip renders the current structure. Over-allocated structures
// have no valid slip.
func (s *CompensationServiceImpl) ExportSalarySlip(ctx context.Context, employeeID string) ([]byte, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !compensation.CanView(actor, employeeID) {
		return nil, compensation.ErrPermissionDenied
	}

	st, err := s.structureRepo.GetByEmployeeID(ctx, employeeID, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, employeeID, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	resolved, result, err := s.evaluate(st.Configuration)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	earnings := []payslip.Line{
		{Label: "Basic", Amount: resolved.Basic},
		{Label: "House rent allowance", Amount: resolved.HouseRentAllowance},
		{Label: "Standard allowance", Amount: resolved.StandardAllowance},
		{Label: "Performance bonus", Amount: resolved.PerformanceBonus},
		{Label: "Travel allowance", Amount: resolved.TravelAllowance},
	}
	if resolved.FixedAllowance.IsPositive() {
		earnings = append(earnings, payslip.Line{Label: "Fixed allowance", Amount: resolved.FixedAllowance})
	}

	out, err := payslip.Render(payslip.Slip{
		EmployeeName: emp.FullName,
		EmployeeCode: emp.EmployeeCode,
		Position:     stringOr(emp.PositionName, ""),
		BankAccount:  emp.BankAccountNumber,
		IssuedAt:     s.now(),
		Earnings:     earnings,
		Deductions: []payslip.Line{
			{Label: "Provident fund (employee)", Amount: resolved.ProvidentFundEmployee},
			{Label: "Professional tax", Amount: resolved.ProfessionalTax},
		},
		GrossEarnings:   resolved.GrossEarnings,
		TotalDeductions: resolved.EmployeeDeductions,
		NetPay:          resolved.NetPay,
		EmployerCost:    resolved.EmployerCost,
	})
	if err != nil {
		s.zlog.Error("failed to render salary slip",
			zap.String("method", "ExportSalarySlip"),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, err
	}
	return out, nil
}
