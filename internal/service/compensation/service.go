package compensation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options carries the company-wide compensation policy.
type Options struct {
	Defaults   compensation.Defaults
	Tolerance  decimal.Decimal
	MaxPercent decimal.Decimal
}

type CompensationServiceImpl struct {
	tx            compensation.Transactor
	structureRepo compensation.StructureRepository
	employeeRepo  employee.EmployeeRepository
	defaults      compensation.Defaults
	gate          compensation.Gate
	maxPercent    decimal.Decimal
	zlog          *zap.Logger
	now           func() time.Time
}

func NewCompensationService(
	tx compensation.Transactor,
	structureRepo compensation.StructureRepository,
	employeeRepo employee.EmployeeRepository,
	opts Options,
	zlog *zap.Logger,
) compensation.CompensationService {
	if opts.Tolerance.IsZero() {
		opts.Tolerance = compensation.DefaultTolerance
	}
	if opts.MaxPercent.IsZero() {
		opts.MaxPercent = compensation.DefaultMaxPercent
	}
	if zlog == nil {
		zlog = zap.NewNop()
	}

	return &CompensationServiceImpl{
		tx:            tx,
		structureRepo: structureRepo,
		employeeRepo:  employeeRepo,
		defaults:      opts.Defaults,
		gate:          compensation.NewGate(opts.Tolerance),
		maxPercent:    opts.MaxPercent,
		zlog:          zlog,
		now:           time.Now,
	}
}

// Helper to build the acting user from JWT claims
func actorFromContext(ctx context.Context) (compensation.Actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return compensation.Actor{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return compensation.Actor{}, fmt.Errorf("company_id: %w", auth.ErrMissingClaim)
	}

	role, _ := claims["role"].(string)
	if !user.Role(role).IsValid() {
		return compensation.Actor{}, fmt.Errorf("role: %w", auth.ErrMissingClaim)
	}

	actor := compensation.Actor{CompanyID: companyID, Role: role}
	actor.UserID, _ = claims["user_id"].(string)
	actor.EmployeeID, _ = claims["employee_id"].(string)

	return actor, nil
}

// evaluate resolves cfg and classifies the result.
func (s *CompensationServiceImpl) evaluate(cfg compensation.Configuration) (compensation.ResolvedStructure, compensation.ValidationResult, error) {
	resolved, err := compensation.ResolveConfiguration(cfg)
	if err != nil {
		return compensation.ResolvedStructure{}, compensation.ValidationResult{}, err
	}
	return resolved, s.gate.Validate(resolved), nil
}

func toStructureResponse(st compensation.Structure, resolved compensation.ResolvedStructure, result compensation.ValidationResult) compensation.StructureResponse {
	return compensation.StructureResponse{
		ID:              st.ID,
		EmployeeID:      st.EmployeeID,
		EmployeeName:    st.EmployeeName,
		EmployeeCode:    st.EmployeeCode,
		Version:         st.Version,
		UpdatedBy:       st.UpdatedBy,
		UpdatedAt:       st.UpdatedAt.Format(time.RFC3339),
		PreviewResponse: compensation.NewPreviewResponse(st.Configuration, resolved, result),
	}
}

// ========== READ ==========

func (s *CompensationServiceImpl) GetStructure(ctx context.Context, employeeID string) (compensation.StructureResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return compensation.StructureResponse{}, err
	}
	if !compensation.CanView(actor, employeeID) {
		return compensation.StructureResponse{}, compensation.ErrPermissionDenied
	}

	st, err := s.structureRepo.GetByEmployeeID(ctx, employeeID, actor.CompanyID)
	if err != nil {
		return compensation.StructureResponse{}, err
	}

	resolved, result, err := s.evaluate(st.Configuration)
	if err != nil {
		s.zlog.Error("failed to resolve stored structure",
			zap.String("method", "GetStructure"),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return compensation.StructureResponse{}, err
	}

	return toStructureResponse(st, resolved, result), nil
}

// ========== PREVIEW ==========

func (s *CompensationServiceImpl) PreviewStructure(ctx context.Context, req compensation.UpdateStructureRequest) (compensation.PreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.PreviewResponse{}, err
	}

	actor, err := actorFromContext(ctx)
	if err != nil {
		return compensation.PreviewResponse{}, err
	}
	if !compensation.CanView(actor, req.EmployeeID) {
		return compensation.PreviewResponse{}, compensation.ErrPermissionDenied
	}

	st, err := s.structureRepo.GetByEmployeeID(ctx, req.EmployeeID, actor.CompanyID)
	if err != nil {
		return compensation.PreviewResponse{}, err
	}

	merged := req.ApplyTo(st.Configuration)
	if err := compensation.SanitizeConfiguration(merged, s.maxPercent); err != nil {
		return compensation.PreviewResponse{}, err
	}

	resolved, result, err := s.evaluate(merged)
	if err != nil {
		return compensation.PreviewResponse{}, err
	}

	return compensation.NewPreviewResponse(merged, resolved, result), nil
}

func (s *CompensationServiceImpl) PreviewDraft(ctx context.Context, req compensation.ConfigurationPayload) (compensation.PreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.PreviewResponse{}, err
	}

	actor, err := actorFromContext(ctx)
	if err != nil {
		return compensation.PreviewResponse{}, err
	}
	if !compensation.CanPreview(actor) {
		return compensation.PreviewResponse{}, compensation.ErrPermissionDenied
	}

	cfg := req.ToConfiguration()
	if err := compensation.SanitizeConfiguration(cfg, s.maxPercent); err != nil {
		return compensation.PreviewResponse{}, err
	}

	resolved, result, err := s.evaluate(cfg)
	if err != nil {
		return compensation.PreviewResponse{}, err
	}

	return compensation.NewPreviewResponse(cfg, resolved, result), nil
}

// ========== COMMIT ==========

func (s *CompensationServiceImpl) UpdateStructure(ctx context.Context, req compensation.UpdateStructureRequest) (compensation.StructureResponse, error) {
	if err := validateEmployeeID(req.EmployeeID); err != nil {
		return compensation.StructureResponse{}, err
	}

	actor, err := actorFromContext(ctx)
	if err != nil {
		return compensation.StructureResponse{}, err
	}

	zlog := s.zlog.With(
		zap.String("method", "UpdateStructure"),
		zap.String("actor", actor.UserID),
		zap.String("employee_id", req.EmployeeID),
	)

	var out compensation.StructureResponse
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Authorization runs before any look at the payload.
		if _, err := s.authorizeCommit(ctx, actor, req.EmployeeID); err != nil {
			return err
		}
		if err := req.Validate(); err != nil {
			return err
		}
		if req.IsEmpty() {
			return validator.ValidationErrors{
				{Field: "request", Message: "at least one field must be provided"},
			}
		}

		st, err := s.structureRepo.GetByEmployeeIDForUpdate(ctx, req.EmployeeID, actor.CompanyID)
		if err != nil {
			return err
		}
		if req.Version != nil && *req.Version != st.Version {
			return compensation.ErrStaleStructure
		}

		merged := req.ApplyTo(st.Configuration)
		if err := compensation.SanitizeConfiguration(merged, s.maxPercent); err != nil {
			return err
		}

		resolved, result, err := s.evaluate(merged)
		if err != nil {
			return err
		}
		if err := result.Err(); err != nil {
			return err
		}

		st.Configuration = merged
		if actor.UserID != "" {
			st.UpdatedBy = &actor.UserID
		}
		updated, err := s.structureRepo.Update(ctx, st)
		if err != nil {
			return err
		}

		out = toStructureResponse(updated, resolved, result)
		return nil
	})
	if err != nil {
		var overErr *compensation.OverAllocatedError
		switch {
		case errors.As(err, &overErr):
			zlog.Info("structure change over-allocated", zap.String("shortfall", overErr.Shortfall.StringFixed(2)))
		case errors.Is(err, compensation.ErrSelfApprovalDenied), errors.Is(err, compensation.ErrPermissionDenied):
			zlog.Warn("structure change rejected", zap.Error(err))
		case !isClientError(err):
			zlog.Error("failed to update salary structure", zap.Error(err))
		}
		return compensation.StructureResponse{}, err
	}

	zlog.Info("salary structure updated", zap.Int("version", out.Version))
	return out, nil
}

func (s *CompensationServiceImpl) InitializeStructure(ctx context.Context, req compensation.InitializeStructureRequest) (compensation.StructureResponse, error) {
	if err := validateEmployeeID(req.EmployeeID); err != nil {
		return compensation.StructureResponse{}, err
	}

	actor, err := actorFromContext(ctx)
	if err != nil {
		return compensation.StructureResponse{}, err
	}
	emp, err := s.authorizeCommit(ctx, actor, req.EmployeeID)
	if err != nil {
		return compensation.StructureResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return compensation.StructureResponse{}, err
	}

	var updatedBy *string
	if actor.UserID != "" {
		updatedBy = &actor.UserID
	}

	return s.initialize(ctx, emp, req.MonthlyWage, updatedBy)
}

func (s *CompensationServiceImpl) initialize(ctx context.Context, emp employee.Employee, wage *decimal.Decimal, updatedBy *string) (compensation.StructureResponse, error) {
	zlog := s.zlog.With(
		zap.String("method", "InitializeStructure"),
		zap.String("company_id", emp.CompanyID),
		zap.String("employee_id", emp.ID),
	)

	if !emp.IsActive() {
		return compensation.StructureResponse{}, employee.ErrEmployeeInactive
	}

	monthlyWage := decimal.Zero
	if wage != nil {
		monthlyWage = *wage
	}
	cfg := s.defaults.Configuration(monthlyWage)
	if err := compensation.SanitizeConfiguration(cfg, s.maxPercent); err != nil {
		return compensation.StructureResponse{}, err
	}

	resolved, result, err := s.evaluate(cfg)
	if err != nil {
		return compensation.StructureResponse{}, err
	}

	created, err := s.structureRepo.Create(ctx, compensation.Structure{
		EmployeeID:    emp.ID,
		CompanyID:     emp.CompanyID,
		Configuration: cfg,
		UpdatedBy:     updatedBy,
	})
	if err != nil {
		if !isClientError(err) {
			zlog.Error("failed to create salary structure", zap.Error(err))
		}
		return compensation.StructureResponse{}, err
	}
	created.EmployeeName = &emp.FullName
	created.EmployeeCode = &emp.EmployeeCode

	zlog.Info("salary structure initialized", zap.String("status", string(result.Status)))
	return toStructureResponse(created, resolved, result), nil
}

func (s *CompensationServiceImpl) DeleteStructure(ctx context.Context, employeeID string) error {
	if err := validateEmployeeID(employeeID); err != nil {
		return err
	}

	actor, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	if _, err := s.authorizeCommit(ctx, actor, employeeID); err != nil {
		return err
	}

	if err := s.structureRepo.DeleteByEmployeeID(ctx, employeeID, actor.CompanyID); err != nil {
		if !isClientError(err) {
			s.zlog.Error("failed to delete salary structure",
				zap.String("method", "DeleteStructure"),
				zap.String("employee_id", employeeID),
				zap.Error(err),
			)
		}
		return err
	}
	return nil
}

// ========== EVENTS ==========

func (s *CompensationServiceImpl) InitializeFromEvent(ctx context.Context, companyID, employeeID string, monthlyWage *decimal.Decimal) error {
	if monthlyWage != nil && monthlyWage.IsNegative() {
		return validator.ValidationErrors{{Field: "monthly_wage", Message: "must be non-negative"}}
	}
	if err := validateEmployeeID(employeeID); err != nil {
		return err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID, companyID)
	if err != nil {
		return err
	}
	_, err = s.initialize(ctx, emp, monthlyWage, nil)
	return err
}

// DeleteFromEvent is idempotent: a missing structure is not an error.
func (s *CompensationServiceImpl) DeleteFromEvent(ctx context.Context, companyID, employeeID string) error {
	if err := validateEmployeeID(employeeID); err != nil {
		return err
	}
	err := s.structureRepo.DeleteByEmployeeID(ctx, employeeID, companyID)
	if errors.Is(err, compensation.ErrStructureNotFound) {
		return nil
	}
	return err
}

// authorizeCommit applies self-exclusion against both the token claims and
// the stored employee, whose user link covers tokens without employee_id.
func (s *CompensationServiceImpl) authorizeCommit(ctx context.Context, actor compensation.Actor, employeeID string) (employee.Employee, error) {
	if err := compensation.Authorize(actor, compensation.Subject{EmployeeID: employeeID}); err != nil {
		return employee.Employee{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID, actor.CompanyID)
	if err != nil {
		return employee.Employee{}, err
	}
	if err := compensation.Authorize(actor, subjectOf(emp)); err != nil {
		return employee.Employee{}, err
	}
	return emp, nil
}

func subjectOf(emp employee.Employee) compensation.Subject {
	return compensation.Subject{EmployeeID: emp.ID, UserID: stringOr(emp.UserID, "")}
}

func validateEmployeeID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return validator.ValidationErrors{{Field: "employee_id", Message: "must be a valid UUID"}}
	}
	return nil
}

// isClientError reports errors caused by the request rather than the system.
func isClientError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs) ||
		errors.Is(err, compensation.ErrStructureNotFound) ||
		errors.Is(err, compensation.ErrStructureAlreadyExists) ||
		errors.Is(err, compensation.ErrStaleStructure) ||
		errors.Is(err, compensation.ErrSelfApprovalDenied) ||
		errors.Is(err, compensation.ErrPermissionDenied) ||
		errors.Is(err, compensation.ErrOverAllocated) ||
		errors.Is(err, employee.ErrEmployeeNotFound) ||
		errors.Is(err, employee.ErrEmployeeInactive)
}
