package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	defaultPageSize = 20
)

var structureColumns = []string{
	"s.id", "s.employee_id", "s.company_id",
	"s.monthly_wage", "s.working_days_per_week", "s.break_time_hours",
	"s.basic_mode", "s.basic_magnitude",
	"s.house_rent_allowance_mode", "s.house_rent_allowance_magnitude",
	"s.standard_allowance_mode", "s.standard_allowance_magnitude",
	"s.performance_bonus_mode", "s.performance_bonus_magnitude",
	"s.travel_allowance_mode", "s.travel_allowance_magnitude",
	"s.provident_fund_rate", "s.professional_tax",
	"s.version", "s.updated_by", "s.created_at", "s.updated_at",
	"e.full_name", "e.employee_code",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStructure(row rowScanner) (compensation.Structure, error) {
	var s compensation.Structure
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.CompanyID,
		&s.Input.MonthlyWage, &s.Input.WorkingDaysPerWeek, &s.Input.BreakTimeHours,
		&s.Rules.Basic.Mode, &s.Rules.Basic.Magnitude,
		&s.Rules.HouseRentAllowance.Mode, &s.Rules.HouseRentAllowance.Magnitude,
		&s.Rules.StandardAllowance.Mode, &s.Rules.StandardAllowance.Magnitude,
		&s.Rules.PerformanceBonus.Mode, &s.Rules.PerformanceBonus.Magnitude,
		&s.Rules.TravelAllowance.Mode, &s.Rules.TravelAllowance.Magnitude,
		&s.Statutory.ProvidentFundRate, &s.Statutory.ProfessionalTax,
		&s.Version, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt,
		&s.EmployeeName, &s.EmployeeCode,
	)
	return s, err
}

type structureRepository struct {
	db *database.DB
}

func NewStructureRepository(db *database.DB) compensation.StructureRepository {
	return &structureRepository{db: db}
}

func selectStructures() sq.SelectBuilder {
	return sq.Select(structureColumns...).
		From("salary_structures s").
		Join("employees e ON s.employee_id = e.id").
		PlaceholderFormat(sq.Dollar)
}

func (r *structureRepository) getByEmployeeID(ctx context.Context, employeeID string, companyID string, lock bool) (compensation.Structure, error) {
	q := GetQuerier(ctx, r.db)

	b := selectStructures().Where(sq.Eq{"s.employee_id": employeeID, "s.company_id": companyID})
	if lock {
		b = b.Suffix("FOR UPDATE OF s")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return compensation.Structure{}, fmt.Errorf("failed to build query: %w", err)
	}

	s, err := scanStructure(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return compensation.Structure{}, compensation.ErrStructureNotFound
		}
		return compensation.Structure{}, fmt.Errorf("failed to get salary structure for employee %s: %w", employeeID, err)
	}
	return s, nil
}

// GetByEmployeeID implements compensation.StructureRepository.
func (r *structureRepository) GetByEmployeeID(ctx context.Context, employeeID string, companyID string) (compensation.Structure, error) {
	return r.getByEmployeeID(ctx, employeeID, companyID, false)
}

// GetByEmployeeIDForUpdate implements compensation.StructureRepository.
func (r *structureRepository) GetByEmployeeIDForUpdate(ctx context.Context, employeeID string, companyID string) (compensation.Structure, error) {
	return r.getByEmployeeID(ctx, employeeID, companyID, true)
}

// Create implements compensation.StructureRepository.
func (r *structureRepository) Create(ctx context.Context, s compensation.Structure) (compensation.Structure, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return compensation.Structure{}, fmt.Errorf("failed to generate salary structure id: %w", err)
	}
	s.ID = id.String()
	s.Version = 1

	query := `
		INSERT INTO salary_structures (
			id, employee_id, company_id, monthly_wage, working_days_per_week, break_time_hours,
			basic_mode, basic_magnitude,
			house_rent_allowance_mode, house_rent_allowance_magnitude,
			standard_allowance_mode, standard_allowance_magnitude,
			performance_bonus_mode, performance_bonus_magnitude,
			travel_allowance_mode, travel_allowance_magnitude,
			provident_fund_rate, professional_tax, version, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		s.ID, s.EmployeeID, s.CompanyID,
		s.Input.MonthlyWage, s.Input.WorkingDaysPerWeek, s.Input.BreakTimeHours,
		s.Rules.Basic.Mode, s.Rules.Basic.Magnitude,
		s.Rules.HouseRentAllowance.Mode, s.Rules.HouseRentAllowance.Magnitude,
		s.Rules.StandardAllowance.Mode, s.Rules.StandardAllowance.Magnitude,
		s.Rules.PerformanceBonus.Mode, s.Rules.PerformanceBonus.Magnitude,
		s.Rules.TravelAllowance.Mode, s.Rules.TravelAllowance.Magnitude,
		s.Statutory.ProvidentFundRate, s.Statutory.ProfessionalTax,
		s.Version, s.UpdatedBy,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return compensation.Structure{}, compensation.ErrStructureAlreadyExists
			case pgForeignKeyViolation:
				return compensation.Structure{}, employee.ErrEmployeeNotFound
			}
		}
		return compensation.Structure{}, fmt.Errorf("failed to create salary structure: %w", err)
	}

	return s, nil
}

// Update implements compensation.StructureRepository.
func (r *structureRepository) Update(ctx context.Context, s compensation.Structure) (compensation.Structure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_structures SET
			monthly_wage = $1, working_days_per_week = $2, break_time_hours = $3,
			basic_mode = $4, basic_magnitude = $5,
			house_rent_allowance_mode = $6, house_rent_allowance_magnitude = $7,
			standard_allowance_mode = $8, standard_allowance_magnitude = $9,
			performance_bonus_mode = $10, performance_bonus_magnitude = $11,
			travel_allowance_mode = $12, travel_allowance_magnitude = $13,
			provident_fund_rate = $14, professional_tax = $15,
			updated_by = $16, version = version + 1, updated_at = NOW()
		WHERE employee_id = $17 AND company_id = $18 AND version = $19
		RETURNING version, updated_at
	`

	err := q.QueryRow(ctx, query,
		s.Input.MonthlyWage, s.Input.WorkingDaysPerWeek, s.Input.BreakTimeHours,
		s.Rules.Basic.Mode, s.Rules.Basic.Magnitude,
		s.Rules.HouseRentAllowance.Mode, s.Rules.HouseRentAllowance.Magnitude,
		s.Rules.StandardAllowance.Mode, s.Rules.StandardAllowance.Magnitude,
		s.Rules.PerformanceBonus.Mode, s.Rules.PerformanceBonus.Magnitude,
		s.Rules.TravelAllowance.Mode, s.Rules.TravelAllowance.Magnitude,
		s.Statutory.ProvidentFundRate, s.Statutory.ProfessionalTax,
		s.UpdatedBy, s.EmployeeID, s.CompanyID, s.Version,
	).Scan(&s.Version, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return compensation.Structure{}, compensation.ErrStaleStructure
		}
		return compensation.Structure{}, fmt.Errorf("failed to update salary structure for employee %s: %w", s.EmployeeID, err)
	}

	return s, nil
}

// DeleteByEmployeeID implements compensation.StructureRepository.
func (r *structureRepository) DeleteByEmployeeID(ctx context.Context, employeeID string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM salary_structures WHERE employee_id = $1 AND company_id = $2`, employeeID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete salary structure for employee %s: %w", employeeID, err)
	}
	if tag.RowsAffected() == 0 {
		return compensation.ErrStructureNotFound
	}
	return nil
}

func filterPredicate(companyID string, filter compensation.StructureFilter) sq.And {
	and := sq.And{sq.Eq{"s.company_id": companyID}, sq.Eq{"e.deleted_at": nil}}
	if filter.Search != nil && !validator.IsEmpty(*filter.Search) {
		pattern := "%" + strings.TrimSpace(*filter.Search) + "%"
		and = append(and, sq.Or{
			sq.ILike{"e.full_name": pattern},
			sq.ILike{"e.employee_code": pattern},
		})
	}
	return and
}

func (r *structureRepository) query(ctx context.Context, b sq.SelectBuilder) ([]compensation.Structure, error) {
	q := GetQuerier(ctx, r.db)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary structures: %w", err)
	}
	defer rows.Close()

	structures := make([]compensation.Structure, 0)
	for rows.Next() {
		s, err := scanStructure(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary structure: %w", err)
		}
		structures = append(structures, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary structures: %w", err)
	}

	return structures, nil
}

// List implements compensation.StructureRepository.
func (r *structureRepository) List(ctx context.Context, companyID string, filter compensation.StructureFilter) ([]compensation.Structure, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	b := selectStructures().
		Where(filterPredicate(companyID, filter)).
		OrderBy("e.full_name ASC", "s.employee_id ASC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit))

	return r.query(ctx, b)
}

// ListAll implements compensation.StructureRepository.
func (r *structureRepository) ListAll(ctx context.Context, companyID string) ([]compensation.Structure, error) {
	b := selectStructures().
		Where(filterPredicate(companyID, compensation.StructureFilter{})).
		OrderBy("e.full_name ASC", "s.employee_id ASC")

	return r.query(ctx, b)
}

// Count implements compensation.StructureRepository.
func (r *structureRepository) Count(ctx context.Context, companyID string, filter compensation.StructureFilter) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query, args, err := sq.Select("COUNT(*)").
		From("salary_structures s").
		Join("employees e ON s.employee_id = e.id").
		Where(filterPredicate(companyID, filter)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var total int64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count salary structures: %w", err)
	}
	return total, nil
}
