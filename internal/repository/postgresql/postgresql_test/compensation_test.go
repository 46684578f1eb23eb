package postgresql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-compensation-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStructure(companyID, employeeID string, wage int64) compensation.Structure {
	return compensation.Structure{
		EmployeeID:    employeeID,
		CompanyID:     companyID,
		Configuration: compensation.StandardDefaults().Configuration(decimal.NewFromInt(wage)),
	}
}

func TestStructureRepository_CreateAndGet(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewStructureRepository(setup.DB)

	companyID := setup.CreateCompany(t, ctx, "acme-create")
	employeeID := setup.CreateEmployee(t, ctx, companyID, "EMP-001", "Ayu Lestari")

	created, err := repo.Create(ctx, newStructure(companyID, employeeID, 50000))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Version)

	got, err := repo.GetByEmployeeID(ctx, employeeID, companyID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, decimal.NewFromInt(50000).Equal(got.Input.MonthlyWage))
	assert.Equal(t, compensation.ModeFixed, got.Rules.StandardAllowance.Mode)
	assert.True(t, decimal.RequireFromString("8.33").Equal(got.Rules.TravelAllowance.Magnitude))
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Ayu Lestari", *got.EmployeeName)

	_, err = repo.Create(ctx, newStructure(companyID, employeeID, 1))
	assert.ErrorIs(t, err, compensation.ErrStructureAlreadyExists)
}

func TestStructureRepository_CreateUnknownEmployee(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewStructureRepository(setup.DB)

	companyID := setup.CreateCompany(t, ctx, "acme-unknown")

	_, err := repo.Create(ctx, newStructure(companyID, uuid.NewString(), 50000))
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestStructureRepository_GetScopedByCompany(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewStructureRepository(setup.DB)

	companyID := setup.CreateCompany(t, ctx, "acme-scope")
	otherCompanyID := setup.CreateCompany(t, ctx, "globex-scope")
	employeeID := setup.CreateEmployee(t, ctx, companyID, "EMP-001", "Ayu Lestari")

	_, err := repo.Create(ctx, newStructure(companyID, employeeID, 50000))
	require.NoError(t, err)

	_, err = repo.GetByEmployeeID(ctx, employeeID, otherCompanyID)
	assert.ErrorIs(t, err, compensation.ErrStructureNotFound)
}

func TestStructureRepository_UpdateGuardsVersion(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewStructureRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	companyID := setup.CreateCompany(t, ctx, "acme-update")
	employeeID := setup.CreateEmployee(t, ctx, companyID, "EMP-001", "Ayu Lestari")
	_, err := repo.Create(ctx, newStructure(companyID, employeeID, 50000))
	require.NoError(t, err)

	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		s, err := repo.GetByEmployeeIDForUpdate(ctx, employeeID, companyID)
		if err != nil {
			return err
		}
		s.Input.MonthlyWage = decimal.NewFromInt(60000)
		updated, err := repo.Update(ctx, s)
		if err != nil {
			return err
		}
		assert.Equal(t, 2, updated.Version)
		return nil
	})
	require.NoError(t, err)

	stale := newStructure(companyID, employeeID, 70000)
	stale.Version = 1
	_, err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, compensation.ErrStaleStructure)

	got, err := repo.GetByEmployeeID(ctx, employeeID, companyID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(60000).Equal(got.Input.MonthlyWage))
}

func TestStructureRepository_TransactionRollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewStructureRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	companyID := setup.CreateCompany(t, ctx, "acme-rollback")
	employeeID := setup.CreateEmployee(t, ctx, companyID, "EMP-001", "Ayu Lestari")
	_, err := repo.Create(ctx, newStructure(companyID, employeeID, 50000))
	require.NoError(t, err)

	errAbort := errors.New("abort")
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		s, err := repo.GetByEmployeeIDForUpdate(ctx, employeeID, companyID)
		if err != nil {
			return err
		}
		s.Input.MonthlyWage = decimal.NewFromInt(1)
		if _, err := repo.Update(ctx, s); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	got, err := repo.GetByEmployeeID(ctx, employeeID, companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.True(t, decimal.NewFromInt(50000).Equal(got.Input.MonthlyWage))
}

func TestStructureRepository_ListAndCount(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewStructureRepository(setup.DB)

	companyID := setup.CreateCompany(t, ctx, "acme-list")
	for i, name := range []string{"Ayu Lestari", "Budi Santoso", "Citra Dewi"} {
		id := setup.CreateEmployee(t, ctx, companyID, "EMP-00"+string(rune('1'+i)), name)
		_, err := repo.Create(ctx, newStructure(companyID, id, 50000))
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, companyID, compensation.StructureFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Ayu Lestari", *page[0].EmployeeName)

	search := "budi"
	filter := compensation.StructureFilter{Search: &search}
	found, err := repo.List(ctx, companyID, filter)
	require.NoError(t, err)
	require.Len(t, found, 1)

	total, err := repo.Count(ctx, companyID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	all, err := repo.ListAll(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStructureRepository_DeleteAndCascade(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewStructureRepository(setup.DB)

	companyID := setup.CreateCompany(t, ctx, "acme-delete")
	first := setup.CreateEmployee(t, ctx, companyID, "EMP-001", "Ayu Lestari")
	second := setup.CreateEmployee(t, ctx, companyID, "EMP-002", "Budi Santoso")
	for _, id := range []string{first, second} {
		_, err := repo.Create(ctx, newStructure(companyID, id, 50000))
		require.NoError(t, err)
	}

	require.NoError(t, repo.DeleteByEmployeeID(ctx, first, companyID))
	assert.ErrorIs(t, repo.DeleteByEmployeeID(ctx, first, companyID), compensation.ErrStructureNotFound)

	_, err := setup.DB.Exec(ctx, `DELETE FROM employees WHERE id = $1`, second)
	require.NoError(t, err)
	_, err = repo.GetByEmployeeID(ctx, second, companyID)
	assert.ErrorIs(t, err, compensation.ErrStructureNotFound)
}

func TestEmployeeRepository_GetByID(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	companyID := setup.CreateCompany(t, ctx, "acme-employee")
	employeeID := setup.CreateEmployee(t, ctx, companyID, "EMP-001", "Ayu Lestari")

	emp, err := repo.GetByID(ctx, employeeID, companyID)
	require.NoError(t, err)
	assert.Equal(t, "EMP-001", emp.EmployeeCode)
	assert.True(t, emp.IsActive())

	_, err = repo.GetByID(ctx, uuid.NewString(), companyID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
