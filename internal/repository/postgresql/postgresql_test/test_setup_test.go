package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps the integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

var schemaFiles = []string{
	filepath.Join("testdata", "core_tables.sql"),
	filepath.Join("..", "..", "..", "..", "migrations", "000001_create_salary_structures.up.sql"),
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema. The
// test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(db.Close)

	ctx := context.Background()
	for _, file := range schemaFiles {
		sql, err := os.ReadFile(file)
		require.NoError(t, err)
		_, err = db.Exec(ctx, string(sql))
		require.NoError(t, err, "failed to apply %s", file)
	}

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	return setup
}

// TruncateAllTables clears the tables the tests write to.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"salary_structures",
		"employees",
		"positions",
		"users",
		"companies",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (t *TestDatabaseSetup) CreateCompany(tb testing.TB, ctx context.Context, username string) string {
	tb.Helper()
	var id string
	err := t.DB.QueryRow(ctx, `
		INSERT INTO companies (id, name, username, created_at, updated_at)
		VALUES (gen_random_uuid(), 'Test Company', $1, NOW(), NOW())
		RETURNING id
	`, username).Scan(&id)
	require.NoError(tb, err)
	return id
}

func (t *TestDatabaseSetup) CreateEmployee(tb testing.TB, ctx context.Context, companyID, code, name string) string {
	tb.Helper()
	var id string
	err := t.DB.QueryRow(ctx, `
		INSERT INTO employees (id, company_id, employee_code, full_name, hire_date, employment_status, bank_name, bank_account_number)
		VALUES (gen_random_uuid(), $1, $2, $3, CURRENT_DATE, 'active', 'BCA', '1234567890')
		RETURNING id
	`, companyID, code, name).Scan(&id)
	require.NoError(tb, err)
	return id
}
