package compensation

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/employee"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"
)

type fakeStructureRepo struct {
	mu      sync.Mutex
	rows    map[string]compensation.Structure
	updates int
}

func newFakeStructureRepo() *fakeStructureRepo {
	return &fakeStructureRepo{rows: make(map[string]compensation.Structure)}
}

func (f *fakeStructureRepo) get(employeeID, companyID string) (compensation.Structure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.rows[employeeID]
	if !ok || st.CompanyID != companyID {
		return compensation.Structure{}, compensation.ErrStructureNotFound
	}
	return st, nil
}

func (f *fakeStructureRepo) GetByEmployeeID(_ context.Context, employeeID, companyID string) (compensation.Structure, error) {
	return f.get(employeeID, companyID)
}

func (f *fakeStructureRepo) GetByEmployeeIDForUpdate(_ context.Context, employeeID, companyID string) (compensation.Structure, error) {
	return f.get(employeeID, companyID)
}

func (f *fakeStructureRepo) Create(_ context.Context, st compensation.Structure) (compensation.Structure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[st.EmployeeID]; ok {
		return compensation.Structure{}, compensation.ErrStructureAlreadyExists
	}
	st.ID = uuid.NewString()
	st.Version = 1
	st.CreatedAt = time.Now()
	st.UpdatedAt = st.CreatedAt
	f.rows[st.EmployeeID] = st
	return st, nil
}

func (f *fakeStructureRepo) Update(_ context.Context, st compensation.Structure) (compensation.Structure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.rows[st.EmployeeID]
	if !ok || current.CompanyID != st.CompanyID || current.Version != st.Version {
		return compensation.Structure{}, compensation.ErrStaleStructure
	}
	st.Version++
	st.UpdatedAt = time.Now()
	f.rows[st.EmployeeID] = st
	f.updates++
	return st, nil
}

func (f *fakeStructureRepo) DeleteByEmployeeID(_ context.Context, employeeID, companyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.rows[employeeID]
	if !ok || st.CompanyID != companyID {
		return compensation.ErrStructureNotFound
	}
	delete(f.rows, employeeID)
	return nil
}

func (f *fakeStructureRepo) sorted(companyID string, search *string) []compensation.Structure {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]compensation.Structure, 0)
	for _, st := range f.rows {
		if st.CompanyID != companyID || !matchesSearch(st, search) {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(stringOr(out[i].EmployeeName, ""), stringOr(out[j].EmployeeName, "")) < 0
	})
	return out
}

func (f *fakeStructureRepo) List(_ context.Context, companyID string, filter compensation.StructureFilter) ([]compensation.Structure, error) {
	return paginate(f.sorted(companyID, filter.Search), filter.Page, filter.Limit), nil
}

func (f *fakeStructureRepo) Count(_ context.Context, companyID string, filter compensation.StructureFilter) (int64, error) {
	return int64(len(f.sorted(companyID, filter.Search))), nil
}

func (f *fakeStructureRepo) ListAll(_ context.Context, companyID string) ([]compensation.Structure, error) {
	return f.sorted(companyID, nil), nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id, companyID string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok || emp.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func withClaims(t *testing.T, claims map[string]interface{}) context.Context {
	t.Helper()
	token := jwt.New()
	for k, v := range claims {
		require.NoError(t, token.Set(k, v))
	}
	return jwtauth.NewContext(context.Background(), token, nil)
}
