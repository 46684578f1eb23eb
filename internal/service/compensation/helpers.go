package compensation

import (
	"strings"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/validator"
)

func matchesSearch(st compensation.Structure, search *string) bool {
	if search == nil || validator.IsEmpty(*search) {
		return true
	}
	needle := strings.ToLower(strings.TrimSpace(*search))
	if st.EmployeeName != nil && strings.Contains(strings.ToLower(*st.EmployeeName), needle) {
		return true
	}
	return st.EmployeeCode != nil && strings.Contains(strings.ToLower(*st.EmployeeCode), needle)
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func stringOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
