package employee

import "time"

// Employee is the subset of the employees table salary structures depend on.
type Employee struct {
	ID                string
	UserID            *string
	CompanyID         string
	EmployeeCode      string
	FullName          string
	PositionName      *string
	HireDate          time.Time
	EmploymentStatus  EmploymentStatus
	BankName          string
	BankAccountNumber string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive && e.DeletedAt == nil
}
