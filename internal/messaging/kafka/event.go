package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EmployeeLifecycleTopic = "hr.employee.lifecycle.v1"

type EventType string

const (
	EmployeeCreated EventType = "employee.created"
	EmployeeDeleted EventType = "employee.deleted"
)

// EmployeeLifecycleEvent is published by the employee service when an
// employee joins or leaves a company.
type EmployeeLifecycleEvent struct {
	Type        EventType        `json:"type"`
	CompanyID   string           `json:"company_id"`
	EmployeeID  string           `json:"employee_id"`
	MonthlyWage *decimal.Decimal `json:"monthly_wage,omitempty"`
}

func decodeEvent(value []byte) (EmployeeLifecycleEvent, error) {
	var event EmployeeLifecycleEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return event, fmt.Errorf("decode employee lifecycle event: %w", err)
	}
	if err := uuid.Validate(event.CompanyID); err != nil {
		return event, fmt.Errorf("employee lifecycle event company_id: %w", err)
	}
	if err := uuid.Validate(event.EmployeeID); err != nil {
		return event, fmt.Errorf("employee lifecycle event employee_id: %w", err)
	}
	return event, nil
}
