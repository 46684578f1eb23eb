package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-compensation-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CompensationHandler interface {
	// Company scope
	PreviewDraft(w http.ResponseWriter, r *http.Request)
	ListStructures(w http.ResponseWriter, r *http.Request)
	InitializeStructure(w http.ResponseWriter, r *http.Request)

	// Employee scope
	GetStructure(w http.ResponseWriter, r *http.Request)
	PreviewStructure(w http.ResponseWriter, r *http.Request)
	UpdateStructure(w http.ResponseWriter, r *http.Request)
	DeleteStructure(w http.ResponseWriter, r *http.Request)
	ExportSalarySlip(w http.ResponseWriter, r *http.Request)
}

type compensationHandlerImpl struct {
	compensationService compensation.CompensationService
}

func NewCompensationHandler(compensationService compensation.CompensationService) CompensationHandler {
	return &compensationHandlerImpl{compensationService: compensationService}
}

// employeeIDParam writes a 400 and returns false when the path id is malformed.
func employeeIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "employeeID")
	if id == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return "", false
	}
	if err := uuid.Validate(id); err != nil {
		response.BadRequest(w, "Employee ID must be a valid UUID", nil)
		return "", false
	}
	return id, true
}

// ========== COMPANY SCOPE ==========

func (h *compensationHandlerImpl) PreviewDraft(w http.ResponseWriter, r *http.Request) {
	var req compensation.ConfigurationPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.compensationService.PreviewDraft(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) ListStructures(w http.ResponseWriter, r *http.Request) {
	filter := compensation.StructureFilter{
		Page:  1,
		Limit: 20,
	}

	invalid := map[string]string{}
	if v, ok := positiveQueryInt(r, "page"); !ok {
		invalid["page"] = "must be a positive integer"
	} else if v > 0 {
		filter.Page = v
	}
	if v, ok := positiveQueryInt(r, "limit"); !ok {
		invalid["limit"] = "must be a positive integer"
	} else if v > 0 {
		filter.Limit = v
	}
	if len(invalid) > 0 {
		response.BadRequest(w, "Invalid paging parameters", invalid)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}
	if search := r.URL.Query().Get("search"); search != "" {
		filter.Search = &search
	}

	result, err := h.compensationService.ListStructures(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	}
	response.Page(w, result, response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

// positiveQueryInt returns 0, true when key is absent.
func positiveQueryInt(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}

func (h *compensationHandlerImpl) InitializeStructure(w http.ResponseWriter, r *http.Request) {
	var req compensation.InitializeStructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.compensationService.InitializeStructure(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary structure initialized", result)
}

// ========== EMPLOYEE SCOPE ==========

func (h *compensationHandlerImpl) GetStructure(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.compensationService.GetStructure(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) PreviewStructure(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	var req compensation.UpdateStructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.compensationService.PreviewStructure(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) UpdateStructure(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	var req compensation.UpdateStructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.compensationService.UpdateStructure(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary structure updated", result)
}

func (h *compensationHandlerImpl) DeleteStructure(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	if err := h.compensationService.DeleteStructure(r.Context(), employeeID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary structure deleted", nil)
}

func (h *compensationHandlerImpl) ExportSalarySlip(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	body, err := h.compensationService.ExportSalarySlip(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.PDF(w, fmt.Sprintf("salary-slip-%s.pdf", employeeID), body)
}
