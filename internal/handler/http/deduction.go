package http

import (
	"encoding/json"
	"net/http"

	"github.com/agrilabs/agripay-backend-go/internal/domain/deduction"
	"github.com/agrilabs/agripay-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type DeductionHandler interface {
	CreateRule(w http.ResponseWriter, r *http.Request)
	GetRule(w http.ResponseWriter, r *http.Request)
	ListRules(w http.ResponseWriter, r *http.Request)
	ListRuleVersions(w http.ResponseWriter, r *http.Request)
	UpdateRate(w http.ResponseWriter, r *http.Request)
	DeactivateRule(w http.ResponseWriter, r *http.Request)

	ListBrackets(w http.ResponseWriter, r *http.Request)
	ReplaceBrackets(w http.ResponseWriter, r *http.Request)

	ImportRules(w http.ResponseWriter, r *http.Request)
	ImportBrackets(w http.ResponseWriter, r *http.Request)
}

type deductionHandlerImpl struct {
	ruleService deduction.RuleService
}

func NewDeductionHandler(ruleService deduction.RuleService) DeductionHandler {
	return &deductionHandlerImpl{ruleService: ruleService}
}

// ========== RULES ==========

func (h *deductionHandlerImpl) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req deduction.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.ruleService.CreateRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Deduction rule created", result)
}

func (h *deductionHandlerImpl) GetRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Rule ID is required", nil)
		return
	}

	result, err := h.ruleService.GetRule(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *deductionHandlerImpl) ListRules(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	result, err := h.ruleService.ListRules(r.Context(), activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *deductionHandlerImpl) ListRuleVersions(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.BadRequest(w, "Rule code is required", nil)
		return
	}

	result, err := h.ruleService.ListRuleVersions(r.Context(), code)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *deductionHandlerImpl) UpdateRate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.BadRequest(w, "Rule code is required", nil)
		return
	}

	var req deduction.UpdateRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.Code = code

	result, err := h.ruleService.UpdateRate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Deduction rate updated", result)
}

func (h *deductionHandlerImpl) DeactivateRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Rule ID is required", nil)
		return
	}

	if err := h.ruleService.DeactivateRule(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Deduction rule deactivated", nil)
}

// ========== BRACKETS ==========

func (h *deductionHandlerImpl) ListBrackets(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.BadRequest(w, "Rule code is required", nil)
		return
	}

	result, err := h.ruleService.ListBrackets(r.Context(), code)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *deductionHandlerImpl) ReplaceBrackets(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.BadRequest(w, "Rule code is required", nil)
		return
	}

	var req deduction.ReplaceBracketsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.Code = code

	result, err := h.ruleService.ReplaceBrackets(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Wage brackets replaced", result)
}

// ========== CSV IMPORT ==========

func (h *deductionHandlerImpl) ImportRules(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "CSV file is required", nil)
		return
	}
	defer file.Close()

	result, err := h.ruleService.ImportRules(r.Context(), file)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Deduction rules imported", result)
}

func (h *deductionHandlerImpl) ImportBrackets(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "CSV file is required", nil)
		return
	}
	defer file.Close()

	result, err := h.ruleService.ImportBrackets(r.Context(), file)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Wage brackets imported", result)
}
