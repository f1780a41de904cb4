package http

import (
	"net/http"
	"strconv"

	"github.com/agrilabs/agripay-backend-go/internal/domain/paycalc"
	"github.com/agrilabs/agripay-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayCalculationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	GetWorkerDetail(w http.ResponseWriter, r *http.Request)
}

type payCalculationHandlerImpl struct {
	payCalculationService paycalc.PayCalculationService
}

func NewPayCalculationHandler(payCalculationService paycalc.PayCalculationService) PayCalculationHandler {
	return &payCalculationHandlerImpl{payCalculationService: payCalculationService}
}

func (h *payCalculationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := paycalc.PayCalculationFilter{}
	if year := r.URL.Query().Get("year"); year != "" {
		parsed, err := strconv.Atoi(year)
		if err != nil {
			response.BadRequest(w, "Year must be a number", nil)
			return
		}
		filter.Year = &parsed
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.payCalculationService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

func (h *payCalculationHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := paycalc.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		response.HandleError(w, paycalc.ErrInvalidPeriod)
		return
	}

	result, err := h.payCalculationService.GetPeriod(r.Context(), period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payCalculationHandlerImpl) GetWorkerDetail(w http.ResponseWriter, r *http.Request) {
	period, err := paycalc.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		response.HandleError(w, paycalc.ErrInvalidPeriod)
		return
	}

	workerID := chi.URLParam(r, "workerID")
	if workerID == "" {
		response.BadRequest(w, "Worker ID is required", nil)
		return
	}

	result, err := h.payCalculationService.GetWorkerDetail(r.Context(), period, workerID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
