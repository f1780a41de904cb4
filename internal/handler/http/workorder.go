package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/agrilabs/agripay-backend-go/internal/domain/workorder"
	"github.com/agrilabs/agripay-backend-go/internal/handler/http/response"
	"github.com/agrilabs/agripay-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type WorkOrderHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Transition(w http.ResponseWriter, r *http.Request)
	Discard(w http.ResponseWriter, r *http.Request)
	Restore(w http.ResponseWriter, r *http.Request)
}

type workOrderHandlerImpl struct {
	workOrderService workorder.WorkOrderService
	jwtService       jwt.Service
}

func NewWorkOrderHandler(workOrderService workorder.WorkOrderService, jwtService jwt.Service) WorkOrderHandler {
	return &workOrderHandlerImpl{workOrderService: workOrderService, jwtService: jwtService}
}

// subject identifies the caller for the audit log. The token already
// passed verification in the auth middleware.
func (h *workOrderHandlerImpl) subject(r *http.Request) string {
	subject, err := h.jwtService.SubjectFromToken(jwtauth.TokenFromHeader(r))
	if err != nil {
		return ""
	}
	return subject
}

func (h *workOrderHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req workorder.CreateWorkOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.workOrderService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Work order created", result)
}

func (h *workOrderHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Work order ID is required", nil)
		return
	}

	result, err := h.workOrderService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *workOrderHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := workorder.WorkOrderFilter{
		IncludeDiscarded: r.URL.Query().Get("include_discarded") == "true",
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}
	if rateType := r.URL.Query().Get("rate_type"); rateType != "" {
		filter.RateType = &rateType
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.workOrderService.List(r.Context(), filter)
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

func (h *workOrderHandlerImpl) Transition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Work order ID is required", nil)
		return
	}

	var req workorder.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.workOrderService.Transition(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Work order transitioned",
		slog.String("work_order_id", id),
		slog.String("status", req.Status),
		slog.String("subject", h.subject(r)))
	response.Success(w, result)
}

func (h *workOrderHandlerImpl) Discard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Work order ID is required", nil)
		return
	}

	if err := h.workOrderService.Discard(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Work order discarded",
		slog.String("work_order_id", id),
		slog.String("subject", h.subject(r)))
	response.SuccessWithMessage(w, "Work order discarded", nil)
}

func (h *workOrderHandlerImpl) Restore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Work order ID is required", nil)
		return
	}

	result, err := h.workOrderService.Restore(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Work order restored",
		slog.String("work_order_id", id),
		slog.String("subject", h.subject(r)))
	response.SuccessWithMessage(w, "Work order restored", result)
}
