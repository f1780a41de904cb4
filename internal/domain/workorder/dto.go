package workorder

import (
	"github.com/agrilabs/agripay-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== REQUEST DTOs ==========

type CreateAssignmentRequest struct {
	WorkerID     string           `json:"worker_id"`
	Rate         decimal.Decimal  `json:"rate"`
	WorkDays     *decimal.Decimal `json:"work_days,omitempty"`
	WorkAreaSize *decimal.Decimal `json:"work_area_size,omitempty"`
}

type CreateWorkOrderRequest struct {
	Number      string                    `json:"number"`
	RateType    string                    `json:"rate_type"`
	Description *string                   `json:"description,omitempty"`
	Assignments []CreateAssignmentRequest `json:"assignments,omitempty"`
}

func (r *CreateWorkOrderRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidWorkOrderNumber(r.Number) {
		errs = append(errs, validator.ValidationError{Field: "number", Message: "must match WO-YYYY-NNNN"})
	}
	rateType := RateType(r.RateType)
	if !rateType.Valid() {
		errs = append(errs, validator.ValidationError{Field: "rate_type", Message: "must be 'normal', 'work_days' or 'resources'"})
	}
	if rateType == RateTypeResources && len(r.Assignments) > 0 {
		errs = append(errs, validator.ValidationError{Field: "assignments", Message: "resources orders cannot have worker assignments"})
	}

	for i, a := range r.Assignments {
		field := "assignments[" + validator.Itoa(i) + "]"
		if validator.IsEmpty(a.WorkerID) {
			errs = append(errs, validator.ValidationError{Field: field + ".worker_id", Message: "is required"})
		}
		if a.Rate.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + ".rate", Message: "must be non-negative"})
		}
		switch rateType {
		case RateTypeWorkDays:
			if a.WorkDays == nil || a.WorkDays.IsNegative() {
				errs = append(errs, validator.ValidationError{Field: field + ".work_days", Message: "is required and must be non-negative"})
			}
		case RateTypeNormal:
			if a.WorkAreaSize == nil || a.WorkAreaSize.IsNegative() {
				errs = append(errs, validator.ValidationError{Field: field + ".work_area_size", Message: "is required and must be non-negative"})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TransitionRequest struct {
	ID     string
	Status string `json:"status"`
}

func (r *TransitionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Status(r.Status).Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'ongoing', 'pending', 'completed' or 'rejected'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WorkOrderFilter struct {
	Status           *string
	RateType         *string
	IncludeDiscarded bool
	Page             int
	Limit            int
}

// ========== RESPONSE DTOs ==========

type AssignmentResponse struct {
	ID           string           `json:"id"`
	WorkerID     string           `json:"worker_id"`
	WorkerName   *string          `json:"worker_name,omitempty"`
	Rate         decimal.Decimal  `json:"rate"`
	WorkDays     *decimal.Decimal `json:"work_days,omitempty"`
	WorkAreaSize *decimal.Decimal `json:"work_area_size,omitempty"`
	Amount       decimal.Decimal  `json:"amount"`
}

type WorkOrderResponse struct {
	ID          string               `json:"id"`
	Number      string               `json:"number"`
	RateType    string               `json:"rate_type"`
	Status      string               `json:"status"`
	Description *string              `json:"description,omitempty"`
	CompletedAt *string              `json:"completed_at,omitempty"`
	DiscardedAt *string              `json:"discarded_at,omitempty"`
	Assignments []AssignmentResponse `json:"assignments"`
}

type ListWorkOrderResponse struct {
	Data       []WorkOrderResponse `json:"data"`
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
}
