package response

import (
	"errors"
	"net/http"

	"github.com/agrilabs/agripay-backend-go/internal/domain/deduction"
	"github.com/agrilabs/agripay-backend-go/internal/domain/paycalc"
	"github.com/agrilabs/agripay-backend-go/internal/domain/worker"
	"github.com/agrilabs/agripay-backend-go/internal/domain/workorder"
	"github.com/agrilabs/agripay-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Worker domain errors
	case errors.Is(err, worker.ErrWorkerNotFound):
		NotFound(w, "Worker not found")

	// Work order domain errors
	case errors.Is(err, workorder.ErrWorkOrderNotFound):
		NotFound(w, "Work order not found")
	case errors.Is(err, workorder.ErrWorkOrderNumberExists):
		Conflict(w, "Work order number already exists")
	case errors.Is(err, workorder.ErrInvalidTransition):
		Conflict(w, "Invalid work order status transition")
	case errors.Is(err, workorder.ErrAlreadyDiscarded):
		Conflict(w, "Work order is already discarded")
	case errors.Is(err, workorder.ErrNotDiscarded):
		Conflict(w, "Work order is not discarded")

	// Deduction domain errors
	case errors.Is(err, deduction.ErrRuleNotFound):
		NotFound(w, "Deduction rule not found")
	case errors.Is(err, deduction.ErrNoOpenRule):
		NotFound(w, "No open deduction rule version for this code")
	case errors.Is(err, deduction.ErrDuplicateOpenRule):
		Conflict(w, "An open deduction rule version already exists for this code")
	case errors.Is(err, deduction.ErrOverlappingWindow):
		Conflict(w, "Deduction rule effective windows overlap")
	case errors.Is(err, deduction.ErrInvalidBracketPartition):
		BadRequest(w, "Wage brackets must partition the wage range without gaps or overlaps", nil)
	case errors.Is(err, deduction.ErrNoMatchingBracket):
		UnprocessableConfiguration(w, "No wage bracket matches the gross salary")
	case errors.Is(err, deduction.ErrOverlappingBrackets):
		UnprocessableConfiguration(w, "Multiple wage brackets match the gross salary")

	// Pay calculation domain errors
	case errors.Is(err, paycalc.ErrPayCalculationNotFound):
		NotFound(w, "Pay calculation not found")
	case errors.Is(err, paycalc.ErrDetailNotFound):
		NotFound(w, "Pay calculation detail not found")
	case errors.Is(err, paycalc.ErrInvalidPeriod):
		BadRequest(w, "Period must be YYYY-MM", nil)
	case errors.Is(err, paycalc.ErrConcurrentUpdate):
		Conflict(w, "Pay calculation was modified concurrently, retry the request")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
