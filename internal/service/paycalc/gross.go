package paycalc

import (
	"github.com/agrilabs/agripay-backend-go/internal/domain/workorder"
	"github.com/shopspring/decimal"
)

// GrossForAssignment computes one assignment's gross salary contribution
// from its order's rate type: work-days orders pay rate x work days,
// normal orders pay rate x work area size. A missing quantity or a
// resources order contributes zero.
func GrossForAssignment(assignment workorder.WorkerAssignment, rateType workorder.RateType) decimal.Decimal {
	switch rateType {
	case workorder.RateTypeWorkDays:
		if assignment.WorkDays == nil {
			return decimal.Zero
		}
		return assignment.Rate.Mul(*assignment.WorkDays)
	case workorder.RateTypeNormal:
		if assignment.WorkAreaSize == nil {
			return decimal.Zero
		}
		return assignment.Rate.Mul(*assignment.WorkAreaSize)
	default:
		return decimal.Zero
	}
}

// GrossForAssignments sums contributions over a worker's assignments.
func GrossForAssignments(assignments []workorder.AssignmentWithRateType) decimal.Decimal {
	total := decimal.Zero
	for _, a := range assignments {
		total = total.Add(GrossForAssignment(a.Assignment, a.RateType))
	}
	return total
}
