package paycalc

import (
	"context"

	"github.com/agrilabs/agripay-backend-go/internal/domain/workorder"
)

// PayCalculationService maintains pay calculations in response to work
// order lifecycle events and serves the read API.
type PayCalculationService interface {
	// ProcessWorkOrder accumulates a completed order's gross salary into
	// the period's pay calculation and refreshes each affected worker's
	// deduction snapshot. Resources orders and orders without worker
	// assignments are a successful no-op. Runs in the caller's
	// transaction when one is present in ctx.
	ProcessWorkOrder(ctx context.Context, order workorder.WorkOrder) error

	// ReverseWorkOrder is the compensating transaction run before a
	// completed order is discarded: each affected worker's gross is
	// recomputed from the remaining active completed orders of the
	// period, never by subtracting a delta.
	ReverseWorkOrder(ctx context.Context, order workorder.WorkOrder) error

	List(ctx context.Context, filter PayCalculationFilter) (ListPayCalculationResponse, error)
	GetPeriod(ctx context.Context, period Period) (PayCalculationWithDetailsResponse, error)
	GetWorkerDetail(ctx context.Context, period Period, workerID string) (DetailResponse, error)
}
