package workorder

import (
	"context"
	"time"
)

// WorkOrderRepository defines data access for work orders and their
// worker assignments.
type WorkOrderRepository interface {
	Create(ctx context.Context, order WorkOrder) (WorkOrder, error)
	GetByID(ctx context.Context, id string) (WorkOrder, error)
	// GetByIDForUpdate locks the order row for the duration of the
	// surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id string) (WorkOrder, error)
	List(ctx context.Context, filter WorkOrderFilter) ([]WorkOrder, int64, error)

	SetStatus(ctx context.Context, id string, status Status) error
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) error
	SetDiscarded(ctx context.Context, id string, discardedAt *time.Time) error

	// ListActiveCompletedAssignments returns the worker's assignments on
	// every non-discarded completed work order whose completion date falls
	// in [from, until), excluding excludeOrderID. Resources orders carry
	// no assignments and so never appear.
	ListActiveCompletedAssignments(ctx context.Context, workerID string, from, until time.Time, excludeOrderID string) ([]AssignmentWithRateType, error)
}
