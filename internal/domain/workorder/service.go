package workorder

import "context"

// WorkOrderService owns the status state machine and the discard/restore
// lifecycle, including the payroll hooks around both.
type WorkOrderService interface {
	Create(ctx context.Context, req CreateWorkOrderRequest) (WorkOrderResponse, error)
	Get(ctx context.Context, id string) (WorkOrderResponse, error)
	List(ctx context.Context, filter WorkOrderFilter) (ListWorkOrderResponse, error)

	// Transition moves an order along the status state machine. A
	// transition to completed stamps the completion date and runs pay
	// processing in the same transaction: either both commit or neither.
	Transition(ctx context.Context, req TransitionRequest) (WorkOrderResponse, error)

	// Discard soft-deletes an order. For a completed order with a
	// completion date the pay reversal runs first, in the same
	// transaction; if reversal fails the discard is aborted.
	Discard(ctx context.Context, id string) error

	// Restore clears the discard marker and, for completed orders,
	// re-runs pay processing to add the order's contribution back.
	Restore(ctx context.Context, id string) (WorkOrderResponse, error)
}
