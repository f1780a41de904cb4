package workorder

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateType enum
type RateType string

const (
	// RateTypeNormal pays rate x work area size.
	RateTypeNormal RateType = "normal"
	// RateTypeWorkDays pays rate x work days.
	RateTypeWorkDays RateType = "work_days"
	// RateTypeResources orders consume materials only and carry no
	// worker assignments; they never reach payroll.
	RateTypeResources RateType = "resources"
)

func (t RateType) Valid() bool {
	switch t {
	case RateTypeNormal, RateTypeWorkDays, RateTypeResources:
		return true
	}
	return false
}

// Status enum
type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOngoing, StatusPending, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// transitions is the full status state machine. Completed and rejected
// are terminal.
var transitions = map[Status][]Status{
	StatusOngoing: {StatusPending},
	StatusPending: {StatusCompleted, StatusRejected},
}

// CanTransitionTo reports whether s -> next is an allowed transition.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// WorkOrder - a unit of field work. The discard lifecycle (DiscardedAt)
// is orthogonal to status: a completed order can be discarded and later
// restored, and payroll is reversed/reprocessed around those moves.
type WorkOrder struct {
	ID          string
	Number      string
	RateType    RateType
	Status      Status
	Description *string
	CompletedAt *time.Time
	DiscardedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Assignments []WorkerAssignment
}

// Discarded reports whether the order is soft-deleted.
func (w WorkOrder) Discarded() bool {
	return w.DiscardedAt != nil
}

// Payable reports whether this order participates in pay calculation:
// completed, with a completion timestamp, and not a resources order.
func (w WorkOrder) Payable() bool {
	return w.Status == StatusCompleted && w.CompletedAt != nil && w.RateType != RateTypeResources
}

// WorkerAssignment - one worker's share of a work order. Immutable once
// the order is completed.
type WorkerAssignment struct {
	ID           string
	WorkOrderID  string
	WorkerID     string
	Rate         decimal.Decimal
	WorkDays     *decimal.Decimal
	WorkAreaSize *decimal.Decimal
	Amount       decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined fields
	WorkerName *string
}

// AssignmentWithRateType joins an assignment with its order's rate type,
// used when recomputing a worker's monthly gross from remaining orders.
type AssignmentWithRateType struct {
	Assignment WorkerAssignment
	RateType   RateType
}
