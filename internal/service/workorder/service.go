package workorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agrilabs/agripay-backend-go/internal/domain/paycalc"
	"github.com/agrilabs/agripay-backend-go/internal/domain/worker"
	"github.com/agrilabs/agripay-backend-go/internal/domain/workorder"
	"github.com/agrilabs/agripay-backend-go/internal/pkg/database"
	paycalcservice "github.com/agrilabs/agripay-backend-go/internal/service/paycalc"
)

type service struct {
	tx                    database.TxRunner
	workOrderRepository   workorder.WorkOrderRepository
	workerRepository      worker.WorkerRepository
	payCalculationService paycalc.PayCalculationService
}

func NewService(
	tx database.TxRunner,
	workOrderRepository workorder.WorkOrderRepository,
	workerRepository worker.WorkerRepository,
	payCalculationService paycalc.PayCalculationService,
) workorder.WorkOrderService {
	return &service{
		tx:                    tx,
		workOrderRepository:   workOrderRepository,
		workerRepository:      workerRepository,
		payCalculationService: payCalculationService,
	}
}

func (s *service) Create(ctx context.Context, req workorder.CreateWorkOrderRequest) (workorder.WorkOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return workorder.WorkOrderResponse{}, err
	}

	order := workorder.WorkOrder{
		Number:      req.Number,
		RateType:    workorder.RateType(req.RateType),
		Status:      workorder.StatusOngoing,
		Description: req.Description,
	}
	for _, a := range req.Assignments {
		assignment := workorder.WorkerAssignment{
			WorkerID:     a.WorkerID,
			Rate:         a.Rate,
			WorkDays:     a.WorkDays,
			WorkAreaSize: a.WorkAreaSize,
		}
		assignment.Amount = paycalcservice.GrossForAssignment(assignment, order.RateType)
		order.Assignments = append(order.Assignments, assignment)
	}

	var created workorder.WorkOrder
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		workerIDs := make([]string, 0, len(order.Assignments))
		for _, a := range order.Assignments {
			workerIDs = append(workerIDs, a.WorkerID)
		}
		workers, err := s.workerRepository.GetByIDs(ctx, workerIDs)
		if err != nil {
			return err
		}
		for _, id := range workerIDs {
			if _, ok := workers[id]; !ok {
				return fmt.Errorf("%w: %s", worker.ErrWorkerNotFound, id)
			}
		}

		created, err = s.workOrderRepository.Create(ctx, order)
		return err
	})
	if err != nil {
		return workorder.WorkOrderResponse{}, err
	}

	slog.Info("Work order created",
		slog.String("work_order_id", created.ID),
		slog.String("number", created.Number),
		slog.String("rate_type", string(created.RateType)))

	return toResponse(created), nil
}

func (s *service) Get(ctx context.Context, id string) (workorder.WorkOrderResponse, error) {
	order, err := s.workOrderRepository.GetByID(ctx, id)
	if err != nil {
		return workorder.WorkOrderResponse{}, err
	}
	return toResponse(order), nil
}

func (s *service) List(ctx context.Context, filter workorder.WorkOrderFilter) (workorder.ListWorkOrderResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	orders, totalCount, err := s.workOrderRepository.List(ctx, filter)
	if err != nil {
		return workorder.ListWorkOrderResponse{}, err
	}

	data := make([]workorder.WorkOrderResponse, 0, len(orders))
	for _, order := range orders {
		data = append(data, toResponse(order))
	}

	return workorder.ListWorkOrderResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// Transition advances the state machine under the order's row lock. On
// the pending -> completed edge the completion timestamp is stamped and
// pay processing runs in the same transaction.
func (s *service) Transition(ctx context.Context, req workorder.TransitionRequest) (workorder.WorkOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return workorder.WorkOrderResponse{}, err
	}
	target := workorder.Status(req.Status)

	var updated workorder.WorkOrder
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.workOrderRepository.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if order.Discarded() {
			return workorder.ErrAlreadyDiscarded
		}
		if !order.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", workorder.ErrInvalidTransition, order.Status, target)
		}

		if target == workorder.StatusCompleted {
			completedAt := time.Now().UTC()
			if err := s.workOrderRepository.MarkCompleted(ctx, order.ID, completedAt); err != nil {
				return err
			}
			order.Status = workorder.StatusCompleted
			order.CompletedAt = &completedAt

			if err := s.payCalculationService.ProcessWorkOrder(ctx, order); err != nil {
				return err
			}
		} else {
			if err := s.workOrderRepository.SetStatus(ctx, order.ID, target); err != nil {
				return err
			}
			order.Status = target
		}

		updated = order
		return nil
	})
	if err != nil {
		return workorder.WorkOrderResponse{}, err
	}

	slog.Info("Work order transitioned",
		slog.String("work_order_id", updated.ID),
		slog.String("status", string(updated.Status)))

	return toResponse(updated), nil
}

// Discard soft-deletes an order. The payroll reversal runs first inside
// the same transaction, so a failed reversal leaves the order active.
func (s *service) Discard(ctx context.Context, id string) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.workOrderRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.Discarded() {
			return workorder.ErrAlreadyDiscarded
		}

		if order.Status == workorder.StatusCompleted {
			if err := s.payCalculationService.ReverseWorkOrder(ctx, order); err != nil {
				return err
			}
		}

		discardedAt := time.Now().UTC()
		return s.workOrderRepository.SetDiscarded(ctx, order.ID, &discardedAt)
	})
	if err != nil {
		return err
	}

	slog.Info("Work order discarded", slog.String("work_order_id", id))
	return nil
}

// Restore clears the discard marker. A completed order's contribution
// is processed back into its period in the same transaction.
func (s *service) Restore(ctx context.Context, id string) (workorder.WorkOrderResponse, error) {
	var restored workorder.WorkOrder
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.workOrderRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !order.Discarded() {
			return workorder.ErrNotDiscarded
		}

		if err := s.workOrderRepository.SetDiscarded(ctx, order.ID, nil); err != nil {
			return err
		}
		order.DiscardedAt = nil

		if order.Status == workorder.StatusCompleted {
			if err := s.payCalculationService.ProcessWorkOrder(ctx, order); err != nil {
				return err
			}
		}

		restored = order
		return nil
	})
	if err != nil {
		return workorder.WorkOrderResponse{}, err
	}

	slog.Info("Work order restored", slog.String("work_order_id", id))
	return toResponse(restored), nil
}

func toResponse(order workorder.WorkOrder) workorder.WorkOrderResponse {
	resp := workorder.WorkOrderResponse{
		ID:          order.ID,
		Number:      order.Number,
		RateType:    string(order.RateType),
		Status:      string(order.Status),
		Description: order.Description,
		Assignments: make([]workorder.AssignmentResponse, 0, len(order.Assignments)),
	}
	if order.CompletedAt != nil {
		completedAt := order.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &completedAt
	}
	if order.DiscardedAt != nil {
		discardedAt := order.DiscardedAt.Format(time.RFC3339)
		resp.DiscardedAt = &discardedAt
	}
	for _, a := range order.Assignments {
		resp.Assignments = append(resp.Assignments, workorder.AssignmentResponse{
			ID:           a.ID,
			WorkerID:     a.WorkerID,
			WorkerName:   a.WorkerName,
			Rate:         a.Rate,
			WorkDays:     a.WorkDays,
			WorkAreaSize: a.WorkAreaSize,
			Amount:       a.Amount,
		})
	}
	return resp
}
