package paycalc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agrilabs/agripay-backend-go/internal/domain/paycalc"
	"github.com/agrilabs/agripay-backend-go/internal/domain/worker"
	"github.com/agrilabs/agripay-backend-go/internal/domain/workorder"
	"github.com/agrilabs/agripay-backend-go/internal/pkg/database"
	deductionservice "github.com/agrilabs/agripay-backend-go/internal/service/deduction"
	"github.com/shopspring/decimal"
)

const maxRetries = 3

type service struct {
	tx                       database.TxRunner
	payCalculationRepository paycalc.PayCalculationRepository
	workOrderRepository      workorder.WorkOrderRepository
	workerRepository         worker.WorkerRepository
	calculator               *deductionservice.Calculator
}

func NewService(
	tx database.TxRunner,
	payCalculationRepository paycalc.PayCalculationRepository,
	workOrderRepository workorder.WorkOrderRepository,
	workerRepository worker.WorkerRepository,
	calculator *deductionservice.Calculator,
) paycalc.PayCalculationService {
	return &service{
		tx:                       tx,
		payCalculationRepository: payCalculationRepository,
		workOrderRepository:      workOrderRepository,
		workerRepository:         workerRepository,
		calculator:               calculator,
	}
}

// ProcessWorkOrder folds a completed order into its period's pay
// calculation: each assigned worker's gross is accumulated and their
// deduction breakdown recomputed against the new gross.
func (s *service) ProcessWorkOrder(ctx context.Context, order workorder.WorkOrder) error {
	if !order.Payable() || order.Discarded() || len(order.Assignments) == 0 {
		return nil
	}

	period := paycalc.PeriodOf(*order.CompletedAt)
	contributions := groupContributions(order)

	err := s.withConcurrencyRetry(ctx, func(ctx context.Context) error {
		if _, err := s.payCalculationRepository.FindOrCreateForPeriod(ctx, period); err != nil {
			return err
		}
		calc, err := s.payCalculationRepository.GetByPeriodForUpdate(ctx, period)
		if err != nil {
			return err
		}

		workers, err := s.lookupWorkers(ctx, contributions)
		if err != nil {
			return err
		}

		for workerID, gross := range contributions {
			if err := s.accumulate(ctx, calc, workers[workerID], gross, period); err != nil {
				return err
			}
		}

		return s.recalculateTotals(ctx, calc)
	})
	if err != nil {
		return err
	}

	slog.Info("Work order processed into pay calculation",
		slog.String("work_order_id", order.ID),
		slog.String("period", period.String()),
		slog.Int("workers", len(contributions)))

	return nil
}

// ReverseWorkOrder undoes an order's payroll effect before it is
// discarded. Each affected worker's gross is recomputed from the
// period's remaining active completed orders rather than by subtracting
// the order's contribution, so the result is correct even if earlier
// state drifted.
func (s *service) ReverseWorkOrder(ctx context.Context, order workorder.WorkOrder) error {
	if order.CompletedAt == nil || order.RateType == workorder.RateTypeResources || len(order.Assignments) == 0 {
		return nil
	}

	period := paycalc.PeriodOf(*order.CompletedAt)
	contributions := groupContributions(order)

	err := s.withConcurrencyRetry(ctx, func(ctx context.Context) error {
		calc, err := s.payCalculationRepository.GetByPeriodForUpdate(ctx, period)
		if err != nil {
			// A period with no calculation has nothing to reverse.
			if errors.Is(err, paycalc.ErrPayCalculationNotFound) {
				return nil
			}
			return err
		}

		workers, err := s.lookupWorkers(ctx, contributions)
		if err != nil {
			return err
		}

		for workerID := range contributions {
			remaining, err := s.workOrderRepository.ListActiveCompletedAssignments(
				ctx, workerID, period.Start(), period.End(), order.ID)
			if err != nil {
				return err
			}
			gross := GrossForAssignments(remaining)

			if err := s.restate(ctx, calc, workers[workerID], gross, period); err != nil {
				return err
			}
		}

		return s.recalculateTotals(ctx, calc)
	})
	if err != nil {
		return err
	}

	slog.Info("Work order reversed from pay calculation",
		slog.String("work_order_id", order.ID),
		slog.String("period", period.String()),
		slog.Int("workers", len(contributions)))

	return nil
}

// accumulate adds gross to the worker's detail, creating it on first
// contribution, and refreshes the deduction snapshot.
func (s *service) accumulate(ctx context.Context, calc paycalc.PayCalculation, w worker.Worker, gross decimal.Decimal, period paycalc.Period) error {
	detail, err := s.payCalculationRepository.GetDetail(ctx, calc.ID, w.ID)
	switch {
	case err == nil:
		detail.GrossSalary = detail.GrossSalary.Add(gross)
	case errors.Is(err, paycalc.ErrDetailNotFound):
		detail = paycalc.PayCalculationDetail{
			PayCalculationID: calc.ID,
			WorkerID:         w.ID,
			GrossSalary:      gross,
		}
	default:
		return err
	}

	breakdown, err := s.calculator.Calculate(ctx, detail.GrossSalary, w.Nationality, period.Start())
	if err != nil {
		return err
	}
	detail.ApplyDeductions(breakdown)

	if detail.ID == "" {
		_, err = s.payCalculationRepository.CreateDetail(ctx, detail)
		return err
	}
	return s.payCalculationRepository.UpdateDetail(ctx, detail)
}

// restate overwrites the worker's detail with a gross recomputed from
// remaining orders. A worker whose recomputed gross is zero loses the
// detail entirely; fixed-kind rules must never deduct against an empty
// month.
func (s *service) restate(ctx context.Context, calc paycalc.PayCalculation, w worker.Worker, gross decimal.Decimal, period paycalc.Period) error {
	detail, err := s.payCalculationRepository.GetDetail(ctx, calc.ID, w.ID)
	if err != nil {
		if errors.Is(err, paycalc.ErrDetailNotFound) {
			return nil
		}
		return err
	}

	if gross.IsZero() {
		return s.payCalculationRepository.DeleteDetail(ctx, detail.ID)
	}

	detail.GrossSalary = gross
	breakdown, err := s.calculator.Calculate(ctx, gross, w.Nationality, period.Start())
	if err != nil {
		return err
	}
	detail.ApplyDeductions(breakdown)

	return s.payCalculationRepository.UpdateDetail(ctx, detail)
}

// recalculateTotals rebuilds the header totals from the surviving
// details and deletes the calculation when none remain.
func (s *service) recalculateTotals(ctx context.Context, calc paycalc.PayCalculation) error {
	details, err := s.payCalculationRepository.ListDetails(ctx, calc.ID)
	if err != nil {
		return err
	}

	if len(details) == 0 {
		return s.payCalculationRepository.Delete(ctx, calc.ID)
	}

	calc.TotalGross = decimal.Zero
	calc.TotalEmployeeDeductions = decimal.Zero
	calc.TotalNet = decimal.Zero
	for _, detail := range details {
		calc.TotalGross = calc.TotalGross.Add(detail.GrossSalary)
		calc.TotalEmployeeDeductions = calc.TotalEmployeeDeductions.Add(detail.EmployeeDeductions)
		calc.TotalNet = calc.TotalNet.Add(detail.NetSalary)
	}

	return s.payCalculationRepository.UpdateTotals(ctx, calc)
}

// withConcurrencyRetry reruns the transaction on ErrConcurrentUpdate
// with exponential backoff. Conflicts come from two orders racing to
// create the same worker detail; the retry re-reads under the period
// lock and accumulates on top of the winner's row.
func (s *service) withConcurrencyRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := 50 * time.Millisecond
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = s.tx.WithinTransaction(ctx, fn)
		if !errors.Is(err, paycalc.ErrConcurrentUpdate) {
			return err
		}
		slog.Warn("Pay calculation conflict, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

// groupContributions sums each worker's gross contribution across the
// order's assignments.
func groupContributions(order workorder.WorkOrder) map[string]decimal.Decimal {
	contributions := map[string]decimal.Decimal{}
	for _, assignment := range order.Assignments {
		gross := GrossForAssignment(assignment, order.RateType)
		contributions[assignment.WorkerID] = contributions[assignment.WorkerID].Add(gross)
	}
	return contributions
}

func (s *service) lookupWorkers(ctx context.Context, contributions map[string]decimal.Decimal) (map[string]worker.Worker, error) {
	ids := make([]string, 0, len(contributions))
	for id := range contributions {
		ids = append(ids, id)
	}
	workers, err := s.workerRepository.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := workers[id]; !ok {
			return nil, fmt.Errorf("%w: %s", worker.ErrWorkerNotFound, id)
		}
	}
	return workers, nil
}

// ========== READ API ==========

func (s *service) List(ctx context.Context, filter paycalc.PayCalculationFilter) (paycalc.ListPayCalculationResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	calcs, totalCount, err := s.payCalculationRepository.List(ctx, filter)
	if err != nil {
		return paycalc.ListPayCalculationResponse{}, err
	}

	data := make([]paycalc.PayCalculationResponse, 0, len(calcs))
	for _, calc := range calcs {
		data = append(data, toCalculationResponse(calc))
	}

	return paycalc.ListPayCalculationResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *service) GetPeriod(ctx context.Context, period paycalc.Period) (paycalc.PayCalculationWithDetailsResponse, error) {
	calc, err := s.payCalculationRepository.GetByPeriod(ctx, period)
	if err != nil {
		return paycalc.PayCalculationWithDetailsResponse{}, err
	}

	details, err := s.payCalculationRepository.ListDetails(ctx, calc.ID)
	if err != nil {
		return paycalc.PayCalculationWithDetailsResponse{}, err
	}

	resp := paycalc.PayCalculationWithDetailsResponse{
		PayCalculationResponse: toCalculationResponse(calc),
		Details:                make([]paycalc.DetailResponse, 0, len(details)),
	}
	for _, detail := range details {
		resp.Details = append(resp.Details, toDetailResponse(detail, calc.Period))
	}

	return resp, nil
}

func (s *service) GetWorkerDetail(ctx context.Context, period paycalc.Period, workerID string) (paycalc.DetailResponse, error) {
	calc, err := s.payCalculationRepository.GetByPeriod(ctx, period)
	if err != nil {
		return paycalc.DetailResponse{}, err
	}

	detail, err := s.payCalculationRepository.GetDetail(ctx, calc.ID, workerID)
	if err != nil {
		return paycalc.DetailResponse{}, err
	}

	return toDetailResponse(detail, calc.Period), nil
}

func toCalculationResponse(calc paycalc.PayCalculation) paycalc.PayCalculationResponse {
	return paycalc.PayCalculationResponse{
		ID:                      calc.ID,
		Period:                  calc.Period.String(),
		TotalGross:              calc.TotalGross,
		TotalEmployeeDeductions: calc.TotalEmployeeDeductions,
		TotalNet:                calc.TotalNet,
	}
}

func toDetailResponse(detail paycalc.PayCalculationDetail, period paycalc.Period) paycalc.DetailResponse {
	return paycalc.DetailResponse{
		ID:                 detail.ID,
		Period:             period.String(),
		WorkerID:           detail.WorkerID,
		WorkerName:         detail.WorkerName,
		GrossSalary:        detail.GrossSalary,
		EmployeeDeductions: detail.EmployeeDeductions,
		EmployerDeductions: detail.EmployerDeductions,
		NetSalary:          detail.NetSalary,
		Breakdown:          detail.Breakdown,
	}
}
