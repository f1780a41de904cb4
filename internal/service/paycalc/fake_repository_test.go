package paycalc

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agrilabs/agripay-backend-go/internal/domain/deduction"
	"github.com/agrilabs/agripay-backend-go/internal/domain/paycalc"
	"github.com/agrilabs/agripay-backend-go/internal/domain/worker"
	"github.com/agrilabs/agripay-backend-go/internal/domain/workorder"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakePayCalculationRepository is an in-memory paycalc.PayCalculationRepository.
type fakePayCalculationRepository struct {
	calcs   map[string]paycalc.PayCalculation
	details map[string]paycalc.PayCalculationDetail
	nextID  int

	// failCreateDetailOnce makes the next CreateDetail fail with
	// ErrConcurrentUpdate, simulating a lost insert race.
	failCreateDetailOnce bool
}

func newFakePayCalculationRepository() *fakePayCalculationRepository {
	return &fakePayCalculationRepository{
		calcs:   map[string]paycalc.PayCalculation{},
		details: map[string]paycalc.PayCalculationDetail{},
	}
}

func (f *fakePayCalculationRepository) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakePayCalculationRepository) FindOrCreateForPeriod(ctx context.Context, period paycalc.Period) (paycalc.PayCalculation, error) {
	if calc, ok := f.calcs[period.String()]; ok {
		return calc, nil
	}
	calc := paycalc.PayCalculation{
		ID:        f.newID("calc"),
		Period:    period,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.calcs[period.String()] = calc
	return calc, nil
}

func (f *fakePayCalculationRepository) GetByPeriod(ctx context.Context, period paycalc.Period) (paycalc.PayCalculation, error) {
	calc, ok := f.calcs[period.String()]
	if !ok {
		return paycalc.PayCalculation{}, paycalc.ErrPayCalculationNotFound
	}
	return calc, nil
}

func (f *fakePayCalculationRepository) GetByPeriodForUpdate(ctx context.Context, period paycalc.Period) (paycalc.PayCalculation, error) {
	return f.GetByPeriod(ctx, period)
}

func (f *fakePayCalculationRepository) List(ctx context.Context, filter paycalc.PayCalculationFilter) ([]paycalc.PayCalculation, int64, error) {
	var calcs []paycalc.PayCalculation
	for _, calc := range f.calcs {
		if filter.Year != nil && calc.Period.Year != *filter.Year {
			continue
		}
		calcs = append(calcs, calc)
	}
	sort.Slice(calcs, func(i, j int) bool {
		return calcs[i].Period.String() > calcs[j].Period.String()
	})
	return calcs, int64(len(calcs)), nil
}

func (f *fakePayCalculationRepository) UpdateTotals(ctx context.Context, calc paycalc.PayCalculation) error {
	stored, ok := f.calcs[calc.Period.String()]
	if !ok {
		return paycalc.ErrPayCalculationNotFound
	}
	stored.TotalGross = calc.TotalGross
	stored.TotalEmployeeDeductions = calc.TotalEmployeeDeductions
	stored.TotalNet = calc.TotalNet
	f.calcs[calc.Period.String()] = stored
	return nil
}

func (f *fakePayCalculationRepository) Delete(ctx context.Context, id string) error {
	for key, calc := range f.calcs {
		if calc.ID == id {
			delete(f.calcs, key)
			for detailID, detail := range f.details {
				if detail.PayCalculationID == id {
					delete(f.details, detailID)
				}
			}
			return nil
		}
	}
	return paycalc.ErrPayCalculationNotFound
}

func (f *fakePayCalculationRepository) GetDetail(ctx context.Context, payCalculationID, workerID string) (paycalc.PayCalculationDetail, error) {
	for _, detail := range f.details {
		if detail.PayCalculationID == payCalculationID && detail.WorkerID == workerID {
			return detail, nil
		}
	}
	return paycalc.PayCalculationDetail{}, paycalc.ErrDetailNotFound
}

func (f *fakePayCalculationRepository) CreateDetail(ctx context.Context, detail paycalc.PayCalculationDetail) (paycalc.PayCalculationDetail, error) {
	if f.failCreateDetailOnce {
		f.failCreateDetailOnce = false
		return paycalc.PayCalculationDetail{}, paycalc.ErrConcurrentUpdate
	}
	for _, existing := range f.details {
		if existing.PayCalculationID == detail.PayCalculationID && existing.WorkerID == detail.WorkerID {
			return paycalc.PayCalculationDetail{}, paycalc.ErrConcurrentUpdate
		}
	}
	detail.ID = f.newID("detail")
	detail.CreatedAt = time.Now()
	detail.UpdatedAt = detail.CreatedAt
	f.details[detail.ID] = detail
	return detail, nil
}

func (f *fakePayCalculationRepository) UpdateDetail(ctx context.Context, detail paycalc.PayCalculationDetail) error {
	if _, ok := f.details[detail.ID]; !ok {
		return paycalc.ErrDetailNotFound
	}
	f.details[detail.ID] = detail
	return nil
}

func (f *fakePayCalculationRepository) DeleteDetail(ctx context.Context, id string) error {
	if _, ok := f.details[id]; !ok {
		return paycalc.ErrDetailNotFound
	}
	delete(f.details, id)
	return nil
}

func (f *fakePayCalculationRepository) ListDetails(ctx context.Context, payCalculationID string) ([]paycalc.PayCalculationDetail, error) {
	var details []paycalc.PayCalculationDetail
	for _, detail := range f.details {
		if detail.PayCalculationID == payCalculationID {
			details = append(details, detail)
		}
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].WorkerID < details[j].WorkerID
	})
	return details, nil
}

// fakeWorkOrderRepository holds completed orders so reversal can
// recompute gross from the remaining ones.
type fakeWorkOrderRepository struct {
	orders map[string]workorder.WorkOrder
}

func newFakeWorkOrderRepository() *fakeWorkOrderRepository {
	return &fakeWorkOrderRepository{orders: map[string]workorder.WorkOrder{}}
}

func (f *fakeWorkOrderRepository) put(order workorder.WorkOrder) {
	f.orders[order.ID] = order
}

func (f *fakeWorkOrderRepository) Create(ctx context.Context, order workorder.WorkOrder) (workorder.WorkOrder, error) {
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeWorkOrderRepository) GetByID(ctx context.Context, id string) (workorder.WorkOrder, error) {
	order, ok := f.orders[id]
	if !ok {
		return workorder.WorkOrder{}, workorder.ErrWorkOrderNotFound
	}
	return order, nil
}

func (f *fakeWorkOrderRepository) GetByIDForUpdate(ctx context.Context, id string) (workorder.WorkOrder, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeWorkOrderRepository) List(ctx context.Context, filter workorder.WorkOrderFilter) ([]workorder.WorkOrder, int64, error) {
	var orders []workorder.WorkOrder
	for _, order := range f.orders {
		orders = append(orders, order)
	}
	return orders, int64(len(orders)), nil
}

func (f *fakeWorkOrderRepository) SetStatus(ctx context.Context, id string, status workorder.Status) error {
	order, ok := f.orders[id]
	if !ok {
		return workorder.ErrWorkOrderNotFound
	}
	order.Status = status
	f.orders[id] = order
	return nil
}

func (f *fakeWorkOrderRepository) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	order, ok := f.orders[id]
	if !ok {
		return workorder.ErrWorkOrderNotFound
	}
	order.Status = workorder.StatusCompleted
	order.CompletedAt = &completedAt
	f.orders[id] = order
	return nil
}

func (f *fakeWorkOrderRepository) SetDiscarded(ctx context.Context, id string, discardedAt *time.Time) error {
	order, ok := f.orders[id]
	if !ok {
		return workorder.ErrWorkOrderNotFound
	}
	order.DiscardedAt = discardedAt
	f.orders[id] = order
	return nil
}

func (f *fakeWorkOrderRepository) ListActiveCompletedAssignments(ctx context.Context, workerID string, from, until time.Time, excludeOrderID string) ([]workorder.AssignmentWithRateType, error) {
	var result []workorder.AssignmentWithRateType
	for _, order := range f.orders {
		if order.ID == excludeOrderID || order.Discarded() || order.Status != workorder.StatusCompleted || order.CompletedAt == nil {
			continue
		}
		if order.CompletedAt.Before(from) || !order.CompletedAt.Before(until) {
			continue
		}
		for _, assignment := range order.Assignments {
			if assignment.WorkerID == workerID {
				result = append(result, workorder.AssignmentWithRateType{
					Assignment: assignment,
					RateType:   order.RateType,
				})
			}
		}
	}
	return result, nil
}

// fakeWorkerRepository is a fixed worker directory.
type fakeWorkerRepository struct {
	workers map[string]worker.Worker
}

func newFakeWorkerRepository(workers ...worker.Worker) *fakeWorkerRepository {
	f := &fakeWorkerRepository{workers: map[string]worker.Worker{}}
	for _, w := range workers {
		f.workers[w.ID] = w
	}
	return f
}

func (f *fakeWorkerRepository) GetByID(ctx context.Context, id string) (worker.Worker, error) {
	w, ok := f.workers[id]
	if !ok {
		return worker.Worker{}, worker.ErrWorkerNotFound
	}
	return w, nil
}

func (f *fakeWorkerRepository) GetByIDs(ctx context.Context, ids []string) (map[string]worker.Worker, error) {
	found := map[string]worker.Worker{}
	for _, id := range ids {
		if w, ok := f.workers[id]; ok {
			found[id] = w
		}
	}
	return found, nil
}

// fakeRuleRepository serves a static effective rule set to the
// calculator.
type fakeRuleRepository struct {
	rules    []deduction.Rule
	brackets map[string][]deduction.WageBracket
}

func (f *fakeRuleRepository) CreateRule(ctx context.Context, rule deduction.Rule) (deduction.Rule, error) {
	f.rules = append(f.rules, rule)
	return rule, nil
}

func (f *fakeRuleRepository) GetRuleByID(ctx context.Context, id string) (deduction.Rule, error) {
	return deduction.Rule{}, deduction.ErrRuleNotFound
}

func (f *fakeRuleRepository) GetOpenRuleForUpdate(ctx context.Context, code string) (deduction.Rule, error) {
	return deduction.Rule{}, deduction.ErrNoOpenRule
}

func (f *fakeRuleRepository) ListRulesByCode(ctx context.Context, code string) ([]deduction.Rule, error) {
	return nil, nil
}

func (f *fakeRuleRepository) ListRules(ctx context.Context, activeOnly bool) ([]deduction.Rule, error) {
	return f.rules, nil
}

func (f *fakeRuleRepository) ListEffectiveRules(ctx context.Context, asOf time.Time) ([]deduction.Rule, error) {
	var effective []deduction.Rule
	for _, rule := range f.rules {
		if rule.IsActive && rule.CoversDate(asOf) {
			effective = append(effective, rule)
		}
	}
	return effective, nil
}

func (f *fakeRuleRepository) CloseRuleWindow(ctx context.Context, id string, until time.Time) error {
	return nil
}

func (f *fakeRuleRepository) SetRuleActive(ctx context.Context, id string, active bool) error {
	return nil
}

func (f *fakeRuleRepository) ListBracketsByCode(ctx context.Context, code string) ([]deduction.WageBracket, error) {
	return f.brackets[code], nil
}

func (f *fakeRuleRepository) ReplaceBrackets(ctx context.Context, code string, brackets []deduction.WageBracket) ([]deduction.WageBracket, error) {
	if f.brackets == nil {
		f.brackets = map[string][]deduction.WageBracket{}
	}
	f.brackets[code] = brackets
	return brackets, nil
}
