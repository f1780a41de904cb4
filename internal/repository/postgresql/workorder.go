package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agrilabs/agripay-backend-go/internal/domain/workorder"
	"github.com/agrilabs/agripay-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type workOrderRepository struct {
	db *database.DB
}

func NewWorkOrderRepository(db *database.DB) workorder.WorkOrderRepository {
	return &workOrderRepository{db: db}
}

func (r *workOrderRepository) Create(ctx context.Context, order workorder.WorkOrder) (workorder.WorkOrder, error) {
	q := GetQuerier(ctx, r.db)

	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	query := `
		INSERT INTO work_orders (id, number, rate_type, status, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, number, rate_type, status, description, completed_at, discarded_at, created_at, updated_at
	`

	var created workorder.WorkOrder
	err := q.QueryRow(ctx, query,
		order.ID, order.Number, order.RateType, workorder.StatusOngoing, order.Description,
	).Scan(
		&created.ID, &created.Number, &created.RateType, &created.Status, &created.Description,
		&created.CompletedAt, &created.DiscardedAt, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_work_order_number") {
			return workorder.WorkOrder{}, workorder.ErrWorkOrderNumberExists
		}
		return workorder.WorkOrder{}, fmt.Errorf("failed to create work order: %w", err)
	}

	for _, a := range order.Assignments {
		assignQuery := `
			INSERT INTO work_order_worker_assignments (id, work_order_id, worker_id, rate, work_days, work_area_size, amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, work_order_id, worker_id, rate, work_days, work_area_size, amount, created_at, updated_at
		`
		var createdAssignment workorder.WorkerAssignment
		err := q.QueryRow(ctx, assignQuery,
			uuid.New().String(), created.ID, a.WorkerID, a.Rate, a.WorkDays, a.WorkAreaSize, a.Amount,
		).Scan(
			&createdAssignment.ID, &createdAssignment.WorkOrderID, &createdAssignment.WorkerID, &createdAssignment.Rate,
			&createdAssignment.WorkDays, &createdAssignment.WorkAreaSize, &createdAssignment.Amount,
			&createdAssignment.CreatedAt, &createdAssignment.UpdatedAt,
		)
		if err != nil {
			return workorder.WorkOrder{}, fmt.Errorf("failed to create worker assignment: %w", err)
		}
		created.Assignments = append(created.Assignments, createdAssignment)
	}

	return created, nil
}

func (r *workOrderRepository) GetByID(ctx context.Context, id string) (workorder.WorkOrder, error) {
	return r.getByID(ctx, id, false)
}

func (r *workOrderRepository) GetByIDForUpdate(ctx context.Context, id string) (workorder.WorkOrder, error) {
	return r.getByID(ctx, id, true)
}

func (r *workOrderRepository) getByID(ctx context.Context, id string, forUpdate bool) (workorder.WorkOrder, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, number, rate_type, status, description, completed_at, discarded_at, created_at, updated_at
		FROM work_orders
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var order workorder.WorkOrder
	err := q.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.Number, &order.RateType, &order.Status, &order.Description,
		&order.CompletedAt, &order.DiscardedAt, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return workorder.WorkOrder{}, workorder.ErrWorkOrderNotFound
		}
		return workorder.WorkOrder{}, fmt.Errorf("failed to get work order: %w", err)
	}

	assignments, err := r.listAssignments(ctx, order.ID)
	if err != nil {
		return workorder.WorkOrder{}, err
	}
	order.Assignments = assignments

	return order, nil
}

func (r *workOrderRepository) listAssignments(ctx context.Context, orderID string) ([]workorder.WorkerAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.work_order_id, a.worker_id, a.rate, a.work_days, a.work_area_size, a.amount,
			   a.created_at, a.updated_at, w.name as worker_name
		FROM work_order_worker_assignments a
		JOIN workers w ON a.worker_id = w.id
		WHERE a.work_order_id = $1
		ORDER BY a.created_at
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list worker assignments: %w", err)
	}
	defer rows.Close()

	var assignments []workorder.WorkerAssignment
	for rows.Next() {
		var a workorder.WorkerAssignment
		if err := rows.Scan(
			&a.ID, &a.WorkOrderID, &a.WorkerID, &a.Rate, &a.WorkDays, &a.WorkAreaSize, &a.Amount,
			&a.CreatedAt, &a.UpdatedAt, &a.WorkerName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan worker assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

func (r *workOrderRepository) List(ctx context.Context, filter workorder.WorkOrderFilter) ([]workorder.WorkOrder, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM work_orders wo
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if !filter.IncludeDiscarded {
		baseQuery += " AND wo.discarded_at IS NULL"
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND wo.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.RateType != nil {
		baseQuery += fmt.Sprintf(" AND wo.rate_type = $%d", argIdx)
		args = append(args, *filter.RateType)
		argIdx++
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count work orders: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT wo.id, wo.number, wo.rate_type, wo.status, wo.description,
			   wo.completed_at, wo.discarded_at, wo.created_at, wo.updated_at
		%s
		ORDER BY wo.created_at DESC
		LIMIT $%d OFFSET $%d
	`, baseQuery, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list work orders: %w", err)
	}
	defer rows.Close()

	var orders []workorder.WorkOrder
	for rows.Next() {
		var order workorder.WorkOrder
		if err := rows.Scan(
			&order.ID, &order.Number, &order.RateType, &order.Status, &order.Description,
			&order.CompletedAt, &order.DiscardedAt, &order.CreatedAt, &order.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan work order: %w", err)
		}
		orders = append(orders, order)
	}
	rows.Close()

	for i := range orders {
		assignments, err := r.listAssignments(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Assignments = assignments
	}

	return orders, totalCount, nil
}

func (r *workOrderRepository) SetStatus(ctx context.Context, id string, status workorder.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE work_orders SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING id`

	var updatedID string
	err := q.QueryRow(ctx, query, id, status).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return workorder.ErrWorkOrderNotFound
		}
		return fmt.Errorf("failed to set work order status: %w", err)
	}

	return nil
}

func (r *workOrderRepository) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE work_orders
		SET status = $2, completed_at = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, workorder.StatusCompleted, completedAt).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return workorder.ErrWorkOrderNotFound
		}
		return fmt.Errorf("failed to mark work order completed: %w", err)
	}

	return nil
}

func (r *workOrderRepository) SetDiscarded(ctx context.Context, id string, discardedAt *time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE work_orders SET discarded_at = $2, updated_at = NOW() WHERE id = $1 RETURNING id`

	var updatedID string
	err := q.QueryRow(ctx, query, id, discardedAt).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return workorder.ErrWorkOrderNotFound
		}
		return fmt.Errorf("failed to set work order discarded: %w", err)
	}

	return nil
}

func (r *workOrderRepository) ListActiveCompletedAssignments(ctx context.Context, workerID string, from, until time.Time, excludeOrderID string) ([]workorder.AssignmentWithRateType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.work_order_id, a.worker_id, a.rate, a.work_days, a.work_area_size, a.amount,
			   a.created_at, a.updated_at, wo.rate_type
		FROM work_order_worker_assignments a
		JOIN work_orders wo ON a.work_order_id = wo.id
		WHERE a.worker_id = $1
			AND wo.status = 'completed'
			AND wo.discarded_at IS NULL
			AND wo.completed_at >= $2 AND wo.completed_at < $3
			AND wo.id <> $4
	`

	rows, err := q.Query(ctx, query, workerID, from, until, excludeOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active completed assignments: %w", err)
	}
	defer rows.Close()

	var result []workorder.AssignmentWithRateType
	for rows.Next() {
		var row workorder.AssignmentWithRateType
		a := &row.Assignment
		if err := rows.Scan(
			&a.ID, &a.WorkOrderID, &a.WorkerID, &a.Rate, &a.WorkDays, &a.WorkAreaSize, &a.Amount,
			&a.CreatedAt, &a.UpdatedAt, &row.RateType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		result = append(result, row)
	}

	return result, nil
}
