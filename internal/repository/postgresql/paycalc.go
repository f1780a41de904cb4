package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agrilabs/agripay-backend-go/internal/domain/paycalc"
	"github.com/agrilabs/agripay-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type payCalculationRepository struct {
	db *database.DB
}

func NewPayCalculationRepository(db *database.DB) paycalc.PayCalculationRepository {
	return &payCalculationRepository{db: db}
}

func scanPayCalculation(row pgx.Row) (paycalc.PayCalculation, error) {
	var calc paycalc.PayCalculation
	var period string
	err := row.Scan(
		&calc.ID, &period, &calc.TotalGross, &calc.TotalEmployeeDeductions, &calc.TotalNet,
		&calc.CreatedAt, &calc.UpdatedAt,
	)
	if err != nil {
		return paycalc.PayCalculation{}, err
	}
	calc.Period, err = paycalc.ParsePeriod(period)
	if err != nil {
		return paycalc.PayCalculation{}, err
	}
	return calc, nil
}

func (r *payCalculationRepository) FindOrCreateForPeriod(ctx context.Context, period paycalc.Period) (paycalc.PayCalculation, error) {
	q := GetQuerier(ctx, r.db)

	// The no-op update makes the upsert return the existing row, so
	// lookup and creation are a single atomic statement.
	query := `
		INSERT INTO pay_calculations (id, period, total_gross, total_employee_deductions, total_net)
		VALUES ($1, $2, 0, 0, 0)
		ON CONFLICT (period) DO UPDATE SET updated_at = NOW()
		RETURNING id, period, total_gross, total_employee_deductions, total_net, created_at, updated_at
	`

	calc, err := scanPayCalculation(q.QueryRow(ctx, query, uuid.New().String(), period.String()))
	if err != nil {
		return paycalc.PayCalculation{}, fmt.Errorf("failed to find or create pay calculation: %w", err)
	}

	return calc, nil
}

func (r *payCalculationRepository) GetByPeriod(ctx context.Context, period paycalc.Period) (paycalc.PayCalculation, error) {
	return r.getByPeriod(ctx, period, false)
}

func (r *payCalculationRepository) GetByPeriodForUpdate(ctx context.Context, period paycalc.Period) (paycalc.PayCalculation, error) {
	return r.getByPeriod(ctx, period, true)
}

func (r *payCalculationRepository) getByPeriod(ctx context.Context, period paycalc.Period, forUpdate bool) (paycalc.PayCalculation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, period, total_gross, total_employee_deductions, total_net, created_at, updated_at
		FROM pay_calculations
		WHERE period = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	calc, err := scanPayCalculation(q.QueryRow(ctx, query, period.String()))
	if err != nil {
		if err == pgx.ErrNoRows {
			return paycalc.PayCalculation{}, paycalc.ErrPayCalculationNotFound
		}
		return paycalc.PayCalculation{}, fmt.Errorf("failed to get pay calculation: %w", err)
	}

	return calc, nil
}

func (r *payCalculationRepository) List(ctx context.Context, filter paycalc.PayCalculationFilter) ([]paycalc.PayCalculation, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `FROM pay_calculations WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Year != nil {
		baseQuery += fmt.Sprintf(" AND period LIKE $%d", argIdx)
		args = append(args, fmt.Sprintf("%04d-%%", *filter.Year))
		argIdx++
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count pay calculations: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT id, period, total_gross, total_employee_deductions, total_net, created_at, updated_at
		%s
		ORDER BY period DESC
		LIMIT $%d OFFSET $%d
	`, baseQuery, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pay calculations: %w", err)
	}
	defer rows.Close()

	var calcs []paycalc.PayCalculation
	for rows.Next() {
		calc, err := scanPayCalculation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan pay calculation: %w", err)
		}
		calcs = append(calcs, calc)
	}

	return calcs, totalCount, nil
}

func (r *payCalculationRepository) UpdateTotals(ctx context.Context, calc paycalc.PayCalculation) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE pay_calculations
		SET total_gross = $2, total_employee_deductions = $3, total_net = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, calc.ID, calc.TotalGross, calc.TotalEmployeeDeductions, calc.TotalNet).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return paycalc.ErrPayCalculationNotFound
		}
		return fmt.Errorf("failed to update pay calculation totals: %w", err)
	}

	return nil
}

func (r *payCalculationRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM pay_calculations WHERE id = $1 RETURNING id`

	var deletedID string
	err := q.QueryRow(ctx, query, id).Scan(&deletedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return paycalc.ErrPayCalculationNotFound
		}
		return fmt.Errorf("failed to delete pay calculation: %w", err)
	}

	return nil
}

// ========== DETAILS ==========

const detailColumns = `d.id, d.pay_calculation_id, d.worker_id, d.gross_salary,
	   d.employee_deductions, d.employer_deductions, d.net_salary, d.breakdown,
	   d.created_at, d.updated_at`

func scanDetail(row pgx.Row, withWorkerName bool) (paycalc.PayCalculationDetail, error) {
	var detail paycalc.PayCalculationDetail
	var breakdownBytes []byte

	dest := []interface{}{
		&detail.ID, &detail.PayCalculationID, &detail.WorkerID, &detail.GrossSalary,
		&detail.EmployeeDeductions, &detail.EmployerDeductions, &detail.NetSalary, &breakdownBytes,
		&detail.CreatedAt, &detail.UpdatedAt,
	}
	if withWorkerName {
		dest = append(dest, &detail.WorkerName)
	}

	if err := row.Scan(dest...); err != nil {
		return paycalc.PayCalculationDetail{}, err
	}
	if err := json.Unmarshal(breakdownBytes, &detail.Breakdown); err != nil {
		return paycalc.PayCalculationDetail{}, fmt.Errorf("failed to decode deduction breakdown: %w", err)
	}

	return detail, nil
}

func (r *payCalculationRepository) GetDetail(ctx context.Context, payCalculationID, workerID string) (paycalc.PayCalculationDetail, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + detailColumns + `
		FROM pay_calculation_details d
		WHERE d.pay_calculation_id = $1 AND d.worker_id = $2
	`

	detail, err := scanDetail(q.QueryRow(ctx, query, payCalculationID, workerID), false)
	if err != nil {
		if err == pgx.ErrNoRows {
			return paycalc.PayCalculationDetail{}, paycalc.ErrDetailNotFound
		}
		return paycalc.PayCalculationDetail{}, fmt.Errorf("failed to get pay calculation detail: %w", err)
	}

	return detail, nil
}

func (r *payCalculationRepository) CreateDetail(ctx context.Context, detail paycalc.PayCalculationDetail) (paycalc.PayCalculationDetail, error) {
	q := GetQuerier(ctx, r.db)

	breakdownJSON, err := json.Marshal(detail.Breakdown)
	if err != nil {
		return paycalc.PayCalculationDetail{}, fmt.Errorf("failed to encode deduction breakdown: %w", err)
	}

	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}

	query := `
		INSERT INTO pay_calculation_details (
			id, pay_calculation_id, worker_id, gross_salary,
			employee_deductions, employer_deductions, net_salary, breakdown
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, pay_calculation_id, worker_id, gross_salary,
			employee_deductions, employer_deductions, net_salary, breakdown,
			created_at, updated_at
	`

	created, err := scanDetail(q.QueryRow(ctx, query,
		detail.ID, detail.PayCalculationID, detail.WorkerID, detail.GrossSalary,
		detail.EmployeeDeductions, detail.EmployerDeductions, detail.NetSalary, breakdownJSON,
	), false)
	if err != nil {
		if strings.Contains(err.Error(), "uk_pay_calculation_worker") {
			return paycalc.PayCalculationDetail{}, paycalc.ErrConcurrentUpdate
		}
		return paycalc.PayCalculationDetail{}, fmt.Errorf("failed to create pay calculation detail: %w", err)
	}

	return created, nil
}

func (r *payCalculationRepository) UpdateDetail(ctx context.Context, detail paycalc.PayCalculationDetail) error {
	q := GetQuerier(ctx, r.db)

	breakdownJSON, err := json.Marshal(detail.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode deduction breakdown: %w", err)
	}

	query := `
		UPDATE pay_calculation_details
		SET gross_salary = $2, employee_deductions = $3, employer_deductions = $4,
			net_salary = $5, breakdown = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err = q.QueryRow(ctx, query,
		detail.ID, detail.GrossSalary, detail.EmployeeDeductions, detail.EmployerDeductions,
		detail.NetSalary, breakdownJSON,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return paycalc.ErrDetailNotFound
		}
		return fmt.Errorf("failed to update pay calculation detail: %w", err)
	}

	return nil
}

func (r *payCalculationRepository) DeleteDetail(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM pay_calculation_details WHERE id = $1 RETURNING id`

	var deletedID string
	err := q.QueryRow(ctx, query, id).Scan(&deletedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return paycalc.ErrDetailNotFound
		}
		return fmt.Errorf("failed to delete pay calculation detail: %w", err)
	}

	return nil
}

func (r *payCalculationRepository) ListDetails(ctx context.Context, payCalculationID string) ([]paycalc.PayCalculationDetail, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + detailColumns + `, w.name as worker_name
		FROM pay_calculation_details d
		JOIN workers w ON d.worker_id = w.id
		WHERE d.pay_calculation_id = $1
		ORDER BY w.name
	`

	rows, err := q.Query(ctx, query, payCalculationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pay calculation details: %w", err)
	}
	defer rows.Close()

	var details []paycalc.PayCalculationDetail
	for rows.Next() {
		detail, err := scanDetail(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pay calculation detail: %w", err)
		}
		details = append(details, detail)
	}

	return details, nil
}
