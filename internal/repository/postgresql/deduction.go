package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/agrilabs/agripay-backend-go/internal/domain/deduction"
	"github.com/agrilabs/agripay-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type deductionRepository struct {
	db *database.DB
}

func NewDeductionRepository(db *database.DB) deduction.RuleRepository {
	return &deductionRepository{db: db}
}

const ruleColumns = `id, code, name, kind, scope, employee_percentage, employer_percentage,
	   employee_amount, employer_amount, effective_from, effective_until, is_active,
	   created_at, updated_at`

func scanRule(row pgx.Row) (deduction.Rule, error) {
	var rule deduction.Rule
	err := row.Scan(
		&rule.ID, &rule.Code, &rule.Name, &rule.Kind, &rule.Scope,
		&rule.EmployeePercentage, &rule.EmployerPercentage,
		&rule.EmployeeAmount, &rule.EmployerAmount,
		&rule.EffectiveFrom, &rule.EffectiveUntil, &rule.IsActive,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	return rule, err
}

func (r *deductionRepository) CreateRule(ctx context.Context, rule deduction.Rule) (deduction.Rule, error) {
	q := GetQuerier(ctx, r.db)

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	query := `
		INSERT INTO deduction_rules (
			id, code, name, kind, scope, employee_percentage, employer_percentage,
			employee_amount, employer_amount, effective_from, effective_until, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + ruleColumns

	created, err := scanRule(q.QueryRow(ctx, query,
		rule.ID, rule.Code, rule.Name, rule.Kind, rule.Scope,
		rule.EmployeePercentage, rule.EmployerPercentage,
		rule.EmployeeAmount, rule.EmployerAmount,
		rule.EffectiveFrom, rule.EffectiveUntil, rule.IsActive,
	))
	if err != nil {
		return deduction.Rule{}, fmt.Errorf("failed to create deduction rule: %w", err)
	}

	return created, nil
}

func (r *deductionRepository) GetRuleByID(ctx context.Context, id string) (deduction.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM deduction_rules WHERE id = $1`

	rule, err := scanRule(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.Rule{}, deduction.ErrRuleNotFound
		}
		return deduction.Rule{}, fmt.Errorf("failed to get deduction rule: %w", err)
	}

	return rule, nil
}

func (r *deductionRepository) GetOpenRuleForUpdate(ctx context.Context, code string) (deduction.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM deduction_rules WHERE code = $1 AND effective_until IS NULL FOR UPDATE`

	rule, err := scanRule(q.QueryRow(ctx, query, code))
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.Rule{}, deduction.ErrNoOpenRule
		}
		return deduction.Rule{}, fmt.Errorf("failed to get open deduction rule: %w", err)
	}

	return rule, nil
}

func (r *deductionRepository) ListRulesByCode(ctx context.Context, code string) ([]deduction.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM deduction_rules WHERE code = $1 ORDER BY effective_from DESC`

	rows, err := q.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list deduction rule versions: %w", err)
	}
	defer rows.Close()

	return collectRules(rows)
}

func (r *deductionRepository) ListRules(ctx context.Context, activeOnly bool) ([]deduction.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM deduction_rules`
	if activeOnly {
		query += " WHERE is_active = true AND effective_until IS NULL"
	}
	query += " ORDER BY code, effective_from DESC"

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list deduction rules: %w", err)
	}
	defer rows.Close()

	return collectRules(rows)
}

func (r *deductionRepository) ListEffectiveRules(ctx context.Context, asOf time.Time) ([]deduction.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + ruleColumns + `
		FROM deduction_rules
		WHERE is_active = true
			AND effective_from <= $1
			AND (effective_until IS NULL OR effective_until > $1)
		ORDER BY code
	`

	rows, err := q.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list effective deduction rules: %w", err)
	}
	defer rows.Close()

	return collectRules(rows)
}

func collectRules(rows pgx.Rows) ([]deduction.Rule, error) {
	var rules []deduction.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deduction rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (r *deductionRepository) CloseRuleWindow(ctx context.Context, id string, until time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE deduction_rules
		SET effective_until = $2, updated_at = NOW()
		WHERE id = $1 AND effective_until IS NULL
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, until).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.ErrRuleNotFound
		}
		return fmt.Errorf("failed to close deduction rule window: %w", err)
	}

	return nil
}

func (r *deductionRepository) SetRuleActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE deduction_rules SET is_active = $2, updated_at = NOW() WHERE id = $1 RETURNING id`

	var updatedID string
	err := q.QueryRow(ctx, query, id, active).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return deduction.ErrRuleNotFound
		}
		return fmt.Errorf("failed to set deduction rule active: %w", err)
	}

	return nil
}

func (r *deductionRepository) ListBracketsByCode(ctx context.Context, code string) ([]deduction.WageBracket, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, min_wage, max_wage, employee_amount, employer_amount, created_at, updated_at
		FROM wage_brackets
		WHERE code = $1
		ORDER BY min_wage
	`

	rows, err := q.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list wage brackets: %w", err)
	}
	defer rows.Close()

	var brackets []deduction.WageBracket
	for rows.Next() {
		var b deduction.WageBracket
		if err := rows.Scan(
			&b.ID, &b.Code, &b.MinWage, &b.MaxWage, &b.EmployeeAmount, &b.EmployerAmount,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wage bracket: %w", err)
		}
		brackets = append(brackets, b)
	}

	return brackets, nil
}

func (r *deductionRepository) ReplaceBrackets(ctx context.Context, code string, brackets []deduction.WageBracket) ([]deduction.WageBracket, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM wage_brackets WHERE code = $1`, code); err != nil {
		return nil, fmt.Errorf("failed to clear wage brackets: %w", err)
	}

	query := `
		INSERT INTO wage_brackets (id, code, min_wage, max_wage, employee_amount, employer_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, code, min_wage, max_wage, employee_amount, employer_amount, created_at, updated_at
	`

	var created []deduction.WageBracket
	for _, b := range brackets {
		var row deduction.WageBracket
		err := q.QueryRow(ctx, query, uuid.New().String(), code, b.MinWage, b.MaxWage, b.EmployeeAmount, b.EmployerAmount).Scan(
			&row.ID, &row.Code, &row.MinWage, &row.MaxWage, &row.EmployeeAmount, &row.EmployerAmount,
			&row.CreatedAt, &row.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert wage bracket: %w", err)
		}
		created = append(created, row)
	}

	return created, nil
}
