package deduction

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/agrilabs/agripay-backend-go/internal/domain/deduction"
	"github.com/agrilabs/agripay-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

// cent is the smallest wage step; adjacent brackets must be exactly one
// cent apart.
var cent = decimal.New(1, -2)

type service struct {
	tx             database.TxRunner
	ruleRepository deduction.RuleRepository
}

func NewService(tx database.TxRunner, ruleRepository deduction.RuleRepository) deduction.RuleService {
	return &service{
		tx:             tx,
		ruleRepository: ruleRepository,
	}
}

func (s *service) CreateRule(ctx context.Context, req deduction.CreateRuleRequest) (deduction.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return deduction.RuleResponse{}, err
	}

	effectiveFrom, _ := time.Parse("2006-01-02", req.EffectiveFrom)

	rule := deduction.Rule{
		Code:          req.Code,
		Name:          req.Name,
		Kind:          deduction.CalculationKind(req.Kind),
		Scope:         deduction.Scope(req.Scope),
		EffectiveFrom: effectiveFrom,
		IsActive:      true,
	}
	if req.EmployeePercentage != nil {
		rule.EmployeePercentage = *req.EmployeePercentage
	}
	if req.EmployerPercentage != nil {
		rule.EmployerPercentage = *req.EmployerPercentage
	}
	if req.EmployeeAmount != nil {
		rule.EmployeeAmount = *req.EmployeeAmount
	}
	if req.EmployerAmount != nil {
		rule.EmployerAmount = *req.EmployerAmount
	}

	var created deduction.Rule
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		versions, err := s.ruleRepository.ListRulesByCode(ctx, req.Code)
		if err != nil {
			return err
		}
		for _, version := range versions {
			if version.EffectiveUntil == nil {
				return deduction.ErrDuplicateOpenRule
			}
			if version.CoversDate(effectiveFrom) {
				return deduction.ErrOverlappingWindow
			}
		}

		created, err = s.ruleRepository.CreateRule(ctx, rule)
		return err
	})
	if err != nil {
		return deduction.RuleResponse{}, err
	}

	slog.Info("Deduction rule created",
		slog.String("code", created.Code),
		slog.String("kind", string(created.Kind)),
		slog.String("effective_from", req.EffectiveFrom))

	return toRuleResponse(created), nil
}

func (s *service) GetRule(ctx context.Context, id string) (deduction.RuleResponse, error) {
	rule, err := s.ruleRepository.GetRuleByID(ctx, id)
	if err != nil {
		return deduction.RuleResponse{}, err
	}
	return toRuleResponse(rule), nil
}

func (s *service) ListRuleVersions(ctx context.Context, code string) ([]deduction.RuleResponse, error) {
	rules, err := s.ruleRepository.ListRulesByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, deduction.ErrRuleNotFound
	}
	return toRuleResponses(rules), nil
}

func (s *service) ListRules(ctx context.Context, activeOnly bool) ([]deduction.RuleResponse, error) {
	rules, err := s.ruleRepository.ListRules(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return toRuleResponses(rules), nil
}

// UpdateRate closes the open version at the new effective-from date and
// inserts a successor carrying the new rates. Fields left nil keep the
// old version's value.
func (s *service) UpdateRate(ctx context.Context, req deduction.UpdateRateRequest) (deduction.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return deduction.RuleResponse{}, err
	}

	effectiveFrom, _ := time.Parse("2006-01-02", req.EffectiveFrom)

	var created deduction.Rule
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		open, err := s.ruleRepository.GetOpenRuleForUpdate(ctx, req.Code)
		if err != nil {
			return err
		}
		if !effectiveFrom.After(open.EffectiveFrom) {
			return deduction.ErrOverlappingWindow
		}

		if err := s.ruleRepository.CloseRuleWindow(ctx, open.ID, effectiveFrom); err != nil {
			return err
		}

		successor := deduction.Rule{
			Code:               open.Code,
			Name:               open.Name,
			Kind:               open.Kind,
			Scope:              open.Scope,
			EmployeePercentage: open.EmployeePercentage,
			EmployerPercentage: open.EmployerPercentage,
			EmployeeAmount:     open.EmployeeAmount,
			EmployerAmount:     open.EmployerAmount,
			EffectiveFrom:      effectiveFrom,
			IsActive:           open.IsActive,
		}
		if req.EmployeePercentage != nil {
			successor.EmployeePercentage = *req.EmployeePercentage
		}
		if req.EmployerPercentage != nil {
			successor.EmployerPercentage = *req.EmployerPercentage
		}
		if req.EmployeeAmount != nil {
			successor.EmployeeAmount = *req.EmployeeAmount
		}
		if req.EmployerAmount != nil {
			successor.EmployerAmount = *req.EmployerAmount
		}

		created, err = s.ruleRepository.CreateRule(ctx, successor)
		return err
	})
	if err != nil {
		return deduction.RuleResponse{}, err
	}

	slog.Info("Deduction rate updated",
		slog.String("code", created.Code),
		slog.String("effective_from", req.EffectiveFrom))

	return toRuleResponse(created), nil
}

func (s *service) DeactivateRule(ctx context.Context, id string) error {
	if err := s.ruleRepository.SetRuleActive(ctx, id, false); err != nil {
		return err
	}
	slog.Info("Deduction rule deactivated", slog.String("rule_id", id))
	return nil
}

func (s *service) ListBrackets(ctx context.Context, code string) ([]deduction.BracketResponse, error) {
	brackets, err := s.ruleRepository.ListBracketsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toBracketResponses(brackets), nil
}

func (s *service) ReplaceBrackets(ctx context.Context, req deduction.ReplaceBracketsRequest) ([]deduction.BracketResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	brackets := make([]deduction.WageBracket, 0, len(req.Brackets))
	for _, b := range req.Brackets {
		brackets = append(brackets, deduction.WageBracket{
			Code:           req.Code,
			MinWage:        b.MinWage,
			MaxWage:        b.MaxWage,
			EmployeeAmount: b.EmployeeAmount,
			EmployerAmount: b.EmployerAmount,
		})
	}
	if err := validateBracketPartition(brackets); err != nil {
		return nil, err
	}

	var replaced []deduction.WageBracket
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		versions, err := s.ruleRepository.ListRulesByCode(ctx, req.Code)
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			return deduction.ErrRuleNotFound
		}

		replaced, err = s.ruleRepository.ReplaceBrackets(ctx, req.Code, brackets)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Wage brackets replaced",
		slog.String("code", req.Code),
		slog.Int("count", len(replaced)))

	return toBracketResponses(replaced), nil
}

// validateBracketPartition enforces the catalog invariant up front so
// gaps and overlaps are rejected at write time instead of surfacing as
// calculation failures months later. Brackets must start at zero, step
// by one cent between rows and end with a single open-ended row.
func validateBracketPartition(brackets []deduction.WageBracket) error {
	sorted := make([]deduction.WageBracket, len(brackets))
	copy(sorted, brackets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinWage.LessThan(sorted[j].MinWage)
	})

	if !sorted[0].MinWage.IsZero() {
		return deduction.ErrInvalidBracketPartition
	}

	for i, bracket := range sorted {
		last := i == len(sorted)-1
		if (bracket.MaxWage == nil) != last {
			return deduction.ErrInvalidBracketPartition
		}
		if last {
			continue
		}
		if !sorted[i+1].MinWage.Equal(bracket.MaxWage.Add(cent)) {
			return deduction.ErrInvalidBracketPartition
		}
	}

	return nil
}

// ========== CSV IMPORT ==========

// ImportRules bulk-loads rule definitions from CSV with the header
// code,name,kind,scope,employee_percentage,employer_percentage,employee_amount,employer_amount,effective_from.
// Rows whose code already has an open version are skipped; malformed
// rows are reported and do not abort the import.
func (s *service) ImportRules(ctx context.Context, r io.Reader) (deduction.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 9
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return deduction.ImportResult{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	result := deduction.ImportResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		req := deduction.CreateRuleRequest{
			Code:          record[0],
			Name:          record[1],
			Kind:          record[2],
			Scope:         record[3],
			EffectiveFrom: record[8],
		}
		if err := parseOptionalDecimals(record[4:8],
			&req.EmployeePercentage, &req.EmployerPercentage,
			&req.EmployeeAmount, &req.EmployerAmount,
		); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		if _, err := s.CreateRule(ctx, req); err != nil {
			if errors.Is(err, deduction.ErrDuplicateOpenRule) {
				result.Skipped++
				continue
			}
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Imported++
	}

	slog.Info("Deduction rule import finished",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped))

	return result, nil
}

// ImportBrackets bulk-loads wage tables from CSV with the header
// code,min_wage,max_wage,employee_amount,employer_amount. Rows are
// grouped by code and each code's table is replaced whole, so a
// partition error in any row rejects that code's entire table.
func (s *service) ImportBrackets(ctx context.Context, r io.Reader) (deduction.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 5
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return deduction.ImportResult{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	result := deduction.ImportResult{}
	grouped := map[string][]deduction.BracketRequest{}
	var codeOrder []string
	rows := map[string]int{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		code := record[0]
		bracket := deduction.BracketRequest{}
		if err := parseRequiredDecimal(record[1], &bracket.MinWage); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: min_wage: %v", line, err))
			continue
		}
		if record[2] != "" {
			var maxWage decimal.Decimal
			if err := parseRequiredDecimal(record[2], &maxWage); err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: max_wage: %v", line, err))
				continue
			}
			bracket.MaxWage = &maxWage
		}
		if err := parseRequiredDecimal(record[3], &bracket.EmployeeAmount); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: employee_amount: %v", line, err))
			continue
		}
		if err := parseRequiredDecimal(record[4], &bracket.EmployerAmount); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: employer_amount: %v", line, err))
			continue
		}

		if _, seen := grouped[code]; !seen {
			codeOrder = append(codeOrder, code)
		}
		grouped[code] = append(grouped[code], bracket)
		rows[code]++
	}

	for _, code := range codeOrder {
		req := deduction.ReplaceBracketsRequest{Code: code, Brackets: grouped[code]}
		if _, err := s.ReplaceBrackets(ctx, req); err != nil {
			result.Skipped += rows[code]
			result.Errors = append(result.Errors, fmt.Sprintf("code %s: %v", code, err))
			continue
		}
		result.Imported += rows[code]
	}

	slog.Info("Wage bracket import finished",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped))

	return result, nil
}

func parseOptionalDecimals(fields []string, dests ...**decimal.Decimal) error {
	for i, field := range fields {
		if field == "" {
			continue
		}
		value, err := decimal.NewFromString(field)
		if err != nil {
			return fmt.Errorf("invalid decimal %q", field)
		}
		*dests[i] = &value
	}
	return nil
}

func parseRequiredDecimal(field string, dest *decimal.Decimal) error {
	value, err := decimal.NewFromString(field)
	if err != nil {
		return fmt.Errorf("invalid decimal %q", field)
	}
	*dest = value
	return nil
}

// ========== RESPONSE MAPPING ==========

func toRuleResponse(rule deduction.Rule) deduction.RuleResponse {
	resp := deduction.RuleResponse{
		ID:                 rule.ID,
		Code:               rule.Code,
		Name:               rule.Name,
		Kind:               string(rule.Kind),
		Scope:              string(rule.Scope),
		EmployeePercentage: rule.EmployeePercentage,
		EmployerPercentage: rule.EmployerPercentage,
		EmployeeAmount:     rule.EmployeeAmount,
		EmployerAmount:     rule.EmployerAmount,
		EffectiveFrom:      rule.EffectiveFrom.Format("2006-01-02"),
		IsActive:           rule.IsActive,
	}
	if rule.EffectiveUntil != nil {
		until := rule.EffectiveUntil.Format("2006-01-02")
		resp.EffectiveUntil = &until
	}
	return resp
}

func toRuleResponses(rules []deduction.Rule) []deduction.RuleResponse {
	responses := make([]deduction.RuleResponse, 0, len(rules))
	for _, rule := range rules {
		responses = append(responses, toRuleResponse(rule))
	}
	return responses
}

func toBracketResponses(brackets []deduction.WageBracket) []deduction.BracketResponse {
	responses := make([]deduction.BracketResponse, 0, len(brackets))
	for _, bracket := range brackets {
		responses = append(responses, deduction.BracketResponse{
			ID:             bracket.ID,
			Code:           bracket.Code,
			MinWage:        bracket.MinWage,
			MaxWage:        bracket.MaxWage,
			EmployeeAmount: bracket.EmployeeAmount,
			EmployerAmount: bracket.EmployerAmount,
		})
	}
	return responses
}
