package deduction

import (
	"context"
	"fmt"
	"time"

	"github.com/agrilabs/agripay-backend-go/internal/domain/deduction"
	"github.com/agrilabs/agripay-backend-go/internal/domain/worker"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Calculator derives a deduction breakdown from the rule catalog. Every
// computation is as-of a date, so recalculating a past month uses the
// rule versions that were in force then, not the current ones.
type Calculator struct {
	ruleRepository deduction.RuleRepository
}

func NewCalculator(ruleRepository deduction.RuleRepository) *Calculator {
	return &Calculator{ruleRepository: ruleRepository}
}

// Calculate builds the full breakdown for one worker's gross salary.
// Rules whose scope does not match the nationality are skipped. A
// wage-range rule with a gap or overlap at this gross salary is a
// catalog configuration error and fails the whole calculation.
func (c *Calculator) Calculate(ctx context.Context, gross decimal.Decimal, nationality worker.Nationality, asOf time.Time) (deduction.Breakdown, error) {
	rules, err := c.ruleRepository.ListEffectiveRules(ctx, asOf)
	if err != nil {
		return nil, err
	}

	breakdown := deduction.Breakdown{}
	for _, rule := range rules {
		if !rule.Scope.Matches(nationality) {
			continue
		}

		entry, err := c.calculateEntry(ctx, rule, gross)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Code, err)
		}
		entry.GrossSalary = gross
		entry.Nationality = nationality
		breakdown[rule.Code] = entry
	}

	return breakdown, nil
}

func (c *Calculator) calculateEntry(ctx context.Context, rule deduction.Rule, gross decimal.Decimal) (deduction.BreakdownEntry, error) {
	entry := deduction.BreakdownEntry{
		Name: rule.Name,
		Kind: rule.Kind,
	}

	switch rule.Kind {
	case deduction.KindPercentage:
		employeeRate := rule.EmployeePercentage
		employerRate := rule.EmployerPercentage
		entry.EmployeeAmount = gross.Mul(employeeRate).Div(oneHundred)
		entry.EmployerAmount = gross.Mul(employerRate).Div(oneHundred)
		entry.EmployeeRate = &employeeRate
		entry.EmployerRate = &employerRate

	case deduction.KindFixed:
		entry.EmployeeAmount = rule.EmployeeAmount
		entry.EmployerAmount = rule.EmployerAmount

	case deduction.KindWageRange:
		bracket, err := c.resolveBracket(ctx, rule.Code, gross)
		if err != nil {
			return deduction.BreakdownEntry{}, err
		}
		bracketMin := bracket.MinWage
		entry.EmployeeAmount = bracket.EmployeeAmount
		entry.EmployerAmount = bracket.EmployerAmount
		entry.BracketMin = &bracketMin
		entry.BracketMax = bracket.MaxWage

	default:
		return deduction.BreakdownEntry{}, fmt.Errorf("unknown calculation kind %q", rule.Kind)
	}

	return entry, nil
}

// resolveBracket finds the single bracket containing gross. Zero matches
// means the table has a gap, more than one means it has an overlap.
func (c *Calculator) resolveBracket(ctx context.Context, code string, gross decimal.Decimal) (deduction.WageBracket, error) {
	brackets, err := c.ruleRepository.ListBracketsByCode(ctx, code)
	if err != nil {
		return deduction.WageBracket{}, err
	}

	// Bracket tables are cent-granular, but a fractional work day times
	// an odd rate can produce a sub-cent gross that falls between two
	// adjacent brackets. Matching happens on the cent-rounded wage.
	wage := gross.Round(2)

	var matched []deduction.WageBracket
	for _, bracket := range brackets {
		if bracket.Contains(wage) {
			matched = append(matched, bracket)
		}
	}

	switch len(matched) {
	case 0:
		return deduction.WageBracket{}, deduction.ErrNoMatchingBracket
	case 1:
		return matched[0], nil
	default:
		return deduction.WageBracket{}, deduction.ErrOverlappingBrackets
	}
}
