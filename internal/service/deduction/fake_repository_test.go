package deduction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agrilabs/agripay-backend-go/internal/domain/deduction"
)

// passthroughTx satisfies database.TxRunner for tests where transaction
// boundaries carry no behavior.
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeRuleRepository is an in-memory deduction.RuleRepository.
type fakeRuleRepository struct {
	rules    map[string]deduction.Rule
	brackets map[string][]deduction.WageBracket
	nextID   int
}

func newFakeRuleRepository() *fakeRuleRepository {
	return &fakeRuleRepository{
		rules:    map[string]deduction.Rule{},
		brackets: map[string][]deduction.WageBracket{},
	}
}

func (f *fakeRuleRepository) newID() string {
	f.nextID++
	return fmt.Sprintf("rule-%d", f.nextID)
}

func (f *fakeRuleRepository) CreateRule(ctx context.Context, rule deduction.Rule) (deduction.Rule, error) {
	rule.ID = f.newID()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt
	f.rules[rule.ID] = rule
	return rule, nil
}

func (f *fakeRuleRepository) GetRuleByID(ctx context.Context, id string) (deduction.Rule, error) {
	rule, ok := f.rules[id]
	if !ok {
		return deduction.Rule{}, deduction.ErrRuleNotFound
	}
	return rule, nil
}

func (f *fakeRuleRepository) GetOpenRuleForUpdate(ctx context.Context, code string) (deduction.Rule, error) {
	for _, rule := range f.rules {
		if rule.Code == code && rule.EffectiveUntil == nil {
			return rule, nil
		}
	}
	return deduction.Rule{}, deduction.ErrNoOpenRule
}

func (f *fakeRuleRepository) ListRulesByCode(ctx context.Context, code string) ([]deduction.Rule, error) {
	var rules []deduction.Rule
	for _, rule := range f.rules {
		if rule.Code == code {
			rules = append(rules, rule)
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].EffectiveFrom.After(rules[j].EffectiveFrom)
	})
	return rules, nil
}

func (f *fakeRuleRepository) ListRules(ctx context.Context, activeOnly bool) ([]deduction.Rule, error) {
	var rules []deduction.Rule
	for _, rule := range f.rules {
		if activeOnly && !rule.IsActive {
			continue
		}
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].ID < rules[j].ID
	})
	return rules, nil
}

func (f *fakeRuleRepository) ListEffectiveRules(ctx context.Context, asOf time.Time) ([]deduction.Rule, error) {
	var rules []deduction.Rule
	for _, rule := range f.rules {
		if rule.IsActive && rule.CoversDate(asOf) {
			rules = append(rules, rule)
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Code < rules[j].Code
	})
	return rules, nil
}

func (f *fakeRuleRepository) CloseRuleWindow(ctx context.Context, id string, until time.Time) error {
	rule, ok := f.rules[id]
	if !ok {
		return deduction.ErrRuleNotFound
	}
	rule.EffectiveUntil = &until
	f.rules[id] = rule
	return nil
}

func (f *fakeRuleRepository) SetRuleActive(ctx context.Context, id string, active bool) error {
	rule, ok := f.rules[id]
	if !ok {
		return deduction.ErrRuleNotFound
	}
	rule.IsActive = active
	f.rules[id] = rule
	return nil
}

func (f *fakeRuleRepository) ListBracketsByCode(ctx context.Context, code string) ([]deduction.WageBracket, error) {
	return f.brackets[code], nil
}

func (f *fakeRuleRepository) ReplaceBrackets(ctx context.Context, code string, brackets []deduction.WageBracket) ([]deduction.WageBracket, error) {
	stored := make([]deduction.WageBracket, 0, len(brackets))
	for _, bracket := range brackets {
		bracket.ID = f.newID()
		bracket.Code = code
		stored = append(stored, bracket)
	}
	f.brackets[code] = stored
	return stored, nil
}
