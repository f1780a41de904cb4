package deduction

import (
	"context"
	"time"
)

// RuleRepository defines data access for deduction rules and wage
// brackets.
type RuleRepository interface {
	CreateRule(ctx context.Context, rule Rule) (Rule, error)
	GetRuleByID(ctx context.Context, id string) (Rule, error)
	// GetOpenRuleForUpdate locks the currently open version of a code.
	GetOpenRuleForUpdate(ctx context.Context, code string) (Rule, error)
	// ListRulesByCode returns every version of a code, newest window first.
	ListRulesByCode(ctx context.Context, code string) ([]Rule, error)
	ListRules(ctx context.Context, activeOnly bool) ([]Rule, error)
	// ListEffectiveRules returns active rules whose window contains asOf.
	ListEffectiveRules(ctx context.Context, asOf time.Time) ([]Rule, error)
	// CloseRuleWindow stamps effective_until on an open rule version.
	CloseRuleWindow(ctx context.Context, id string, until time.Time) error
	SetRuleActive(ctx context.Context, id string, active bool) error

	ListBracketsByCode(ctx context.Context, code string) ([]WageBracket, error)
	// ReplaceBrackets swaps the full bracket table for a code.
	ReplaceBrackets(ctx context.Context, code string, brackets []WageBracket) ([]WageBracket, error)
}
