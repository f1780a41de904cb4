package deduction

import (
	"context"
	"io"
)

// RuleService administers the versioned deduction catalog.
type RuleService interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (RuleResponse, error)
	GetRule(ctx context.Context, id string) (RuleResponse, error)
	// ListRuleVersions returns every effective-dated version of a code.
	ListRuleVersions(ctx context.Context, code string) ([]RuleResponse, error)
	ListRules(ctx context.Context, activeOnly bool) ([]RuleResponse, error)

	// UpdateRate closes the open version's effective window at the new
	// effective-from date and inserts a fresh version; historical rows
	// are never mutated, so stored breakdowns stay re-derivable.
	UpdateRate(ctx context.Context, req UpdateRateRequest) (RuleResponse, error)
	DeactivateRule(ctx context.Context, id string) error

	ListBrackets(ctx context.Context, code string) ([]BracketResponse, error)
	ReplaceBrackets(ctx context.Context, req ReplaceBracketsRequest) ([]BracketResponse, error)

	// ImportRules and ImportBrackets bulk-load the catalog from CSV.
	ImportRules(ctx context.Context, r io.Reader) (ImportResult, error)
	ImportBrackets(ctx context.Context, r io.Reader) (ImportResult, error)
}
