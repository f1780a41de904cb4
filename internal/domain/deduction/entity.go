package deduction

import (
	"time"

	"github.com/agrilabs/agripay-backend-go/internal/domain/worker"
	"github.com/shopspring/decimal"
)

// CalculationKind enum
type CalculationKind string

const (
	KindPercentage CalculationKind = "percentage"
	KindFixed      CalculationKind = "fixed"
	KindWageRange  CalculationKind = "wage_range"
)

func (k CalculationKind) Valid() bool {
	switch k {
	case KindPercentage, KindFixed, KindWageRange:
		return true
	}
	return false
}

// Scope enum - which workers a rule applies to.
type Scope string

const (
	ScopeAll                 Scope = "all"
	ScopeLocal               Scope = "local"
	ScopeForeigner           Scope = "foreigner"
	ScopeForeignerNoPassport Scope = "foreigner_no_passport"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeAll, ScopeLocal, ScopeForeigner, ScopeForeignerNoPassport:
		return true
	}
	return false
}

// Matches reports whether a rule with this scope applies to a worker of
// the given nationality.
func (s Scope) Matches(n worker.Nationality) bool {
	return s == ScopeAll || string(s) == string(n)
}

// Rule - one version of a statutory deduction definition. Rate changes
// close the open row's effective window and insert a new row; historical
// rows are never mutated, so past months recompute exactly.
//
// The effective window is half-open: [EffectiveFrom, EffectiveUntil).
// EffectiveUntil = nil means the row is the currently open version. For
// a given code at most one row is open and windows never overlap.
type Rule struct {
	ID                 string
	Code               string
	Name               string
	Kind               CalculationKind
	Scope              Scope
	EmployeePercentage decimal.Decimal
	EmployerPercentage decimal.Decimal
	EmployeeAmount     decimal.Decimal
	EmployerAmount     decimal.Decimal
	EffectiveFrom      time.Time
	EffectiveUntil     *time.Time
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CoversDate reports whether the rule's window contains d.
func (r Rule) CoversDate(d time.Time) bool {
	if d.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveUntil == nil || d.Before(*r.EffectiveUntil)
}

// WageBracket - one row of a wage-range table. MaxWage = nil means the
// bracket is open-ended. Brackets for a code must partition [0, inf)
// without gaps or overlaps; both bounds are inclusive.
type WageBracket struct {
	ID             string
	Code           string
	MinWage        decimal.Decimal
	MaxWage        *decimal.Decimal
	EmployeeAmount decimal.Decimal
	EmployerAmount decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Contains reports whether gross falls inside the bracket.
func (b WageBracket) Contains(gross decimal.Decimal) bool {
	if gross.LessThan(b.MinWage) {
		return false
	}
	return b.MaxWage == nil || gross.LessThanOrEqual(*b.MaxWage)
}

// BreakdownEntry is the per-rule slice of a stored deduction snapshot.
// It freezes everything the calculation depended on: the rule's display
// name and kind, the computed amounts, the rate or bracket that produced
// them, the gross salary they were computed against, and the worker's
// nationality at the time.
type BreakdownEntry struct {
	Name           string             `json:"name"`
	Kind           CalculationKind    `json:"kind"`
	EmployeeAmount decimal.Decimal    `json:"employee_amount"`
	EmployerAmount decimal.Decimal    `json:"employer_amount"`
	EmployeeRate   *decimal.Decimal   `json:"employee_rate,omitempty"`
	EmployerRate   *decimal.Decimal   `json:"employer_rate,omitempty"`
	BracketMin     *decimal.Decimal   `json:"bracket_min,omitempty"`
	BracketMax     *decimal.Decimal   `json:"bracket_max,omitempty"`
	GrossSalary    decimal.Decimal    `json:"gross_salary"`
	Nationality    worker.Nationality `json:"nationality"`
}

// Breakdown maps rule code to its snapshot entry.
type Breakdown map[string]BreakdownEntry

// Totals sums a breakdown's employee and employer sides.
type Totals struct {
	Employee decimal.Decimal
	Employer decimal.Decimal
}

// Sum recomputes totals from the breakdown entries.
func (b Breakdown) Sum() Totals {
	totals := Totals{Employee: decimal.Zero, Employer: decimal.Zero}
	for _, entry := range b {
		totals.Employee = totals.Employee.Add(entry.EmployeeAmount)
		totals.Employer = totals.Employer.Add(entry.EmployerAmount)
	}
	return totals
}
