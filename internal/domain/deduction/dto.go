package deduction

import (
	"github.com/agrilabs/agripay-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RULE DTOs ==========

type CreateRuleRequest struct {
	Code               string           `json:"code"`
	Name               string           `json:"name"`
	Kind               string           `json:"kind"`
	Scope              string           `json:"scope"`
	EmployeePercentage *decimal.Decimal `json:"employee_percentage,omitempty"`
	EmployerPercentage *decimal.Decimal `json:"employer_percentage,omitempty"`
	EmployeeAmount     *decimal.Decimal `json:"employee_amount,omitempty"`
	EmployerAmount     *decimal.Decimal `json:"employer_amount,omitempty"`
	EffectiveFrom      string           `json:"effective_from"`
}

func (r *CreateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidDeductionCode(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "must be a short uppercase identifier"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	kind := CalculationKind(r.Kind)
	if !kind.Valid() {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "must be 'percentage', 'fixed' or 'wage_range'"})
	}
	if !Scope(r.Scope).Valid() {
		errs = append(errs, validator.ValidationError{Field: "scope", Message: "must be 'all', 'local', 'foreigner' or 'foreigner_no_passport'"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be YYYY-MM-DD"})
	}

	switch kind {
	case KindPercentage:
		if r.EmployeePercentage == nil && r.EmployerPercentage == nil {
			errs = append(errs, validator.ValidationError{Field: "employee_percentage", Message: "percentage rules require at least one percentage"})
		}
		if r.EmployeePercentage != nil && r.EmployeePercentage.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "employee_percentage", Message: "must be non-negative"})
		}
		if r.EmployerPercentage != nil && r.EmployerPercentage.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "employer_percentage", Message: "must be non-negative"})
		}
	case KindFixed:
		if r.EmployeeAmount == nil && r.EmployerAmount == nil {
			errs = append(errs, validator.ValidationError{Field: "employee_amount", Message: "fixed rules require at least one amount"})
		}
		if r.EmployeeAmount != nil && r.EmployeeAmount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "employee_amount", Message: "must be non-negative"})
		}
		if r.EmployerAmount != nil && r.EmployerAmount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "employer_amount", Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateRateRequest replaces the rates of a code from a given date
// onward. The open version is closed at EffectiveFrom, never edited.
type UpdateRateRequest struct {
	Code               string
	EmployeePercentage *decimal.Decimal `json:"employee_percentage,omitempty"`
	EmployerPercentage *decimal.Decimal `json:"employer_percentage,omitempty"`
	EmployeeAmount     *decimal.Decimal `json:"employee_amount,omitempty"`
	EmployerAmount     *decimal.Decimal `json:"employer_amount,omitempty"`
	EffectiveFrom      string           `json:"effective_from"`
}

func (r *UpdateRateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidDeductionCode(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "must be a short uppercase identifier"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be YYYY-MM-DD"})
	}
	for field, v := range map[string]*decimal.Decimal{
		"employee_percentage": r.EmployeePercentage,
		"employer_percentage": r.EmployerPercentage,
		"employee_amount":     r.EmployeeAmount,
		"employer_amount":     r.EmployerAmount,
	} {
		if v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BracketRequest struct {
	MinWage        decimal.Decimal  `json:"min_wage"`
	MaxWage        *decimal.Decimal `json:"max_wage,omitempty"`
	EmployeeAmount decimal.Decimal  `json:"employee_amount"`
	EmployerAmount decimal.Decimal  `json:"employer_amount"`
}

type ReplaceBracketsRequest struct {
	Code     string
	Brackets []BracketRequest `json:"brackets"`
}

func (r *ReplaceBracketsRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidDeductionCode(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "must be a short uppercase identifier"})
	}
	if len(r.Brackets) == 0 {
		errs = append(errs, validator.ValidationError{Field: "brackets", Message: "at least one bracket is required"})
	}
	for i, b := range r.Brackets {
		field := "brackets[" + validator.Itoa(i) + "]"
		if b.MinWage.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + ".min_wage", Message: "must be non-negative"})
		}
		if b.MaxWage != nil && b.MaxWage.LessThan(b.MinWage) {
			errs = append(errs, validator.ValidationError{Field: field + ".max_wage", Message: "must be >= min_wage"})
		}
		if b.EmployeeAmount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + ".employee_amount", Message: "must be non-negative"})
		}
		if b.EmployerAmount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + ".employer_amount", Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSE DTOs ==========

type RuleResponse struct {
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Kind               string          `json:"kind"`
	Scope              string          `json:"scope"`
	EmployeePercentage decimal.Decimal `json:"employee_percentage"`
	EmployerPercentage decimal.Decimal `json:"employer_percentage"`
	EmployeeAmount     decimal.Decimal `json:"employee_amount"`
	EmployerAmount     decimal.Decimal `json:"employer_amount"`
	EffectiveFrom      string          `json:"effective_from"`
	EffectiveUntil     *string         `json:"effective_until,omitempty"`
	IsActive           bool            `json:"is_active"`
}

type BracketResponse struct {
	ID             string           `json:"id"`
	Code           string           `json:"code"`
	MinWage        decimal.Decimal  `json:"min_wage"`
	MaxWage        *decimal.Decimal `json:"max_wage,omitempty"`
	EmployeeAmount decimal.Decimal  `json:"employee_amount"`
	EmployerAmount decimal.Decimal  `json:"employer_amount"`
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
