package paycalc

import (
	"github.com/agrilabs/agripay-backend-go/internal/domain/deduction"
	"github.com/shopspring/decimal"
)

type PayCalculationFilter struct {
	Year  *int
	Page  int
	Limit int
}

type PayCalculationResponse struct {
	ID                      string          `json:"id"`
	Period                  string          `json:"period"`
	TotalGross              decimal.Decimal `json:"total_gross"`
	TotalEmployeeDeductions decimal.Decimal `json:"total_employee_deductions"`
	TotalNet                decimal.Decimal `json:"total_net"`
}

type DetailResponse struct {
	ID                 string              `json:"id"`
	Period             string              `json:"period"`
	WorkerID           string              `json:"worker_id"`
	WorkerName         *string             `json:"worker_name,omitempty"`
	GrossSalary        decimal.Decimal     `json:"gross_salary"`
	EmployeeDeductions decimal.Decimal     `json:"employee_deductions"`
	EmployerDeductions decimal.Decimal     `json:"employer_deductions"`
	NetSalary          decimal.Decimal     `json:"net_salary"`
	Breakdown          deduction.Breakdown `json:"breakdown"`
}

type PayCalculationWithDetailsResponse struct {
	PayCalculationResponse
	Details []DetailResponse `json:"details"`
}

type ListPayCalculationResponse struct {
	Data       []PayCalculationResponse `json:"data"`
	TotalCount int64                    `json:"total_count"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
}
