package paycalc

import (
	"time"

	"github.com/agrilabs/agripay-backend-go/internal/domain/deduction"
	"github.com/shopspring/decimal"
)

// PayCalculation - monthly totals record, one per period. Created
// lazily by the first contributing work order and deleted when its last
// detail is removed; never edited by hand.
type PayCalculation struct {
	ID                      string
	Period                  Period
	TotalGross              decimal.Decimal
	TotalEmployeeDeductions decimal.Decimal
	TotalNet                decimal.Decimal
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// PayCalculationDetail - one worker's accumulated pay for one period.
// Unique per (pay calculation, worker). The breakdown is a historical
// snapshot: it reflects the rules in force for that month, not the
// rules in force now.
type PayCalculationDetail struct {
	ID                 string
	PayCalculationID   string
	WorkerID           string
	GrossSalary        decimal.Decimal
	EmployeeDeductions decimal.Decimal
	EmployerDeductions decimal.Decimal
	NetSalary          decimal.Decimal
	Breakdown          deduction.Breakdown
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined fields
	WorkerName *string
}

// ApplyDeductions stores a freshly computed breakdown and keeps the
// net = gross - employee deductions invariant.
func (d *PayCalculationDetail) ApplyDeductions(breakdown deduction.Breakdown) {
	totals := breakdown.Sum()
	d.Breakdown = breakdown
	d.EmployeeDeductions = totals.Employee
	d.EmployerDeductions = totals.Employer
	d.NetSalary = d.GrossSalary.Sub(totals.Employee)
}
