package paycalc

import (
	"testing"

	"github.com/agrilabs/agripay-backend-go/internal/domain/workorder"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestGrossForAssignment(t *testing.T) {
	tests := []struct {
		name       string
		assignment workorder.WorkerAssignment
		rateType   workorder.RateType
		want       decimal.Decimal
	}{
		{
			name:       "work days pays rate times days",
			assignment: workorder.WorkerAssignment{Rate: dec("100"), WorkDays: decPtr("10")},
			rateType:   workorder.RateTypeWorkDays,
			want:       dec("1000"),
		},
		{
			name:       "normal pays rate times area",
			assignment: workorder.WorkerAssignment{Rate: dec("50"), WorkAreaSize: decPtr("2.5")},
			rateType:   workorder.RateTypeNormal,
			want:       dec("125"),
		},
		{
			name:       "fractional days",
			assignment: workorder.WorkerAssignment{Rate: dec("120"), WorkDays: decPtr("0.5")},
			rateType:   workorder.RateTypeWorkDays,
			want:       dec("60"),
		},
		{
			name:       "missing work days contributes zero",
			assignment: workorder.WorkerAssignment{Rate: dec("100")},
			rateType:   workorder.RateTypeWorkDays,
			want:       decimal.Zero,
		},
		{
			name:       "missing area contributes zero",
			assignment: workorder.WorkerAssignment{Rate: dec("100")},
			rateType:   workorder.RateTypeNormal,
			want:       decimal.Zero,
		},
		{
			name:       "resources contributes zero",
			assignment: workorder.WorkerAssignment{Rate: dec("100"), WorkDays: decPtr("10")},
			rateType:   workorder.RateTypeResources,
			want:       decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrossForAssignment(tt.assignment, tt.rateType)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestGrossForAssignments(t *testing.T) {
	assignments := []workorder.AssignmentWithRateType{
		{
			Assignment: workorder.WorkerAssignment{Rate: dec("100"), WorkDays: decPtr("10")},
			RateType:   workorder.RateTypeWorkDays,
		},
		{
			Assignment: workorder.WorkerAssignment{Rate: dec("30"), WorkAreaSize: decPtr("10")},
			RateType:   workorder.RateTypeNormal,
		},
	}

	got := GrossForAssignments(assignments)
	assert.True(t, dec("1300").Equal(got), "got %s", got)
}
