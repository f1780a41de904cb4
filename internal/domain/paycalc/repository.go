package paycalc

import "context"

// PayCalculationRepository defines data access for pay calculations and
// their per-worker details.
type PayCalculationRepository interface {
	// FindOrCreateForPeriod atomically looks up or creates the period's
	// calculation row.
	FindOrCreateForPeriod(ctx context.Context, period Period) (PayCalculation, error)
	GetByPeriod(ctx context.Context, period Period) (PayCalculation, error)
	// GetByPeriodForUpdate locks the calculation row; all mutations of a
	// month's details serialize on this lock.
	GetByPeriodForUpdate(ctx context.Context, period Period) (PayCalculation, error)
	List(ctx context.Context, filter PayCalculationFilter) ([]PayCalculation, int64, error)
	UpdateTotals(ctx context.Context, calc PayCalculation) error
	Delete(ctx context.Context, id string) error

	GetDetail(ctx context.Context, payCalculationID, workerID string) (PayCalculationDetail, error)
	// CreateDetail returns ErrConcurrentUpdate on a (calculation, worker)
	// uniqueness violation.
	CreateDetail(ctx context.Context, detail PayCalculationDetail) (PayCalculationDetail, error)
	UpdateDetail(ctx context.Context, detail PayCalculationDetail) error
	DeleteDetail(ctx context.Context, id string) error
	ListDetails(ctx context.Context, payCalculationID string) ([]PayCalculationDetail, error)
}
