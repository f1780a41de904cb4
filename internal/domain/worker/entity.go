package worker

import "time"

// Nationality enum. Deduction rules are scoped by nationality, and
// foreign workers without a passport on file fall under a separate
// statutory scheme.
type Nationality string

const (
	NationalityLocal               Nationality = "local"
	NationalityForeigner           Nationality = "foreigner"
	NationalityForeignerNoPassport Nationality = "foreigner_no_passport"
)

func (n Nationality) Valid() bool {
	switch n {
	case NationalityLocal, NationalityForeigner, NationalityForeignerNoPassport:
		return true
	}
	return false
}

// Worker - directory entry maintained by the worker administration
// screens; this service only reads it.
type Worker struct {
	ID          string
	Name        string
	Nationality Nationality
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
