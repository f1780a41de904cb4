package paycalc

import "errors"

var (
	ErrPayCalculationNotFound = errors.New("pay calculation not found")
	ErrDetailNotFound         = errors.New("pay calculation detail not found")
	ErrConcurrentUpdate       = errors.New("concurrent update on pay calculation detail")
	ErrInvalidPeriod          = errors.New("invalid pay calculation period")
)
