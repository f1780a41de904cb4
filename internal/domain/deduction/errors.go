package deduction

import "errors"

var (
	ErrRuleNotFound            = errors.New("deduction rule not found")
	ErrNoOpenRule              = errors.New("no open deduction rule version for this code")
	ErrDuplicateOpenRule       = errors.New("an open deduction rule version already exists for this code")
	ErrOverlappingWindow       = errors.New("deduction rule effective windows overlap")
	ErrNoMatchingBracket       = errors.New("no wage bracket matches the gross salary")
	ErrOverlappingBrackets     = errors.New("multiple wage brackets match the gross salary")
	ErrInvalidBracketPartition = errors.New("wage brackets must partition the wage range without gaps or overlaps")
)
