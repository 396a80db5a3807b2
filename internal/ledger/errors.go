package ledger

import "errors"

var (
	ErrInvalidAmount       = errors.New("amount must be a positive number of cents")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSelfTransfer        = errors.New("sender and receiver are the same account")
	ErrInconsistentLedger  = errors.New("inconsistent ledger")
)
