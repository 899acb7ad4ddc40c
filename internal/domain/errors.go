package domain

import "errors"

var (
	// Ledger errors
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrAccountNotFound        = errors.New("account not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrDuplicateReference     = errors.New("duplicate reference number")
	ErrVersionConflict        = errors.New("account version conflict")
	ErrBusy                   = errors.New("account busy, retry later")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")
	ErrSameAccount            = errors.New("cannot transfer to same account")
	ErrCurrencyMismatch       = errors.New("cannot transfer between different currencies")
	ErrNotAccountOwner        = errors.New("account does not belong to caller")
	ErrMissingDestination     = errors.New("transfer requires a destination account")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")

	// Realtime errors
	ErrConnectionRejected = errors.New("connection rejected")
)
