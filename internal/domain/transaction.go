package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the closed set of supported transaction kinds.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindTransfer   TransactionKind = "transfer"
)

// Validate checks that the kind is one of the supported values.
func (k TransactionKind) Validate() error {
	switch k {
	case KindDeposit, KindWithdrawal, KindTransfer:
		return nil
	default:
		return ErrInvalidTransactionKind
	}
}

// Transaction is an immutable, append-only ledger record. It is created
// exactly once per successful apply and never updated or deleted.
type Transaction struct {
	ID              string
	AccountID       string
	Kind            TransactionKind
	Amount          decimal.Decimal // signed: credits positive, debits negative
	Description     string
	ReferenceNumber string
	TransferID      string // shared by both legs of a transfer, empty otherwise
	BalanceAfter    decimal.Decimal
	CreatedAt       time.Time
}
