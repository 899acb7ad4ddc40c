package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a ledger account that can hold a balance.
// Its balance is mutated only by the ledger use case; request handlers
// never write it directly.
type Account struct {
	ID             string
	OwnerUserID    string
	Name           string
	Currency       string
	Balance        decimal.Decimal
	Version        int64
	AllowOverdraft bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDebit checks if the account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	newBalance := a.Balance.Sub(amount)
	if !a.AllowOverdraft && newBalance.IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns the new balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the new balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
