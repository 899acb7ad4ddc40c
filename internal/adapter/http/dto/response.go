package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankstream/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	Balance        decimal.Decimal `json:"balance"`
	Version        int64           `json:"version"`
	AllowOverdraft bool            `json:"allow_overdraft"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Currency:       a.Currency,
		Balance:        a.Balance,
		Version:        a.Version,
		AllowOverdraft: a.AllowOverdraft,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	Kind            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
	ReferenceNumber string          `json:"reference_number"`
	TransferID      string          `json:"transfer_id,omitempty"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		Kind:            string(t.Kind),
		Amount:          t.Amount,
		Description:     t.Description,
		ReferenceNumber: t.ReferenceNumber,
		TransferID:      t.TransferID,
		BalanceAfter:    t.BalanceAfter,
		CreatedAt:       t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// TransferResponse represents both legs of a committed transfer.
type TransferResponse struct {
	TransferID string               `json:"transfer_id"`
	Debit      *TransactionResponse `json:"debit"`
	Credit     *TransactionResponse `json:"credit"`
}

// TransferFromDomain converts a committed transfer to response.
func TransferFromDomain(debit, credit *domain.Transaction) *TransferResponse {
	return &TransferResponse{
		TransferID: debit.TransferID,
		Debit:      TransactionFromDomain(debit),
		Credit:     TransactionFromDomain(credit),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
