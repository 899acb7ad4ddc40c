package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/bankstream/internal/domain"
	"github.com/iho/bankstream/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string `json:"name"`
	Currency       string `json:"currency"`
	AllowOverdraft bool   `json:"allow_overdraft"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(ownerUserID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		OwnerUserID:    ownerUserID,
		Name:           r.Name,
		Currency:       r.Currency,
		AllowOverdraft: r.AllowOverdraft,
	}
}

// CreateTransactionRequest represents a request to apply a transaction to
// an account.
type CreateTransactionRequest struct {
	Kind                 string          `json:"type"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description,omitempty"`
	DestinationAccountID string          `json:"destination_account_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput(accountID string) usecase.ApplyTransactionInput {
	return usecase.ApplyTransactionInput{
		AccountID:            accountID,
		Kind:                 domain.TransactionKind(r.Kind),
		Amount:               r.Amount,
		Description:          r.Description,
		DestinationAccountID: r.DestinationAccountID,
	}
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Description:   r.Description,
	}
}
