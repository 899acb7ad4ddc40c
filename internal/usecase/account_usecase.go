package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankstream/internal/domain"
)

// AccountUseCase handles account CRUD.
type AccountUseCase struct {
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, txnRepo TransactionRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerUserID    string
	Name           string
	Currency       string
	AllowOverdraft bool
}

// CreateAccount creates a new account with a zero balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		OwnerUserID:    input.OwnerUserID,
		Name:           input.Name,
		Currency:       input.Currency,
		Balance:        decimal.Zero,
		Version:        0,
		AllowOverdraft: input.AllowOverdraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccountForOwner retrieves an account, rejecting callers that do not
// own it.
func (uc *AccountUseCase) GetAccountForOwner(ctx context.Context, id, ownerUserID string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if account.OwnerUserID != ownerUserID {
		return nil, domain.ErrNotAccountOwner
	}

	return account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	OwnerUserID string
	Limit       int
	Offset      int
}

// ListAccounts lists the caller's accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = defaultPageLimit
	}
	if input.Limit > maxPageLimit {
		input.Limit = maxPageLimit
	}

	return uc.accountRepo.ListByOwner(ctx, input.OwnerUserID, input.Limit, input.Offset)
}

// GetTransactionForOwner retrieves a transaction, rejecting callers that
// do not own the account it belongs to.
func (uc *AccountUseCase) GetTransactionForOwner(ctx context.Context, id, ownerUserID string) (*domain.Transaction, error) {
	txn, err := uc.txnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, txn.AccountID)
	if err != nil {
		return nil, err
	}

	if account.OwnerUserID != ownerUserID {
		return nil, domain.ErrNotAccountOwner
	}

	return txn, nil
}

// ListTransactionsInput represents input for listing transactions.
type ListTransactionsInput struct {
	AccountID   string
	OwnerUserID string
	Limit       int
	Offset      int
}

// ListTransactions lists an account's transactions, newest first.
func (uc *AccountUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if account.OwnerUserID != input.OwnerUserID {
		return nil, domain.ErrNotAccountOwner
	}

	if input.Limit <= 0 {
		input.Limit = defaultPageLimit
	}
	if input.Limit > maxPageLimit {
		input.Limit = maxPageLimit
	}

	return uc.txnRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}
