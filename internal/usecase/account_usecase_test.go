package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankstream/internal/domain"
	"github.com/iho/bankstream/internal/usecase"
	"github.com/iho/bankstream/internal/usecase/mocks"
)

type accountFixture struct {
	accountRepo *mocks.MockAccountRepository
	txnRepo     *mocks.MockTransactionRepository
	uc          *usecase.AccountUseCase
}

func newAccountFixture() *accountFixture {
	f := &accountFixture{
		accountRepo: mocks.NewMockAccountRepository(),
		txnRepo:     mocks.NewMockTransactionRepository(),
	}
	f.uc = usecase.NewAccountUseCase(f.accountRepo, f.txnRepo, mocks.NewMockIDGenerator())
	return f
}

func TestAccountUseCase_CreateAccount(t *testing.T) {
	f := newAccountFixture()

	account, err := f.uc.CreateAccount(context.Background(), usecase.CreateAccountInput{
		OwnerUserID: "user-1",
		Name:        "Checking",
		Currency:    "USD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.ID == "" {
		t.Error("expected a generated id")
	}
	if !account.Balance.Equal(decimal.Zero) {
		t.Errorf("new account balance = %s, want 0", account.Balance)
	}
	if account.Version != 0 {
		t.Errorf("new account version = %d, want 0", account.Version)
	}
	if account.AllowOverdraft {
		t.Error("overdraft must default to disallowed")
	}
}

func TestAccountUseCase_CreateAccount_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.CreateAccountInput
		wantErr error
	}{
		{
			name:    "empty name",
			input:   usecase.CreateAccountInput{OwnerUserID: "user-1", Name: "", Currency: "USD"},
			wantErr: domain.ErrInvalidAccountName,
		},
		{
			name:    "unknown currency",
			input:   usecase.CreateAccountInput{OwnerUserID: "user-1", Name: "Checking", Currency: "XYZ"},
			wantErr: domain.ErrInvalidCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAccountFixture()
			_, err := f.uc.CreateAccount(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateAccount() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccountUseCase_GetAccountForOwner(t *testing.T) {
	f := newAccountFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1", OwnerUserID: "user-1", Currency: "USD"})

	if _, err := f.uc.GetAccountForOwner(context.Background(), "acc-1", "user-1"); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}

	_, err := f.uc.GetAccountForOwner(context.Background(), "acc-1", "user-2")
	if !errors.Is(err, domain.ErrNotAccountOwner) {
		t.Errorf("expected ErrNotAccountOwner, got %v", err)
	}

	_, err = f.uc.GetAccountForOwner(context.Background(), "missing", "user-1")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountUseCase_ListTransactions_OwnerScoped(t *testing.T) {
	f := newAccountFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1", OwnerUserID: "user-1", Currency: "USD"})

	_, err := f.uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{
		AccountID:   "acc-1",
		OwnerUserID: "user-2",
	})
	if !errors.Is(err, domain.ErrNotAccountOwner) {
		t.Errorf("expected ErrNotAccountOwner, got %v", err)
	}
}

func TestAccountUseCase_ListTransactions_ClampsLimit(t *testing.T) {
	f := newAccountFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1", OwnerUserID: "user-1", Currency: "USD"})

	var gotLimit int
	f.txnRepo.ListByAccountFunc = func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
		gotLimit = limit
		return nil, nil
	}

	if _, err := f.uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{
		AccountID:   "acc-1",
		OwnerUserID: "user-1",
		Limit:       10000,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotLimit != 100 {
		t.Errorf("limit = %d, want clamped to 100", gotLimit)
	}
}

func TestAccountUseCase_GetTransactionForOwner(t *testing.T) {
	f := newAccountFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1", OwnerUserID: "user-1", Currency: "USD"})

	txn := &domain.Transaction{
		ID:              "txn-1",
		AccountID:       "acc-1",
		Kind:            domain.KindDeposit,
		Amount:          decimal.NewFromInt(10),
		ReferenceNumber: "TXNREF00001",
	}
	if err := f.txnRepo.Create(context.Background(), &mocks.MockTx{}, txn); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	got, err := f.uc.GetTransactionForOwner(context.Background(), "txn-1", "user-1")
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if got.ID != "txn-1" {
		t.Errorf("transaction id = %s, want txn-1", got.ID)
	}

	_, err = f.uc.GetTransactionForOwner(context.Background(), "txn-1", "user-2")
	if !errors.Is(err, domain.ErrNotAccountOwner) {
		t.Errorf("expected ErrNotAccountOwner, got %v", err)
	}
}
