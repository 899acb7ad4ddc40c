package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankstream/internal/domain"
	"github.com/iho/bankstream/internal/usecase"
	"github.com/iho/bankstream/internal/usecase/mocks"
)

type ledgerFixture struct {
	accountRepo *mocks.MockAccountRepository
	txnRepo     *mocks.MockTransactionRepository
	txManager   *mocks.MockTransactionManager
	notifier    *mocks.MockNotifier
	uc          *usecase.LedgerUseCase
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		accountRepo: mocks.NewMockAccountRepository(),
		txnRepo:     mocks.NewMockTransactionRepository(),
		txManager:   mocks.NewMockTransactionManager(),
		notifier:    mocks.NewMockNotifier(),
	}

	f.uc = usecase.NewLedgerUseCase(
		f.txManager,
		f.accountRepo,
		f.txnRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockReferenceGenerator(),
		mocks.NewMockRetrier(),
		f.notifier,
	)

	return f
}

func (f *ledgerFixture) seedAccount(id, owner string, balance int64) {
	f.accountRepo.Seed(&domain.Account{
		ID:          id,
		OwnerUserID: owner,
		Name:        id,
		Currency:    "USD",
		Balance:     decimal.NewFromInt(balance),
	})
}

func TestLedgerUseCase_Apply_Deposit(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("acc-1", "user-1", 0)

	txn, err := f.uc.Apply(context.Background(), usecase.ApplyTransactionInput{
		AccountID:   "acc-1",
		Kind:        domain.KindDeposit,
		Amount:      decimal.NewFromInt(1000),
		Description: "payday",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Kind != domain.KindDeposit {
		t.Errorf("kind = %s, want deposit", txn.Kind)
	}
	if !txn.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("amount = %s, want 1000", txn.Amount)
	}
	if !txn.BalanceAfter.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance after = %s, want 1000", txn.BalanceAfter)
	}
	if txn.ReferenceNumber == "" {
		t.Error("expected a reference number")
	}

	stored := f.accountRepo.Stored("acc-1")
	if !stored.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("stored balance = %s, want 1000", stored.Balance)
	}
	if stored.Version != 1 {
		t.Errorf("stored version = %d, want 1", stored.Version)
	}

	events := f.notifier.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 committed event, got %d", len(events))
	}
	if events[0].Txn.ID != txn.ID {
		t.Errorf("event transaction = %s, want %s", events[0].Txn.ID, txn.ID)
	}
}

func TestLedgerUseCase_Apply_Scenario(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("acc-1", "user-1", 0)
	ctx := context.Background()

	// deposit 1000 -> balance 1000
	if _, err := f.uc.Apply(ctx, usecase.ApplyTransactionInput{
		AccountID: "acc-1", Kind: domain.KindDeposit, Amount: decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	// withdrawal 1500 -> rejected, balance unchanged, no record
	recordsBefore := f.txnRepo.Count()
	_, err := f.uc.Apply(ctx, usecase.ApplyTransactionInput{
		AccountID: "acc-1", Kind: domain.KindWithdrawal, Amount: decimal.NewFromInt(1500),
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := f.accountRepo.Stored("acc-1").Balance; !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance after rejection = %s, want 1000", got)
	}
	if f.txnRepo.Count() != recordsBefore {
		t.Error("rejected withdrawal must not create a record")
	}

	// withdrawal 500 -> balance 500, recorded
	txn, err := f.uc.Apply(ctx, usecase.ApplyTransactionInput{
		AccountID: "acc-1", Kind: domain.KindWithdrawal, Amount: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("withdrawal failed: %v", err)
	}
	if !txn.Amount.Equal(decimal.NewFromInt(-500)) {
		t.Errorf("withdrawal amount = %s, want -500", txn.Amount)
	}
	if got := f.accountRepo.Stored("acc-1").Balance; !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("final balance = %s, want 500", got)
	}
}

func TestLedgerUseCase_Apply_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.ApplyTransactionInput
		wantErr error
	}{
		{
			name:    "zero amount",
			input:   usecase.ApplyTransactionInput{AccountID: "acc-1", Kind: domain.KindDeposit, Amount: decimal.Zero},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			input:   usecase.ApplyTransactionInput{AccountID: "acc-1", Kind: domain.KindDeposit, Amount: decimal.NewFromInt(-10)},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "unknown kind",
			input:   usecase.ApplyTransactionInput{AccountID: "acc-1", Kind: "refund", Amount: decimal.NewFromInt(10)},
			wantErr: domain.ErrInvalidTransactionKind,
		},
		{
			name:    "unknown account",
			input:   usecase.ApplyTransactionInput{AccountID: "nope", Kind: domain.KindDeposit, Amount: decimal.NewFromInt(10)},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name:    "transfer without destination",
			input:   usecase.ApplyTransactionInput{AccountID: "acc-1", Kind: domain.KindTransfer, Amount: decimal.NewFromInt(10)},
			wantErr: domain.ErrMissingDestination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			f.seedAccount("acc-1", "user-1", 100)

			_, err := f.uc.Apply(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Apply() = %v, want %v", err, tt.wantErr)
			}
			if len(f.notifier.Events()) != 0 {
				t.Error("rejected apply must not emit events")
			}
		})
	}
}

func TestLedgerUseCase_Apply_ExhaustedContentionIsBusy(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("acc-1", "user-1", 100)

	f.accountRepo.UpdateBalanceIfVersionFunc = func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
		return domain.ErrVersionConflict
	}

	_, err := f.uc.Apply(context.Background(), usecase.ApplyTransactionInput{
		AccountID: "acc-1", Kind: domain.KindDeposit, Amount: decimal.NewFromInt(10),
	})
	if !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if len(f.notifier.Events()) != 0 {
		t.Error("no event may be emitted when the commit never happened")
	}
}

func TestLedgerUseCase_Apply_DuplicateReference(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("acc-1", "user-1", 0)

	refGen := mocks.NewMockReferenceGenerator()
	refGen.GenerateFunc = func() string { return "TXNSAME" }

	f.uc = usecase.NewLedgerUseCase(
		f.txManager, f.accountRepo, f.txnRepo,
		mocks.NewMockIDGenerator(), refGen, mocks.NewMockRetrier(), f.notifier,
	)

	ctx := context.Background()
	if _, err := f.uc.Apply(ctx, usecase.ApplyTransactionInput{
		AccountID: "acc-1", Kind: domain.KindDeposit, Amount: decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}

	_, err := f.uc.Apply(ctx, usecase.ApplyTransactionInput{
		AccountID: "acc-1", Kind: domain.KindDeposit, Amount: decimal.NewFromInt(10),
	})
	if !errors.Is(err, domain.ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}
}

func TestLedgerUseCase_ConcurrentWithdrawals(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("acc-1", "user-1", 1000)

	var wg sync.WaitGroup
	results := make([]error, 2)

	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = f.uc.Apply(context.Background(), usecase.ApplyTransactionInput{
				AccountID: "acc-1", Kind: domain.KindWithdrawal, Amount: decimal.NewFromInt(600),
			})
		}()
	}
	wg.Wait()

	var successes, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one success and one rejection, got %d/%d", successes, insufficient)
	}

	if got := f.accountRepo.Stored("acc-1").Balance; !got.Equal(decimal.NewFromInt(400)) {
		t.Errorf("final balance = %s, want 400", got)
	}

	if len(f.notifier.Events()) != 1 {
		t.Errorf("expected exactly one committed event, got %d", len(f.notifier.Events()))
	}
}

func TestLedgerUseCase_Transfer(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("acc-a", "user-1", 500)
	f.seedAccount("acc-b", "user-2", 0)

	result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
		FromAccountID: "acc-a",
		ToAccountID:   "acc-b",
		Amount:        decimal.NewFromInt(200),
		Description:   "rent",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Debit.Amount.Equal(decimal.NewFromInt(-200)) {
		t.Errorf("debit amount = %s, want -200", result.Debit.Amount)
	}
	if !result.Credit.Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("credit amount = %s, want 200", result.Credit.Amount)
	}
	if result.Debit.TransferID == "" || result.Debit.TransferID != result.Credit.TransferID {
		t.Error("both legs must share a transfer id")
	}

	if got := f.accountRepo.Stored("acc-a").Balance; !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("source balance = %s, want 300", got)
	}
	if got := f.accountRepo.Stored("acc-b").Balance; !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("destination balance = %s, want 200", got)
	}

	if len(f.notifier.Events()) != 2 {
		t.Errorf("expected one event per leg, got %d", len(f.notifier.Events()))
	}
}

func TestLedgerUseCase_Transfer_Rejections(t *testing.T) {
	newFixture := func() *ledgerFixture {
		f := newLedgerFixture()
		f.seedAccount("acc-a", "user-1", 100)
		f.accountRepo.Seed(&domain.Account{
			ID: "acc-eur", OwnerUserID: "user-2", Currency: "EUR", Balance: decimal.Zero,
		})
		f.seedAccount("acc-b", "user-2", 0)
		return f
	}

	tests := []struct {
		name    string
		input   usecase.TransferInput
		wantErr error
	}{
		{
			name:    "same account",
			input:   usecase.TransferInput{FromAccountID: "acc-a", ToAccountID: "acc-a", Amount: decimal.NewFromInt(10)},
			wantErr: domain.ErrSameAccount,
		},
		{
			name:    "currency mismatch",
			input:   usecase.TransferInput{FromAccountID: "acc-a", ToAccountID: "acc-eur", Amount: decimal.NewFromInt(10)},
			wantErr: domain.ErrCurrencyMismatch,
		},
		{
			name:    "insufficient funds",
			input:   usecase.TransferInput{FromAccountID: "acc-a", ToAccountID: "acc-b", Amount: decimal.NewFromInt(500)},
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name:    "unknown destination",
			input:   usecase.TransferInput{FromAccountID: "acc-a", ToAccountID: "nope", Amount: decimal.NewFromInt(10)},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.uc.Transfer(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Transfer() = %v, want %v", err, tt.wantErr)
			}
			if len(f.notifier.Events()) != 0 {
				t.Error("rejected transfer must not emit events")
			}
		})
	}
}

func TestLedgerUseCase_Transfer_RollsBackOnLegFailure(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("acc-a", "user-1", 500)
	f.seedAccount("acc-b", "user-2", 0)

	var commits, rollbacks int
	f.txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		return &mocks.MockTx{
			CommitFunc:   func(ctx context.Context) error { commits++; return nil },
			RollbackFunc: func(ctx context.Context) error { rollbacks++; return nil },
		}, nil
	}

	storeErr := errors.New("store unavailable")
	calls := 0
	f.txnRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
		calls++
		if calls == 2 {
			// Fail between the debit and credit legs.
			return storeErr
		}
		return nil
	}

	_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
		FromAccountID: "acc-a", ToAccountID: "acc-b", Amount: decimal.NewFromInt(100),
	})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}

	if commits != 0 {
		t.Errorf("expected no commit, got %d", commits)
	}
	if rollbacks == 0 {
		t.Error("expected the transaction to be rolled back")
	}
	if len(f.notifier.Events()) != 0 {
		t.Error("failed transfer must not emit events")
	}
}

func TestLedgerUseCase_Transfer_LocksInSortedOrder(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount("acc-a", "user-1", 500)
	f.seedAccount("acc-b", "user-2", 100)

	var lockedIDs []string
	f.accountRepo.GetByIDsForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
		lockedIDs = append([]string(nil), ids...)
		accounts := make([]*domain.Account, 0, len(ids))
		for _, id := range ids {
			if a := f.accountRepo.Stored(id); a != nil {
				accounts = append(accounts, a)
			}
		}
		return accounts, nil
	}

	// Transfer from the lexicographically larger account.
	if _, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
		FromAccountID: "acc-b", ToAccountID: "acc-a", Amount: decimal.NewFromInt(50),
	}); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if len(lockedIDs) != 2 || !sort.StringsAreSorted(lockedIDs) {
		t.Errorf("accounts must be locked in sorted order, got %v", lockedIDs)
	}
}
