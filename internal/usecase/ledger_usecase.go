package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankstream/internal/domain"
)

// LedgerUseCase applies balance-changing operations to accounts. All
// balance mutation in the system funnels through here.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	idGen       IDGenerator
	refGen      ReferenceGenerator
	retrier     Retrier
	notifier    Notifier
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	idGen IDGenerator,
	refGen ReferenceGenerator,
	retrier Retrier,
	notifier Notifier,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		idGen:       idGen,
		refGen:      refGen,
		retrier:     retrier,
		notifier:    notifier,
	}
}

// ApplyTransactionInput represents input for applying a transaction.
type ApplyTransactionInput struct {
	AccountID            string
	Kind                 domain.TransactionKind
	Amount               decimal.Decimal // positive magnitude, sign derived from kind
	Description          string
	DestinationAccountID string // required for transfers only
}

// TransferInput represents input for a two-account transfer.
type TransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
}

// TransferResult holds both legs of a committed transfer.
type TransferResult struct {
	Debit  *domain.Transaction
	Credit *domain.Transaction
}

type committedApply struct {
	txn     *domain.Transaction
	account *domain.Account
}

// Apply validates and applies a single transaction. On success the record
// is durably committed and the committed event has been handed to the
// notifier; a failed apply leaves no partial state behind.
func (uc *LedgerUseCase) Apply(ctx context.Context, input ApplyTransactionInput) (*domain.Transaction, error) {
	if err := input.Kind.Validate(); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	switch input.Kind {
	case domain.KindDeposit, domain.KindWithdrawal:
		var committed *committedApply

		err := uc.retrier.Retry(ctx, func() error {
			var err error
			committed, err = uc.applyOnce(ctx, input)
			return err
		})
		if err != nil {
			return nil, mapContention(err)
		}

		// Emit only after the commit is durable; a rollback never
		// produces a notification.
		uc.notifier.OnTransactionCommitted(ctx, committed.txn, committed.account)

		return committed.txn, nil

	case domain.KindTransfer:
		if input.DestinationAccountID == "" {
			return nil, domain.ErrMissingDestination
		}

		result, err := uc.Transfer(ctx, TransferInput{
			FromAccountID: input.AccountID,
			ToAccountID:   input.DestinationAccountID,
			Amount:        input.Amount,
			Description:   input.Description,
		})
		if err != nil {
			return nil, err
		}

		return result.Debit, nil
	}

	return nil, domain.ErrInvalidTransactionKind
}

func (uc *LedgerUseCase) applyOnce(ctx context.Context, input ApplyTransactionInput) (*committedApply, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	signed := input.Amount

	var newBalance decimal.Decimal

	switch input.Kind {
	case domain.KindDeposit:
		newBalance = account.ApplyCredit(input.Amount)
	case domain.KindWithdrawal:
		if err := account.ValidateDebit(input.Amount); err != nil {
			return nil, err
		}

		newBalance = account.ApplyDebit(input.Amount)
		signed = input.Amount.Neg()
	default:
		return nil, domain.ErrInvalidTransactionKind
	}

	txn := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		Kind:            input.Kind,
		Amount:          signed,
		Description:     input.Description,
		ReferenceNumber: uc.refGen.Generate(),
		BalanceAfter:    newBalance,
		CreatedAt:       now,
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalanceIfVersion(ctx, tx, account.ID, newBalance, account.Version, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	account.Balance = newBalance
	account.Version++
	account.UpdatedAt = now

	return &committedApply{txn: txn, account: account}, nil
}

type committedTransfer struct {
	debit  committedApply
	credit committedApply
}

// Transfer atomically debits the source account and credits the
// destination: both legs are visible after commit, or neither is.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	var committed *committedTransfer

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		committed, err = uc.transferOnce(ctx, input)
		return err
	})
	if err != nil {
		return nil, mapContention(err)
	}

	uc.notifier.OnTransactionCommitted(ctx, committed.debit.txn, committed.debit.account)
	uc.notifier.OnTransactionCommitted(ctx, committed.credit.txn, committed.credit.account)

	return &TransferResult{
		Debit:  committed.debit.txn,
		Credit: committed.credit.txn,
	}, nil
}

func (uc *LedgerUseCase) transferOnce(ctx context.Context, input TransferInput) (*committedTransfer, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock both rows in sorted order so concurrent transfers over the
	// same pair in opposite directions cannot deadlock.
	ids := []string{input.FromAccountID, input.ToAccountID}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	var source, dest *domain.Account
	for _, a := range accounts {
		switch a.ID {
		case input.FromAccountID:
			source = a
		case input.ToAccountID:
			dest = a
		}
	}

	if source == nil || dest == nil {
		return nil, domain.ErrAccountNotFound
	}

	if source.Currency != dest.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	if err := source.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transferID := uc.idGen.Generate()

	sourceBalance := source.ApplyDebit(input.Amount)
	debit := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		AccountID:       source.ID,
		Kind:            domain.KindTransfer,
		Amount:          input.Amount.Neg(),
		Description:     input.Description,
		ReferenceNumber: uc.refGen.Generate(),
		TransferID:      transferID,
		BalanceAfter:    sourceBalance,
		CreatedAt:       now,
	}

	if err := uc.txnRepo.Create(ctx, tx, debit); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalanceIfVersion(ctx, tx, source.ID, sourceBalance, source.Version, now); err != nil {
		return nil, err
	}

	destBalance := dest.ApplyCredit(input.Amount)
	credit := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		AccountID:       dest.ID,
		Kind:            domain.KindTransfer,
		Amount:          input.Amount,
		Description:     input.Description,
		ReferenceNumber: uc.refGen.Generate(),
		TransferID:      transferID,
		BalanceAfter:    destBalance,
		CreatedAt:       now,
	}

	if err := uc.txnRepo.Create(ctx, tx, credit); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalanceIfVersion(ctx, tx, dest.ID, destBalance, dest.Version, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	source.Balance = sourceBalance
	source.Version++
	source.UpdatedAt = now
	dest.Balance = destBalance
	dest.Version++
	dest.UpdatedAt = now

	return &committedTransfer{
		debit:  committedApply{txn: debit, account: source},
		credit: committedApply{txn: credit, account: dest},
	}, nil
}

// mapContention converts an exhausted-retry version conflict into the
// caller-facing busy error.
func mapContention(err error) error {
	if errors.Is(err, domain.ErrVersionConflict) {
		return domain.ErrBusy
	}
	return err
}
