package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bankstream/internal/domain"
	"github.com/iho/bankstream/internal/infrastructure/postgres/generated"
	"github.com/iho/bankstream/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create records a transaction inside the caller's database transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	_, err := queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:              txn.ID,
		AccountID:       txn.AccountID,
		Kind:            string(txn.Kind),
		Amount:          decimalToNumeric(txn.Amount),
		Description:     stringToPgText(txn.Description),
		ReferenceNumber: txn.ReferenceNumber,
		TransferID:      stringToPgText(txn.TransferID),
		BalanceAfter:    decimalToNumeric(txn.BalanceAfter),
		CreatedAt:       timeToPgTimestamptz(txn.CreatedAt),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrDuplicateReference
		}

		return err
	}

	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// ListByAccount retrieves an account's transactions, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByAccount(ctx, generated.ListTransactionsByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	txns := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, rowToTransaction(row))
	}

	return txns, nil
}

// DeleteBefore removes transactions older than the cutoff and reports
// how many went. Used by the retention sweep task.
func (r *TransactionRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.queries.DeleteTransactionsBefore(ctx, timeToPgTimestamptz(cutoff))
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:              row.ID,
		AccountID:       row.AccountID,
		Kind:            domain.TransactionKind(row.Kind),
		Amount:          numericToDecimal(row.Amount),
		Description:     row.Description.String,
		ReferenceNumber: row.ReferenceNumber,
		TransferID:      row.TransferID.String,
		BalanceAfter:    numericToDecimal(row.BalanceAfter),
		CreatedAt:       row.CreatedAt.Time,
	}
}
