package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankstream/internal/adapter/http/dto"
	"github.com/iho/bankstream/internal/adapter/http/middleware"
	"github.com/iho/bankstream/internal/domain"
	"github.com/iho/bankstream/internal/infrastructure/metrics"
	"github.com/iho/bankstream/internal/usecase"
)

// LedgerService defines the behavior needed by TransactionHandler.
type LedgerService interface {
	Apply(ctx context.Context, input usecase.ApplyTransactionInput) (*domain.Transaction, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error)
}

// TransactionQueryService resolves transactions scoped to their owner.
type TransactionQueryService interface {
	GetAccountForOwner(ctx context.Context, id, ownerUserID string) (*domain.Account, error)
	GetTransactionForOwner(ctx context.Context, id, ownerUserID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	ledgerUC LedgerService
	queryUC  TransactionQueryService
	metrics  *metrics.Metrics
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerUC LedgerService, queryUC TransactionQueryService, m *metrics.Metrics) *TransactionHandler {
	return &TransactionHandler{ledgerUC: ledgerUC, queryUC: queryUC, metrics: m}
}

// Create applies a transaction to one of the caller's accounts.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	// Ownership is checked before the apply so an unauthorized caller
	// never reaches the ledger path.
	if _, err := h.queryUC.GetAccountForOwner(r.Context(), accountID, identity.UserID); err != nil {
		writeError(w, mapDomainError(err), "failed to apply transaction", err.Error())
		return
	}

	txn, err := h.ledgerUC.Apply(r.Context(), req.ToUseCaseInput(accountID))
	if err != nil {
		h.metrics.TransactionErrors.WithLabelValues(rejectReason(err)).Inc()
		writeError(w, mapDomainError(err), "failed to apply transaction", err.Error())
		return
	}

	h.metrics.TransactionsApplied.WithLabelValues(string(txn.Kind)).Inc()
	h.metrics.TransactionAmount.Observe(txn.Amount.Abs().InexactFloat64())

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// CreateTransfer moves funds between two of the caller's accounts.
func (h *TransactionHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.FromAccountID == "" || req.ToAccountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	// The caller must own the source account. The destination may belong
	// to anyone.
	if _, err := h.queryUC.GetAccountForOwner(r.Context(), req.FromAccountID, identity.UserID); err != nil {
		writeError(w, mapDomainError(err), "failed to create transfer", err.Error())
		return
	}

	result, err := h.ledgerUC.Transfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.metrics.TransactionErrors.WithLabelValues(rejectReason(err)).Inc()
		writeError(w, mapDomainError(err), "failed to create transfer", err.Error())
		return
	}

	h.metrics.TransfersCreated.Inc()
	h.metrics.TransactionAmount.Observe(result.Credit.Amount.InexactFloat64())

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(result.Debit, result.Credit))
}

// Get retrieves a transaction on one of the caller's accounts.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.queryUC.GetTransactionForOwner(r.Context(), id, identity.UserID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// ListByAccount lists an account's transactions, newest first.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	txns, err := h.queryUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		AccountID:   accountID,
		OwnerUserID: identity.UserID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txns),
		Total:        int64(len(txns)),
	})
}

// rejectReason buckets apply failures for the error counter.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrAmountTooLarge):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInvalidTransactionKind):
		return "invalid_kind"
	case errors.Is(err, domain.ErrDuplicateReference):
		return "duplicate_reference"
	case errors.Is(err, domain.ErrBusy):
		return "contention"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return "currency_mismatch"
	case errors.Is(err, domain.ErrSameAccount):
		return "same_account"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	default:
		return "other"
	}
}
