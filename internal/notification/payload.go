package notification

import (
	"encoding/json"
	"time"

	"github.com/iho/bankstream/internal/domain"
)

// AccountInfo is the account portion of a transaction payload.
type AccountInfo struct {
	ID         string `json:"id"`
	Currency   string `json:"currency"`
	NewBalance string `json:"new_balance"`
}

// TransactionInfo is the transaction portion of a transaction payload.
type TransactionInfo struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Amount          string    `json:"amount"`
	ReferenceNumber string    `json:"reference_number"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionPayload is the frame pushed to a user's subscribers for
// every committed transaction.
type TransactionPayload struct {
	Type        string          `json:"type"`
	Account     AccountInfo     `json:"account"`
	Transaction TransactionInfo `json:"transaction"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewTransactionPayload builds the committed-transaction frame. Amounts
// travel as decimal strings.
func NewTransactionPayload(txn *domain.Transaction, account *domain.Account) *TransactionPayload {
	return &TransactionPayload{
		Type: "transaction",
		Account: AccountInfo{
			ID:         account.ID,
			Currency:   account.Currency,
			NewBalance: account.Balance.String(),
		},
		Transaction: TransactionInfo{
			ID:              txn.ID,
			Type:            string(txn.Kind),
			Amount:          txn.Amount.String(),
			ReferenceNumber: txn.ReferenceNumber,
			CreatedAt:       txn.CreatedAt,
		},
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the payload to JSON bytes.
func (p *TransactionPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// NoticePayload is an out-of-band user notification frame.
type NoticePayload struct {
	Type          string    `json:"type"`
	Event         string    `json:"event"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLargeTransactionNotice tells the owning user their transaction was
// handed off for compliance review.
func NewLargeTransactionNotice(transactionID string) *NoticePayload {
	return &NoticePayload{
		Type:          "notification",
		Event:         "large_transaction_processing",
		TransactionID: transactionID,
		Message:       "Your transaction is being processed for compliance review",
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the payload to JSON bytes.
func (p *NoticePayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}
