package taskqueue

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Task names understood by the background worker.
const (
	TaskProcessLargeTransaction = "process_large_transaction"
	TaskSendMonthlyReport       = "send_monthly_report"
	TaskCleanupOldData          = "cleanup_old_data"
)

// TaskMessage is the wire format handed to the broker. The idempotency
// key lets the worker deduplicate redeliveries; the gateway forwards it
// verbatim and never retries on its own.
type TaskMessage struct {
	Task           string         `json:"task"`
	Args           map[string]any `json:"args"`
	IdempotencyKey string         `json:"idempotency_key"`
	Timestamp      time.Time      `json:"timestamp"`
}

// NewProcessLargeTransaction builds the compliance-review task for a
// committed transaction. The transaction ID doubles as the idempotency
// key: one transaction, at most one review.
func NewProcessLargeTransaction(transactionID string, amount decimal.Decimal) *TaskMessage {
	return &TaskMessage{
		Task: TaskProcessLargeTransaction,
		Args: map[string]any{
			"transaction_id": transactionID,
			"amount":         amount.String(),
		},
		IdempotencyKey: transactionID,
		Timestamp:      time.Now().UTC(),
	}
}

// NewSendMonthlyReport builds the monthly statement task for a user.
func NewSendMonthlyReport(userID string, year int, month time.Month) *TaskMessage {
	return &TaskMessage{
		Task: TaskSendMonthlyReport,
		Args: map[string]any{
			"user_id": userID,
			"year":    year,
			"month":   int(month),
		},
		IdempotencyKey: userID + "-" + time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
		Timestamp:      time.Now().UTC(),
	}
}

// NewCleanupOldData builds the retention sweep task.
func NewCleanupOldData(retentionDays int) *TaskMessage {
	now := time.Now().UTC()
	return &TaskMessage{
		Task: TaskCleanupOldData,
		Args: map[string]any{
			"retention_days": retentionDays,
		},
		IdempotencyKey: "cleanup-" + now.Format("2006-01-02"),
		Timestamp:      now,
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TaskMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TaskMessageFromJSON creates a message from JSON bytes.
func TaskMessageFromJSON(data []byte) (*TaskMessage, error) {
	var msg TaskMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
