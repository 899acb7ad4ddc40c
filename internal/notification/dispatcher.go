package notification

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankstream/internal/domain"
	"github.com/iho/bankstream/internal/infrastructure/metrics"
	"github.com/iho/bankstream/internal/taskqueue"
)

// DefaultLargeTransactionThreshold triggers the compliance task when a
// transaction's magnitude reaches it.
var DefaultLargeTransactionThreshold = decimal.NewFromInt(10000)

// Dispatcher fans committed transactions out to the owner's live
// subscribers and forwards large ones to the task queue. It sits behind
// the ledger's Notifier port: the ledger calls it once per committed
// transaction, after the commit is durable.
type Dispatcher struct {
	registry  SubscriberRegistry
	tasks     TaskGateway
	threshold decimal.Decimal
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewDispatcher creates a Dispatcher. A non-positive threshold falls
// back to the default.
func NewDispatcher(registry SubscriberRegistry, tasks TaskGateway, threshold decimal.Decimal, logger zerolog.Logger, m *metrics.Metrics) *Dispatcher {
	if threshold.LessThanOrEqual(decimal.Zero) {
		threshold = DefaultLargeTransactionThreshold
	}

	return &Dispatcher{
		registry:  registry,
		tasks:     tasks,
		threshold: threshold,
		logger:    logger.With().Str("component", "notification").Logger(),
		metrics:   m,
	}
}

// OnTransactionCommitted delivers the transaction to every subscriber of
// the owning user and, when the magnitude reaches the threshold, hands
// the compliance task to the queue. Delivery problems never propagate
// back to the ledger path.
func (d *Dispatcher) OnTransactionCommitted(ctx context.Context, txn *domain.Transaction, account *domain.Account) {
	payload, err := NewTransactionPayload(txn, account).ToJSON()
	if err != nil {
		d.logger.Error().Err(err).Str("transaction_id", txn.ID).Msg("failed to encode payload")
		return
	}

	d.deliver(account.OwnerUserID, payload)

	if txn.Amount.Abs().GreaterThanOrEqual(d.threshold) {
		d.forwardLargeTransaction(ctx, txn, account)
	}
}

// deliver enqueues the payload on each of the user's connections without
// blocking. Dead connections found along the way are evicted.
func (d *Dispatcher) deliver(userID string, payload []byte) {
	for _, sub := range d.registry.SubscribersOf(userID) {
		if sub.Enqueue(payload) {
			d.metrics.NotificationsDelivered.Inc()
			continue
		}

		d.metrics.NotificationsDropped.Inc()
		if sub.Closed() {
			d.registry.Remove(sub.ID())
		}
	}
}

func (d *Dispatcher) forwardLargeTransaction(ctx context.Context, txn *domain.Transaction, account *domain.Account) {
	msg := taskqueue.NewProcessLargeTransaction(txn.ID, txn.Amount.Abs())

	if err := d.tasks.Enqueue(ctx, msg); err != nil {
		// The commit already happened; the ledger result stands.
		d.metrics.TaskEnqueueErrors.Inc()
		d.logger.Error().Err(err).
			Str("transaction_id", txn.ID).
			Str("amount", txn.Amount.String()).
			Msg("failed to enqueue large-transaction task")
		return
	}

	d.metrics.LargeTransactionTasks.Inc()
	d.logger.Info().
		Str("transaction_id", txn.ID).
		Str("amount", txn.Amount.String()).
		Msg("large-transaction task enqueued")

	notice, err := NewLargeTransactionNotice(txn.ID).ToJSON()
	if err != nil {
		return
	}
	d.deliver(account.OwnerUserID, notice)
}
