package notification

import (
	"context"

	"github.com/iho/bankstream/internal/taskqueue"
)

// Subscriber is one live delivery target.
type Subscriber interface {
	ID() string
	Enqueue(payload []byte) bool
	Closed() bool
}

// SubscriberRegistry resolves a user's live subscribers and evicts dead
// ones.
type SubscriberRegistry interface {
	SubscribersOf(userID string) []Subscriber
	Remove(connectionID string)
}

// TaskGateway hands background task messages to the broker.
type TaskGateway interface {
	Enqueue(ctx context.Context, msg *taskqueue.TaskMessage) error
}
