package realtime

import "github.com/iho/bankstream/internal/notification"

// SubscriberRegistry presents the registry to the notification
// dispatcher.
type SubscriberRegistry struct {
	registry *Registry
}

// NewSubscriberRegistry wraps a registry for the dispatcher.
func NewSubscriberRegistry(r *Registry) *SubscriberRegistry {
	return &SubscriberRegistry{registry: r}
}

// SubscribersOf returns the user's live connections as subscribers.
func (s *SubscriberRegistry) SubscribersOf(userID string) []notification.Subscriber {
	conns := s.registry.SubscribersOf(userID)
	subs := make([]notification.Subscriber, len(conns))
	for i, c := range conns {
		subs[i] = c
	}
	return subs
}

// Remove evicts a connection by ID.
func (s *SubscriberRegistry) Remove(connectionID string) {
	s.registry.Remove(connectionID)
}
