package message

import (
	"context"

	"github.com/prateeksi/gupshup/internal/events"
	"github.com/prateeksi/gupshup/internal/pubsub"
)

// Service manages messages with pub/sub event publishing.
type Service struct {
	store  Store
	broker *pubsub.Broker[events.SessionEvent]
}

// NewService creates a new message service.
func NewService(store Store, broker *pubsub.Broker[events.SessionEvent]) *Service {
	return &Service{
		store:  store,
		broker: broker,
	}
}

// Append sanitizes and persists a message. Escaping is applied to the
// stored copy only; the caller's in-memory message keeps its raw text.
func (s *Service) Append(ctx context.Context, msg *Message) error {
	stored := *msg
	stored.Text = Sanitize(stored.Text)

	if err := s.store.Create(ctx, &stored); err != nil {
		return err
	}

	msg.ID = stored.ID
	msg.Timestamp = stored.Timestamp

	if s.broker != nil {
		s.broker.Publish(pubsub.EventUpdated,
			events.NewSessionUpdatedEvent(msg.SessionID, ""))
	}

	return nil
}

// UpdateText replaces a persisted message's text, sanitizing first.
func (s *Service) UpdateText(ctx context.Context, id, text string) error {
	return s.store.UpdateText(ctx, id, Sanitize(text))
}

// Get retrieves a message by ID.
func (s *Service) Get(ctx context.Context, id string) (*Message, error) {
	return s.store.Get(ctx, id)
}

// ListBySession returns all messages for a session in timestamp order.
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]*Message, error) {
	return s.store.GetBySession(ctx, sessionID)
}

// Count returns the number of messages in a session.
func (s *Service) Count(ctx context.Context, sessionID string) (int64, error) {
	return s.store.Count(ctx, sessionID)
}

// Delete removes a message by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
