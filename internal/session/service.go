package session

import (
	"context"
	"errors"
	"time"

	"github.com/prateeksi/gupshup/internal/auth"
	"github.com/prateeksi/gupshup/internal/debug"
	"github.com/prateeksi/gupshup/internal/events"
	"github.com/prateeksi/gupshup/internal/message"
	"github.com/prateeksi/gupshup/internal/pubsub"
)

// Service manages sessions with identity checks and pub/sub publishing.
// Reads short-circuit to empty results when no identity is configured;
// writes fail with auth.ErrUnauthenticated.
type Service struct {
	store    Store
	messages message.Store
	identity auth.Provider
	broker   *pubsub.Broker[events.SessionEvent]
}

// NewService creates a new session service.
func NewService(store Store, messages message.Store, identity auth.Provider, broker *pubsub.Broker[events.SessionEvent]) *Service {
	return &Service{
		store:    store,
		messages: messages,
		identity: identity,
		broker:   broker,
	}
}

// Create creates a new session for the current identity.
func (s *Service) Create(ctx context.Context, title string) (*Session, error) {
	id, err := s.identity.Current(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := s.store.Create(ctx, id.ID, title)
	if err != nil {
		return nil, err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventCreated,
			events.NewSessionCreatedEvent(sess.ID, sess.Title))
	}

	return sess, nil
}

// ListSummaries returns the current identity's sessions, most recent
// first, without messages. No identity means an empty list, not an error.
func (s *Service) ListSummaries(ctx context.Context) ([]*Session, error) {
	id, err := s.identity.Current(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return nil, nil
		}
		return nil, err
	}

	return s.store.ListSummaries(ctx, id.ID)
}

// LoadFull returns a session with its messages hydrated.
func (s *Service) LoadFull(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	msgs, err := s.messages.GetBySession(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Messages = msgs

	return sess, nil
}

// UpdateTitle updates the title of a session.
func (s *Service) UpdateTitle(ctx context.Context, id, title string) error {
	if err := s.store.UpdateTitle(ctx, id, title); err != nil {
		return err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventUpdated,
			events.NewSessionUpdatedEvent(id, title))
	}

	return nil
}

// Touch sets a session's last_modified timestamp.
func (s *Service) Touch(ctx context.Context, id string, lastModified time.Time) error {
	return s.store.Touch(ctx, id, lastModified)
}

// Delete removes a session and, via FK cascade, its messages.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventDeleted, events.NewSessionDeletedEvent(id))
	}

	debug.Log("[session] deleted %s", id)
	return nil
}

// Share marks a session shared and returns its fresh share code.
// Sharing again replaces the code; the old one stops resolving.
func (s *Service) Share(ctx context.Context, id string) (string, error) {
	if _, err := s.identity.Current(ctx); err != nil {
		return "", err
	}

	code, err := s.store.Share(ctx, id)
	if err != nil {
		return "", err
	}

	if s.broker != nil {
		s.broker.Publish(pubsub.EventUpdated, events.NewSessionSharedEvent(id, code))
	}

	return code, nil
}

// FetchShared resolves a share code to a full session, messages included.
// No identity is required; shared chats are public by code.
func (s *Service) FetchShared(ctx context.Context, code string) (*Session, error) {
	sess, err := s.store.GetByShareCode(ctx, code)
	if err != nil {
		return nil, err
	}

	msgs, err := s.messages.GetBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	sess.Messages = msgs

	return sess, nil
}
