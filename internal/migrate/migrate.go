// Package migrate moves pre-account local chat history into the store.
package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/prateeksi/gupshup/internal/auth"
	"github.com/prateeksi/gupshup/internal/debug"
	"github.com/prateeksi/gupshup/internal/events"
	"github.com/prateeksi/gupshup/internal/localcache"
	"github.com/prateeksi/gupshup/internal/message"
	"github.com/prateeksi/gupshup/internal/pubsub"
	"github.com/prateeksi/gupshup/internal/session"
)

// Migrator copies cached local sessions into the store once an identity
// exists, then clears the cache.
type Migrator struct {
	cache    *localcache.Cache
	sessions session.Store
	messages message.Store
	identity auth.Provider
	broker   *pubsub.Broker[events.SessionEvent]
}

// New creates a Migrator.
func New(cache *localcache.Cache, sessions session.Store, messages message.Store, identity auth.Provider, broker *pubsub.Broker[events.SessionEvent]) *Migrator {
	return &Migrator{
		cache:    cache,
		sessions: sessions,
		messages: messages,
		identity: identity,
		broker:   broker,
	}
}

// Run migrates all cached sessions. It reports whether migration ran to
// completion; no identity or an unreadable cache yields false without
// touching anything. A session that fails to copy is logged and skipped,
// and the cache is still cleared afterwards, so skipped sessions are
// lost. That mirrors the one-shot nature of the migration: it runs once
// per device, at first sign-in.
func (m *Migrator) Run(ctx context.Context) (bool, error) {
	id, err := m.identity.Current(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return false, nil
		}
		return false, err
	}

	cached, err := m.cache.Load()
	if err != nil {
		debug.Error("migrate", err, "loading local history")
		return false, err
	}
	if len(cached) == 0 {
		return true, nil
	}

	migrated := 0
	for _, local := range cached {
		if err := m.migrateSession(ctx, id.ID, local); err != nil {
			debug.Error("migrate", err, "migrating session "+local.ID)
			continue
		}
		migrated++
	}

	if err := m.cache.Clear(); err != nil {
		debug.Error("migrate", err, "clearing local history")
	}

	debug.Log("[migrate] migrated %d/%d local sessions", migrated, len(cached))
	return true, nil
}

func (m *Migrator) migrateSession(ctx context.Context, userID string, local localcache.CachedSession) error {
	sess, err := m.sessions.CreateWithTime(ctx, userID, local.Title, local.LastModifiedTime())
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	msgs := make([]*message.Message, 0, len(local.Messages))
	for _, cm := range local.Messages {
		msgs = append(msgs, &message.Message{
			SessionID:   sess.ID,
			Role:        message.Role(cm.Role),
			Text:        cm.Text,
			Timestamp:   cm.MessageTime(),
			Attachments: cm.Attachments,
		})
	}

	if err := m.messages.CreateBatch(ctx, msgs); err != nil {
		return fmt.Errorf("copying messages: %w", err)
	}

	if m.broker != nil {
		m.broker.Publish(pubsub.EventCreated,
			events.NewSessionMigratedEvent(sess.ID, sess.Title))
	}

	return nil
}
