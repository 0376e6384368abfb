package message

import (
	"context"
)

// Store defines the interface for message persistence.
type Store interface {
	// Create persists a new message and bumps the owning session's
	// last_modified timestamp.
	Create(ctx context.Context, msg *Message) error

	// CreateBatch persists messages in a single transaction, preserving
	// their original timestamps. Used by history migration.
	CreateBatch(ctx context.Context, msgs []*Message) error

	// Get retrieves a message by ID.
	Get(ctx context.Context, id string) (*Message, error)

	// GetBySession returns all messages for a session ordered by timestamp.
	GetBySession(ctx context.Context, sessionID string) ([]*Message, error)

	// UpdateText replaces a message's text.
	UpdateText(ctx context.Context, id, text string) error

	// Count returns the number of messages in a session.
	Count(ctx context.Context, sessionID string) (int64, error)

	// Delete removes a message by ID.
	Delete(ctx context.Context, id string) error
}
