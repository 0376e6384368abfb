package session

import (
	"context"
	"time"
)

// Store defines the interface for session persistence.
type Store interface {
	// Create creates a new session owned by the given user.
	Create(ctx context.Context, userID, title string) (*Session, error)

	// CreateWithTime creates a session preserving an existing
	// last_modified timestamp. Used by history migration.
	CreateWithTime(ctx context.Context, userID, title string, lastModified time.Time) (*Session, error)

	// Get retrieves a session by ID without its messages.
	Get(ctx context.Context, id string) (*Session, error)

	// ListSummaries returns the user's sessions ordered by last_modified
	// descending, capped at ListLimit. Messages are not loaded.
	ListSummaries(ctx context.Context, userID string) ([]*Session, error)

	// UpdateTitle updates the title of a session.
	UpdateTitle(ctx context.Context, id, title string) error

	// Touch sets a session's last_modified timestamp.
	Touch(ctx context.Context, id string, lastModified time.Time) error

	// Share marks a session shared under a fresh code, invalidating any
	// previous code. Returns the new code.
	Share(ctx context.Context, id string) (string, error)

	// GetByShareCode retrieves a shared session by its exact share code.
	// Sessions that are not currently shared never match.
	GetByShareCode(ctx context.Context, code string) (*Session, error)

	// Delete removes a session by ID. Messages go with it via FK cascade.
	Delete(ctx context.Context, id string) error
}
