package events

import "time"

// SessionEventType represents session-specific event types.
type SessionEventType string

// Session event type constants.
const (
	SessionEventCreated  SessionEventType = "created"
	SessionEventUpdated  SessionEventType = "updated"
	SessionEventDeleted  SessionEventType = "deleted"
	SessionEventShared   SessionEventType = "shared"
	SessionEventMigrated SessionEventType = "migrated"
)

// SessionEvent represents a session lifecycle event.
type SessionEvent struct {
	SessionID string
	Title     string
	Type      SessionEventType
	Timestamp time.Time

	// Optional fields
	ShareCode string // For Shared
}

// NewSessionCreatedEvent creates a session created event.
func NewSessionCreatedEvent(id, title string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Title:     title,
		Type:      SessionEventCreated,
		Timestamp: time.Now(),
	}
}

// NewSessionUpdatedEvent creates a session updated event.
func NewSessionUpdatedEvent(id, title string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Title:     title,
		Type:      SessionEventUpdated,
		Timestamp: time.Now(),
	}
}

// NewSessionDeletedEvent creates a session deleted event.
func NewSessionDeletedEvent(id string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Type:      SessionEventDeleted,
		Timestamp: time.Now(),
	}
}

// NewSessionSharedEvent creates a session shared event.
func NewSessionSharedEvent(id, shareCode string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Type:      SessionEventShared,
		ShareCode: shareCode,
		Timestamp: time.Now(),
	}
}

// NewSessionMigratedEvent creates a migration event for one migrated session.
func NewSessionMigratedEvent(id, title string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Title:     title,
		Type:      SessionEventMigrated,
		Timestamp: time.Now(),
	}
}
