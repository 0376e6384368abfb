// Package events defines domain-specific event types for the pub/sub system.
package events

import (
	"time"
)

// ChatEventType represents turn-streaming event types.
type ChatEventType string

// Chat event type constants.
const (
	ChatEventFragment  ChatEventType = "fragment"
	ChatEventCompleted ChatEventType = "completed"
	ChatEventFailed    ChatEventType = "failed"
	ChatEventCancelled ChatEventType = "cancelled"
)

// ChatEvent represents an event emitted while a turn streams.
type ChatEvent struct {
	SessionID string
	MessageID string
	Type      ChatEventType
	Timestamp time.Time

	// Payload fields (only one populated per event type)
	Fragment string // For Fragment
	Text     string // Full accumulated text, for Completed and Cancelled
	Error    error  // For Failed
}

// NewFragmentEvent creates a fragment event.
func NewFragmentEvent(sessionID, messageID, fragment string) ChatEvent {
	return ChatEvent{
		SessionID: sessionID,
		MessageID: messageID,
		Type:      ChatEventFragment,
		Fragment:  fragment,
		Timestamp: time.Now(),
	}
}

// NewCompletedEvent creates a completion event carrying the final text.
func NewCompletedEvent(sessionID, messageID, text string) ChatEvent {
	return ChatEvent{
		SessionID: sessionID,
		MessageID: messageID,
		Type:      ChatEventCompleted,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewFailedEvent creates a failure event.
func NewFailedEvent(sessionID, messageID string, err error) ChatEvent {
	return ChatEvent{
		SessionID: sessionID,
		MessageID: messageID,
		Type:      ChatEventFailed,
		Error:     err,
		Timestamp: time.Now(),
	}
}

// NewCancelledEvent creates a cancellation event carrying the partial text kept.
func NewCancelledEvent(sessionID, messageID, text string) ChatEvent {
	return ChatEvent{
		SessionID: sessionID,
		MessageID: messageID,
		Type:      ChatEventCancelled,
		Text:      text,
		Timestamp: time.Now(),
	}
}
