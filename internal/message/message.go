// Package message provides chat message management with persistence.
package message

import (
	"html"
	"time"
)

// Role represents the role of a message sender.
type Role string

// Role constants.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// AttachmentPlaceholder is stored as the message text when a turn
// carries attachments but no typed text.
const AttachmentPlaceholder = "(Attachment)"

// Message represents a single conversation message.
type Message struct {
	ID          string
	SessionID   string
	Role        Role
	Text        string
	Timestamp   time.Time
	Attachments []Attachment

	// IsStreaming marks an in-flight model reply. It is never persisted;
	// rows loaded from the store always have it false.
	IsStreaming bool
}

// Attachment is a file carried on a user message, already encoded.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64, no data: prefix
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(sessionID, text string, attachments []Attachment) *Message {
	displayText := text
	if displayText == "" && len(attachments) > 0 {
		displayText = AttachmentPlaceholder
	}
	return &Message{
		SessionID:   sessionID,
		Role:        RoleUser,
		Text:        displayText,
		Timestamp:   time.Now(),
		Attachments: attachments,
	}
}

// NewModelMessage creates an empty model message that will accumulate
// streamed text.
func NewModelMessage(sessionID string) *Message {
	return &Message{
		SessionID:   sessionID,
		Role:        RoleModel,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// Sanitize escapes HTML metacharacters (& < > " ') so stored text is
// inert when rendered. Applied once, before persistence.
func Sanitize(text string) string {
	return html.EscapeString(text)
}
