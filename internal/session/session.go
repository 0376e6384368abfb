// Package session provides chat session management with persistence.
package session

import (
	"strings"
	"time"

	"github.com/prateeksi/gupshup/internal/message"
)

// DefaultTitle is used when no title can be derived from the first turn.
const DefaultTitle = "New Chat"

// ListLimit caps how many summaries the history list returns.
const ListLimit = 50

// Session represents a conversation session. Summaries returned by
// ListSummaries carry an empty Messages slice; LoadFull hydrates it.
type Session struct {
	ID           string
	UserID       string
	Title        string
	Messages     []*message.Message
	LastModified time.Time
	IsShared     bool
	ShareCode    string
}

// TitleFromFirstTurn derives a session title at creation time: the
// first five words of the user's text, capped at 50 characters.
func TitleFromFirstTurn(text string) string {
	words := strings.Split(text, " ")
	if len(words) > 5 {
		words = words[:5]
	}
	title := strings.Join(words, " ")
	if len(title) > 50 {
		title = title[:47] + "..."
	}
	if title == "" {
		return DefaultTitle
	}
	return title
}

// TitleFromHistory derives a display title from the first user message
// of a stored conversation, capped at 30 characters.
func TitleFromHistory(msgs []*message.Message) string {
	for _, m := range msgs {
		if m.Role != message.RoleUser {
			continue
		}
		title := m.Text
		if len(title) > 30 {
			title = title[:30] + "..."
		}
		if title == "" {
			return DefaultTitle
		}
		return title
	}
	return DefaultTitle
}
