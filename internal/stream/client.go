// Package stream provides the streaming LLM client for chat turns.
package stream

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/prateeksi/gupshup/internal/message"
)

// EnvAPIKey is the environment variable consulted when no key override
// is configured.
const EnvAPIKey = "GEMINI_API_KEY"

// ErrNoCredential is returned before any network contact when neither a
// configured key nor the environment provides one.
var ErrNoCredential = errors.New("no API key provided, set it in settings or " + EnvAPIKey)

// Request describes one chat turn to stream.
type Request struct {
	// History is the stored conversation, oldest first. The new turn is
	// carried separately in Text and Attachments.
	History     []*message.Message
	Text        string
	Attachments []message.Attachment
}

// Client streams model replies fragment by fragment. Implementations
// call onFragment for each text delta, in order; a non-nil return from
// onFragment aborts the stream.
type Client interface {
	Stream(ctx context.Context, req Request, onFragment func(string) error) error
}

// ResolveAPIKey picks the credential for a turn: a non-blank override
// wins, then the environment, then failure.
func ResolveAPIKey(override string) (string, error) {
	if key := strings.TrimSpace(override); key != "" {
		return key, nil
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key, nil
	}
	return "", ErrNoCredential
}
