// Package controller owns the authoritative in-memory view of the
// active conversation and drives the turn lifecycle: optimistic
// appends, lazy session creation, streaming accumulation, persistence,
// cancellation, and history reconciliation.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prateeksi/gupshup/internal/debug"
	"github.com/prateeksi/gupshup/internal/events"
	"github.com/prateeksi/gupshup/internal/message"
	"github.com/prateeksi/gupshup/internal/pubsub"
	"github.com/prateeksi/gupshup/internal/session"
	"github.com/prateeksi/gupshup/internal/stream"
)

// ErrBusy is returned when a turn is already in flight.
var ErrBusy = errors.New("a turn is already in flight")

// ErrEmptyTurn is returned when a turn has neither text nor attachments.
var ErrEmptyTurn = errors.New("turn has no text and no attachments")

// errCancelled aborts fragment consumption after CancelTurn. It never
// escapes SendTurn.
var errCancelled = errors.New("turn cancelled")

// turnState is shared between a running SendTurn and CancelTurn. Each
// turn gets its own, so a fragment from an abandoned stream can never
// leak into a newer turn.
type turnState struct {
	cancelled bool
	cancel    context.CancelFunc
}

// Controller orchestrates chat turns. All state is guarded by one
// mutex; fragment application and cancellation serialize through it, so
// no fragment is ever applied after a cancellation is observed.
type Controller struct {
	sessions *session.Service
	messages *message.Service
	streamer stream.Client
	hub      *pubsub.Hub

	shareBaseURL string

	mu        sync.Mutex
	turns     []*message.Message
	sessionID string
	history   []*session.Session
	isLoading bool
	active    *turnState
}

// New creates a Controller. The share base URL is used to build links
// for shared sessions.
func New(sessions *session.Service, messages *message.Service, streamer stream.Client, hub *pubsub.Hub, shareBaseURL string) *Controller {
	return &Controller{
		sessions:     sessions,
		messages:     messages,
		streamer:     streamer,
		hub:          hub,
		shareBaseURL: shareBaseURL,
	}
}

// SendTurn runs one full turn: append the user message, ensure a
// session exists, stream the reply into a placeholder model message,
// persist both sides, and refresh the history list. It blocks until the
// stream finishes, fails, or is cancelled; a second call while one is
// in flight is rejected with ErrBusy.
func (c *Controller) SendTurn(ctx context.Context, text string, attachments []message.Attachment) error {
	text = strings.TrimSpace(text)
	if text == "" && len(attachments) == 0 {
		return ErrEmptyTurn
	}

	c.mu.Lock()
	if c.isLoading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.isLoading = true
	turn := &turnState{}
	c.active = turn

	prior := make([]*message.Message, len(c.turns))
	copy(prior, c.turns)

	userMsg := message.NewUserMessage(c.sessionID, text, attachments)
	userMsg.ID = uuid.New().String()
	c.turns = append(c.turns, userMsg)
	sessionID := c.sessionID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.isLoading = false
		if c.active == turn {
			c.active = nil
		}
		c.mu.Unlock()
	}()

	// Lazily create the session on the first turn. Creation failure is
	// non-fatal: the turn proceeds client-only, without persistence.
	if sessionID == "" {
		sess, err := c.sessions.Create(ctx, session.TitleFromFirstTurn(text))
		if err != nil {
			debug.Error("controller", err, "creating session")
		} else {
			sessionID = sess.ID
			c.mu.Lock()
			c.sessionID = sessionID
			userMsg.SessionID = sessionID
			c.mu.Unlock()
		}
	}

	if sessionID != "" {
		if err := c.messages.Append(ctx, userMsg); err != nil {
			debug.Error("controller", err, "persisting user message")
		}
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	modelMsg := message.NewModelMessage(sessionID)
	modelMsg.ID = uuid.New().String()
	c.mu.Lock()
	// A cancel that landed during session creation or user persistence
	// ends the turn here, before any placeholder exists.
	if turn.cancelled {
		c.mu.Unlock()
		return nil
	}
	turn.cancel = cancel
	c.turns = append(c.turns, modelMsg)
	c.mu.Unlock()

	var accumulated string
	err := c.streamer.Stream(streamCtx, stream.Request{
		History:     prior,
		Text:        userMsg.Text,
		Attachments: attachments,
	}, func(fragment string) error {
		c.mu.Lock()
		defer c.mu.Unlock()

		// Cancellation is checked before every application, so a chunk
		// already buffered by the transport is dropped here.
		if turn.cancelled {
			return errCancelled
		}

		accumulated += fragment
		c.applyText(modelMsg.ID, accumulated, true)

		if c.hub != nil {
			c.hub.Chat.Publish(pubsub.EventProgress,
				events.NewFragmentEvent(sessionID, modelMsg.ID, fragment))
		}
		return nil
	})

	c.mu.Lock()
	if turn.cancelled {
		// CancelTurn already finalized and persisted the partial text.
		c.mu.Unlock()
		return nil
	}

	if err != nil {
		// The failed turn leaves no partial model message behind; the
		// user message stays.
		c.removeTurn(modelMsg.ID)
		c.mu.Unlock()

		if c.hub != nil {
			c.hub.Chat.Publish(pubsub.EventFailed,
				events.NewFailedEvent(sessionID, modelMsg.ID, err))
		}
		return err
	}

	c.applyText(modelMsg.ID, accumulated, false)
	c.mu.Unlock()

	if sessionID != "" {
		if err := c.messages.Append(ctx, modelMsg); err != nil {
			debug.Error("controller", err, "persisting model message")
		}
		c.refreshHistory(ctx)
	}

	if c.hub != nil {
		c.hub.Chat.Publish(pubsub.EventCompleted,
			events.NewCompletedEvent(sessionID, modelMsg.ID, accumulated))
	}

	return nil
}

// CancelTurn stops the in-flight turn, keeping whatever text has
// accumulated. The partial reply is finalized and persisted as the
// canonical history entry. No-op when nothing is streaming.
func (c *Controller) CancelTurn(ctx context.Context) {
	c.mu.Lock()
	if !c.isLoading || c.active == nil {
		c.mu.Unlock()
		return
	}

	turn := c.active
	turn.cancelled = true
	c.isLoading = false

	var partial *message.Message
	for i := len(c.turns) - 1; i >= 0; i-- {
		if c.turns[i].Role == message.RoleModel && c.turns[i].IsStreaming {
			c.turns[i].IsStreaming = false
			partial = c.turns[i]
			break
		}
	}
	sessionID := c.sessionID
	c.mu.Unlock()

	if turn.cancel != nil {
		turn.cancel()
	}

	if partial == nil {
		return
	}

	if c.hub != nil {
		c.hub.Chat.Publish(pubsub.EventUpdated,
			events.NewCancelledEvent(sessionID, partial.ID, partial.Text))
	}

	if sessionID == "" {
		return
	}

	if err := c.messages.Append(ctx, partial); err != nil {
		debug.Error("controller", err, "persisting cancelled reply")
	}

	// The session just became the most recently modified one; move its
	// history entry to the front without a full re-fetch, recomputing
	// the display title from the conversation.
	c.mu.Lock()
	title := session.TitleFromHistory(c.turns)
	for i, sess := range c.history {
		if sess.ID != sessionID {
			continue
		}
		sess.Title = title
		sess.LastModified = time.Now()
		copy(c.history[1:i+1], c.history[:i])
		c.history[0] = sess
		break
	}
	c.mu.Unlock()
}

// StartNewChat resets the active conversation. The history list is left
// alone. Callers with a turn in flight should CancelTurn first; starting
// a new chat does not stop an active stream.
func (c *Controller) StartNewChat() {
	c.mu.Lock()
	c.turns = nil
	c.sessionID = ""
	c.mu.Unlock()
}

// LoadSession makes a session the active one. A summary that already
// holds messages is adopted without a store round-trip; otherwise the
// full session is fetched and hydrated into its history slot in place,
// so loading never changes a chat's recency rank.
func (c *Controller) LoadSession(ctx context.Context, id string) error {
	c.mu.Lock()
	entry := c.findHistory(id)
	if entry != nil && len(entry.Messages) > 0 {
		c.adoptLocked(entry)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	full, err := c.sessions.LoadFull(ctx, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if entry := c.findHistory(id); entry != nil {
		entry.Messages = full.Messages
		c.adoptLocked(entry)
	} else {
		c.adoptLocked(full)
	}
	c.mu.Unlock()

	return nil
}

// DeleteSession removes a session from the store and the history list.
// Deleting the active session also clears the active conversation.
func (c *Controller) DeleteSession(ctx context.Context, id string) error {
	if err := c.sessions.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i, sess := range c.history {
		if sess.ID == id {
			c.history = append(c.history[:i], c.history[i+1:]...)
			break
		}
	}
	if c.sessionID == id {
		c.sessionID = ""
		c.turns = nil
	}
	c.mu.Unlock()

	return nil
}

// ShareSession marks a session shared and returns its public URL.
func (c *Controller) ShareSession(ctx context.Context, id string) (string, error) {
	code, err := c.sessions.Share(ctx, id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/chats/%s", strings.TrimRight(c.shareBaseURL, "/"), code), nil
}

// RefreshHistory re-fetches the summaries list from the store.
func (c *Controller) RefreshHistory(ctx context.Context) error {
	return c.refreshHistory(ctx)
}

func (c *Controller) refreshHistory(ctx context.Context) error {
	summaries, err := c.sessions.ListSummaries(ctx)
	if err != nil {
		debug.Error("controller", err, "refreshing history")
		return err
	}

	c.mu.Lock()
	c.history = summaries
	c.mu.Unlock()
	return nil
}

// Messages returns a snapshot of the active conversation.
func (c *Controller) Messages() []*message.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*message.Message, len(c.turns))
	copy(out, c.turns)
	return out
}

// History returns a snapshot of the summaries list.
func (c *Controller) History() []*session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*session.Session, len(c.history))
	copy(out, c.history)
	return out
}

// CurrentSessionID returns the active session id, empty when none.
func (c *Controller) CurrentSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// IsLoading reports whether a turn is in flight.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLoading
}

// applyText updates the model message with the given id. Matching by id
// keeps a late fragment from touching anything once the message is gone.
func (c *Controller) applyText(id, text string, streaming bool) {
	for _, m := range c.turns {
		if m.ID == id {
			m.Text = text
			m.IsStreaming = streaming
			return
		}
	}
}

func (c *Controller) removeTurn(id string) {
	for i, m := range c.turns {
		if m.ID == id {
			c.turns = append(c.turns[:i], c.turns[i+1:]...)
			return
		}
	}
}

func (c *Controller) findHistory(id string) *session.Session {
	for _, sess := range c.history {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

func (c *Controller) adoptLocked(sess *session.Session) {
	c.sessionID = sess.ID
	c.turns = make([]*message.Message, len(sess.Messages))
	copy(c.turns, sess.Messages)
}
