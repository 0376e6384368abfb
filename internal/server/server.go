// Package server exposes the read-only shared-chat HTTP endpoint.
package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/prateeksi/gupshup/internal/message"
	"github.com/prateeksi/gupshup/internal/session"
)

// SharedChatResponse is the public view of a shared session.
type SharedChatResponse struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	LastModified int64                   `json:"last_modified"`
	Messages     []SharedMessageResponse `json:"messages"`
}

// SharedMessageResponse is one message of a shared session. Attachments
// are reduced to metadata; payload bytes are not exposed.
type SharedMessageResponse struct {
	ID          string               `json:"id"`
	Role        string               `json:"role"`
	Text        string               `json:"text"`
	Timestamp   int64                `json:"timestamp"`
	Attachments []SharedAttachmentInfo `json:"attachments,omitempty"`
}

// SharedAttachmentInfo describes an attachment without its payload.
type SharedAttachmentInfo struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// Handler serves shared chats by share code.
type Handler struct {
	sessions *session.Service
}

// NewHandler creates a shared-chat handler.
func NewHandler(sessions *session.Service) *Handler {
	return &Handler{sessions: sessions}
}

// New builds the fiber app with all routes registered.
func New(sessions *session.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "gupshup",
		DisableStartupMessage: true,
	})

	h := NewHandler(sessions)
	app.Get("/chats/:shareCode", h.GetSharedChat)

	return app
}

// GetSharedChat resolves a share code to a full read-only session.
// No identity is required; an absent or unshared code is a 404.
func (h *Handler) GetSharedChat(c *fiber.Ctx) error {
	code := c.Params("shareCode")

	sess, err := h.sessions.FetchShared(c.Context(), code)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "shared chat not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load shared chat",
		})
	}

	return c.JSON(sharedChatResponse(sess))
}

func sharedChatResponse(sess *session.Session) SharedChatResponse {
	resp := SharedChatResponse{
		ID:           sess.ID,
		Title:        sess.Title,
		LastModified: sess.LastModified.UnixMilli(),
		Messages:     make([]SharedMessageResponse, 0, len(sess.Messages)),
	}

	for _, msg := range sess.Messages {
		resp.Messages = append(resp.Messages, sharedMessageResponse(msg))
	}

	return resp
}

func sharedMessageResponse(msg *message.Message) SharedMessageResponse {
	out := SharedMessageResponse{
		ID:        msg.ID,
		Role:      string(msg.Role),
		Text:      msg.Text,
		Timestamp: msg.Timestamp.UnixMilli(),
	}
	for _, att := range msg.Attachments {
		out.Attachments = append(out.Attachments, SharedAttachmentInfo{
			Name:     att.Name,
			MimeType: att.MimeType,
		})
	}
	return out
}
