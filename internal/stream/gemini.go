package stream

import (
	"context"
	"encoding/base64"
	"fmt"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/google"

	"github.com/prateeksi/gupshup/internal/message"
)

// systemInstruction sets the assistant persona for every turn.
const systemInstruction = `You are a highly distinguished and professional IAS (Indian Administrative Service) Officer.
Your demeanor is exceptionally formal, articulate, and authoritative.
You possess a high standard of knowledge across all disciplines including law, governance, technology, and ethics.
When generating code, provide industry-grade, highly optimized, and secure solutions using the latest standards.
Always prioritize accuracy, professional ethics, and clarity in your communication.
Respond with the gravitas and wisdom expected of a senior administrator.`

// Generation settings tuned for stable, professional responses.
const (
	temperature     = 0.5
	topK            = int64(40)
	topP            = 0.95
	maxOutputTokens = int64(8192)
)

// Gemini is the fantasy-backed streaming client.
type Gemini struct {
	model fantasy.LanguageModel
}

// NewGemini builds a streaming client for the given model ID. The API
// key must already be resolved; see ResolveAPIKey.
func NewGemini(ctx context.Context, apiKey, modelID string) (*Gemini, error) {
	provider, err := google.New(google.WithGeminiAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("building provider: %w", err)
	}

	model, err := provider.LanguageModel(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("getting language model %q: %w", modelID, err)
	}

	return &Gemini{model: model}, nil
}

// Stream sends the conversation plus the new turn and forwards each
// text delta to onFragment.
func (g *Gemini) Stream(ctx context.Context, req Request, onFragment func(string) error) error {
	messages := make([]fantasy.Message, 0, len(req.History)+2)
	messages = append(messages, fantasy.NewSystemMessage(systemInstruction))

	for _, msg := range req.History {
		messages = append(messages, historyMessage(msg))
	}

	messages = append(messages, fantasy.Message{
		Role:    fantasy.MessageRoleUser,
		Content: turnParts(req.Text, req.Attachments),
	})

	temp := temperature
	tk := topK
	tp := topP
	maxTokens := maxOutputTokens

	call := fantasy.AgentStreamCall{
		Messages:        messages,
		Temperature:     &temp,
		TopK:            &tk,
		TopP:            &tp,
		MaxOutputTokens: &maxTokens,
		OnTextDelta: func(_, text string) error {
			return onFragment(text)
		},
	}

	agent := fantasy.NewAgent(g.model)
	if _, err := agent.Stream(ctx, call); err != nil {
		return fmt.Errorf("streaming response: %w", err)
	}

	return nil
}

// historyMessage converts a stored message to a wire message. Attachment
// parts come before the text part; an empty message becomes a single
// whitespace part so no turn is ever partless.
func historyMessage(msg *message.Message) fantasy.Message {
	role := fantasy.MessageRoleUser
	if msg.Role == message.RoleModel {
		role = fantasy.MessageRoleAssistant
	}

	return fantasy.Message{
		Role:    role,
		Content: turnParts(msg.Text, msg.Attachments),
	}
}

func turnParts(text string, attachments []message.Attachment) []fantasy.MessagePart {
	var parts []fantasy.MessagePart

	for _, att := range attachments {
		data, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			// Stored attachments are encoder output; a bad row is skipped
			// rather than failing the whole turn.
			continue
		}
		parts = append(parts, fantasy.FilePart{
			MediaType: att.MimeType,
			Filename:  att.Name,
			Data:      data,
		})
	}

	if text != "" {
		parts = append(parts, fantasy.TextPart{Text: text})
	} else if len(parts) == 0 {
		parts = append(parts, fantasy.TextPart{Text: " "})
	}

	return parts
}
