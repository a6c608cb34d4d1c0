package llm

import (
	"context"
	"errors"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Provider-agnostic error conditions that callers branch on. Providers wrap
// these so handlers can translate HTTP 429/401 into user guidance without
// knowing which backend answered.
var (
	ErrQuotaExceeded = errors.New("API quota exceeded")
	ErrUnauthorized  = errors.New("API key rejected")
)

// Message is one turn of a chat-completions conversation.
type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}
