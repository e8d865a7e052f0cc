package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers for document analysis.
type Client interface {
	// Complete runs a chat-completion call and returns the text content.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)
}

// CompletionRequest captures the inputs for a single completion call.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	Model       string
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM not configured")

// PlaceholderClient is a stub implementation used when no provider is wired.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}

// Embed returns ErrNotConfigured.
func (PlaceholderClient) Embed(ctx context.Context, text string) ([]float64, error) {
	_ = ctx
	_ = text
	return nil, ErrNotConfigured
}
