// Package models contains shared data models used across the racetime codebase.
package models

import "context"

// AIProvider is the core interface that all language-model integrations must implement.
// Never call specific AI providers directly; inject this interface.
type AIProvider interface {
	// Complete sends a system instruction plus user text and returns the model's reply.
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	// Name returns the provider identifier (e.g., "openai", "gemini").
	Name() string
}

// CompletionRequest is the input to a single language-model call.
type CompletionRequest struct {
	System string
	User   string
	// JSON asks the provider to constrain its reply to a single JSON object.
	JSON bool
}

// Completion is the raw reply of a language-model call.
type Completion struct {
	Content string
	Model   string
}
