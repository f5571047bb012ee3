package generative_provider

import (
	"context"

	"codefusion/pkg/types"
)

// Provider defines the interface that all generative providers must implement
type Provider interface {
	StreamCompletion(ctx context.Context, req types.CompletionRequest, onChunk func(string) error) error
}

// GenerativeProviderType represents the type of generative provider
type GenerativeProviderType string

const (
	ProviderOpenAI GenerativeProviderType = "openai"
	ProviderGemini GenerativeProviderType = "gemini"
)
