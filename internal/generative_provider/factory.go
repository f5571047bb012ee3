package generative_provider

import (
	"context"
	"fmt"
	"strings"

	"codefusion/internal/third_party/gemini"
	codefusion_openai "codefusion/internal/third_party/openai"
	"codefusion/pkg/types"
)

// Factory creates generative providers based on the specified type
type Factory struct {
	config *types.Config
}

// NewFactory creates a new provider factory
func NewFactory(config *types.Config) *Factory {
	return &Factory{
		config: config,
	}
}

// CreateProvider creates a generative provider based on the specified type
func (f *Factory) CreateProvider(ctx context.Context, providerType GenerativeProviderType) (Provider, error) {
	switch providerType {
	case ProviderOpenAI:
		return codefusion_openai.NewOpenAIClient(f.config.OpenAI), nil
	case ProviderGemini:
		return gemini.NewGeminiClient(ctx, f.config.Gemini)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// Collect runs a completion and joins every chunk into one string
func Collect(ctx context.Context, p Provider, req types.CompletionRequest) (string, error) {
	var b strings.Builder
	err := p.StreamCompletion(ctx, req, func(chunk string) error {
		b.WriteString(chunk)
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
