package code_converter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"codefusion/internal/generative_provider"
	"codefusion/pkg/types"
)

// ErrEmptyConversion is returned when the model produced no code
var ErrEmptyConversion = errors.New("conversion produced no code")

const (
	temperature     = 0.5
	maxOutputTokens = 1024
)

// CodeConverterService provides code conversion functionalities
type CodeConverterService struct {
	logger   *zap.Logger
	provider generative_provider.Provider
}

// NewCodeConverterService creates a new instance of CodeConverterService
func NewCodeConverterService(logger *zap.Logger, provider generative_provider.Provider) *CodeConverterService {
	return &CodeConverterService{
		logger:   logger,
		provider: provider,
	}
}

// ConvertCode converts code from one programming language to another and
// normalises the layout of the result.
func (s *CodeConverterService) ConvertCode(ctx context.Context, code, sourceLang, targetLang string) (string, error) {
	s.logger.Info("converting code",
		zap.String("source_language", sourceLang),
		zap.String("target_language", targetLang),
		zap.Int("code_length", len(code)),
	)

	t := float32(temperature)
	raw, err := generative_provider.Collect(ctx, s.provider, types.CompletionRequest{
		Prompt:          buildPrompt(code, sourceLang, targetLang),
		Temperature:     &t,
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate conversion: %w", err)
	}
	s.logger.Debug("raw conversion", zap.Int("length", len(raw)))

	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyConversion
	}

	formatted := FormatConvertedCode(raw, targetLang)
	if formatted == "" {
		return "", ErrEmptyConversion
	}

	s.logger.Info("code conversion completed", zap.Int("converted_length", len(formatted)))
	return formatted, nil
}

func buildPrompt(code, source, target string) string {
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("Convert the following %s code to %s. Output must be a properly formatted program.\n", source, target))
	b.WriteString("For C, C++, or Java, use this exact structure:\n")
	b.WriteString("#include <stdio.h>\nint main() {\n    [your code here]\n    return 0;\n}\n")
	b.WriteString("Ensure 4-space indentation and one statement per line. Input: ")
	b.WriteString(code)
	b.WriteString("\n\nOutput only the formatted code.")
	return b.String()
}
