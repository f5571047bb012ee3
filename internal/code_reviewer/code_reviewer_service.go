package code_reviewer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"codefusion/internal/generative_provider"
	"codefusion/pkg/types"
)

// systemInstruction frames the model as a senior reviewer answering in markdown
const systemInstruction = `You are a senior code reviewer with more than seven years of development experience.
Review the code you are given and answer in markdown.

Focus on:
- Code quality: clean, maintainable, well structured code.
- Best practices: industry standard idioms for the language.
- Efficiency and performance: redundant work and costly computations.
- Error detection: bugs, security risks (SQL injection, XSS, CSRF) and logical flaws.
- Scalability and readability: how the code will grow and how easy it is to change.

Guidelines:
1. Be detailed yet concise and explain why each change is needed.
2. Offer refactored versions in fenced code blocks tagged with their language.
3. Keep DRY and SOLID in mind and call out unnecessary complexity.
4. Check test coverage and documentation and suggest improvements.

Structure the answer as "Issues", "Recommended Fix" and "Improvements" sections.
Be precise, assume the developer is competent, and highlight strengths as well as weaknesses.`

// CodeReviewService produces markdown reviews of submitted code
type CodeReviewService struct {
	logger   *zap.Logger
	provider generative_provider.Provider
}

// NewCodeReviewService creates a new instance of CodeReviewService
func NewCodeReviewService(logger *zap.Logger, provider generative_provider.Provider) *CodeReviewService {
	return &CodeReviewService{
		logger:   logger,
		provider: provider,
	}
}

// ReviewCode returns the model's markdown review of code
func (s *CodeReviewService) ReviewCode(ctx context.Context, code string) (string, error) {
	s.logger.Info("reviewing code", zap.Int("code_length", len(code)))

	review, err := generative_provider.Collect(ctx, s.provider, types.CompletionRequest{
		SystemInstruction: systemInstruction,
		Prompt:            code,
	})
	if err != nil {
		return "", fmt.Errorf("generate review: %w", err)
	}

	s.logger.Info("code review completed", zap.Int("review_length", len(review)))
	return review, nil
}
