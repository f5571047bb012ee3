package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"codefusion/pkg/types"
)

type Client struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, geminiConfig types.GeminiConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{
		client: client,
		model:  geminiConfig.Model,
	}, nil
}

// StreamCompletion implements streaming completion using Google Gemini API
func (c *Client) StreamCompletion(ctx context.Context, req types.CompletionRequest, onChunk func(string) error) error {
	config := &genai.GenerateContentConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	stream := c.client.Models.GenerateContentStream(ctx,
		c.model,
		[]*genai.Content{
			genai.NewContentFromText(req.Prompt, genai.RoleUser),
		},
		config,
	)

	for chunk, err := range stream {
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		if err := onChunk(chunk.Text()); err != nil {
			return err
		}
	}
	return nil
}
