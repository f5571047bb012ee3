package codefusion_openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"codefusion/pkg/types"
)

// event carrying the complete text of one output item
const outputTextDone = "response.output_text.done"

type Client struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(openAIConfig types.OpenAIConfig) *Client {
	c := openai.NewClient(option.WithAPIKey(openAIConfig.APIKey))
	return &Client{client: &c, model: openAIConfig.Model}
}

// StreamCompletion runs a streaming Responses call and forwards each finished
// output text.
func (c *Client) StreamCompletion(ctx context.Context, req types.CompletionRequest, onChunk func(string) error) error {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(req.Prompt)},
	}
	if req.SystemInstruction != "" {
		params.Instructions = openai.String(req.SystemInstruction)
	}
	if req.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxOutputTokens))
	}

	stream := c.client.Responses.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		if event.Type != outputTextDone {
			continue
		}
		if err := onChunk(event.Text); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai stream: %w", err)
	}
	return nil
}
