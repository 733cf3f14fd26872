package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient wraps the OpenAI chat completions API
type OpenAIClient struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIClient creates an OpenAI-backed completer. The API key is taken
// from the OPENAI_API_KEY environment variable.
func NewOpenAIClient(model string, logger *slog.Logger) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger.With("component", "llm.openai"),
	}, nil
}

// Complete sends one chat completion request and returns the response text
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	c.logger.Debug("completion finished", "model", c.model, "response_length", len(resp.Choices[0].Message.Content))
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the underlying HTTP client needs no teardown
func (c *OpenAIClient) Close() error {
	return nil
}
