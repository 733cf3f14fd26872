package llm

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"
)

// VertexClient wraps the Vertex AI Gemini API
type VertexClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

// NewVertexClient creates a Vertex AI backed completer
func NewVertexClient(ctx context.Context, projectID, location string, logger *slog.Logger) (*VertexClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("google cloud project is required for the vertex provider")
	}
	if location == "" {
		location = "us-central1"
	}

	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-flash")

	// Lower temperature keeps classification and extraction output stable
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)

	return &VertexClient{
		client: client,
		model:  model,
		logger: logger.With("component", "llm.vertex"),
	}, nil
}

// Complete sends a prompt to the model and returns the response text. The
// system prompt is prepended to the user prompt because the generative model
// API takes a single content sequence.
func (c *VertexClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	prompt := userPrompt
	if systemPrompt != "" {
		prompt = systemPrompt + "\n\n" + userPrompt
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates returned")
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}

	c.logger.Debug("completion finished", "response_length", len(result))
	return result, nil
}

// Close closes the Vertex AI client
func (c *VertexClient) Close() error {
	return c.client.Close()
}
