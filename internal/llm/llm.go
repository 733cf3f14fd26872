// Package llm provides the text-completion capability consumed by the
// pipeline stages. Providers are selected by configuration and hidden behind
// the Completer interface so tests can substitute fakes.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smanji/recruitflow/internal/config"
)

// Completer is the language-model capability: one prompt in, one text
// response out. Implementations may fail on transport errors; callers decide
// how a failure maps onto their stage's outcome.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Close() error
}

// New builds the configured completion provider
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Completer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.LLMProvider {
	case "openai":
		return NewOpenAIClient(cfg.OpenAIModel, logger)
	case "vertex":
		return NewVertexClient(ctx, cfg.GoogleCloudProject, cfg.GoogleCloudLocation, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
