package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/smanji/recruitflow/internal/api"
	"github.com/smanji/recruitflow/internal/compose"
	"github.com/smanji/recruitflow/internal/config"
	"github.com/smanji/recruitflow/internal/extract"
	"github.com/smanji/recruitflow/internal/gmail"
	"github.com/smanji/recruitflow/internal/llm"
	"github.com/smanji/recruitflow/internal/parser"
	"github.com/smanji/recruitflow/internal/pipeline"
	"github.com/smanji/recruitflow/internal/render"
	"github.com/smanji/recruitflow/internal/tailor"
)

func main() {
	if err := run(); err != nil {
		slog.Error("recruitflow exited", "error", err)
		os.Exit(1)
	}
}

// run wires the components and serves the API. Returning instead of exiting
// lets the deferred LLM client shutdown run on every failure path.
func run() error {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.ApplyToEnv()

	ctx := context.Background()

	completer, err := llm.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	defer completer.Close()

	source, err := gmail.NewSource(ctx, cfg.GmailCredentialsPath, cfg.GmailTokenPath, cfg.FetchQuery, cfg.MaxResults, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Gmail source: %w", err)
	}
	sink := gmail.NewSinkWithService(source.Service(), logger)

	engine := tailor.New(completer, render.NewMarkdown(), render.NewPDFRenderer(logger), cfg.GeneratedResumesDir, logger)
	composer := compose.New(completer, cfg.GeneratedResumesDir, logger)
	extractor := extract.New(completer, logger)
	msgParser := parser.New(logger)

	pipe := pipeline.New(source, sink, msgParser, extractor, engine, composer, cfg.WorkerLimit, logger)

	server := api.NewServer(pipe, render.ExtractPDFText, cfg.UploadsDir, cfg.GeneratedResumesDir, logger)

	logger.Info("starting Recruitflow", "port", cfg.Port, "provider", cfg.LLMProvider)
	fmt.Printf("Endpoints:\n")
	fmt.Printf("  POST /api/profile         - Store applicant profile with base resume\n")
	fmt.Printf("  POST /api/process_emails  - Run the email-to-application pipeline\n")
	fmt.Printf("  GET  /api/recruiter_emails - List bundles pending approval\n")
	fmt.Printf("  POST /api/approve         - Approve replies: send, or save drafts\n")

	if err := http.ListenAndServe(":"+cfg.Port, server.Router()); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
