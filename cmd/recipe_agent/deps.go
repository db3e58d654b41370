package main

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/diriredouane/AI-Recipe-Automator/internal/bridge"
	"github.com/diriredouane/AI-Recipe-Automator/internal/config"
	"github.com/diriredouane/AI-Recipe-Automator/internal/db"
	"github.com/diriredouane/AI-Recipe-Automator/internal/enrich"
	"github.com/diriredouane/AI-Recipe-Automator/internal/generate"
	"github.com/diriredouane/AI-Recipe-Automator/internal/linking"
	"github.com/diriredouane/AI-Recipe-Automator/internal/llm"
	"github.com/diriredouane/AI-Recipe-Automator/internal/pipeline"
	"github.com/diriredouane/AI-Recipe-Automator/internal/sheets"
	"github.com/diriredouane/AI-Recipe-Automator/internal/slides"
)

// loadConfig merges a config file (when given) with environment variables
// and defaults, then validates the result.
func loadConfig(path string) (*config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	cfg.FromEnv()
	merged := cfg.MergeWithDefaults(config.Config{Port: 8080})
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &merged, nil
}

func googleOptions(cfg *config.Config) []option.ClientOption {
	if cfg.CredentialsFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (sheets.Store, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required (SPREADSHEET_ID or config file)")
	}
	return sheets.NewGoogleStore(ctx, cfg.SpreadsheetID, googleOptions(cfg)...)
}

// buildProcessor wires the full dependency graph for row processing.
// The returned cleanup closes the LLM client and, when configured, the
// audit database.
func buildProcessor(ctx context.Context, cfg *config.Config, store sheets.Store) (*pipeline.Processor, func(), error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("gemini api key is required (GEMINI_API_KEY or config file)")
	}

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	renderer, err := slides.NewGoogleRenderer(ctx, googleOptions(cfg)...)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to create slide renderer: %w", err)
	}

	var artifacts pipeline.ArtifactStore
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		artifacts = database
	}

	processor := pipeline.NewProcessor(pipeline.Options{
		Store:     store,
		Enricher:  enrich.NewEngine(client, nil),
		Generator: generate.New(client),
		Linker:    linking.New(client),
		Renderer:  renderer,
		Bridge:    bridge.New(),
		Artifacts: artifacts,
		Verbose:   cfg.Verbose,
	})

	cleanup := func() {
		_ = client.Close()
		if database != nil {
			database.Close()
		}
	}
	return processor, cleanup, nil
}
