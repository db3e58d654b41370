package generate

import (
	"github.com/go-playground/validator/v10"

	"github.com/diriredouane/AI-Recipe-Automator/internal/llm"
)

// Generator wraps the LLM client for all content-generation steps.
type Generator struct {
	llm      llm.Client
	validate *validator.Validate
}

// New creates a generator.
func New(client llm.Client) *Generator {
	return &Generator{
		llm:      client,
		validate: validator.New(),
	}
}
