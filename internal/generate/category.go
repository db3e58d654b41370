package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diriredouane/AI-Recipe-Automator/internal/cost"
	"github.com/diriredouane/AI-Recipe-Automator/internal/llm"
	"github.com/diriredouane/AI-Recipe-Automator/internal/prompts"
)

// Category is one CMS category offered to the model.
type Category struct {
	ID   int
	Name string
}

// BestCategory picks the most fitting CMS category for a keyword.
// Returns 0 when no categories are available.
func (g *Generator) BestCategory(ctx context.Context, keyword string, categories []Category, tracker *cost.Tracker) (int, error) {
	if len(categories) == 0 {
		return 0, nil
	}

	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, fmt.Sprintf("%d: %s", c.ID, c.Name))
	}

	prompt := prompts.Format(prompts.MustGet("generation.json", "best-category"), map[string]string{
		"Keyword":    keyword,
		"Categories": strings.Join(lines, "\n"),
	})

	out, usage, err := g.llm.GenerateJSON(ctx, prompt, llm.TierLite)
	if tracker != nil {
		tracker.Record("Category Selection", g.llm.GetModel(llm.TierLite), usage)
	}
	if err != nil {
		return 0, err
	}

	var parsed struct {
		CategoryID int `json:"category_id"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return 0, &GenerationError{Step: "best-category", Message: "category choice is not valid JSON", Err: err}
	}

	for _, c := range categories {
		if c.ID == parsed.CategoryID {
			return parsed.CategoryID, nil
		}
	}
	// Chosen id is not in the offered set; fall back to the first category
	// rather than publishing uncategorized.
	return categories[0].ID, nil
}
