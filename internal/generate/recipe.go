package generate

import (
	"context"
	"encoding/json"

	"github.com/diriredouane/AI-Recipe-Automator/internal/cost"
	"github.com/diriredouane/AI-Recipe-Automator/internal/llm"
	"github.com/diriredouane/AI-Recipe-Automator/internal/prompts"
	"github.com/diriredouane/AI-Recipe-Automator/internal/schemas"
	"github.com/diriredouane/AI-Recipe-Automator/internal/scrub"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
	schemafiles "github.com/diriredouane/AI-Recipe-Automator/schemas"
)

// RecipeFromHTML extracts a structured recipe card from existing article
// HTML, for posts that were published without one.
func (g *Generator) RecipeFromHTML(ctx context.Context, html string, tracker *cost.Tracker) (*types.RecipeCard, error) {
	prompt := prompts.Format(prompts.MustGet("recipecard.json", "extract-recipe-from-html"),
		map[string]string{"HTML": html})

	out, usage, err := g.llm.GenerateJSON(ctx, prompt, llm.TierStandard)
	if tracker != nil {
		tracker.Record("Extract Recipe from HTML", g.llm.GetModel(llm.TierStandard), usage)
	}
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateJSONString(schemafiles.MustRead(schemafiles.RecipeCard), out); err != nil {
		return nil, &GenerationError{Step: "recipe-from-html", Message: "recipe failed schema validation", Err: err}
	}

	var card types.RecipeCard
	if err := json.Unmarshal([]byte(out), &card); err != nil {
		return nil, &GenerationError{Step: "recipe-from-html", Message: "recipe is not valid JSON", Err: err}
	}

	scrub.CleanRecipe(&card)
	return &card, nil
}
