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

// Outline produces the structured SEO brief for a keyword, using
// web-grounded generation. The internal_reasoning honey-pot field absorbs
// model reasoning and is discarded during unmarshaling; every remaining
// string field is scrubbed before the brief is returned.
func (g *Generator) Outline(ctx context.Context, keyword, contextText string, tracker *cost.Tracker) (*types.ContentBrief, error) {
	prompt := prompts.Format(prompts.MustGet("generation.json", "wordpress-outline"), map[string]string{
		"Keyword": keyword,
		"Context": contextText,
	})

	out, usage, err := g.llm.GenerateGroundedJSON(ctx, prompt, llm.TierAdvanced)
	if tracker != nil {
		tracker.Record("WP Outline", g.llm.GetModel(llm.TierAdvanced), usage)
	}
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateJSONString(schemafiles.MustRead(schemafiles.ContentBrief), out); err != nil {
		return nil, &GenerationError{Step: "outline", Message: "brief failed schema validation", Err: err}
	}

	// types.ContentBrief carries no internal_reasoning field, so the
	// honey-pot content is dropped wholesale here.
	var brief types.ContentBrief
	if err := json.Unmarshal([]byte(out), &brief); err != nil {
		return nil, &GenerationError{Step: "outline", Message: "brief is not valid JSON", Err: err}
	}

	scrub.CleanBrief(&brief)

	if brief.OutlineMarkdown == "" {
		return nil, &GenerationError{Step: "outline", Message: "brief is missing the outline"}
	}
	if err := g.validate.Struct(&brief); err != nil {
		return nil, &GenerationError{Step: "outline", Message: "brief failed validation after scrubbing", Err: err}
	}
	return &brief, nil
}
