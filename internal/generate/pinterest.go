package generate

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/diriredouane/AI-Recipe-Automator/internal/cost"
	"github.com/diriredouane/AI-Recipe-Automator/internal/llm"
	"github.com/diriredouane/AI-Recipe-Automator/internal/prompts"
	"github.com/diriredouane/AI-Recipe-Automator/internal/scrub"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// PinterestContent generates pin copy for a post. The board choice is
// constrained to the site's catalog in the prompt; callers must still
// validate the returned name against the catalog before use.
func (g *Generator) PinterestContent(ctx context.Context, title, siteName string, boards []types.Board, tracker *cost.Tracker) (*types.PinText, error) {
	names := make([]string, 0, len(boards))
	for _, b := range boards {
		names = append(names, "- "+b.Name)
	}
	boardList := strings.Join(names, "\n")
	if boardList == "" {
		boardList = "(no boards known for this site)"
	}

	prompt := prompts.Format(prompts.MustGet("pinterest.json", "pinterest-content"), map[string]string{
		"Title":    title,
		"SiteName": siteName,
		"Boards":   boardList,
	})

	out, usage, err := g.llm.GenerateGroundedJSON(ctx, prompt, llm.TierStandard)
	if tracker != nil {
		tracker.Record("Pinterest Content", g.llm.GetModel(llm.TierStandard), usage)
	}
	if err != nil {
		return nil, err
	}

	var parsed struct {
		PinterestTitle       string  `json:"pinterest_title"`
		PinterestDescription string  `json:"pinterest_description"`
		ImageTitle           string  `json:"image_title"`
		ChosenBoardName      *string `json:"chosen_board_name"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, &GenerationError{Step: "pinterest-content", Message: "pin copy is not valid JSON", Err: err}
	}

	text := &types.PinText{
		PinterestTitle:       scrub.SubstituteMeat(scrub.CleanText(parsed.PinterestTitle)),
		PinterestDescription: scrub.SubstituteMeat(scrub.CleanText(parsed.PinterestDescription)),
		ImageTitle:           scrub.SubstituteMeat(scrub.CleanText(parsed.ImageTitle)),
	}
	if parsed.ChosenBoardName != nil {
		text.ChosenBoardName = strings.TrimSpace(*parsed.ChosenBoardName)
	}

	if text.PinterestTitle == "" || text.PinterestDescription == "" {
		return nil, &GenerationError{Step: "pinterest-content", Message: "pin copy is missing title or description"}
	}
	return text, nil
}
