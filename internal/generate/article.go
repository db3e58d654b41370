package generate

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/diriredouane/AI-Recipe-Automator/internal/cost"
	"github.com/diriredouane/AI-Recipe-Automator/internal/llm"
	"github.com/diriredouane/AI-Recipe-Automator/internal/prompts"
)

// Article expands an outline into full HTML body copy. Anchor tags and h1
// headings are stripped: linking is a separate later stage and the CMS
// renders the title.
func (g *Generator) Article(ctx context.Context, keyword, outline string, lsiKeywords []string, tracker *cost.Tracker) (string, error) {
	prompt := prompts.Format(prompts.MustGet("generation.json", "wordpress-article"), map[string]string{
		"Keyword":     keyword,
		"Outline":     outline,
		"LSIKeywords": strings.Join(lsiKeywords, ", "),
	})

	out, usage, err := g.llm.GenerateContent(ctx, prompt, llm.TierStandard)
	if tracker != nil {
		tracker.Record("WP Article", g.llm.GetModel(llm.TierStandard), usage)
	}
	if err != nil {
		return "", err
	}

	html := stripFences(out)
	if strings.TrimSpace(html) == "" {
		return "", &GenerationError{Step: "article", Message: "model returned an empty article"}
	}
	return sanitizeArticle(html)
}

// sanitizeArticle unwraps any anchor tags the model produced despite
// instructions and removes h1 headings.
func sanitizeArticle(html string) (string, error) {
	if !strings.Contains(html, "<a") && !strings.Contains(html, "<h1") {
		return html, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", &GenerationError{Step: "article", Message: "article HTML is unparseable", Err: err}
	}

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		sel.ReplaceWithHtml(sel.Text())
	})
	doc.Find("h1").Remove()

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", &GenerationError{Step: "article", Message: "failed to render sanitized article", Err: err}
	}
	return strings.TrimSpace(body), nil
}

// stripFences removes markdown code fences around a raw HTML response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```html")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
