package linking

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/diriredouane/AI-Recipe-Automator/internal/cost"
	"github.com/diriredouane/AI-Recipe-Automator/internal/llm"
	"github.com/diriredouane/AI-Recipe-Automator/internal/prompts"
)

// TargetLinkCount is how many internal links every published article carries.
const TargetLinkCount = 4

// Linker selects related posts from a site's sitemap and weaves them into
// article HTML as internal links.
type Linker struct {
	llm llm.Client
}

func New(client llm.Client) *Linker {
	return &Linker{llm: client}
}

// SelectInternalLinks picks TargetLinkCount related URLs for a keyword.
// The article's own URL is excluded from the candidate pool and from the
// result. Fewer candidates than the target yields fewer links, never an
// error.
func (l *Linker) SelectInternalLinks(ctx context.Context, keyword, ownURL string, candidates []string, tracker *cost.Tracker) ([]string, error) {
	pool := make([]string, 0, len(candidates))
	for _, u := range candidates {
		u = strings.TrimSpace(u)
		if u == "" || u == ownURL {
			continue
		}
		pool = append(pool, u)
	}
	if len(pool) == 0 {
		return nil, nil
	}
	if len(pool) <= TargetLinkCount {
		return pool, nil
	}

	prompt := prompts.Format(prompts.MustGet("linking.json", "select-internal-links"), map[string]string{
		"Keyword":    keyword,
		"Candidates": strings.Join(pool, "\n"),
		"OwnURL":     ownURL,
	})

	out, usage, err := l.llm.GenerateJSON(ctx, prompt, llm.TierLite)
	if tracker != nil {
		tracker.Record("Select Internal Links", l.llm.GetModel(llm.TierLite), usage)
	}
	if err != nil {
		return nil, err
	}

	var parsed struct {
		SelectedURLs []string `json:"selected_urls"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, &LinkError{Step: "select", Message: "selection is not valid JSON", Err: err}
	}

	// Keep only choices that exist in the pool, deduplicated, capped at the
	// target.
	inPool := make(map[string]bool, len(pool))
	for _, u := range pool {
		inPool[u] = true
	}
	seen := make(map[string]bool, TargetLinkCount)
	var selected []string
	for _, u := range parsed.SelectedURLs {
		u = strings.TrimSpace(u)
		if !inPool[u] || seen[u] {
			continue
		}
		seen[u] = true
		selected = append(selected, u)
		if len(selected) == TargetLinkCount {
			break
		}
	}

	// Top up from the pool when the model under-delivered.
	for _, u := range pool {
		if len(selected) == TargetLinkCount {
			break
		}
		if !seen[u] {
			seen[u] = true
			selected = append(selected, u)
		}
	}
	return selected, nil
}

// AddInternalLinks asks the model to weave the selected URLs into the
// article HTML, then verifies the result: anchors pointing outside the
// selected set, at the article itself, or at "#" are unwrapped back to
// plain text. Empty selections are a no-op.
func (l *Linker) AddInternalLinks(ctx context.Context, html, ownURL string, urls []string, tracker *cost.Tracker) (string, error) {
	if len(urls) == 0 {
		return html, nil
	}

	prompt := prompts.Format(prompts.MustGet("linking.json", "insert-internal-links"), map[string]string{
		"URLs": strings.Join(urls, "\n"),
		"HTML": html,
	})

	out, usage, err := l.llm.GenerateJSON(ctx, prompt, llm.TierStandard)
	if tracker != nil {
		tracker.Record("Insert Internal Links", l.llm.GetModel(llm.TierStandard), usage)
	}
	if err != nil {
		return "", err
	}

	var parsed struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return "", &LinkError{Step: "insert", Message: "insertion result is not valid JSON", Err: err}
	}
	if strings.TrimSpace(parsed.HTML) == "" {
		return "", &LinkError{Step: "insert", Message: "model returned empty HTML"}
	}

	allowed := make(map[string]bool, len(urls))
	for _, u := range urls {
		allowed[u] = true
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(parsed.HTML))
	if err != nil {
		return "", &LinkError{Step: "insert", Message: "linked HTML is unparseable", Err: err}
	}

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !allowed[href] || href == ownURL {
			sel.ReplaceWithHtml(sel.Text())
		}
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", &LinkError{Step: "insert", Message: "failed to render linked HTML", Err: err}
	}
	return strings.TrimSpace(body), nil
}

// CleanupInternalLinks prunes an already-published article down to the
// target link count. The first TargetLinkCount internal anchors are kept;
// further internal anchors and any "#" anchors are unwrapped to their text.
// External links are never touched.
func CleanupInternalLinks(html, siteBaseURL string) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false, &LinkError{Step: "cleanup", Message: "article HTML is unparseable", Err: err}
	}

	base := strings.TrimSuffix(siteBaseURL, "/")
	kept := 0
	changed := false

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)

		if href == "#" || href == "" {
			sel.ReplaceWithHtml(sel.Text())
			changed = true
			return
		}
		if base == "" || !strings.HasPrefix(href, base) {
			return
		}
		if kept < TargetLinkCount {
			kept++
			return
		}
		sel.ReplaceWithHtml(sel.Text())
		changed = true
	})

	if !changed {
		return html, false, nil
	}

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", false, &LinkError{Step: "cleanup", Message: "failed to render cleaned HTML", Err: err}
	}
	return strings.TrimSpace(body), true, nil
}
