// Package enrich normalizes raw row text into a (title, keyword) pair,
// falling back to photo analysis when the text signal is too weak.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diriredouane/AI-Recipe-Automator/internal/cost"
	"github.com/diriredouane/AI-Recipe-Automator/internal/llm"
	"github.com/diriredouane/AI-Recipe-Automator/internal/prompts"
	"github.com/diriredouane/AI-Recipe-Automator/internal/scrub"
)

// Image classifier verdicts.
const (
	ImageFinishedDish    = "FINISHED_DISH"
	ImageIngredientsOnly = "INGREDIENTS_ONLY"
	ImageNotFood         = "NOT_FOOD"
)

// weakTextThreshold is the length below which raw text alone is considered
// too sparse to extract a reliable title.
const weakTextThreshold = 400

// Extraction is the normalized output of title/keyword extraction.
// Empty fields mean the model could not identify them confidently.
type Extraction struct {
	PostTitle     string
	TargetKeyword string
}

// Found reports whether both fields were identified.
func (e *Extraction) Found() bool {
	return e.PostTitle != "" && e.TargetKeyword != ""
}

// ImageAnalysis is the structured verdict of the photo classifier.
type ImageAnalysis struct {
	ImageType          string   `json:"image_type"`
	DishName           string   `json:"dish_name"`
	VisibleIngredients []string `json:"visible_ingredients"`
	PreparationStyle   string   `json:"preparation_style"`
}

// EnrichmentSentence synthesizes the descriptive sentence prepended to weak
// raw text before the extraction retry.
func (a *ImageAnalysis) EnrichmentSentence() string {
	var sb strings.Builder
	sb.WriteString(a.DishName)
	if len(a.VisibleIngredients) > 0 {
		sb.WriteString(" with ")
		sb.WriteString(strings.Join(a.VisibleIngredients, ", "))
	}
	sb.WriteString(".")
	if a.PreparationStyle != "" {
		sb.WriteString(" Preparation style: ")
		sb.WriteString(a.PreparationStyle)
		sb.WriteString(".")
	}
	return sb.String()
}

// Result is the outcome of one full enrichment pass over a row.
type Result struct {
	Extraction
	// Text is the (possibly enriched) meat-substituted text used for the
	// final extraction. Generation stages consume this, not the raw input.
	Text string
	// Enriched reports whether image analysis contributed to Text.
	Enriched bool
	// AnalysisRaw is the raw classifier output, written to the diagnostic
	// column regardless of parse success.
	AnalysisRaw string
}

// Engine runs extraction with the image-analysis fallback.
type Engine struct {
	llm        llm.Client
	httpClient *http.Client
}

// NewEngine creates an enrichment engine. httpClient may be nil.
func NewEngine(client llm.Client, httpClient *http.Client) *Engine {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Engine{llm: client, httpClient: httpClient}
}

// ExtractTitleAndKeyword runs one extraction pass over text.
// costName labels the call in the row's cost breakdown.
func (e *Engine) ExtractTitleAndKeyword(ctx context.Context, text, costName string, tracker *cost.Tracker) (*Extraction, error) {
	prompt := prompts.Format(prompts.MustGet("enrichment.json", "extract-title-keyword"),
		map[string]string{"RawText": text})

	out, usage, err := e.llm.GenerateJSON(ctx, prompt, llm.TierStandard)
	if tracker != nil {
		tracker.Record(costName, e.llm.GetModel(llm.TierStandard), usage)
	}
	if err != nil {
		return nil, err
	}

	var parsed struct {
		PostTitle     *string `json:"post_title"`
		TargetKeyword *string `json:"target_keyword"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, &ParseError{Step: "extract-title-keyword", Raw: out, Err: err}
	}

	ex := &Extraction{}
	if parsed.PostTitle != nil {
		ex.PostTitle = scrub.SubstituteMeat(strings.TrimSpace(*parsed.PostTitle))
	}
	if parsed.TargetKeyword != nil {
		ex.TargetKeyword = scrub.SubstituteMeat(strings.TrimSpace(*parsed.TargetKeyword))
	}
	return ex, nil
}

// ClassifyImage downloads the photo and runs the image classifier.
// The raw model output is returned even when parsing fails.
func (e *Engine) ClassifyImage(ctx context.Context, photoURL string, tracker *cost.Tracker) (*ImageAnalysis, string, error) {
	data, mimeType, err := e.fetchImage(ctx, photoURL)
	if err != nil {
		return nil, "", err
	}

	prompt := prompts.MustGet("enrichment.json", "classify-image")
	out, usage, err := e.llm.GenerateJSONWithImage(ctx, prompt, data, mimeType, llm.TierLite)
	if tracker != nil {
		tracker.Record("Image Analysis", e.llm.GetModel(llm.TierLite), usage)
	}
	if err != nil {
		return nil, out, err
	}

	var analysis ImageAnalysis
	if err := json.Unmarshal([]byte(out), &analysis); err != nil {
		return nil, out, &ParseError{Step: "classify-image", Raw: out, Err: err}
	}
	return &analysis, out, nil
}

// Extract runs the full enrichment flow: extraction, then a single
// image-analysis retry when the text signal is too weak. The substitution
// rule is applied before every pass.
func (e *Engine) Extract(ctx context.Context, rawText, photoURL string, tracker *cost.Tracker) (*Result, error) {
	text := scrub.SubstituteMeat(strings.TrimSpace(rawText))

	first, err := e.ExtractTitleAndKeyword(ctx, text, "Extract Title/Keyword (1st pass)", tracker)
	if err != nil {
		return nil, err
	}

	result := &Result{Extraction: *first, Text: text}
	needEnrichment := !first.Found() || len(text) < weakTextThreshold
	if !needEnrichment || photoURL == "" {
		return result, nil
	}

	analysis, raw, err := e.ClassifyImage(ctx, photoURL, tracker)
	result.AnalysisRaw = raw
	if err != nil {
		// The first pass result stands; the caller decides whether a
		// missing title is fatal for its flow.
		return result, nil
	}
	if analysis.ImageType != ImageFinishedDish {
		return result, nil
	}

	enriched := scrub.SubstituteMeat(analysis.EnrichmentSentence()) + " " + text
	second, err := e.ExtractTitleAndKeyword(ctx, enriched, "Extract Title/Keyword (2nd pass)", tracker)
	if err != nil {
		return result, nil
	}

	result.Text = enriched
	result.Enriched = true
	if second.Found() {
		result.Extraction = *second
	}
	return result, nil
}

func (e *Engine) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid photo URL %q: %w", url, err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("photo download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read photo body: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}
