// Package pipeline provides the high-level orchestration for processing
// content rows.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/diriredouane/AI-Recipe-Automator/internal/accounts"
	"github.com/diriredouane/AI-Recipe-Automator/internal/enrich"
	"github.com/diriredouane/AI-Recipe-Automator/internal/generate"
	"github.com/diriredouane/AI-Recipe-Automator/internal/linking"
	"github.com/diriredouane/AI-Recipe-Automator/internal/observability"
	"github.com/diriredouane/AI-Recipe-Automator/internal/sheets"
	"github.com/diriredouane/AI-Recipe-Automator/internal/slides"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
	"github.com/diriredouane/AI-Recipe-Automator/internal/wp"
)

// ProgressEvent represents a progress update during row processing.
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ProgressCallback is called when processing progress occurs.
type ProgressCallback func(event ProgressEvent)

// WordPress is the slice of the CMS client the orchestrator uses.
// *wp.Client satisfies it; tests substitute a fake.
type WordPress interface {
	BaseURL() string
	EditURL(id int) string
	GetPost(ctx context.Context, id int) (*wp.Post, error)
	CreatePost(ctx context.Context, params wp.CreatePostParams) (*wp.Post, error)
	UpdatePostContent(ctx context.Context, id int, content string) (*wp.Post, error)
	PublishDraft(ctx context.Context, id int) (*wp.Post, error)
	UploadMedia(ctx context.Context, filename, altText string, data io.Reader) (*wp.Media, error)
	Categories(ctx context.Context) ([]wp.Category, error)
	CreateRecipe(ctx context.Context, card *types.RecipeCard, imageID int) (*types.CreatedRecipe, error)
	SetRecipeFeaturedImage(ctx context.Context, recipeID, mediaID int) error
}

// Bridge is the outbound delivery-bridge surface the orchestrator uses.
type Bridge interface {
	SendPin(ctx context.Context, webhookURL string, payload *types.PinPayload) error
	RequestBoardList(ctx context.Context, webhookURL, siteName string) error
}

// ArtifactStore persists intermediate run artifacts for auditing. All
// saves are best-effort; the orchestrator never fails a row over them.
type ArtifactStore interface {
	CreateRun(ctx context.Context, siteName, sheetName string, rowNumber int, trigger string) (string, error)
	SaveArtifact(ctx context.Context, runID, step string, payload any) error
	CompleteRun(ctx context.Context, runID string, success bool, errMessage string) error
}

// Options configures a Processor.
type Options struct {
	Store      sheets.Store
	Enricher   *enrich.Engine
	Generator  *generate.Generator
	Linker     *linking.Linker
	Renderer   slides.Renderer
	Bridge     Bridge
	Artifacts  ArtifactStore // optional
	HTTPClient *http.Client  // optional, used for image downloads

	// NewWordPress builds a CMS client for an account. Defaults to the
	// real REST client.
	NewWordPress func(account *types.AccountConfig) WordPress

	Verbose    bool
	OnProgress ProgressCallback
}

// Processor runs the trigger-dispatched flows over data-sheet rows.
type Processor struct {
	store      sheets.Store
	resolver   *accounts.Resolver
	enricher   *enrich.Engine
	generator  *generate.Generator
	linker     *linking.Linker
	renderer   slides.Renderer
	bridge     Bridge
	artifacts  ArtifactStore
	httpClient *http.Client
	newWP      func(account *types.AccountConfig) WordPress
	printer    *observability.Printer
	verbose    bool
	onProgress ProgressCallback
}

func NewProcessor(opts Options) *Processor {
	newWP := opts.NewWordPress
	if newWP == nil {
		newWP = func(account *types.AccountConfig) WordPress { return wp.NewClient(account) }
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Processor{
		store:      opts.Store,
		resolver:   accounts.NewResolver(opts.Store),
		enricher:   opts.Enricher,
		generator:  opts.Generator,
		linker:     opts.Linker,
		renderer:   opts.Renderer,
		bridge:     opts.Bridge,
		artifacts:  opts.Artifacts,
		httpClient: httpClient,
		newWP:      newWP,
		printer:    observability.NewPrinter(os.Stdout),
		verbose:    opts.Verbose,
		onProgress: opts.OnProgress,
	}
}

// step emits one numbered progress line.
func (p *Processor) step(runID string, n, total int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("Step %d/%d: %s\n", n, total, msg)
	if p.onProgress != nil {
		p.onProgress(ProgressEvent{Step: fmt.Sprintf("%d/%d", n, total), Message: msg, RunID: runID})
	}
}

func (p *Processor) logf(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}
