package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/diriredouane/AI-Recipe-Automator/internal/enrich"
	"github.com/diriredouane/AI-Recipe-Automator/internal/generate"
	"github.com/diriredouane/AI-Recipe-Automator/internal/linking"
	"github.com/diriredouane/AI-Recipe-Automator/internal/scrub"
	"github.com/diriredouane/AI-Recipe-Automator/internal/sheets"
	"github.com/diriredouane/AI-Recipe-Automator/internal/slides"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
	"github.com/diriredouane/AI-Recipe-Automator/internal/wp"
)

const fullFlowSteps = 12

// runFullFlow takes a row from raw title and photo to a published (or
// draft) post, and for publishing triggers hands a pin off to the bridge.
func (p *Processor) runFullFlow(ctx context.Context, r *run) error {
	draft := r.trigger == types.TriggerDraft
	photoURL := slides.DriveDownloadURL(r.row.PhotoURL)

	p.step(r.id, 1, fullFlowSteps, "Extracting title and keyword")
	result, err := p.extractTitle(ctx, r, photoURL)
	if err != nil {
		return err
	}
	if !result.Found() {
		return fmt.Errorf("could not extract a title and keyword from %q", r.row.Title)
	}

	p.step(r.id, 2, fullFlowSteps, "Remastering featured image")
	featuredURL := photoURL
	if asset, remErr := p.renderer.Remaster(ctx, r.account, photoURL); remErr != nil {
		p.logf("featured remaster failed, using source photo: %v", remErr)
	} else {
		featuredURL = asset.DownloadURL
	}

	p.step(r.id, 3, fullFlowSteps, "Generating content brief for %q", result.TargetKeyword)
	brief, err := p.generator.Outline(ctx, result.TargetKeyword, result.Text, r.tracker)
	if err != nil {
		return err
	}
	p.saveArtifact(ctx, r, "brief", brief)
	if p.verbose {
		p.printer.PrintBrief(brief)
	}

	p.step(r.id, 4, fullFlowSteps, "Creating recipe card")
	var recipe *types.CreatedRecipe
	if recipe, err = r.wp.CreateRecipe(ctx, &brief.Recipe, 0); err != nil {
		p.logf("recipe card creation failed, continuing without one: %v", err)
		recipe = nil
	}

	p.step(r.id, 5, fullFlowSteps, "Writing article")
	article, err := p.generator.Article(ctx, brief.TargetKeyword, brief.OutlineMarkdown, brief.LSIKeywords, r.tracker)
	if err != nil {
		return err
	}
	if recipe != nil && recipe.Shortcode != "" {
		article = wp.AppendShortcode(article, recipe.Shortcode)
	}
	p.saveArtifact(ctx, r, "article", article)

	p.step(r.id, 6, fullFlowSteps, "Adding internal links")
	article = p.addLinks(ctx, r, brief.TargetKeyword, article)

	p.step(r.id, 7, fullFlowSteps, "Rendering collage and uploading featured image")
	var (
		collageURL string
		media      *wp.Media
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		asset, colErr := p.renderer.RenderCollage(gctx, r.account, photoURL, featuredURL)
		if colErr != nil {
			p.logf("collage render failed, continuing without one: %v", colErr)
			return nil
		}
		collageURL = asset.DownloadURL
		return nil
	})
	g.Go(func() error {
		data, upErr := p.downloadImage(gctx, featuredURL)
		if upErr != nil {
			return fmt.Errorf("downloading featured image: %w", upErr)
		}
		media, upErr = r.wp.UploadMedia(gctx, wp.Slugify(brief.TargetKeyword)+".png", result.PostTitle, bytes.NewReader(data))
		if upErr != nil {
			return fmt.Errorf("uploading featured image: %w", upErr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if recipe != nil && media != nil {
		if err := r.wp.SetRecipeFeaturedImage(ctx, recipe.ID, media.ID); err != nil {
			p.logf("failed to set recipe featured image: %v", err)
		}
	}
	if collageURL != "" {
		article = spliceCollage(article, collageURL, result.PostTitle)
	}

	p.step(r.id, 8, fullFlowSteps, "Selecting category")
	categoryID := 0
	if cats, catErr := r.wp.Categories(ctx); catErr != nil {
		p.logf("category listing failed, publishing uncategorized: %v", catErr)
	} else {
		offered := make([]generate.Category, len(cats))
		for i, c := range cats {
			offered[i] = generate.Category{ID: c.ID, Name: c.Name}
		}
		if categoryID, err = p.generator.BestCategory(ctx, brief.TargetKeyword, offered, r.tracker); err != nil {
			return err
		}
	}

	p.step(r.id, 9, fullFlowSteps, "Creating post")
	postTitle := brief.SEOTitle
	if postTitle == "" {
		postTitle = result.PostTitle
	}
	if r.account.FacebookURL != "" {
		article += facebookFollowBlock(r.account.FacebookURL)
	}
	// Last line of defense: the substitution rule holds for the whole body
	// no matter which earlier stage produced the text.
	article = scrub.SubstituteMeat(article)
	params := wp.CreatePostParams{
		Title:           postTitle,
		Content:         article,
		Keyword:         brief.TargetKeyword,
		SEOTitle:        brief.SEOTitle,
		MetaDescription: brief.MetaDescription,
		Publish:         !draft,
	}
	if categoryID > 0 {
		params.Categories = []int{categoryID}
	}
	if media != nil {
		params.FeaturedMediaID = media.ID
	}
	post, err := r.wp.CreatePost(ctx, params)
	if err != nil {
		return err
	}

	urls := &types.RowUpdate{
		EditURL:   types.Set(r.wp.EditURL(post.ID)),
		PublicURL: types.Set(post.Link),
	}
	if draft {
		urls.Trigger = types.Set("")
		urls.Status = types.Set(types.StatusDraftCreated)
		return p.store.UpdateRow(ctx, r.sheetName, r.row.Number, urls)
	}
	if err := p.store.UpdateRow(ctx, r.sheetName, r.row.Number, urls); err != nil {
		return err
	}

	return p.pinAndHandOff(ctx, r, 10, fullFlowSteps, postTitle, post.Link, featuredURL)
}

// extractTitle runs the enrichment pass and records the raw image analysis
// in the row's diagnostic column when the classifier ran.
func (p *Processor) extractTitle(ctx context.Context, r *run, photoURL string) (*enrich.Result, error) {
	result, err := p.enricher.Extract(ctx, r.row.Title, photoURL, r.tracker)
	if err != nil {
		return nil, err
	}
	if result.AnalysisRaw != "" {
		_ = p.store.UpdateRow(ctx, r.sheetName, r.row.Number, &types.RowUpdate{
			ImageAnalysis: types.Set(result.AnalysisRaw),
		})
	}
	return result, nil
}

// facebookFollowBlock is appended to every article of a site that has a
// Facebook page configured.
func facebookFollowBlock(facebookURL string) string {
	return fmt.Sprintf(`
<hr>
<p style="text-align:center;font-size:1.1em;">
<strong>For more daily recipes and tips, follow us on Facebook!</strong><br>
<a href="%s" target="_blank" rel="noopener noreferrer">Click here to join our community!</a>
</p>`, facebookURL)
}

// pinAndHandOff generates pin copy and a pin image, then delivers the pin
// request to the bridge and parks the row in the waiting state. Steps are
// numbered from stepBase so PIN flows can reuse it with their own totals.
func (p *Processor) pinAndHandOff(ctx context.Context, r *run, stepBase, stepTotal int, title, destinationLink, photoURL string) error {
	p.step(r.id, stepBase, stepTotal, "Generating pin copy")
	catalog, err := p.store.Boards(ctx)
	if err != nil {
		return err
	}
	siteBoards := sheets.FilterSite(catalog, r.account.SiteName)

	text, err := p.generator.PinterestContent(ctx, title, r.account.SiteName, siteBoards, r.tracker)
	if err != nil {
		return err
	}

	// The model's board choice is only trusted when it names a cataloged
	// board for this site.
	var board types.Board
	if text.ChosenBoardName != "" {
		var ok bool
		if board, ok = sheets.FindBoard(siteBoards, r.account.SiteName, text.ChosenBoardName); !ok {
			p.logf("model chose unknown board %q, sending pin without a board", text.ChosenBoardName)
			board = types.Board{}
		}
	}

	p.step(r.id, stepBase+1, stepTotal, "Rendering pin image")
	pinImageURL := r.row.PinImageURL
	if pinImageURL == "" {
		slideTitle := text.ImageTitle
		if slideTitle == "" {
			slideTitle = text.PinterestTitle
		}
		asset, renderErr := p.renderer.RenderPinImage(ctx, r.account, slideTitle, photoURL)
		if renderErr != nil {
			return renderErr
		}
		pinImageURL = asset.DownloadURL
	} else {
		p.logf("reusing existing pin image %s", pinImageURL)
	}

	p.step(r.id, stepBase+2, stepTotal, "Sending pin to bridge")
	payload := &types.PinPayload{
		RowNumber:       r.row.Number,
		BoardName:       board.Name,
		BoardID:         board.ID,
		ImageURL:        pinImageURL,
		Title:           text.PinterestTitle,
		Description:     text.PinterestDescription,
		DestinationLink: destinationLink,
		SheetName:       r.sheetName,
	}
	p.saveArtifact(ctx, r, "pin_payload", payload)
	if err := p.bridge.SendPin(ctx, r.account.MainWebhookURL, payload); err != nil {
		return err
	}

	return p.store.UpdateRow(ctx, r.sheetName, r.row.Number, &types.RowUpdate{
		Trigger:        types.Set(types.MarkerWaiting),
		PinImageURL:    types.Set(pinImageURL),
		BoardName:      types.Set(board.Name),
		PinTitle:       types.Set(text.PinterestTitle),
		ImageTitle:     types.Set(text.ImageTitle),
		PinDescription: types.Set(text.PinterestDescription),
	})
}

// addLinks fetches the site's sitemap and weaves related posts into the
// article. Link failures never sink a row; the article just ships bare.
func (p *Processor) addLinks(ctx context.Context, r *run, keyword, article string) string {
	if r.account.SitemapURL == "" {
		return article
	}
	candidates, err := linking.FetchSitemapURLs(ctx, p.httpClient, r.account.SitemapURL)
	if err != nil {
		p.logf("sitemap fetch failed, skipping internal links: %v", err)
		return article
	}
	selected, err := p.linker.SelectInternalLinks(ctx, keyword, "", candidates, r.tracker)
	if err != nil || len(selected) == 0 {
		if err != nil {
			p.logf("link selection failed, skipping internal links: %v", err)
		}
		return article
	}
	linked, err := p.linker.AddInternalLinks(ctx, article, "", selected, r.tracker)
	if err != nil {
		p.logf("link insertion failed, keeping unlinked article: %v", err)
		return article
	}
	return linked
}

func (p *Processor) downloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d fetching %s", resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 30<<20))
}

// spliceCollage inserts the collage image after the middle paragraph of
// the article. Articles without paragraph breaks get it appended.
func spliceCollage(article, collageURL, alt string) string {
	img := fmt.Sprintf(`<figure><img src="%s" alt="%s"/></figure>`, collageURL, alt)
	parts := strings.SplitAfter(article, "</p>")
	if len(parts) < 2 {
		return article + "\n" + img
	}
	mid := len(parts) / 2
	return strings.Join(parts[:mid], "") + "\n" + img + "\n" + strings.Join(parts[mid:], "")
}
