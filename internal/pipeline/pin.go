package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/diriredouane/AI-Recipe-Automator/internal/scrub"
	"github.com/diriredouane/AI-Recipe-Automator/internal/slides"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
	"github.com/diriredouane/AI-Recipe-Automator/internal/wp"
)

const (
	pinFlowSteps     = 4
	pinLinkFlowSteps = 5
)

// runPin pins a row straight from its title and photo: title extraction,
// pin copy, pin image, bridge handoff. The pin carries no destination link.
func (p *Processor) runPin(ctx context.Context, r *run) error {
	if r.row.Title == "" || r.row.PhotoURL == "" {
		return fmt.Errorf("row %d needs a title and a photo to pin", r.row.Number)
	}

	p.step(r.id, 1, pinFlowSteps, "Extracting title and keyword")
	title, err := p.pinTitle(ctx, r)
	if err != nil {
		return err
	}

	photoURL := r.row.PinImageURL
	if photoURL == "" {
		photoURL = slides.DriveDownloadURL(r.row.PhotoURL)
	}
	return p.pinAndHandOff(ctx, r, 2, pinFlowSteps, title, "", photoURL)
}

// runPinLink pins a post the row already points at. An existing public URL
// is used as-is; a draft edit URL gets the draft published first.
func (p *Processor) runPinLink(ctx context.Context, r *run) error {
	if r.row.Title == "" || r.row.PhotoURL == "" {
		return fmt.Errorf("row %d needs a title and a photo to pin", r.row.Number)
	}

	p.step(r.id, 1, pinLinkFlowSteps, "Resolving destination link")
	destination := r.row.PublicURL
	if destination == "" {
		id, err := postIDFromRow(r.row)
		if err != nil {
			return fmt.Errorf("row %d needs a public or edit URL to pin a link: %w", r.row.Number, err)
		}
		post, err := r.wp.PublishDraft(ctx, id)
		if err != nil {
			return err
		}
		destination = post.Link
		if err := p.store.UpdateRow(ctx, r.sheetName, r.row.Number, &types.RowUpdate{
			Status:    types.Set(types.StatusPublishedWP),
			PublicURL: types.Set(destination),
		}); err != nil {
			return err
		}
	}

	p.step(r.id, 2, pinLinkFlowSteps, "Extracting title and keyword")
	title, err := p.pinTitle(ctx, r)
	if err != nil {
		return err
	}

	photoURL := r.row.PinImageURL
	if photoURL == "" {
		photoURL = slides.DriveDownloadURL(r.row.PhotoURL)
	}
	return p.pinAndHandOff(ctx, r, 3, pinLinkFlowSteps, title, destination, photoURL)
}

// pinTitle extracts the post title from the row text, with the image
// enrichment fallback. A row whose title defeats extraction still pins,
// using the raw (substituted) cell text.
func (p *Processor) pinTitle(ctx context.Context, r *run) (string, error) {
	result, err := p.extractTitle(ctx, r, slides.DriveDownloadURL(r.row.PhotoURL))
	if err != nil {
		return "", err
	}
	if result.PostTitle != "" {
		return result.PostTitle, nil
	}
	p.logf("title extraction found nothing, pinning with the raw row title")
	return scrub.SubstituteMeat(r.row.Title), nil
}

// postIDFromRow resolves the numeric post id from the row's edit URL.
func postIDFromRow(row *types.Row) (int, error) {
	raw := wp.ExtractPostID(row.EditURL)
	if raw == "" {
		return 0, fmt.Errorf("row %d has no edit URL with a post id", row.Number)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("row %d: bad post id %q: %w", row.Number, raw, err)
	}
	return id, nil
}
