package pipeline

import (
	"context"

	"github.com/diriredouane/AI-Recipe-Automator/internal/linking"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
	"github.com/diriredouane/AI-Recipe-Automator/internal/wp"
)

// runUpdateArticle prunes an existing post's internal links down to the
// standard count and unwraps dead anchors.
func (p *Processor) runUpdateArticle(ctx context.Context, r *run) error {
	id, err := postIDFromRow(r.row)
	if err != nil {
		return err
	}

	p.step(r.id, 1, 2, "Fetching post %d", id)
	post, err := r.wp.GetPost(ctx, id)
	if err != nil {
		return err
	}

	p.step(r.id, 2, 2, "Cleaning internal links")
	cleaned, changed, err := linking.CleanupInternalLinks(post.Content, r.wp.BaseURL())
	if err != nil {
		return err
	}
	if changed {
		if _, err := r.wp.UpdatePostContent(ctx, id, cleaned); err != nil {
			return err
		}
	}

	return p.store.UpdateRow(ctx, r.sheetName, r.row.Number, &types.RowUpdate{
		Trigger: types.Set(""),
		Status:  types.Set(types.StatusUpdated),
	})
}

// runAddCard retrofits a recipe card onto an existing post. Posts that
// already embed a card are left alone.
func (p *Processor) runAddCard(ctx context.Context, r *run) error {
	id, err := postIDFromRow(r.row)
	if err != nil {
		return err
	}

	p.step(r.id, 1, 3, "Fetching post %d", id)
	post, err := r.wp.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if wp.HasRecipeShortcode(post.Content) {
		return p.store.UpdateRow(ctx, r.sheetName, r.row.Number, &types.RowUpdate{
			Trigger: types.Set(""),
			Status:  types.Set(types.StatusCardExists),
		})
	}

	p.step(r.id, 2, 3, "Extracting recipe from article")
	card, err := p.generator.RecipeFromHTML(ctx, post.Content, r.tracker)
	if err != nil {
		return err
	}

	p.step(r.id, 3, 3, "Creating recipe card")
	created, err := r.wp.CreateRecipe(ctx, card, 0)
	if err != nil {
		return err
	}
	if _, err := r.wp.UpdatePostContent(ctx, id, wp.AppendShortcode(post.Content, created.Shortcode)); err != nil {
		return err
	}

	return p.store.UpdateRow(ctx, r.sheetName, r.row.Number, &types.RowUpdate{
		Trigger: types.Set(""),
		Status:  types.Set(types.StatusCardAdded),
	})
}
