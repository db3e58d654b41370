package wp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// ShortcodeMarker precedes the recipe shortcode when it is appended to an
// article body, so re-runs can detect an existing card.
const ShortcodeMarker = "<!-- Recipe Card -->"

// HasRecipeShortcode reports whether article HTML already embeds a recipe
// card shortcode.
func HasRecipeShortcode(content string) bool {
	return strings.Contains(content, "wprm-recipe")
}

// AppendShortcode appends a recipe shortcode to article HTML.
func AppendShortcode(content, shortcode string) string {
	return content + "\n\n" + ShortcodeMarker + "\n" + shortcode + "\n"
}

// recipeEndpoint resolves the configured recipe API path. A legacy
// `create-recipe-post` path is corrected to `create-recipe`, the route the
// plugin actually serves.
func (c *Client) recipeEndpoint() (string, error) {
	api := strings.TrimSuffix(strings.TrimSpace(c.recipeAPI), "/")
	if api == "" {
		return "", fmt.Errorf("site %s: no recipe api endpoint configured", c.baseURL)
	}
	if strings.HasSuffix(api, "/create-recipe-post") {
		api = strings.TrimSuffix(api, "/create-recipe-post") + "/create-recipe"
	}
	return api, nil
}

type recipeRequest struct {
	Title        string             `json:"title"`
	Summary      string             `json:"summary"`
	Ingredients  []types.Ingredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	Servings     string             `json:"servings"`
	PrepTime     int                `json:"prep_time"`
	CookTime     int                `json:"cook_time"`
	ImageID      int                `json:"image_id,omitempty"`
}

type recipeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		RecipeID  int    `json:"recipe_id"`
		Shortcode string `json:"shortcode"`
		EditLink  string `json:"edit_link"`
	} `json:"data"`
	Message string `json:"message"`
}

// CreateRecipe persists a structured recipe through the site's recipe
// plugin endpoint and returns its id and embed shortcode.
func (c *Client) CreateRecipe(ctx context.Context, card *types.RecipeCard, imageID int) (*types.CreatedRecipe, error) {
	endpoint, err := c.recipeEndpoint()
	if err != nil {
		return nil, err
	}

	body := recipeRequest{
		Title:        card.Title,
		Summary:      card.Summary,
		Ingredients:  card.Ingredients,
		Instructions: card.Instructions,
		Servings:     card.Servings,
		PrepTime:     card.PrepTime,
		CookTime:     card.CookTime,
		ImageID:      imageID,
	}

	var resp recipeResponse
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("recipe creation rejected: %s", resp.Message)
	}

	shortcode := resp.Data.Shortcode
	if shortcode == "" && resp.Data.RecipeID > 0 {
		shortcode = fmt.Sprintf("[wprm-recipe id=\"%d\"]", resp.Data.RecipeID)
	}
	return &types.CreatedRecipe{
		ID:        resp.Data.RecipeID,
		Shortcode: shortcode,
		EditLink:  resp.Data.EditLink,
	}, nil
}

// SetRecipeFeaturedImage points an existing recipe at an uploaded media
// item, used once the featured image exists later in the flow.
func (c *Client) SetRecipeFeaturedImage(ctx context.Context, recipeID, mediaID int) error {
	endpoint, err := c.recipeEndpoint()
	if err != nil {
		return err
	}
	base := endpoint[:strings.LastIndex(endpoint, "/")]
	return c.doJSON(ctx, http.MethodPost, base+"/set-recipe-image",
		map[string]int{"recipe_id": recipeID, "image_id": mediaID}, nil)
}
