package types

// Ingredient is one structured recipe ingredient.
type Ingredient struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
	Name   string `json:"name" validate:"required"`
	Notes  string `json:"notes"`
}

// RecipeCard is the structured recipe payload persisted as a first-class
// CMS entity, distinct from the article post.
type RecipeCard struct {
	Title        string       `json:"title" validate:"required"`
	Summary      string       `json:"summary"`
	Ingredients  []Ingredient `json:"ingredients" validate:"min=3,dive"`
	Instructions []string     `json:"instructions" validate:"min=3"`
	Servings     string       `json:"servings"`
	PrepTime     int          `json:"prep_time"`
	CookTime     int          `json:"cook_time"`
}

// ContentBrief is the structured SEO brief produced by the outline stage.
// All free-text fields must be scrubbed of model meta-commentary before use.
type ContentBrief struct {
	TargetKeyword   string     `json:"target_keyword" validate:"required"`
	SEOTitle        string     `json:"seo_title" validate:"required"`
	MetaDescription string     `json:"meta_description" validate:"required"`
	LSIKeywords     []string   `json:"lsi_keywords"`
	OutlineMarkdown string     `json:"outline_markdown" validate:"required"`
	Recipe          RecipeCard `json:"recipe_data" validate:"required"`
}

// CreatedRecipe is the CMS response after persisting a RecipeCard.
type CreatedRecipe struct {
	ID        int    `json:"id"`
	Shortcode string `json:"shortcode"`
	EditLink  string `json:"edit_link"`
}
