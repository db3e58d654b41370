package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemafiles "github.com/diriredouane/AI-Recipe-Automator/schemas"
)

func TestValidateJSONString_Valid(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`
	err := ValidateJSONString(schema, `{"name": "beef stew"}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`
	err := ValidateJSONString(schema, `{"name": 42}`)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.NotEmpty(t, validationErr.Errors)
	assert.Equal(t, "name", validationErr.Errors[0].Field)
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 123}`, `{}`)
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestContentBriefSchema(t *testing.T) {
	schema := schemafiles.MustRead(schemafiles.ContentBrief)

	valid := `{
		"internal_reasoning": "checked top results",
		"target_keyword": "beef stew",
		"seo_title": "Best Beef Stew",
		"meta_description": "A hearty beef stew recipe with tender chuck and root vegetables, ready in under two hours and perfect for a cozy family dinner any night.",
		"lsi_keywords": ["slow cooker beef stew"],
		"outline_markdown": "## Why This Works",
		"recipe_data": {
			"title": "Beef Stew",
			"summary": "Hearty and rich.",
			"ingredients": [
				{"amount": "2", "unit": "lb", "name": "beef chuck", "notes": ""},
				{"amount": "3", "unit": "", "name": "carrots", "notes": "peeled"},
				{"amount": "1", "unit": "", "name": "onion", "notes": ""}
			],
			"instructions": ["Brown the beef.", "Add vegetables.", "Simmer until tender."],
			"servings": "6",
			"prep_time": 20,
			"cook_time": 90
		}
	}`
	assert.NoError(t, ValidateJSONString(schema, valid))

	// Fewer than 3 ingredients must fail
	tooFew := `{
		"target_keyword": "x", "seo_title": "x", "meta_description": "x",
		"outline_markdown": "x",
		"recipe_data": {
			"title": "x",
			"ingredients": [{"name": "beef"}],
			"instructions": ["a", "b", "c"]
		}
	}`
	assert.Error(t, ValidateJSONString(schema, tooFew))
}

func TestRecipeCardSchema(t *testing.T) {
	schema := schemafiles.MustRead(schemafiles.RecipeCard)

	valid := `{
		"title": "Beef Stew",
		"ingredients": [{"name": "beef"}],
		"instructions": ["Cook it."]
	}`
	assert.NoError(t, ValidateJSONString(schema, valid))

	assert.Error(t, ValidateJSONString(schema, `{"title": "x"}`))
}
