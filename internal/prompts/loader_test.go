package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("enrichment.json", "extract-title-keyword")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "target_keyword")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("enrichment.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Brief for {{.Keyword}} on {{.SiteName}}"
	result := Format(template, map[string]string{
		"Keyword":  "beef stew",
		"SiteName": "MyKitchen",
	})
	assert.Equal(t, "Brief for beef stew on MyKitchen", result)
}

func TestFormat_MissingData(t *testing.T) {
	template := "Hello {{.Name}}"
	assert.Equal(t, template, Format(template, map[string]string{}))
}

func TestAllPromptFilesParse(t *testing.T) {
	ClearCache()

	for _, filename := range []string{
		"enrichment.json",
		"generation.json",
		"linking.json",
		"pinterest.json",
		"recipecard.json",
	} {
		keys, err := List(filename)
		require.NoError(t, err, filename)
		assert.NotEmpty(t, keys, filename)
	}
}
