// Package schemas embeds the JSON Schema documents used to validate
// schema-constrained LLM output.
package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json
var files embed.FS

// MustRead returns the content of an embedded schema file, panicking if the
// file does not exist. Schema files ship with the binary, so a miss is a
// build defect.
func MustRead(name string) string {
	data, err := files.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("embedded schema %s missing: %v", name, err))
	}
	return string(data)
}

// Names of the embedded schema documents.
const (
	ContentBrief = "content_brief.schema.json"
	RecipeCard   = "recipe_card.schema.json"
)
