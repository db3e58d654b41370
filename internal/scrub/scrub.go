// Package scrub removes model meta-commentary from generated text and
// applies the ingredient substitution rule. Scrubbing is a correctness
// requirement: raw model output is known to leak reasoning into
// user-facing fields.
package scrub

import (
	"regexp"
	"strings"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// leakagePatterns match known reasoning-leak markers. Tail patterns cut from
// the marker to the end of the field, because leaked reasoning always
// trails the real content.
var leakagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\([^)]*substituted[^)]*\)`),
	regexp.MustCompile(`(?i)\(better than pork( chops)?!?\)`),
	regexp.MustCompile(`(?is)\(self-correction:[^)]*\)`),
	regexp.MustCompile(`(?is)--\s*\*?self-correction.*`),
	regexp.MustCompile(`(?is)\bnote:.*`),
	regexp.MustCompile(`(?is)\*?\bwait\b[,.:].*`),
	regexp.MustCompile(`(?is)\*?\bactually\b[,.:].*`),
	regexp.MustCompile(`(?is)\*?\bi will now\b.*`),
	regexp.MustCompile(`(?is)\*?\blet's see\b.*`),
	regexp.MustCompile(`(?is)\*?\bokay\b[,.:].*`),
	regexp.MustCompile(`(?i)\(reasoning removed[^)]*\)`),
	regexp.MustCompile(`(?i)final clean data only[.!]?`),
}

var multiSpace = regexp.MustCompile(`[ \t]{2,}`)

// CleanText strips leakage markers from a single field and applies the
// substitution rule. The leakage patterns run first: some of them match on
// the original ingredient names.
func CleanText(s string) string {
	for _, re := range leakagePatterns {
		s = re.ReplaceAllString(s, "")
	}
	s = SubstituteMeat(s)
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

const (
	maxNameLen  = 100
	maxNotesLen = 150
)

// TruncateName caps an ingredient name at 100 characters, preferring the
// first sentence boundary.
func TruncateName(s string) string {
	if len(s) <= maxNameLen {
		return s
	}
	if idx := strings.IndexAny(s, ",."); idx > 0 && idx < maxNameLen {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s[:maxNameLen])
}

// TruncateNotes caps ingredient notes at 150 characters with an ellipsis.
func TruncateNotes(s string) string {
	if len(s) <= maxNotesLen {
		return s
	}
	return strings.TrimSpace(s[:maxNotesLen]) + "..."
}

var (
	porkRe = regexp.MustCompile(`(?i)pork`)
	porcRe = regexp.MustCompile(`(?i)porc`)
)

// SubstituteMeat applies the ingredient substitution rule to free text,
// case-insensitively. The rule is idempotent.
func SubstituteMeat(s string) string {
	s = porkRe.ReplaceAllString(s, "Beef")
	s = porcRe.ReplaceAllString(s, "Bœuf")
	return s
}

// CleanBrief scrubs every user-facing string field of a content brief in
// place, including the embedded recipe card.
func CleanBrief(b *types.ContentBrief) {
	if b == nil {
		return
	}
	b.TargetKeyword = CleanText(b.TargetKeyword)
	b.SEOTitle = CleanText(b.SEOTitle)
	b.MetaDescription = CleanText(b.MetaDescription)
	b.OutlineMarkdown = CleanText(b.OutlineMarkdown)
	for i := range b.LSIKeywords {
		b.LSIKeywords[i] = CleanText(b.LSIKeywords[i])
	}
	CleanRecipe(&b.Recipe)
}

// CleanRecipe scrubs a recipe card in place and applies field length caps.
func CleanRecipe(r *types.RecipeCard) {
	if r == nil {
		return
	}
	r.Title = CleanText(r.Title)
	r.Summary = CleanText(r.Summary)
	r.Servings = CleanText(r.Servings)
	for i := range r.Ingredients {
		ing := &r.Ingredients[i]
		ing.Amount = CleanText(ing.Amount)
		ing.Unit = CleanText(ing.Unit)
		ing.Name = TruncateName(CleanText(ing.Name))
		ing.Notes = TruncateNotes(CleanText(ing.Notes))
	}
	for i := range r.Instructions {
		r.Instructions[i] = CleanText(r.Instructions[i])
	}
}
