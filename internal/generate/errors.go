// Package generate produces the SEO brief, article copy, Pinterest text,
// category choice and extracted recipe cards via schema-constrained LLM
// calls.
package generate

import "fmt"

// GenerationError indicates the model output for a step was missing or
// unusable. Fatal for the current row; the message is surfaced verbatim.
type GenerationError struct {
	Step    string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Step, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Step, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }
