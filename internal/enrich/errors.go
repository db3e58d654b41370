package enrich

import "fmt"

// ParseError indicates the model returned JSON that does not match the
// expected shape.
type ParseError struct {
	Step string
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Step, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
