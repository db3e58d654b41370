package llm

import "fmt"

// APICallError indicates a failed call to the LLM backend
type APICallError struct {
	Model string
	Err   error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("LLM call failed (model %s): %v", e.Model, e.Err)
}

func (e *APICallError) Unwrap() error { return e.Err }

// EmptyResponseError indicates the backend returned no usable text
type EmptyResponseError struct {
	Reason string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("empty LLM response: %s", e.Reason)
}
