package slides

import "fmt"

// ErrNoExportFolder is returned when an account has no Drive folder
// configured to receive exported images.
type ErrNoExportFolder struct {
	SiteName string
}

func (e *ErrNoExportFolder) Error() string {
	return fmt.Sprintf("site %q: no destination folder configured", e.SiteName)
}

// RenderError wraps a failure at one stage of the slide export pipeline.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("slide render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// ErrNoTemplate is returned when the account has no template id for the
// requested render.
type ErrNoTemplate struct {
	Kind string
}

func (e *ErrNoTemplate) Error() string {
	return fmt.Sprintf("no %s template configured", e.Kind)
}
