package linking

import "fmt"

// SitemapError wraps a failure to download or parse a sitemap.
type SitemapError struct {
	URL string
	Err error
}

func (e *SitemapError) Error() string {
	return fmt.Sprintf("sitemap %s: %v", e.URL, e.Err)
}

func (e *SitemapError) Unwrap() error {
	return e.Err
}

// LinkError wraps a failure during link selection or insertion.
type LinkError struct {
	Step    string
	Message string
	Err     error
}

func (e *LinkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("linking %s: %s: %v", e.Step, e.Message, e.Err)
	}
	return fmt.Sprintf("linking %s: %s", e.Step, e.Message)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}
