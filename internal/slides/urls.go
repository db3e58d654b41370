package slides

import (
	"net/url"
	"regexp"
	"strings"
)

var driveFileIDRe = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)

// DriveDownloadURL converts a Drive web-view URL into a direct-download
// form. URLs that are not Drive view links pass through unchanged.
func DriveDownloadURL(rawURL string) string {
	if m := driveFileIDRe.FindStringSubmatch(rawURL); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1]
	}
	if strings.Contains(rawURL, "drive.google.com") {
		if u, err := url.Parse(rawURL); err == nil {
			if id := u.Query().Get("id"); id != "" {
				return "https://drive.google.com/uc?export=download&id=" + id
			}
		}
	}
	return rawURL
}
