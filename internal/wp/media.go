package wp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Media is an uploaded media library item.
type Media struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

// UploadMedia streams an image into the media library and sets its alt
// text. The filename drives the attachment slug.
func (c *Client) UploadMedia(ctx context.Context, filename, altText string, data io.Reader) (*Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/media"), data)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.user, c.appPassword)
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: c.endpoint("/media"), Body: truncateBody(raw)}
	}

	var media Media
	if err := json.Unmarshal(raw, &media); err != nil {
		return nil, fmt.Errorf("decoding media response: %w", err)
	}

	if altText != "" {
		_ = c.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/%d", c.endpoint("/media"), media.ID),
			map[string]string{"alt_text": altText}, nil)
	}
	return &media, nil
}
