package wp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

const defaultTimeout = 90 * time.Second

// Client talks to one WordPress site's REST API with application-password
// basic auth.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	user        string
	appPassword string
	authorID    int
	recipeAPI   string
}

func NewClient(account *types.AccountConfig) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     strings.TrimSuffix(account.WPBaseURL, "/"),
		user:        account.WPUser,
		appPassword: account.WPAppPassword,
		authorID:    account.WPAuthorID,
		recipeAPI:   account.WPRecipeAPI,
	}
}

// BaseURL returns the site root, without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/wp-json/wp/v2" + path
}

// doJSON runs an authenticated request with a JSON body and decodes the
// JSON response into out (when out is non-nil).
func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.user, c.appPassword)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: url, Body: truncateBody(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", url, err)
	}
	return nil
}

func truncateBody(raw []byte) string {
	const max = 500
	s := string(raw)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
