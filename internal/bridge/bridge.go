package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// Client posts pin requests to the delivery bridge's inbound webhooks.
type Client struct {
	httpClient *http.Client
}

func New() *Client {
	return &Client{httpClient: &http.Client{Timeout: 60 * time.Second}}
}

func NewWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// SendPin hands a pin off to the bridge. Delivery failure is fatal to the
// row: the bridge owns everything after this point and there is no way to
// know whether it partially processed the request.
func (c *Client) SendPin(ctx context.Context, webhookURL string, payload *types.PinPayload) error {
	if webhookURL == "" {
		return &DeliveryError{Kind: "pin", Err: fmt.Errorf("no webhook url configured")}
	}
	return c.post(ctx, "pin", webhookURL, payload)
}

// RequestBoardList asks the bridge to enumerate the boards of a site's
// Pinterest account. The reply arrives asynchronously on the callback
// endpoint.
func (c *Client) RequestBoardList(ctx context.Context, webhookURL, siteName string) error {
	if webhookURL == "" {
		return &DeliveryError{Kind: "list_boards", Err: fmt.Errorf("no webhook url configured")}
	}
	return c.post(ctx, "list_boards", webhookURL, map[string]string{
		"action":    "list_boards",
		"site_name": siteName,
	})
}

func (c *Client) post(ctx context.Context, kind, url string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Kind: kind, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return &DeliveryError{Kind: kind, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return &DeliveryError{Kind: kind, Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}
	return nil
}

// DeliveryError is a failed handoff to the bridge.
type DeliveryError struct {
	Kind string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("bridge %s delivery: %v", e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

var bigIntRe = regexp.MustCompile(`":\s*([0-9]{15,})`)

// QuoteLargeNumbers wraps bare integer JSON values of 15 or more digits in
// quotes before parsing. Pinterest pin and board ids exceed the 53-bit
// precision of the bridge's number type, so an unquoted id would already
// have lost digits anywhere but in the raw request body.
func QuoteLargeNumbers(body []byte) []byte {
	return bigIntRe.ReplaceAll(body, []byte(`": "$1"`))
}
