package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Usage reports the token consumption of a single call, used for per-row
// cost accounting.
type Usage struct {
	InputTokens  int32
	OutputTokens int32
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates free text using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, Usage, error)
	// GenerateJSON generates JSON content using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, Usage, error)
	// GenerateGroundedJSON generates JSON with web-search grounding enabled.
	// The response is fence-cleaned but not MIME-constrained, because the
	// backend rejects search tools combined with a JSON response type.
	GenerateGroundedJSON(ctx context.Context, prompt string, tier ModelTier) (string, Usage, error)
	// GenerateJSONWithImage generates JSON from a prompt plus inline image bytes
	GenerateJSONWithImage(ctx context.Context, prompt string, image []byte, mimeType string, tier ModelTier) (string, Usage, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}

// generativeLanguageBase is the REST endpoint used for grounded calls; the
// SDK's Tool type carries no search grounding, so those requests bypass it.
const generativeLanguageBase = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client       *genai.Client
	config       *Config
	apiKey       string
	httpClient   *http.Client
	groundedBase string
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:       client,
		config:       config,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		groundedBase: generativeLanguageBase,
	}, nil
}

// GenerateContent generates free text using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, Usage, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", Usage{}, err
	}

	return c.generate(ctx, model, tier, genai.Text(prompt))
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, Usage, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", Usage{}, err
	}
	model.ResponseMIMEType = "application/json"

	text, usage, err := c.generate(ctx, model, tier, genai.Text(prompt))
	if err != nil {
		return "", usage, err
	}
	return CleanJSONBlock(text), usage, nil
}

// GenerateGroundedJSON generates JSON with Google Search grounding enabled.
// Grounded requests go straight to the REST API because the SDK's Tool type
// exposes only function declarations and code execution.
func (c *GeminiClient) GenerateGroundedJSON(ctx context.Context, prompt string, tier ModelTier) (string, Usage, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", Usage{}, fmt.Errorf("no model configured for tier %s", tier)
	}

	reqBody := groundedRequest{
		Contents: []groundedContent{{Parts: []groundedPart{{Text: prompt}}}},
		Tools:    []groundedTool{{GoogleSearch: &struct{}{}}},
		GenerationConfig: &groundedGenerationConfig{
			Temperature: 0.1,
		},
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to encode grounded request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.groundedBase, modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to build grounded request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", Usage{}, &APICallError{Model: modelName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", Usage{}, &APICallError{Model: modelName, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", Usage{}, &APICallError{Model: modelName,
			Err: fmt.Errorf("grounded call returned status %d: %s", resp.StatusCode, truncate(string(body), 500))}
	}

	var parsed groundedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", Usage{}, &APICallError{Model: modelName, Err: fmt.Errorf("unparseable grounded response: %w", err)}
	}

	usage := Usage{}
	if parsed.UsageMetadata != nil {
		usage = Usage{
			InputTokens:  parsed.UsageMetadata.PromptTokenCount,
			OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
		}
	}

	var text string
	for _, cand := range parsed.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			text += part.Text
		}
		break
	}
	if text == "" {
		return "", usage, &EmptyResponseError{Reason: "no text parts in grounded response"}
	}
	return CleanJSONBlock(text), usage, nil
}

// Wire shapes for the grounded REST call.
type groundedRequest struct {
	Contents         []groundedContent         `json:"contents"`
	Tools            []groundedTool            `json:"tools"`
	GenerationConfig *groundedGenerationConfig `json:"generationConfig,omitempty"`
}

type groundedContent struct {
	Parts []groundedPart `json:"parts"`
}

type groundedPart struct {
	Text string `json:"text"`
}

type groundedTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type groundedGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type groundedResponse struct {
	Candidates []struct {
		Content *groundedContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int32 `json:"promptTokenCount"`
		CandidatesTokenCount int32 `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// GenerateJSONWithImage generates JSON from a prompt plus inline image bytes
func (c *GeminiClient) GenerateJSONWithImage(ctx context.Context, prompt string, image []byte, mimeType string, tier ModelTier) (string, Usage, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", Usage{}, err
	}
	model.ResponseMIMEType = "application/json"

	format := trimImageFormat(mimeType)
	text, usage, err := c.generate(ctx, model, tier,
		genai.ImageData(format, image), genai.Text(prompt))
	if err != nil {
		return "", usage, err
	}
	return CleanJSONBlock(text), usage, nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *GeminiClient) model(tier ModelTier) (*genai.GenerativeModel, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output
	return model, nil
}

func (c *GeminiClient) generate(ctx context.Context, model *genai.GenerativeModel, tier ModelTier, parts ...genai.Part) (string, Usage, error) {
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", Usage{}, &APICallError{Model: c.config.GetModel(tier), Err: err}
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", usageFromResponse(resp), err
	}
	return text, usageFromResponse(resp), nil
}

// extractTextFromResponse extracts text from a Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &EmptyResponseError{Reason: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &EmptyResponseError{Reason: "no content in response"}
	}

	var out string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}

	if out == "" {
		return "", &EmptyResponseError{Reason: "no text parts in response"}
	}
	return out, nil
}

func usageFromResponse(resp *genai.GenerateContentResponse) Usage {
	if resp == nil || resp.UsageMetadata == nil {
		return Usage{}
	}
	return Usage{
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
	}
}

// trimImageFormat converts a MIME type like "image/png" to the bare format
// name genai.ImageData expects.
func trimImageFormat(mimeType string) string {
	const prefix = "image/"
	if len(mimeType) > len(prefix) && mimeType[:len(prefix)] == prefix {
		return mimeType[len(prefix):]
	}
	if mimeType == "" {
		return "jpeg"
	}
	return mimeType
}
