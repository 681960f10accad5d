package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiClient is the "general" provider: the Gemini generateContent REST
// API with the API key passed as a query parameter.
type geminiClient struct {
	client      *http.Client
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

// GeminiOptions configures the Gemini provider adapter.
type GeminiOptions struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewGeminiClient creates the "general" provider adapter.
func NewGeminiClient(opts GeminiOptions) Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = geminiDefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &geminiClient{
		client:      &http.Client{Timeout: opts.Timeout},
		baseURL:     opts.BaseURL,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}
}

func (c *geminiClient) ID() string { return ProviderGeneral }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends the prompt to Gemini and returns the raw text completion.
func (c *geminiClient) Generate(ctx context.Context, prompt, apiKey string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	}

	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", &UpstreamError{Provider: c.ID(), Message: fmt.Sprintf("marshal request: %v", err)}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", &UpstreamError{Provider: c.ID(), Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &UpstreamError{Provider: c.ID(), Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Provider: c.ID(), Message: fmt.Sprintf("read response: %v", err)}
	}

	var parsed geminiResponse
	// Decode errors are checked below together with the status code; a
	// throttled response may carry the RESOURCE_EXHAUSTED status even on
	// a non-429 code.
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode == http.StatusTooManyRequests ||
		strings.EqualFold(parsed.Error.Status, "RESOURCE_EXHAUSTED") {
		return "", &RateLimitError{Provider: c.ID()}
	}

	if resp.StatusCode != http.StatusOK {
		msg := parsed.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &UpstreamError{Provider: c.ID(), StatusCode: resp.StatusCode, Message: msg}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &UpstreamError{Provider: c.ID(), StatusCode: resp.StatusCode, Message: "response contains no candidates"}
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
