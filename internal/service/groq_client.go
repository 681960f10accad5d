package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const groqDefaultBaseURL = "https://api.groq.com/openai/v1"

// groqClient is the "fast" provider: an OpenAI-compatible chat-completions
// API with bearer-token auth.
type groqClient struct {
	client      *http.Client
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

// GroqOptions configures the Groq provider adapter.
type GroqOptions struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewGroqClient creates the "fast" provider adapter.
func NewGroqClient(opts GroqOptions) Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = groqDefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &groqClient{
		client:      &http.Client{Timeout: opts.Timeout},
		baseURL:     opts.BaseURL,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}
}

func (c *groqClient) ID() string { return ProviderFast }

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends the prompt to Groq and returns the raw text completion.
func (c *groqClient) Generate(ctx context.Context, prompt, apiKey string) (string, error) {
	reqBody := groqRequest{
		Model:       c.model,
		Messages:    []groqMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", &UpstreamError{Provider: c.ID(), Message: fmt.Sprintf("marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyJSON))
	if err != nil {
		return "", &UpstreamError{Provider: c.ID(), Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
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

	if resp.StatusCode == http.StatusTooManyRequests {
		rlErr := &RateLimitError{Provider: c.ID()}
		if secs, err := strconv.Atoi(resp.Header.Get("retry-after")); err == nil && secs > 0 {
			rlErr.RetryAfter = time.Duration(secs) * time.Second
		}
		return "", rlErr
	}

	var parsed groqResponse
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", &UpstreamError{Provider: c.ID(), StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &UpstreamError{Provider: c.ID(), StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &UpstreamError{Provider: c.ID(), StatusCode: resp.StatusCode, Message: "response contains no choices"}
	}

	return parsed.Choices[0].Message.Content, nil
}
