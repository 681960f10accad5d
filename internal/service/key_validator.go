package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const validationTimeout = 10 * time.Second

// KeyValidator checks a provider API key by making a cheap test call before
// the key is stored. Generation itself never pre-validates; a bad stored
// key surfaces as an UpstreamError on the real call.
type KeyValidator interface {
	ValidateAPIKey(ctx context.Context, apiKey string) error
}

type geminiKeyValidator struct {
	client  *http.Client
	baseURL string
}

// NewGeminiKeyValidator validates keys for the "general" provider against
// the Gemini models endpoint, key passed as a query parameter.
func NewGeminiKeyValidator(baseURL string) KeyValidator {
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	return &geminiKeyValidator{
		client:  &http.Client{Timeout: validationTimeout},
		baseURL: baseURL,
	}
}

func (v *geminiKeyValidator) ValidateAPIKey(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	url := fmt.Sprintf("%s/models?key=%s", v.baseURL, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to validate API key: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read validation response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("invalid API key: %s", validationErrorMessage(body, "unauthorized"))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API key validation failed: %s", validationErrorMessage(body, fmt.Sprintf("HTTP %d", resp.StatusCode)))
	}

	return nil
}

type groqKeyValidator struct {
	client  *http.Client
	baseURL string
}

// NewGroqKeyValidator validates keys for the "fast" provider against the
// OpenAI-compatible models endpoint with bearer auth.
func NewGroqKeyValidator(baseURL string) KeyValidator {
	if baseURL == "" {
		baseURL = groqDefaultBaseURL
	}
	return &groqKeyValidator{
		client:  &http.Client{Timeout: validationTimeout},
		baseURL: baseURL,
	}
}

func (v *groqKeyValidator) ValidateAPIKey(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create validation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to validate API key: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read validation response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("invalid API key: %s", validationErrorMessage(body, "unauthorized"))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API key validation failed: %s", validationErrorMessage(body, fmt.Sprintf("HTTP %d", resp.StatusCode)))
	}

	return nil
}

// validationErrorMessage extracts the upstream error message, falling back
// when the body is not the expected envelope.
func validationErrorMessage(body []byte, fallback string) string {
	var errorResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
		return errorResp.Error.Message
	}
	return fallback
}
