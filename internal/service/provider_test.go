package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAltProviderID(t *testing.T) {
	assert.Equal(t, ProviderGeneral, AltProviderID(ProviderFast))
	assert.Equal(t, ProviderFast, AltProviderID(ProviderGeneral))
	assert.Empty(t, AltProviderID("something-else"))
}

func geminiTextResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGeminiGenerateReturnsCandidateText(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiTextResponse("hello from gemini")))
	}))
	defer srv.Close()

	client := NewGeminiClient(GeminiOptions{BaseURL: srv.URL, Model: "gemini-2.0-flash", Temperature: 0.7, MaxTokens: 4096})

	text, err := client.Generate(context.Background(), "write copy", "secret-key")

	require.NoError(t, err)
	assert.Equal(t, "hello from gemini", text)
	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "write copy", gotBody.Contents[0].Parts[0].Text)
	assert.Equal(t, 0.7, gotBody.GenerationConfig.Temperature)
	assert.Equal(t, 4096, gotBody.GenerationConfig.MaxOutputTokens)
}

func TestGeminiGenerate429IsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(GeminiOptions{BaseURL: srv.URL, Model: "gemini-2.0-flash"})

	_, err := client.Generate(context.Background(), "p", "k")

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, ProviderGeneral, rlErr.Provider)
}

func TestGeminiGenerateResourceExhaustedStatusIsRateLimited(t *testing.T) {
	// Gemini sometimes reports exhaustion with a non-429 HTTP code; the
	// embedded status string is authoritative.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"out of tokens","status":"resource_exhausted"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(GeminiOptions{BaseURL: srv.URL, Model: "gemini-2.0-flash"})

	_, err := client.Generate(context.Background(), "p", "k")

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
}

func TestGeminiGenerateUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(GeminiOptions{BaseURL: srv.URL, Model: "gemini-2.0-flash"})

	_, err := client.Generate(context.Background(), "p", "bad-key")

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
	assert.Contains(t, upErr.Message, "API key not valid")
}

func TestGeminiGenerateEmptyCandidatesIsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(GeminiOptions{BaseURL: srv.URL, Model: "gemini-2.0-flash"})

	_, err := client.Generate(context.Background(), "p", "k")

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
}

func TestGroqGenerateReturnsChoiceContent(t *testing.T) {
	var gotAuth string
	var gotBody groqRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello from groq"}}]}`))
	}))
	defer srv.Close()

	client := NewGroqClient(GroqOptions{BaseURL: srv.URL, Model: "llama-3.3-70b-versatile", Temperature: 0.7, MaxTokens: 4096})

	text, err := client.Generate(context.Background(), "write copy", "gsk-secret")

	require.NoError(t, err)
	assert.Equal(t, "hello from groq", text)
	assert.Equal(t, "Bearer gsk-secret", gotAuth)
	assert.Equal(t, "llama-3.3-70b-versatile", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)
	assert.Equal(t, "write copy", gotBody.Messages[0].Content)
}

func TestGroqGenerate429CarriesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit reached","type":"tokens"}}`))
	}))
	defer srv.Close()

	client := NewGroqClient(GroqOptions{BaseURL: srv.URL, Model: "llama-3.3-70b-versatile"})

	_, err := client.Generate(context.Background(), "p", "k")

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, ProviderFast, rlErr.Provider)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestGroqGenerate429WithoutRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGroqClient(GroqOptions{BaseURL: srv.URL, Model: "llama-3.3-70b-versatile"})

	_, err := client.Generate(context.Background(), "p", "k")

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Zero(t, rlErr.RetryAfter)
}

func TestGroqGenerateUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"internal error","type":"server_error"}}`))
	}))
	defer srv.Close()

	client := NewGroqClient(GroqOptions{BaseURL: srv.URL, Model: "llama-3.3-70b-versatile"})

	_, err := client.Generate(context.Background(), "p", "k")

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusInternalServerError, upErr.StatusCode)
	assert.Contains(t, upErr.Message, "internal error")
}

func TestGroqGenerateEmptyChoicesIsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewGroqClient(GroqOptions{BaseURL: srv.URL, Model: "llama-3.3-70b-versatile"})

	_, err := client.Generate(context.Background(), "p", "k")

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
}
