package service

import "context"

// Provider ids as they appear on the wire. "fast" is the Groq
// chat-completions backend, "general" the Gemini backend.
const (
	ProviderFast    = "fast"
	ProviderGeneral = "general"
)

// Provider abstracts one upstream LLM backend behind a single synchronous
// completion call. Implementations normalize their upstream's error
// semantics into *RateLimitError / *UpstreamError and return the raw text
// completion untouched; payload parsing belongs to the sanitizer.
type Provider interface {
	ID() string
	Generate(ctx context.Context, prompt, apiKey string) (string, error)
}

// AltProviderID returns the other configured provider, used to suggest a
// same-session fallback when one backend throttles.
func AltProviderID(id string) string {
	switch id {
	case ProviderFast:
		return ProviderGeneral
	case ProviderGeneral:
		return ProviderFast
	}
	return ""
}
