package service

import (
	"errors"
	"fmt"
	"time"
)

// ErrTierIneligible is returned before any other logic when the user's plan
// does not include AI content generation.
var ErrTierIneligible = errors.New("plan does not include AI content generation")

// ErrUnknownProvider is returned for a provider id outside the registry.
var ErrUnknownProvider = errors.New("unknown provider")

// QuotaExceededError is returned when the monthly allowance is spent. It is
// raised pre-flight, before any upstream call is made.
type QuotaExceededError struct {
	Used    int
	Quota   int
	ResetAt time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly generation quota exceeded (%d of %d used, resets %s)",
		e.Used, e.Quota, e.ResetAt.Format(time.RFC3339))
}

// MissingCredentialError is returned when neither the request nor the
// credential store holds an API key for the requested provider.
type MissingCredentialError struct {
	Provider string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no API key available for provider %q", e.Provider)
}

// RateLimitError is returned when the upstream provider throttles the call.
// AltProvider names the other configured provider so the caller can offer an
// immediate same-session fallback; RetryAfter is zero when the upstream gave
// no hint.
type RateLimitError struct {
	Provider    string
	AltProvider string
	RetryAfter  time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %s rate limited, retry after %s", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("provider %s rate limited", e.Provider)
}

// UpstreamError covers network failures, auth rejections and unexpected
// statuses from a provider. StatusCode is zero for transport-level errors.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s request failed: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s request failed: %s", e.Provider, e.Message)
}

// MalformedOutputError is returned when the model's text yields no parseable
// JSON object. Previews are bounded so logs never carry a full payload.
type MalformedOutputError struct {
	RawPreview     string
	CleanedPreview string
	Cause          error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("model output is not valid JSON: %v", e.Cause)
}

func (e *MalformedOutputError) Unwrap() error { return e.Cause }
