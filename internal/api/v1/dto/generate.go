package dto

import (
	"time"

	"app/internal/model"
)

// GenerateContentRequest is the incoming generation call.
type GenerateContentRequest struct {
	Provider    string `json:"provider" validate:"omitempty,oneof=fast general"`
	ProductName string `json:"productName" validate:"required"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	// APIKey overrides the stored credential for this call only.
	APIKey string `json:"apiKey"`
}

// UsageDTO reports quota consumption after a successful generation.
type UsageDTO struct {
	Used      int `json:"used"`
	Quota     int `json:"quota"`
	Remaining int `json:"remaining"`
}

// GenerateContentResponse flattens the generated fields at the top level
// with the usage snapshot alongside.
type GenerateContentResponse struct {
	model.GeneratedContent
	Usage UsageDTO `json:"_usage"`
}

// ErrorResponse is the single error shape for AI endpoints. The boolean
// discriminators and structured fields are the primary signal; Error is
// supplementary text.
type ErrorResponse struct {
	Error             string     `json:"error"`
	QuotaExceeded     bool       `json:"quotaExceeded,omitempty"`
	Quota             *int       `json:"quota,omitempty"`
	Used              *int       `json:"used,omitempty"`
	NextReset         *time.Time `json:"nextReset,omitempty"`
	RateLimitExceeded bool       `json:"rateLimitExceeded,omitempty"`
	Provider          string     `json:"provider,omitempty"`
	RetryAfter        int        `json:"retryAfter,omitempty"`
	MissingKey        bool       `json:"missingKey,omitempty"`
}
