package dto

// StoreCredentialRequest saves a provider API key for the authenticated user.
type StoreCredentialRequest struct {
	APIKey string `json:"apiKey" validate:"required"`
}
