package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// CredentialHandler manages stored provider API keys.
type CredentialHandler struct {
	store      service.CredentialStore
	validators map[string]service.KeyValidator
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewCredentialHandler creates a new CredentialHandler.
func NewCredentialHandler(store service.CredentialStore, validators map[string]service.KeyValidator, v *validator.Validate, logger zerolog.Logger) *CredentialHandler {
	return &CredentialHandler{store: store, validators: validators, validate: v, logger: logger}
}

// RegisterRoutes mounts v1 credential routes
func (h *CredentialHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("PUT /ai/credentials/{provider}", authMw(http.HandlerFunc(h.storeKey)))
	mux.Handle("DELETE /ai/credentials/{provider}", authMw(http.HandlerFunc(h.deleteKey)))
}

// storeKey godoc
// @Summary Save a provider API key
// @Description Validates the key against the provider's models endpoint, then stores it for future generations.
// @Tags credentials
// @Accept json
// @Param provider path string true "Provider id (fast or general)"
// @Param request body dto.StoreCredentialRequest true "API key"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "unknown provider or rejected key"
// @Router /ai/credentials/{provider} [put]
func (h *CredentialHandler) storeKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	provider := r.PathValue("provider")
	keyValidator, ok := h.validators[provider]
	if !ok {
		writeError(w, http.StatusBadRequest, dto.ErrorResponse{Error: "unknown provider: " + provider})
		return
	}

	var req dto.StoreCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid JSON payload: " + err.Error()})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed: " + err.Error()})
		return
	}

	if err := keyValidator.ValidateAPIKey(r.Context(), req.APIKey); err != nil {
		writeError(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Provider: provider})
		return
	}

	if err := h.store.Store(r.Context(), userID, provider, req.APIKey); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Str("provider", provider).Msg("failed to store API key")
		writeError(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to store API key"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteKey godoc
// @Summary Delete a stored provider API key
// @Tags credentials
// @Param provider path string true "Provider id (fast or general)"
// @Success 204
// @Router /ai/credentials/{provider} [delete]
func (h *CredentialHandler) deleteKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	provider := r.PathValue("provider")

	if err := h.store.Delete(r.Context(), userID, provider); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Str("provider", provider).Msg("failed to delete API key")
		writeError(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to delete API key"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
