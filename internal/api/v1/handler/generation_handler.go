package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// GenerationHandler exposes the AI content generation endpoints.
type GenerationHandler struct {
	genSvc   service.GenerationService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(genSvc service.GenerationService, v *validator.Validate, logger zerolog.Logger) *GenerationHandler {
	return &GenerationHandler{genSvc: genSvc, validate: v, logger: logger}
}

// RegisterRoutes mounts v1 AI generation routes
func (h *GenerationHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /ai/generate", authMw(http.HandlerFunc(h.generate)))
	mux.Handle("GET /ai/usage", authMw(http.HandlerFunc(h.usage)))
}

// generate godoc
// @Summary Generate marketing content for a product
// @Description Calls the selected AI provider and returns a structured marketing payload. Counts against the monthly generation quota only on success.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body dto.GenerateContentRequest true "Product facts and provider selection"
// @Success 200 {object} dto.GenerateContentResponse
// @Failure 400 {object} dto.ErrorResponse "invalid payload or missing API key"
// @Failure 403 {object} dto.ErrorResponse "plan does not include AI generation"
// @Failure 429 {object} dto.ErrorResponse "quota exhausted or provider rate limited"
// @Failure 502 {object} dto.ErrorResponse "provider failure or unusable output"
// @Router /ai/generate [post]
func (h *GenerationHandler) generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}

	var req dto.GenerateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid JSON payload: " + err.Error()})
		return
	}
	if req.Provider == "" {
		req.Provider = service.ProviderGeneral
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed: " + err.Error()})
		return
	}

	content, usage, err := h.genSvc.GenerateProductContent(r.Context(), userID, service.GenerationRequest{
		Provider: req.Provider,
		Facts: service.ProductFacts{
			Name:        req.ProductName,
			Price:       req.Price,
			Description: req.Description,
			Category:    req.Category,
		},
		APIKey: req.APIKey,
	})
	if err != nil {
		h.writeGenerationError(w, err)
		return
	}

	resp := dto.GenerateContentResponse{
		GeneratedContent: *content,
		Usage: dto.UsageDTO{
			Used:      usage.Used,
			Quota:     usage.Quota,
			Remaining: usage.Remaining,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// usage godoc
// @Summary Get current AI generation usage
// @Tags ai
// @Produce json
// @Success 200 {object} dto.UsageDTO
// @Failure 403 {object} dto.ErrorResponse
// @Router /ai/usage [get]
func (h *GenerationHandler) usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}

	usage, err := h.genSvc.Usage(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to load usage")
		writeError(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load usage"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(dto.UsageDTO{
		Used:      usage.Used,
		Quota:     usage.Quota,
		Remaining: usage.Remaining,
	}); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeGenerationError maps the orchestrator's error taxonomy onto the wire
// contract. Callers branch on the structured fields, not the message text.
func (h *GenerationHandler) writeGenerationError(w http.ResponseWriter, err error) {
	var quotaErr *service.QuotaExceededError
	var missingErr *service.MissingCredentialError
	var rateErr *service.RateLimitError
	var upstreamErr *service.UpstreamError
	var malformedErr *service.MalformedOutputError

	switch {
	case errors.Is(err, service.ErrTierIneligible):
		writeError(w, http.StatusForbidden, dto.ErrorResponse{
			Error: "AI content generation is not included in your plan",
		})
	case errors.As(err, &quotaErr):
		writeError(w, http.StatusTooManyRequests, dto.ErrorResponse{
			Error:         err.Error(),
			QuotaExceeded: true,
			Quota:         &quotaErr.Quota,
			Used:          &quotaErr.Used,
			NextReset:     &quotaErr.ResetAt,
		})
	case errors.As(err, &missingErr):
		writeError(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:      err.Error(),
			MissingKey: true,
			Provider:   missingErr.Provider,
		})
	case errors.As(err, &rateErr):
		writeError(w, http.StatusTooManyRequests, dto.ErrorResponse{
			Error:             err.Error(),
			RateLimitExceeded: true,
			Provider:          rateErr.AltProvider,
			RetryAfter:        int(rateErr.RetryAfter.Seconds()),
		})
	case errors.As(err, &upstreamErr):
		writeError(w, http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	case errors.As(err, &malformedErr):
		writeError(w, http.StatusBadGateway, dto.ErrorResponse{
			Error: "the AI response could not be parsed; please try again",
		})
	case errors.Is(err, service.ErrUnknownProvider):
		writeError(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error().Err(err).Msg("generation failed")
		writeError(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "content generation failed"})
	}
}

func writeError(w http.ResponseWriter, status int, resp dto.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
