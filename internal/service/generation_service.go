package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/model"
	"app/internal/pubsub"
	"app/internal/quota"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// GenerationRequest carries one generation call. It lives for the duration
// of the call only and is never persisted.
type GenerationRequest struct {
	Provider string
	Facts    ProductFacts
	// APIKey, when set, is used for this call only and never stored.
	APIKey string
}

// GenerationService orchestrates AI content generation: tier gate, quota
// admission, provider call, sanitization and the usage commit. The ledger
// is only charged after a fully successful generation.
type GenerationService interface {
	GenerateProductContent(ctx context.Context, userID string, req GenerationRequest) (*model.GeneratedContent, *quota.Usage, error)
	Usage(ctx context.Context, userID string) (*quota.Usage, error)
}

type generationService struct {
	planRepo    repository.PlanRepository
	accountRepo repository.AIAccountRepository
	credentials CredentialStore
	providers   map[string]Provider
	publisher   pubsub.Publisher
	eventTopic  string
	now         func() time.Time
	logger      zerolog.Logger
}

// NewGenerationService creates a GenerationService with a scoped logger.
// publisher may be nil; the content-generated event is then skipped.
func NewGenerationService(
	planRepo repository.PlanRepository,
	accountRepo repository.AIAccountRepository,
	credentials CredentialStore,
	providers []Provider,
	publisher pubsub.Publisher,
	eventTopic string,
	logger zerolog.Logger,
) GenerationService {
	byID := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byID[p.ID()] = p
	}
	return &generationService{
		planRepo:    planRepo,
		accountRepo: accountRepo,
		credentials: credentials,
		providers:   byID,
		publisher:   publisher,
		eventTopic:  eventTopic,
		now:         time.Now,
		logger:      logger.With().Str("service", "GenerationService").Logger(),
	}
}

// GenerateProductContent runs one generation end to end. Every failure path
// before the final commit leaves the usage counters untouched: the user is
// not charged for output they did not receive.
func (s *generationService) GenerateProductContent(ctx context.Context, userID string, req GenerationRequest) (*model.GeneratedContent, *quota.Usage, error) {
	// 1. Tier gate, before anything else.
	plan, err := s.planRepo.GetPlanForUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to resolve plan")
		return nil, nil, fmt.Errorf("resolving plan: %w", err)
	}
	if !plan.AIEnabled {
		return nil, nil, ErrTierIneligible
	}

	// 2. Quota admission. Denial costs nothing: no upstream call is made.
	acct, err := s.loadAccount(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if ok, denial := quota.Admit(acct, plan.AIMonthlyLimit); !ok {
		return nil, nil, &QuotaExceededError{Used: denial.Used, Quota: denial.Quota, ResetAt: denial.ResetAt}
	}

	// 3. Resolve credential: explicit request key wins, else the stored one.
	provider, ok := s.providers[req.Provider]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownProvider, req.Provider)
	}
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey, err = s.credentials.Get(ctx, userID, req.Provider)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Str("provider", req.Provider).Msg("Credential lookup failed")
		}
	}
	if apiKey == "" {
		return nil, nil, &MissingCredentialError{Provider: req.Provider}
	}

	// 4. Build prompt and call the provider. Adapter errors pass through
	// untouched except for the fallback hint on throttling.
	prompt := BuildPrompt(req.Facts)
	rawText, err := provider.Generate(ctx, prompt, apiKey)
	if err != nil {
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			rlErr.AltProvider = AltProviderID(req.Provider)
		}
		s.logger.Warn().Err(err).
			Str("user_id", userID).
			Str("provider", req.Provider).
			Str("key_prefix", keyPrefix(apiKey)).
			Msg("Provider call failed")
		return nil, nil, err
	}

	// 5. Sanitize. A parse failure is not charged either.
	content, err := SanitizeContent(rawText)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Str("provider", req.Provider).Msg("Model output unusable")
		return nil, nil, err
	}

	// 6. Charge the ledger. The conditional update is the race arbiter: a
	// concurrent request that spent the last slot turns this into a denial.
	updated, err := s.accountRepo.CommitGeneration(ctx, userID, plan.AIMonthlyLimit)
	if errors.Is(err, repository.ErrQuotaExceeded) {
		return nil, nil, &QuotaExceededError{
			Used:    acct.GenerationsThisPeriod,
			Quota:   plan.AIMonthlyLimit,
			ResetAt: acct.PeriodResetAt,
		}
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to commit generation usage")
		return nil, nil, fmt.Errorf("committing usage: %w", err)
	}

	usage := quota.UsageFor(updated, plan.AIMonthlyLimit)
	s.publishGenerated(ctx, userID, req, usage)
	return content, &usage, nil
}

// Usage returns the current usage snapshot with rollover applied.
func (s *generationService) Usage(ctx context.Context, userID string) (*quota.Usage, error) {
	plan, err := s.planRepo.GetPlanForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving plan: %w", err)
	}
	acct, err := s.loadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	usage := quota.UsageFor(acct, plan.AIMonthlyLimit)
	return &usage, nil
}

// loadAccount fetches the account and applies a pending rollover. The
// rollover write is guarded on the old reset date; losing that race just
// means another request already rolled the period, so re-read and continue.
func (s *generationService) loadAccount(ctx context.Context, userID string) (*model.UserAIAccount, error) {
	acct, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load AI account")
		return nil, fmt.Errorf("loading AI account: %w", err)
	}
	oldResetAt := acct.PeriodResetAt
	if !quota.Rollover(acct, s.now()) {
		return acct, nil
	}
	saved, err := s.accountRepo.SaveRollover(ctx, userID, oldResetAt, acct)
	if err != nil {
		return nil, fmt.Errorf("saving rollover: %w", err)
	}
	if !saved {
		acct, err = s.accountRepo.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("reloading AI account: %w", err)
		}
	}
	return acct, nil
}

// contentGeneratedEvent is handed to the storefront persistence service.
type contentGeneratedEvent struct {
	UserID      string      `json:"user_id"`
	Provider    string      `json:"provider"`
	ProductName string      `json:"product_name"`
	Usage       quota.Usage `json:"usage"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// publishGenerated emits the content-generated event. Best effort: the
// generation already succeeded and is never failed retroactively.
func (s *generationService) publishGenerated(ctx context.Context, userID string, req GenerationRequest, usage quota.Usage) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(contentGeneratedEvent{
		UserID:      userID,
		Provider:    req.Provider,
		ProductName: req.Facts.Name,
		Usage:       usage,
		GeneratedAt: s.now(),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal content-generated event")
		return
	}
	if _, err := s.publisher.Publish(ctx, s.eventTopic, payload); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to publish content-generated event")
	}
}

// keyPrefix truncates a credential for logging. The full secret never
// appears in logs.
func keyPrefix(key string) string {
	if len(key) <= 6 {
		return "******"
	}
	return key[:6] + "..."
}
