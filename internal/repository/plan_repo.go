package repository

import (
	"context"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanRepository resolves the subscription plan a user is currently on.
// Plan and tier changes are owned by the billing service; this side only
// reads the result.
type PlanRepository interface {
	GetPlanForUser(ctx context.Context, userID string) (*model.SubscriptionPlan, error)
	GetPlanByID(ctx context.Context, planID string) (*model.SubscriptionPlan, error)
}

type planRepo struct {
	pool *pgxpool.Pool
}

// NewPlanRepo creates a new PlanRepository.
func NewPlanRepo(pool *pgxpool.Pool) PlanRepository {
	return &planRepo{pool: pool}
}

// GetPlanForUser returns the plan behind the user's active subscription.
func (r *planRepo) GetPlanForUser(ctx context.Context, userID string) (*model.SubscriptionPlan, error) {
	const q = `
        SELECT p.id, p.name, p.tier, p.price_cents, p.ai_enabled, p.ai_monthly_limit
        FROM subscription_plans p
        JOIN user_subscriptions s ON s.plan_id = p.id
        WHERE s.user_id = $1
          AND s.status IN ('active', 'cancelled') -- Paid users keep access until period end
          AND s.ends_at > NOW()
    `
	var sp model.SubscriptionPlan
	err := r.pool.QueryRow(ctx, q, userID).Scan(
		&sp.ID,
		&sp.Name,
		&sp.Tier,
		&sp.PriceCents,
		&sp.AIEnabled,
		&sp.AIMonthlyLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch plan for user %s: %w", userID, err)
	}
	return &sp, nil
}

// GetPlanByID returns the subscription plan with its limits.
func (r *planRepo) GetPlanByID(ctx context.Context, planID string) (*model.SubscriptionPlan, error) {
	const q = `
        SELECT id, name, tier, price_cents, ai_enabled, ai_monthly_limit
        FROM subscription_plans
        WHERE id = $1
    `
	var sp model.SubscriptionPlan
	err := r.pool.QueryRow(ctx, q, planID).Scan(
		&sp.ID,
		&sp.Name,
		&sp.Tier,
		&sp.PriceCents,
		&sp.AIEnabled,
		&sp.AIMonthlyLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch plan %s: %w", planID, err)
	}
	return &sp, nil
}
