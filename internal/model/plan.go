package model

// Subscription tiers. AI content generation is gated on the plan's
// AIEnabled flag, which paid tiers carry and trial does not.
const (
	TierTrial    = "trial"
	TierStandard = "standard"
	TierPremium  = "premium"
)

// SubscriptionPlan describes a plan and the limits it grants.
type SubscriptionPlan struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Tier       string `db:"tier" json:"tier"`
	PriceCents int    `db:"price_cents" json:"price_cents"`
	// AIEnabled gates the generation feature entirely.
	AIEnabled bool `db:"ai_enabled" json:"ai_enabled"`
	// AIMonthlyLimit is the number of generations per billing month.
	// A negative value means unlimited.
	AIMonthlyLimit int `db:"ai_monthly_limit" json:"ai_monthly_limit"`
}
