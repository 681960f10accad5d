package model

import "time"

// UserAIAccount tracks a user's AI generation usage within the current
// monthly period. GenerationsThisPeriod is only ever incremented by a
// generation that completed end to end; failed upstream calls and
// unparseable responses never charge the user.
type UserAIAccount struct {
	UserID                string     `db:"user_id" json:"user_id"`
	GenerationsThisPeriod int        `db:"generations_this_period" json:"generations_this_period"`
	GenerationsTotal      int64      `db:"generations_total" json:"generations_total"`
	PeriodResetAt         time.Time  `db:"period_reset_at" json:"period_reset_at"`
	LastGenerationAt      *time.Time `db:"last_generation_at" json:"last_generation_at,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}
