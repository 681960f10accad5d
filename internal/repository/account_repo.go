package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrQuotaExceeded is returned when the conditional usage commit matched no
// row, meaning the period allowance was already spent.
var ErrQuotaExceeded = errors.New("generation_quota_exceeded")

// AIAccountRepository persists per-user AI usage counters.
type AIAccountRepository interface {
	// GetOrCreate loads the user's AI account, creating one with a fresh
	// monthly period if none exists.
	GetOrCreate(ctx context.Context, userID string) (*model.UserAIAccount, error)
	// SaveRollover persists a period rollover computed in memory. The update
	// is guarded on the previous reset date; if a concurrent request already
	// rolled the period, no row matches and the caller should re-read.
	SaveRollover(ctx context.Context, userID string, oldResetAt time.Time, acct *model.UserAIAccount) (bool, error)
	// CommitGeneration records one successful generation as a single
	// conditional increment: the period counter only advances where it is
	// still below the limit, so two racing commits can never both land past
	// it. Returns ErrQuotaExceeded when no row matched. A negative limit
	// disables the check.
	CommitGeneration(ctx context.Context, userID string, limit int) (*model.UserAIAccount, error)
}

type aiAccountRepo struct {
	pool *pgxpool.Pool
}

// NewAIAccountRepo creates a new AIAccountRepository.
func NewAIAccountRepo(pool *pgxpool.Pool) AIAccountRepository {
	return &aiAccountRepo{pool: pool}
}

const accountColumns = `user_id, generations_this_period, generations_total, period_reset_at, last_generation_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*model.UserAIAccount, error) {
	var acct model.UserAIAccount
	err := row.Scan(
		&acct.UserID,
		&acct.GenerationsThisPeriod,
		&acct.GenerationsTotal,
		&acct.PeriodResetAt,
		&acct.LastGenerationAt,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// GetOrCreate loads the user's AI account, creating one if none exists.
func (r *aiAccountRepo) GetOrCreate(ctx context.Context, userID string) (*model.UserAIAccount, error) {
	const insertQ = `
		INSERT INTO user_ai_accounts (user_id, generations_this_period, generations_total, period_reset_at, created_at, updated_at)
		VALUES ($1, 0, 0, NOW() + INTERVAL '1 month', NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, insertQ, userID); err != nil {
		return nil, fmt.Errorf("creating AI account for user %s: %w", userID, err)
	}
	selectQ := `SELECT ` + accountColumns + ` FROM user_ai_accounts WHERE user_id = $1`
	acct, err := scanAccount(r.pool.QueryRow(ctx, selectQ, userID))
	if err != nil {
		return nil, fmt.Errorf("fetching AI account for user %s: %w", userID, err)
	}
	return acct, nil
}

// SaveRollover persists an in-memory rollover, guarded on the old reset date.
func (r *aiAccountRepo) SaveRollover(ctx context.Context, userID string, oldResetAt time.Time, acct *model.UserAIAccount) (bool, error) {
	const q = `
		UPDATE user_ai_accounts
		SET generations_this_period = 0,
		    period_reset_at = $3,
		    updated_at = NOW()
		WHERE user_id = $1
		  AND period_reset_at = $2
	`
	tag, err := r.pool.Exec(ctx, q, userID, oldResetAt, acct.PeriodResetAt)
	if err != nil {
		return false, fmt.Errorf("saving rollover for user %s: %w", userID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// CommitGeneration atomically charges one generation against the period limit.
func (r *aiAccountRepo) CommitGeneration(ctx context.Context, userID string, limit int) (*model.UserAIAccount, error) {
	q := `
		UPDATE user_ai_accounts
		SET generations_this_period = generations_this_period + 1,
		    generations_total = generations_total + 1,
		    last_generation_at = NOW(),
		    updated_at = NOW()
		WHERE user_id = $1
		  AND ($2::int < 0 OR generations_this_period < $2)
		RETURNING ` + accountColumns
	acct, err := scanAccount(r.pool.QueryRow(ctx, q, userID, limit))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuotaExceeded
	}
	if err != nil {
		return nil, fmt.Errorf("committing generation for user %s: %w", userID, err)
	}
	return acct, nil
}
