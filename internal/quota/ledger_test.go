package quota

import (
	"testing"
	"time"

	"app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(used int, resetAt time.Time) *model.UserAIAccount {
	return &model.UserAIAccount{
		UserID:                "user-1",
		GenerationsThisPeriod: used,
		PeriodResetAt:         resetAt,
	}
}

func TestRolloverNotDue(t *testing.T) {
	resetAt := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	acct := account(2, resetAt)

	changed := Rollover(acct, resetAt.Add(-time.Hour))

	assert.False(t, changed)
	assert.Equal(t, 2, acct.GenerationsThisPeriod)
	assert.Equal(t, resetAt, acct.PeriodResetAt)
}

func TestRolloverResetsCounter(t *testing.T) {
	resetAt := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	acct := account(3, resetAt)

	changed := Rollover(acct, resetAt.Add(time.Minute))

	assert.True(t, changed)
	assert.Equal(t, 0, acct.GenerationsThisPeriod)
	assert.Equal(t, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), acct.PeriodResetAt)
}

func TestRolloverAnchoredAcrossSkippedMonths(t *testing.T) {
	// The user was inactive for several months. The new reset date must be
	// the old one advanced month by month, never now + 1 month.
	resetAt := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	acct := account(1, resetAt)
	now := time.Date(2025, 5, 20, 13, 30, 0, 0, time.UTC)

	changed := Rollover(acct, now)

	assert.True(t, changed)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), acct.PeriodResetAt)
	assert.Equal(t, 0, acct.GenerationsThisPeriod)
}

func TestRolloverExactBoundary(t *testing.T) {
	resetAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	acct := account(5, resetAt)

	// now == periodResetAt counts as stale.
	changed := Rollover(acct, resetAt)

	assert.True(t, changed)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), acct.PeriodResetAt)
}

func TestAdmissionBoundary(t *testing.T) {
	resetAt := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	for _, limit := range []int{1, 3, 10} {
		acct := account(0, resetAt)
		for i := 0; i < limit; i++ {
			ok, _ := Admit(acct, limit)
			require.True(t, ok, "call %d of %d should be admitted", i+1, limit)
			acct.GenerationsThisPeriod++
		}
		ok, denial := Admit(acct, limit)
		require.False(t, ok, "call %d should be denied", limit+1)
		assert.Equal(t, limit, denial.Used)
		assert.Equal(t, limit, denial.Quota)
		assert.Equal(t, resetAt, denial.ResetAt)
	}
}

func TestAdmitUnlimited(t *testing.T) {
	acct := account(100000, time.Now())

	ok, _ := Admit(acct, Unlimited)

	assert.True(t, ok)
}

func TestUsageFor(t *testing.T) {
	acct := account(2, time.Now())

	u := UsageFor(acct, 3)

	assert.Equal(t, Usage{Used: 2, Quota: 3, Remaining: 1}, u)
}

func TestUsageForOverLimitClampsRemaining(t *testing.T) {
	acct := account(5, time.Now())

	u := UsageFor(acct, 3)

	assert.Equal(t, 0, u.Remaining)
}

func TestUsageForUnlimited(t *testing.T) {
	acct := account(7, time.Now())

	u := UsageFor(acct, Unlimited)

	assert.Equal(t, Unlimited, u.Quota)
	assert.Equal(t, Unlimited, u.Remaining)
}
