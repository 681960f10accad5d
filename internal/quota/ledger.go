// Package quota holds the pure ledger math for the monthly AI generation
// allowance. The functions here never touch storage; the repository layer
// applies the same rules atomically when committing usage.
package quota

import (
	"time"

	"app/internal/model"
)

// Unlimited is the limit value that disables quota enforcement.
const Unlimited = -1

// Usage is the snapshot returned to callers after an admitted request.
type Usage struct {
	Used      int `json:"used"`
	Quota     int `json:"quota"`
	Remaining int `json:"remaining"`
}

// Denial explains a refused admission so the caller can tell the user
// exactly when generation becomes available again.
type Denial struct {
	Used    int
	Quota   int
	ResetAt time.Time
}

// Rollover advances a stale period. The new reset date is anchored to the
// previous one: each step adds exactly one calendar month to the old
// PeriodResetAt, repeated until it lands in the future. Anchoring to the
// old date rather than `now` keeps the window boundaries fixed across
// months of inactivity. Returns true if the account was modified.
func Rollover(acct *model.UserAIAccount, now time.Time) bool {
	if now.Before(acct.PeriodResetAt) {
		return false
	}
	for !now.Before(acct.PeriodResetAt) {
		acct.PeriodResetAt = acct.PeriodResetAt.AddDate(0, 1, 0)
	}
	acct.GenerationsThisPeriod = 0
	return true
}

// Admit reports whether the account may start another generation under the
// given monthly limit. Rollover must have been applied first.
func Admit(acct *model.UserAIAccount, limit int) (bool, Denial) {
	if limit == Unlimited || acct.GenerationsThisPeriod < limit {
		return true, Denial{}
	}
	return false, Denial{
		Used:    acct.GenerationsThisPeriod,
		Quota:   limit,
		ResetAt: acct.PeriodResetAt,
	}
}

// UsageFor builds the usage snapshot for an account under the given limit.
func UsageFor(acct *model.UserAIAccount, limit int) Usage {
	u := Usage{Used: acct.GenerationsThisPeriod, Quota: limit}
	if limit == Unlimited {
		u.Remaining = Unlimited
		return u
	}
	u.Remaining = limit - acct.GenerationsThisPeriod
	if u.Remaining < 0 {
		u.Remaining = 0
	}
	return u
}
