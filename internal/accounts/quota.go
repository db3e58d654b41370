package accounts

import (
	"context"
	"fmt"
	"time"
)

// quotaDateLayout is the layout of the last-reset-date cell.
const quotaDateLayout = "2006-01-02"

// Ledger is the quota abstraction for the scheduler: every counter change
// goes through one read-check-write path so the single-writer assumption is
// an enforced invariant rather than an implicit one.
type Ledger struct {
	resolver *Resolver
}

// NewLedger creates a quota ledger over a resolver.
func NewLedger(resolver *Resolver) *Ledger {
	return &Ledger{resolver: resolver}
}

// ResetIfStale performs the lazy daily reset: when the stored
// last-reset-date differs from today, the counter returns to 0 and today's
// date is stamped. Returns whether a reset was persisted.
func (l *Ledger) ResetIfStale(ctx context.Context, siteName string, now time.Time) (bool, error) {
	acct, err := l.resolver.Resolve(ctx, siteName)
	if err != nil {
		return false, err
	}

	today := now.Format(quotaDateLayout)
	if acct.LastResetDate == today {
		return false, nil
	}

	acct.DailyCounter = 0
	acct.LastResetDate = today
	if err := l.resolver.store.UpdateAccountQuota(ctx, acct); err != nil {
		return false, fmt.Errorf("failed to reset daily counter for %q: %w", siteName, err)
	}
	return true, nil
}

// Increment records one published post against the account's daily quota.
// The counter is re-read before writing so a stale caller cannot undo a
// concurrent reset.
func (l *Ledger) Increment(ctx context.Context, siteName string) (int, error) {
	acct, err := l.resolver.Resolve(ctx, siteName)
	if err != nil {
		return 0, err
	}

	acct.DailyCounter++
	if err := l.resolver.store.UpdateAccountQuota(ctx, acct); err != nil {
		return 0, fmt.Errorf("failed to increment daily counter for %q: %w", siteName, err)
	}
	return acct.DailyCounter, nil
}

// MinInterval returns the minimum allowed spacing between automated posts
// for an account: 24h divided by its daily quota.
func MinInterval(maxPostsPerDay int) time.Duration {
	if maxPostsPerDay <= 0 {
		return 24 * time.Hour
	}
	return 24 * time.Hour / time.Duration(maxPostsPerDay)
}
