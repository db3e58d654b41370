// Package scheduler drives unattended processing: it walks the configured
// sites and feeds at most one pending row per cycle into the pipeline,
// respecting daily quotas and publication velocity.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/diriredouane/AI-Recipe-Automator/internal/accounts"
	"github.com/diriredouane/AI-Recipe-Automator/internal/sheets"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// RowProcessor runs one row end to end. *pipeline.Processor satisfies it.
type RowProcessor interface {
	ProcessRow(ctx context.Context, sheetName string, rowNumber int) error
}

// Scheduler picks eligible rows across all accounts.
type Scheduler struct {
	store     sheets.Store
	ledger    *accounts.Ledger
	processor RowProcessor

	// now is swapped in tests.
	now func() time.Time
}

func New(store sheets.Store, processor RowProcessor) *Scheduler {
	return &Scheduler{
		store:     store,
		ledger:    accounts.NewLedger(accounts.NewResolver(store)),
		processor: processor,
		now:       time.Now,
	}
}

// CycleResult reports what one automation cycle did.
type CycleResult struct {
	SiteName  string
	SheetName string
	RowNumber int
	// Processed is false when no site had an eligible row.
	Processed bool
}

// RunCycle scans accounts in sheet order and processes the first eligible
// pending row it finds. Quota and velocity gates are checked per account;
// a processed row increments the account's daily counter and ends the
// cycle, so at most one post is produced per invocation.
func (s *Scheduler) RunCycle(ctx context.Context) (*CycleResult, error) {
	accts, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, acct := range accts {
		if !acct.IsActive() {
			continue
		}

		if _, err := s.ledger.ResetIfStale(ctx, acct.SiteName, now); err != nil {
			return nil, fmt.Errorf("resetting quota for %s: %w", acct.SiteName, err)
		}
		// Re-read: the reset may have zeroed the counter.
		fresh, err := s.store.Account(ctx, acct.SiteName)
		if err != nil {
			return nil, err
		}
		maxPosts := fresh.MaxPostsPerDay
		if maxPosts <= 0 {
			maxPosts = types.DefaultMaxPostsPerDay
		}
		if fresh.DailyCounter >= maxPosts {
			continue
		}

		sheetName := types.DataSheetName(acct.SiteName)
		rows, err := s.store.Rows(ctx, sheetName)
		if err != nil {
			// A configured account without a data sheet yet is not an
			// error for the whole cycle.
			continue
		}

		if !s.velocityOK(rows, maxPosts, now) {
			continue
		}

		row := firstPending(rows)
		if row == nil {
			continue
		}

		if err := s.store.UpdateRow(ctx, sheetName, row.Number, &types.RowUpdate{
			Trigger: types.Set(string(types.TriggerAuto)),
		}); err != nil {
			return nil, err
		}

		result := &CycleResult{
			SiteName:  acct.SiteName,
			SheetName: sheetName,
			RowNumber: row.Number,
			Processed: true,
		}
		if err := s.processor.ProcessRow(ctx, sheetName, row.Number); err != nil {
			// The pipeline already wrote the failure to the row. The
			// counter still advances so a poisoned row cannot burn the
			// whole day retrying.
			if _, incErr := s.ledger.Increment(ctx, acct.SiteName); incErr != nil {
				return result, incErr
			}
			return result, err
		}
		if _, err := s.ledger.Increment(ctx, acct.SiteName); err != nil {
			return result, err
		}
		return result, nil
	}

	return &CycleResult{Processed: false}, nil
}

// velocityOK enforces the minimum spacing between posts: a site with N
// posts per day may publish at most once every 24h/N, measured against the
// latest publication date on its sheet.
func (s *Scheduler) velocityOK(rows []types.Row, maxPosts int, now time.Time) bool {
	latest, ok := latestPublication(rows)
	if !ok {
		return true
	}
	return now.Sub(latest) >= accounts.MinInterval(maxPosts)
}

func latestPublication(rows []types.Row) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, row := range rows {
		if row.PublicationDate == "" {
			continue
		}
		t, err := time.Parse(types.DateLayout, row.PublicationDate)
		if err != nil {
			continue
		}
		if t.After(latest) {
			latest = t
			found = true
		}
	}
	return latest, found
}

func firstPending(rows []types.Row) *types.Row {
	for i := range rows {
		if rows[i].Pending() {
			return &rows[i]
		}
	}
	return nil
}

// Run loops RunCycle at the given interval until the context is canceled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if result, err := s.RunCycle(ctx); err != nil {
			fmt.Printf("automation cycle failed: %v\n", err)
		} else if result.Processed {
			fmt.Printf("processed row %d of %s\n", result.RowNumber, result.SheetName)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
