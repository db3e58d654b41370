package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diriredouane/AI-Recipe-Automator/internal/sheets"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

type fakeProcessor struct {
	calls []string
	err   error
}

func (f *fakeProcessor) ProcessRow(_ context.Context, sheetName string, rowNumber int) error {
	f.calls = append(f.calls, sheetName)
	_ = rowNumber
	return f.err
}

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func account(site string, counter int, lastReset string) *types.AccountConfig {
	return &types.AccountConfig{
		SiteName:       site,
		Active:         types.AccountActive,
		WPBaseURL:      "https://" + site + ".example",
		WPUser:         "editor",
		WPAppPassword:  "secret",
		MaxPostsPerDay: 4,
		DailyCounter:   counter,
		LastResetDate:  lastReset,
	}
}

func newScheduler(store *sheets.Memory, proc *fakeProcessor) *Scheduler {
	s := New(store, proc)
	s.now = func() time.Time { return testNow }
	return s
}

func TestRunCycle_ProcessesFirstPendingRow(t *testing.T) {
	store := sheets.NewMemory()
	store.AddAccount(account("foo", 0, "2026-03-14"))
	store.SeedRows("Data-foo", []types.Row{
		{Trigger: "OK", Status: "published (auto)", Title: "done already"},
		{Title: "pending one"},
		{Title: "pending two"},
	})
	proc := &fakeProcessor{}

	result, err := newScheduler(store, proc).RunCycle(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.Equal(t, "foo", result.SiteName)
	assert.Equal(t, 3, result.RowNumber, "first pending row, not the last")
	assert.Equal(t, []string{"Data-foo"}, proc.calls)

	// AUTO was stamped before processing.
	row, err := store.Row(context.Background(), "Data-foo", 3)
	require.NoError(t, err)
	assert.Equal(t, string(types.TriggerAuto), row.Trigger)

	// The daily counter advanced.
	acct, err := store.Account(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, 1, acct.DailyCounter)
}

func TestRunCycle_OneRowPerCycle(t *testing.T) {
	store := sheets.NewMemory()
	store.AddAccount(account("foo", 0, "2026-03-14"))
	store.AddAccount(account("bar", 0, "2026-03-14"))
	store.SeedRows("Data-foo", []types.Row{{Title: "pending"}})
	store.SeedRows("Data-bar", []types.Row{{Title: "pending"}})
	proc := &fakeProcessor{}

	result, err := newScheduler(store, proc).RunCycle(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.Len(t, proc.calls, 1, "cycle stops after the first processed row")
}

func TestRunCycle_QuotaGate(t *testing.T) {
	store := sheets.NewMemory()
	store.AddAccount(account("foo", 4, "2026-03-14")) // at quota
	store.AddAccount(account("bar", 1, "2026-03-14"))
	store.SeedRows("Data-foo", []types.Row{{Title: "pending"}})
	store.SeedRows("Data-bar", []types.Row{{Title: "pending"}})
	proc := &fakeProcessor{}

	result, err := newScheduler(store, proc).RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "bar", result.SiteName, "exhausted site is skipped")
}

func TestRunCycle_LazyDailyReset(t *testing.T) {
	store := sheets.NewMemory()
	store.AddAccount(account("foo", 4, "2026-03-13")) // stale date, counter full
	store.SeedRows("Data-foo", []types.Row{{Title: "pending"}})
	proc := &fakeProcessor{}

	result, err := newScheduler(store, proc).RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Processed, "yesterday's counter does not block today")

	acct, err := store.Account(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", acct.LastResetDate)
	assert.Equal(t, 1, acct.DailyCounter, "reset to 0, then incremented once")
}

func TestRunCycle_VelocityGate(t *testing.T) {
	store := sheets.NewMemory()
	store.AddAccount(account("foo", 1, "2026-03-14"))
	// Max 4/day means one post per 6 hours; the last one was 2 hours ago.
	store.SeedRows("Data-foo", []types.Row{
		{Trigger: "Waiting for bridge...", Title: "recent",
			PublicationDate: testNow.Add(-2 * time.Hour).Format(types.DateLayout)},
		{Title: "pending"},
	})
	proc := &fakeProcessor{}

	result, err := newScheduler(store, proc).RunCycle(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Processed)
	assert.Empty(t, proc.calls)
}

func TestRunCycle_VelocityGateOpensAfterInterval(t *testing.T) {
	store := sheets.NewMemory()
	store.AddAccount(account("foo", 1, "2026-03-14"))
	store.SeedRows("Data-foo", []types.Row{
		{Trigger: "Waiting for bridge...", Title: "older",
			PublicationDate: testNow.Add(-7 * time.Hour).Format(types.DateLayout)},
		{Title: "pending"},
	})
	proc := &fakeProcessor{}

	result, err := newScheduler(store, proc).RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Processed)
}

func TestRunCycle_InactiveAccountSkipped(t *testing.T) {
	store := sheets.NewMemory()
	paused := account("foo", 0, "2026-03-14")
	paused.Active = types.AccountPaused
	store.AddAccount(paused)
	store.SeedRows("Data-foo", []types.Row{{Title: "pending"}})
	proc := &fakeProcessor{}

	result, err := newScheduler(store, proc).RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Processed)
}

func TestRunCycle_CounterAdvancesOnFailure(t *testing.T) {
	store := sheets.NewMemory()
	store.AddAccount(account("foo", 0, "2026-03-14"))
	store.SeedRows("Data-foo", []types.Row{{Title: "pending"}})
	proc := &fakeProcessor{err: assert.AnError}

	result, err := newScheduler(store, proc).RunCycle(context.Background())
	require.Error(t, err)
	assert.True(t, result.Processed)

	acct, aErr := store.Account(context.Background(), "foo")
	require.NoError(t, aErr)
	assert.Equal(t, 1, acct.DailyCounter, "failed rows still consume quota")
}

func TestRunCycle_NoPendingRows(t *testing.T) {
	store := sheets.NewMemory()
	store.AddAccount(account("foo", 0, "2026-03-14"))
	store.SeedRows("Data-foo", []types.Row{
		{Trigger: "error", Title: "failed earlier", Status: ""},
		{Title: "", Status: ""},
	})
	proc := &fakeProcessor{}

	result, err := newScheduler(store, proc).RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Processed)
}

func TestLatestPublication(t *testing.T) {
	rows := []types.Row{
		{PublicationDate: "2026-03-10 08:00:00"},
		{PublicationDate: "not a date"},
		{PublicationDate: "2026-03-12 09:30:00"},
		{},
	}
	latest, ok := latestPublication(rows)
	require.True(t, ok)
	assert.Equal(t, "2026-03-12 09:30:00", latest.Format(types.DateLayout))

	_, ok = latestPublication([]types.Row{{}, {PublicationDate: "bad"}})
	assert.False(t, ok)
}
