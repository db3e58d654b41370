package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diriredouane/AI-Recipe-Automator/internal/sheets"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

func validAccount(site string) *types.AccountConfig {
	return &types.AccountConfig{
		SiteName:      site,
		Active:        types.AccountActive,
		WPBaseURL:     "https://wp.example",
		WPUser:        "editor",
		WPAppPassword: "app-pass",
		WPAuthorID:    3,
	}
}

func TestResolveDataSheet(t *testing.T) {
	store := sheets.NewMemory()
	store.AddAccount(validAccount("MyKitchen"))

	r := NewResolver(store)
	acct, err := r.ResolveDataSheet(context.Background(), "Data-MyKitchen")
	require.NoError(t, err)
	assert.Equal(t, "MyKitchen", acct.SiteName)
	assert.Equal(t, types.DefaultMaxPostsPerDay, acct.MaxPostsPerDay)
}

func TestResolveDataSheet_BadName(t *testing.T) {
	r := NewResolver(sheets.NewMemory())
	_, err := r.ResolveDataSheet(context.Background(), "Boards")
	assert.Error(t, err)
}

func TestResolve_NotFound(t *testing.T) {
	r := NewResolver(sheets.NewMemory())
	_, err := r.Resolve(context.Background(), "Ghost")

	var notFound *ConfigNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Ghost", notFound.SiteName)
}

func TestResolve_InvalidRecord(t *testing.T) {
	store := sheets.NewMemory()
	store.AddAccount(&types.AccountConfig{SiteName: "Broken", Active: "maybe"})

	r := NewResolver(store)
	_, err := r.Resolve(context.Background(), "Broken")

	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
}

func TestLedgerResetIfStale(t *testing.T) {
	ctx := context.Background()
	store := sheets.NewMemory()
	acct := validAccount("Foo")
	acct.DailyCounter = 5
	acct.LastResetDate = "2026-08-28"
	store.AddAccount(acct)

	ledger := NewLedger(NewResolver(store))
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	reset, err := ledger.ResetIfStale(ctx, "Foo", now)
	require.NoError(t, err)
	assert.True(t, reset)

	reloaded, err := store.Account(ctx, "Foo")
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.DailyCounter)
	assert.Equal(t, "2026-08-29", reloaded.LastResetDate)

	// Second call the same day is a no-op
	reset, err = ledger.ResetIfStale(ctx, "Foo", now)
	require.NoError(t, err)
	assert.False(t, reset)
}

func TestLedgerIncrement(t *testing.T) {
	ctx := context.Background()
	store := sheets.NewMemory()
	store.AddAccount(validAccount("Foo"))

	ledger := NewLedger(NewResolver(store))
	n, err := ledger.Increment(ctx, "Foo")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = ledger.Increment(ctx, "Foo")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMinInterval(t *testing.T) {
	assert.Equal(t, 4*time.Hour, MinInterval(6))
	assert.Equal(t, 24*time.Hour, MinInterval(1))
	assert.Equal(t, 24*time.Hour, MinInterval(0))
}
