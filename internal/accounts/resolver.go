// Package accounts resolves per-site configuration records and owns the
// daily-quota ledger.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/diriredouane/AI-Recipe-Automator/internal/sheets"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// ConfigNotFoundError indicates no configuration record exists for a site.
type ConfigNotFoundError struct {
	SiteName string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("configuration not found for site %q in %s", e.SiteName, sheets.ConfigSheetName)
}

// InvalidConfigError indicates a configuration record failed validation.
type InvalidConfigError struct {
	SiteName string
	Err      error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for site %q: %v", e.SiteName, e.Err)
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }

// Resolver loads and validates AccountConfig records. Configuration is read
// fresh on every call; there is no caching across invocations.
type Resolver struct {
	store    sheets.Store
	validate *validator.Validate
}

// NewResolver creates a resolver over a store.
func NewResolver(store sheets.Store) *Resolver {
	return &Resolver{
		store:    store,
		validate: validator.New(),
	}
}

// ResolveDataSheet maps a data-sheet name ("Data-{SiteName}") to its
// validated AccountConfig.
func (r *Resolver) ResolveDataSheet(ctx context.Context, sheetName string) (*types.AccountConfig, error) {
	siteName, err := types.SiteFromDataSheet(sheetName)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, siteName)
}

// Resolve loads and validates the configuration record for one site.
func (r *Resolver) Resolve(ctx context.Context, siteName string) (*types.AccountConfig, error) {
	acct, err := r.store.Account(ctx, siteName)
	if err != nil {
		var notFound *sheets.NotFoundError
		if errors.As(err, &notFound) {
			return nil, &ConfigNotFoundError{SiteName: siteName}
		}
		return nil, fmt.Errorf("failed to load account %q: %w", siteName, err)
	}

	if acct.MaxPostsPerDay <= 0 {
		acct.MaxPostsPerDay = types.DefaultMaxPostsPerDay
	}

	if err := r.validate.Struct(acct); err != nil {
		return nil, &InvalidConfigError{SiteName: siteName, Err: err}
	}
	return acct, nil
}
