// Package sheets provides access to the spreadsheet that is the system's
// only persistent store: per-site data sheets, the account configuration
// sheet and the board catalog.
package sheets

import (
	"context"
	"fmt"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// Well-known sheet names.
const (
	ConfigSheetName = "Config_Accounts"
	BoardsSheetName = "Boards"
)

// Store is the persistence surface of the spreadsheet. Implementations:
// the Google Sheets client and an in-memory fake for tests.
type Store interface {
	// Accounts returns every configuration record, in sheet order.
	Accounts(ctx context.Context) ([]*types.AccountConfig, error)
	// Account returns the configuration record for one site.
	Account(ctx context.Context, siteName string) (*types.AccountConfig, error)
	// UpdateAccountQuota writes the daily counter and last-reset-date of
	// the account back to its configuration row.
	UpdateAccountQuota(ctx context.Context, acct *types.AccountConfig) error

	// Row reads one data-sheet row.
	Row(ctx context.Context, sheetName string, rowNumber int) (*types.Row, error)
	// Rows reads all data rows of a sheet, in sheet order.
	Rows(ctx context.Context, sheetName string) ([]types.Row, error)
	// UpdateRow applies a sparse patch to one data-sheet row.
	UpdateRow(ctx context.Context, sheetName string, rowNumber int, patch *types.RowUpdate) error

	// Boards returns the full cross-site board catalog.
	Boards(ctx context.Context) ([]types.Board, error)
	// ReplaceSiteBoards replaces one site's catalog entries, preserving
	// other sites' rows. The catalog is kept sorted by site then board.
	ReplaceSiteBoards(ctx context.Context, siteName string, boards []types.Board) error
	// UpdateBoardDetail updates counts/description of one board, matched
	// by name first, then by id.
	UpdateBoardDetail(ctx context.Context, detail types.Board) error
}

// NotFoundError indicates a missing sheet, row or configuration record.
type NotFoundError struct {
	Kind string // "sheet", "row", "account", "board"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// FilterSite returns the catalog entries belonging to one site.
func FilterSite(boards []types.Board, siteName string) []types.Board {
	var out []types.Board
	for _, b := range boards {
		if b.SiteName == siteName {
			out = append(out, b)
		}
	}
	return out
}

// FindBoard looks a board up by (site, name) in the catalog.
func FindBoard(boards []types.Board, siteName, boardName string) (types.Board, bool) {
	for _, b := range boards {
		if b.SiteName == siteName && b.Name == boardName {
			return b, true
		}
	}
	return types.Board{}, false
}
