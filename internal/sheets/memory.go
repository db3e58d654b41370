package sheets

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// Memory is an in-memory Store used by tests and dry runs. It mirrors the
// Google Sheets semantics closely enough to exercise the orchestrator,
// scheduler and callback handlers without network access.
type Memory struct {
	mu       sync.Mutex
	accounts []*types.AccountConfig
	rows     map[string][]types.Row // sheet name -> rows (index 0 is sheet row 2)
	boards   []types.Board
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string][]types.Row)}
}

// AddAccount seeds one configuration record.
func (m *Memory) AddAccount(acct *types.AccountConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if acct.RowIndex == 0 {
		acct.RowIndex = len(m.accounts) + 2
	}
	if acct.MaxPostsPerDay == 0 {
		acct.MaxPostsPerDay = types.DefaultMaxPostsPerDay
	}
	m.accounts = append(m.accounts, acct)
}

// SeedRows seeds a data sheet. Row numbers are assigned from 2 upward.
func (m *Memory) SeedRows(sheetName string, rows []types.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range rows {
		rows[i].Number = i + 2
	}
	m.rows[sheetName] = rows
}

// SetBoards seeds the board catalog.
func (m *Memory) SetBoards(boards []types.Board) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards = boards
}

// Accounts returns every configuration record.
func (m *Memory) Accounts(ctx context.Context) ([]*types.AccountConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.AccountConfig, len(m.accounts))
	copy(out, m.accounts)
	return out, nil
}

// Account returns the configuration record for one site.
func (m *Memory) Account(ctx context.Context, siteName string) (*types.AccountConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acct := range m.accounts {
		if acct.SiteName == siteName {
			copied := *acct
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Kind: "account", Name: siteName}
}

// UpdateAccountQuota writes counter state back to the seeded record.
func (m *Memory) UpdateAccountQuota(ctx context.Context, acct *types.AccountConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.SiteName == acct.SiteName {
			existing.DailyCounter = acct.DailyCounter
			existing.LastResetDate = acct.LastResetDate
			return nil
		}
	}
	return &NotFoundError{Kind: "account", Name: acct.SiteName}
}

// Row reads one data-sheet row.
func (m *Memory) Row(ctx context.Context, sheetName string, rowNumber int) (*types.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.rows[sheetName]
	if !ok {
		return nil, &NotFoundError{Kind: "sheet", Name: sheetName}
	}
	idx := rowNumber - 2
	if idx < 0 || idx >= len(rows) {
		return nil, &NotFoundError{Kind: "row", Name: fmt.Sprintf("%s!%d", sheetName, rowNumber)}
	}
	row := rows[idx]
	return &row, nil
}

// Rows reads all data rows of a sheet.
func (m *Memory) Rows(ctx context.Context, sheetName string) ([]types.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.rows[sheetName]
	if !ok {
		return nil, &NotFoundError{Kind: "sheet", Name: sheetName}
	}
	out := make([]types.Row, len(rows))
	copy(out, rows)
	return out, nil
}

// UpdateRow applies a sparse patch to one data-sheet row.
func (m *Memory) UpdateRow(ctx context.Context, sheetName string, rowNumber int, patch *types.RowUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.rows[sheetName]
	if !ok {
		return &NotFoundError{Kind: "sheet", Name: sheetName}
	}
	idx := rowNumber - 2
	if idx < 0 || idx >= len(rows) {
		return &NotFoundError{Kind: "row", Name: fmt.Sprintf("%s!%d", sheetName, rowNumber)}
	}

	row := &rows[idx]
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&row.Trigger, patch.Trigger)
	apply(&row.Status, patch.Status)
	apply(&row.EditURL, patch.EditURL)
	apply(&row.PublicURL, patch.PublicURL)
	apply(&row.PinImageURL, patch.PinImageURL)
	apply(&row.PinID, patch.PinID)
	apply(&row.BoardID, patch.BoardID)
	apply(&row.PinURL, patch.PinURL)
	apply(&row.Error, patch.Error)
	apply(&row.ImageAnalysis, patch.ImageAnalysis)
	apply(&row.PublicationDate, patch.PublicationDate)
	apply(&row.CostDetails, patch.CostDetails)
	apply(&row.BoardName, patch.BoardName)
	apply(&row.PinTitle, patch.PinTitle)
	apply(&row.ImageTitle, patch.ImageTitle)
	apply(&row.PinDescription, patch.PinDescription)
	return nil
}

// Boards returns the full board catalog.
func (m *Memory) Boards(ctx context.Context) ([]types.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Board, len(m.boards))
	copy(out, m.boards)
	return out, nil
}

// ReplaceSiteBoards replaces one site's catalog entries.
func (m *Memory) ReplaceSiteBoards(ctx context.Context, siteName string, boards []types.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var final []types.Board
	for _, b := range m.boards {
		if b.SiteName != siteName {
			final = append(final, b)
		}
	}
	now := types.FormatDate(time.Now())
	for _, b := range boards {
		b.SiteName = siteName
		if b.LastChecked == "" {
			b.LastChecked = now
		}
		final = append(final, b)
	}
	sort.Slice(final, func(i, j int) bool {
		if final[i].SiteName != final[j].SiteName {
			return final[i].SiteName < final[j].SiteName
		}
		return final[i].Name < final[j].Name
	})
	m.boards = final
	return nil
}

// UpdateBoardDetail updates one board, matched by name then id.
func (m *Memory) UpdateBoardDetail(ctx context.Context, detail types.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, b := range m.boards {
		if detail.Name != "" && b.Name == detail.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, b := range m.boards {
			if detail.ID != "" && b.ID == detail.ID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return &NotFoundError{Kind: "board", Name: fmt.Sprintf("%s (id %s)", detail.Name, detail.ID)}
	}

	m.boards[idx].PinCount = detail.PinCount
	m.boards[idx].FollowerCount = detail.FollowerCount
	m.boards[idx].Description = detail.Description
	last := detail.LastChecked
	if last == "" {
		last = types.FormatDate(time.Now())
	}
	m.boards[idx].LastChecked = last
	return nil
}

var _ Store = (*Memory)(nil)
