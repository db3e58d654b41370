package sheets

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

// Configuration-sheet headers. Records are parsed by header name, not by
// position, so operators may reorder columns.
const (
	HeaderSiteName           = "Site Name"
	HeaderActive             = "Active"
	HeaderWPBaseURL          = "WP Base URL"
	HeaderWPRecipeAPI        = "WP Recipe API"
	HeaderWPUser             = "WP User"
	HeaderWPAppPassword      = "WP App Password"
	HeaderWPAuthorID         = "WP Author ID"
	HeaderFacebookURL        = "Facebook URL"
	HeaderSitemapURL         = "Sitemap URL"
	HeaderMainWebhook        = "Pabbly Main Webhook"
	HeaderListWebhook        = "Pabbly List Webhook"
	HeaderBoardInfoWebhook   = "Pabbly Board Info Webhook"
	HeaderPinTemplateID      = "Pin Slide Template ID"
	HeaderCollageTemplateID  = "Collage Slide Template ID"
	HeaderExportFolderID     = "Drive Export Folder ID"
	HeaderMaxPostsPerDay     = "Max Posts / Day"
	HeaderDailyCounter       = "Daily Counter"
	HeaderLastResetDate      = "Last Reset Date"
	HeaderFeaturedTemplateID = "WP Featured Image Template ID"
)

// GoogleStore implements Store over the Google Sheets API.
type GoogleStore struct {
	svc           *sheetsapi.Service
	spreadsheetID string

	// configCols caches the header→column mapping of the config sheet for
	// the lifetime of one store instance.
	configCols map[string]int
}

// NewGoogleStore creates a Sheets-backed store for one spreadsheet.
func NewGoogleStore(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*GoogleStore, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &GoogleStore{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Accounts returns every configuration record, in sheet order.
func (s *GoogleStore) Accounts(ctx context.Context) ([]*types.AccountConfig, error) {
	cols, err := s.configColumns(ctx)
	if err != nil {
		return nil, err
	}

	values, err := s.read(ctx, ConfigSheetName, "A2:Z")
	if err != nil {
		return nil, err
	}

	var accounts []*types.AccountConfig
	for i, row := range values {
		acct := parseAccount(row, cols, i+2)
		if acct.SiteName == "" {
			continue
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// Account returns the configuration record for one site.
func (s *GoogleStore) Account(ctx context.Context, siteName string) (*types.AccountConfig, error) {
	accounts, err := s.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, acct := range accounts {
		if acct.SiteName == siteName {
			return acct, nil
		}
	}
	return nil, &NotFoundError{Kind: "account", Name: siteName}
}

// UpdateAccountQuota writes the daily counter and last-reset-date back to
// the account's configuration row.
func (s *GoogleStore) UpdateAccountQuota(ctx context.Context, acct *types.AccountConfig) error {
	if acct.RowIndex < 2 {
		return fmt.Errorf("account %s has no configuration row index", acct.SiteName)
	}
	cols, err := s.configColumns(ctx)
	if err != nil {
		return err
	}
	counterCol, ok := cols[HeaderDailyCounter]
	if !ok {
		return &NotFoundError{Kind: "sheet", Name: ConfigSheetName + "!" + HeaderDailyCounter}
	}
	resetCol, ok := cols[HeaderLastResetDate]
	if !ok {
		return &NotFoundError{Kind: "sheet", Name: ConfigSheetName + "!" + HeaderLastResetDate}
	}

	return s.writeCells(ctx, ConfigSheetName, acct.RowIndex, map[int]string{
		counterCol: strconv.Itoa(acct.DailyCounter),
		resetCol:   acct.LastResetDate,
	})
}

// Row reads one data-sheet row.
func (s *GoogleStore) Row(ctx context.Context, sheetName string, rowNumber int) (*types.Row, error) {
	if rowNumber < 2 {
		return nil, fmt.Errorf("row number %d is not a data row", rowNumber)
	}
	rng := fmt.Sprintf("A%d:%s%d", rowNumber, colLetter(types.RowWidth), rowNumber)
	values, err := s.read(ctx, sheetName, rng)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, &NotFoundError{Kind: "row", Name: fmt.Sprintf("%s!%d", sheetName, rowNumber)}
	}
	row := parseRow(values[0], rowNumber)
	return &row, nil
}

// Rows reads all data rows of a sheet, in sheet order.
func (s *GoogleStore) Rows(ctx context.Context, sheetName string) ([]types.Row, error) {
	values, err := s.read(ctx, sheetName, fmt.Sprintf("A2:%s", colLetter(types.RowWidth)))
	if err != nil {
		return nil, err
	}
	rows := make([]types.Row, 0, len(values))
	for i, v := range values {
		rows = append(rows, parseRow(v, i+2))
	}
	return rows, nil
}

// UpdateRow applies a sparse patch to one data-sheet row.
func (s *GoogleStore) UpdateRow(ctx context.Context, sheetName string, rowNumber int, patch *types.RowUpdate) error {
	cells := patch.Cells()
	if len(cells) == 0 {
		return nil
	}
	return s.writeCells(ctx, sheetName, rowNumber, cells)
}

// Boards returns the full cross-site board catalog.
func (s *GoogleStore) Boards(ctx context.Context) ([]types.Board, error) {
	values, err := s.read(ctx, BoardsSheetName, "A2:G")
	if err != nil {
		return nil, err
	}
	boards := make([]types.Board, 0, len(values))
	for _, v := range values {
		boards = append(boards, types.Board{
			SiteName:      cellString(v, 1),
			Name:          cellString(v, 2),
			ID:            strings.TrimPrefix(cellString(v, 3), "'"),
			PinCount:      cellString(v, 4),
			FollowerCount: cellString(v, 5),
			Description:   cellString(v, 6),
			LastChecked:   cellString(v, 7),
		})
	}
	return boards, nil
}

// ReplaceSiteBoards replaces one site's catalog entries, preserving other
// sites' rows, and rewrites the catalog sorted by site then board name.
func (s *GoogleStore) ReplaceSiteBoards(ctx context.Context, siteName string, boards []types.Board) error {
	existing, err := s.Boards(ctx)
	if err != nil {
		return err
	}

	final := make([]types.Board, 0, len(existing)+len(boards))
	for _, b := range existing {
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

	return s.rewriteBoards(ctx, len(existing), final)
}

// UpdateBoardDetail updates counts/description of one board, matched by
// name first, then by id.
func (s *GoogleStore) UpdateBoardDetail(ctx context.Context, detail types.Board) error {
	boards, err := s.Boards(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, b := range boards {
		if detail.Name != "" && b.Name == detail.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, b := range boards {
			if detail.ID != "" && b.ID == detail.ID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return &NotFoundError{Kind: "board", Name: fmt.Sprintf("%s (id %s)", detail.Name, detail.ID)}
	}

	last := detail.LastChecked
	if last == "" {
		last = types.FormatDate(time.Now())
	}
	rowNumber := idx + 2
	return s.writeCells(ctx, BoardsSheetName, rowNumber, map[int]string{
		4: detail.PinCount,
		5: detail.FollowerCount,
		6: detail.Description,
		7: last,
	})
}

func (s *GoogleStore) rewriteBoards(ctx context.Context, previousLen int, boards []types.Board) error {
	if previousLen > 0 {
		rng := fmt.Sprintf("%s!A2:G%d", BoardsSheetName, previousLen+1)
		_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to clear board catalog: %w", err)
		}
	}
	if len(boards) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(boards))
	for _, b := range boards {
		values = append(values, []interface{}{
			b.SiteName, b.Name, "'" + b.ID, b.PinCount, b.FollowerCount, b.Description, b.LastChecked,
		})
	}
	rng := fmt.Sprintf("%s!A2:G%d", BoardsSheetName, len(boards)+1)
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write board catalog: %w", err)
	}
	return nil
}

func (s *GoogleStore) configColumns(ctx context.Context) (map[string]int, error) {
	if s.configCols != nil {
		return s.configCols, nil
	}
	values, err := s.read(ctx, ConfigSheetName, "A1:Z1")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, &NotFoundError{Kind: "sheet", Name: ConfigSheetName}
	}
	cols := make(map[string]int)
	for i, v := range values[0] {
		header := strings.TrimSpace(fmt.Sprintf("%v", v))
		if header != "" {
			cols[header] = i + 1
		}
	}
	s.configCols = cols
	return cols, nil
}

func (s *GoogleStore) read(ctx context.Context, sheetName, rng string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheetName+"!"+rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s!%s: %w", sheetName, rng, err)
	}
	return resp.Values, nil
}

func (s *GoogleStore) writeCells(ctx context.Context, sheetName string, rowNumber int, cells map[int]string) error {
	data := make([]*sheetsapi.ValueRange, 0, len(cells))
	cols := make([]int, 0, len(cells))
	for col := range cells {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	for _, col := range cols {
		data = append(data, &sheetsapi.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", sheetName, colLetter(col), rowNumber),
			Values: [][]interface{}{{cells[col]}},
		})
	}

	req := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update %s row %d: %w", sheetName, rowNumber, err)
	}
	return nil
}

func parseRow(v []interface{}, rowNumber int) types.Row {
	return types.Row{
		Number:          rowNumber,
		Trigger:         cellString(v, types.ColTrigger),
		Status:          cellString(v, types.ColStatus),
		Title:           cellString(v, types.ColTitle),
		PhotoURL:        cellString(v, types.ColPhotoURL),
		SourceName:      cellString(v, types.ColSourceName),
		SourceLink:      cellString(v, types.ColSourceLink),
		EditURL:         cellString(v, types.ColEditURL),
		PublicURL:       cellString(v, types.ColPublicURL),
		PinImageURL:     cellString(v, types.ColPinImageURL),
		PinID:           strings.TrimPrefix(cellString(v, types.ColPinID), "'"),
		BoardID:         strings.TrimPrefix(cellString(v, types.ColBoardID), "'"),
		PinURL:          cellString(v, types.ColPinURL),
		Error:           cellString(v, types.ColError),
		ImageAnalysis:   cellString(v, types.ColImageAnalysis),
		PublicationDate: cellString(v, types.ColPublicationDate),
		CostDetails:     cellString(v, types.ColCostDetails),
		BoardName:       cellString(v, types.ColBoardName),
		PinTitle:        cellString(v, types.ColPinTitle),
		ImageTitle:      cellString(v, types.ColImageTitle),
		PinDescription:  cellString(v, types.ColPinDescription),
	}
}

func parseAccount(v []interface{}, cols map[string]int, rowIndex int) *types.AccountConfig {
	get := func(header string) string {
		col, ok := cols[header]
		if !ok {
			return ""
		}
		return cellString(v, col)
	}

	acct := &types.AccountConfig{
		SiteName:            get(HeaderSiteName),
		Active:              get(HeaderActive),
		WPBaseURL:           get(HeaderWPBaseURL),
		WPRecipeAPI:         get(HeaderWPRecipeAPI),
		WPUser:              get(HeaderWPUser),
		WPAppPassword:       get(HeaderWPAppPassword),
		FacebookURL:         get(HeaderFacebookURL),
		SitemapURL:          get(HeaderSitemapURL),
		MainWebhookURL:      get(HeaderMainWebhook),
		ListWebhookURL:      get(HeaderListWebhook),
		BoardInfoWebhookURL: get(HeaderBoardInfoWebhook),
		PinTemplateID:       get(HeaderPinTemplateID),
		CollageTemplateID:   get(HeaderCollageTemplateID),
		FeaturedTemplateID:  get(HeaderFeaturedTemplateID),
		ExportFolderID:      get(HeaderExportFolderID),
		LastResetDate:       get(HeaderLastResetDate),
		RowIndex:            rowIndex,
	}
	acct.WPAuthorID = parseIntCell(get(HeaderWPAuthorID), 0)
	acct.MaxPostsPerDay = parseIntCell(get(HeaderMaxPostsPerDay), types.DefaultMaxPostsPerDay)
	acct.DailyCounter = parseIntCell(get(HeaderDailyCounter), 0)
	return acct
}

func parseIntCell(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// Sheets may render counters as "6.0"
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return def
		}
		return int(f)
	}
	return n
}

// cellString returns the 1-indexed cell of a values row as a string.
func cellString(v []interface{}, col int) string {
	idx := col - 1
	if idx < 0 || idx >= len(v) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v[idx]))
}

// colLetter converts a 1-indexed column number to its A1 letter form.
func colLetter(col int) string {
	var out []byte
	for col > 0 {
		col--
		out = append([]byte{byte('A' + col%26)}, out...)
		col /= 26
	}
	return string(out)
}
