package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/diriredouane/AI-Recipe-Automator/internal/bridge"
	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

const maxCallbackBytes = 1 << 20

// unknownSite catalogs board lists that arrive without a site name.
const unknownSite = "Inconnu"

// handleCallback dispatches the three bridge callback shapes: single-board
// detail, bulk board list, and pin confirmation.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBytes))
	if err != nil {
		s.writeError(w, &BadRequestError{Message: "unreadable body"})
		return
	}

	// Pin and board ids can exceed float64 precision; quote them before
	// the decoder sees them.
	raw = bridge.QuoteLargeNumbers(raw)
	raw = bytes.TrimSpace(raw)

	// Some bridges send the board list as a bare top-level array with no
	// site name attached.
	if len(raw) > 0 && raw[0] == '[' {
		var entries []any
		if err := json.Unmarshal(raw, &entries); err != nil {
			s.writeError(w, &BadRequestError{Message: "body is not valid JSON"})
			return
		}
		s.dispatch(w, r, func() error {
			return s.replaceBoards(r, unknownSite, entries)
		})
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.writeError(w, &BadRequestError{Message: "body is not valid JSON"})
		return
	}

	s.dispatch(w, r, func() error {
		switch {
		case hasBoardData(payload):
			return s.applyBoardDetail(r, payload)
		case payload["list_boards"] != nil:
			return s.applyBoardList(r, payload)
		case payload["row_number"] != nil:
			return s.applyPinConfirmation(r, payload)
		default:
			return &BadRequestError{Message: "unrecognized callback shape"}
		}
	})
}

// dispatch runs apply under the write lock and renders the outcome.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, apply func() error) {
	if err := s.acquire(r.Context()); err != nil {
		s.writeError(w, &LockTimeoutError{Err: err})
		return
	}
	defer s.release()

	if err := apply(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func hasBoardData(payload map[string]any) bool {
	if _, ok := payload["board_data"]; ok {
		return true
	}
	for key := range payload {
		if strings.HasPrefix(key, "board_data.") {
			return true
		}
	}
	return false
}

// applyBoardDetail updates one board's counters in the catalog. The bridge
// sends either a nested board_data object or a flattened form with dotted
// keys.
func (s *Server) applyBoardDetail(r *http.Request, payload map[string]any) error {
	fields := make(map[string]any)
	if nested, ok := payload["board_data"].(map[string]any); ok {
		fields = nested
	} else {
		for key, value := range payload {
			if name, ok := strings.CutPrefix(key, "board_data."); ok {
				fields[name] = value
			}
		}
	}

	detail := types.Board{
		SiteName:      asString(payload["site_name"]),
		ID:            asString(fields["id"]),
		Name:          asString(fields["name"]),
		PinCount:      asString(fields["pin_count"]),
		FollowerCount: asString(fields["follower_count"]),
		Description:   asString(fields["description"]),
		LastChecked:   types.FormatDate(s.now()),
	}
	if detail.Name == "" && detail.ID == "" {
		return &BadRequestError{Message: "board detail carries neither a name nor an id"}
	}
	return s.store.UpdateBoardDetail(r.Context(), detail)
}

// applyBoardList replaces one site's rows in the board catalog. Lists that
// arrive without a site name are cataloged under the unknown-site bucket.
func (s *Server) applyBoardList(r *http.Request, payload map[string]any) error {
	siteName := asString(payload["site_name"])
	if siteName == "" {
		siteName = unknownSite
	}
	entries, ok := payload["list_boards"].([]any)
	if !ok {
		return &BadRequestError{Message: "list_boards is not an array"}
	}
	return s.replaceBoards(r, siteName, entries)
}

func (s *Server) replaceBoards(r *http.Request, siteName string, entries []any) error {
	checked := types.FormatDate(s.now())
	boards := make([]types.Board, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		board := types.Board{
			SiteName:      siteName,
			ID:            asString(fields["id"]),
			Name:          asString(fields["name"]),
			PinCount:      asString(fields["pin_count"]),
			FollowerCount: asString(fields["follower_count"]),
			Description:   asString(fields["description"]),
			LastChecked:   checked,
		}
		if board.Name == "" {
			continue
		}
		boards = append(boards, board)
	}
	return s.store.ReplaceSiteBoards(r.Context(), siteName, boards)
}

// applyPinConfirmation writes a published pin's identifiers back to its
// row. Rows parked by the automated flow land on "published (auto)";
// anything else was a manual pin.
func (s *Server) applyPinConfirmation(r *http.Request, payload map[string]any) error {
	sheetName := asString(payload["sheet_name"])
	if sheetName == "" {
		return &BadRequestError{Message: "pin confirmation is missing sheet_name"}
	}
	rowNumber, err := asRowNumber(payload["row_number"])
	if err != nil {
		return &BadRequestError{Message: err.Error()}
	}
	pinID := asString(payload["pin_id"])
	boardID := asString(payload["board_id"])

	row, err := s.store.Row(r.Context(), sheetName, rowNumber)
	if err != nil {
		return err
	}

	status := types.StatusPublishedManual
	if strings.TrimSpace(row.Trigger) == types.MarkerWaiting {
		status = types.StatusPublishedAuto
	}

	patch := &types.RowUpdate{
		Trigger:         types.Set(""),
		Status:          types.Set(status),
		PinID:           types.Set(pinID),
		BoardID:         types.Set(boardID),
		PublicationDate: types.Set(types.FormatDate(s.now())),
	}
	if pinID != "" {
		patch.PinURL = types.Set(fmt.Sprintf("https://www.pinterest.com/pin/%s/", pinID))
	}
	return s.store.UpdateRow(r.Context(), sheetName, rowNumber, patch)
}

// asString renders any scalar callback value as the string written to the
// sheet. Large ids arrive as strings thanks to the quoting guard.
func asString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprint(value)
	}
}

func asRowNumber(v any) (int, error) {
	switch value := v.(type) {
	case float64:
		return int(value), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("row_number %q is not a number", value)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("row_number has unsupported type %T", v)
	}
}
