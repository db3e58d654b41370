// Package types defines the shared data structures for the recipe
// automation pipeline.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Trigger selects which sub-flow the row orchestrator runs for a row.
type Trigger string

const (
	// TriggerOK runs the full flow and publishes the post.
	TriggerOK Trigger = "OK"
	// TriggerDraft runs the full flow but creates the post as a draft and
	// skips pin creation.
	TriggerDraft Trigger = "DRAFT"
	// TriggerPin creates pin text and a pin image for an existing link.
	TriggerPin Trigger = "PIN"
	// TriggerPinLink pins an existing post, publishing it first if needed.
	TriggerPinLink Trigger = "PIN_LINK"
	// TriggerUpdateArticle rewrites an existing post's internal links.
	TriggerUpdateArticle Trigger = "UPDATE_ARTICLE"
	// TriggerAddCard adds a recipe card to an existing post.
	TriggerAddCard Trigger = "ADD_CARD"
	// TriggerAuto is set internally by the scheduler; behaves like OK.
	TriggerAuto Trigger = "AUTO"
)

// ParseTrigger parses a raw cell value into a Trigger.
// Returns false when the value is empty or not a known trigger.
func ParseTrigger(raw string) (Trigger, bool) {
	switch Trigger(strings.TrimSpace(raw)) {
	case TriggerOK:
		return TriggerOK, true
	case TriggerDraft:
		return TriggerDraft, true
	case TriggerPin:
		return TriggerPin, true
	case TriggerPinLink:
		return TriggerPinLink, true
	case TriggerUpdateArticle:
		return TriggerUpdateArticle, true
	case TriggerAddCard:
		return TriggerAddCard, true
	case TriggerAuto:
		return TriggerAuto, true
	default:
		return "", false
	}
}

// Well-known trigger/status cell markers written by the orchestrator.
const (
	MarkerError   = "error"
	MarkerPaused  = "PAUSED"
	MarkerWaiting = "Waiting for bridge..."

	StatusPublishedWP     = "published (WP)"
	StatusPublishedAuto   = "published (auto)"
	StatusPublishedManual = "published (manual)"
	StatusDraftCreated    = "draft created"
	StatusUpdated         = "updated"
	StatusCardAdded       = "card added"
	StatusCardExists      = "Card exists"
)

// Fixed 1-indexed column layout of a data sheet. The layout is part of the
// external contract; changing it requires a sheet migration.
const (
	ColTrigger         = 1
	ColStatus          = 2
	ColTitle           = 3
	ColPhotoURL        = 4
	ColSourceName      = 5
	ColSourceLink      = 6
	ColEditURL         = 7
	ColPublicURL       = 8
	ColPinImageURL     = 9
	ColPinID           = 10
	ColBoardID         = 11
	ColPinURL          = 12
	ColError           = 13
	ColImageAnalysis   = 14
	ColPublicationDate = 16
	ColCostDetails     = 18
	ColBoardName       = 19
	ColPinTitle        = 20
	ColImageTitle      = 21
	ColPinDescription  = 22

	// RowWidth is the number of columns a data-sheet row spans.
	RowWidth = 22
)

// Row is one unit of content work inside a site's data sheet.
// Pin and board IDs can exceed 15 decimal digits and stay strings end-to-end.
type Row struct {
	Number          int // 1-indexed sheet row
	Trigger         string
	Status          string
	Title           string
	PhotoURL        string
	SourceName      string
	SourceLink      string
	EditURL         string
	PublicURL       string
	PinImageURL     string
	PinID           string
	BoardID         string
	PinURL          string
	Error           string
	ImageAnalysis   string
	PublicationDate string
	CostDetails     string
	BoardName       string
	PinTitle        string
	ImageTitle      string
	PinDescription  string
}

// Pending reports whether the row is eligible for automated pickup: it has a
// title and neither trigger nor status set.
func (r *Row) Pending() bool {
	return strings.TrimSpace(r.Title) != "" &&
		strings.TrimSpace(r.Trigger) == "" &&
		strings.TrimSpace(r.Status) == ""
}

// RowUpdate is a sparse patch: only non-nil fields are written back, so
// writers never clobber columns they do not own.
type RowUpdate struct {
	Trigger         *string
	Status          *string
	EditURL         *string
	PublicURL       *string
	PinImageURL     *string
	PinID           *string
	BoardID         *string
	PinURL          *string
	Error           *string
	ImageAnalysis   *string
	PublicationDate *string
	CostDetails     *string
	BoardName       *string
	PinTitle        *string
	ImageTitle      *string
	PinDescription  *string
}

// Set returns a pointer for use in RowUpdate literals.
func Set(v string) *string { return &v }

// Cells maps the patch onto (column, value) pairs in column order.
func (u *RowUpdate) Cells() map[int]string {
	cells := make(map[int]string)
	put := func(col int, v *string) {
		if v != nil {
			cells[col] = *v
		}
	}
	put(ColTrigger, u.Trigger)
	put(ColStatus, u.Status)
	put(ColEditURL, u.EditURL)
	put(ColPublicURL, u.PublicURL)
	put(ColPinImageURL, u.PinImageURL)
	put(ColPinID, u.PinID)
	put(ColBoardID, u.BoardID)
	put(ColPinURL, u.PinURL)
	put(ColError, u.Error)
	put(ColImageAnalysis, u.ImageAnalysis)
	put(ColPublicationDate, u.PublicationDate)
	put(ColCostDetails, u.CostDetails)
	put(ColBoardName, u.BoardName)
	put(ColPinTitle, u.PinTitle)
	put(ColImageTitle, u.ImageTitle)
	put(ColPinDescription, u.PinDescription)
	return cells
}

// DataSheetPrefix is the naming convention for per-site data sheets.
const DataSheetPrefix = "Data-"

// DataSheetName returns the data-sheet name for a site.
func DataSheetName(siteName string) string {
	return DataSheetPrefix + siteName
}

// SiteFromDataSheet extracts the site name from a data-sheet name.
func SiteFromDataSheet(sheetName string) (string, error) {
	if !strings.HasPrefix(sheetName, DataSheetPrefix) {
		return "", fmt.Errorf("sheet %q does not match the %s{SiteName} convention", sheetName, DataSheetPrefix)
	}
	site := strings.TrimPrefix(sheetName, DataSheetPrefix)
	if site == "" {
		return "", fmt.Errorf("sheet %q has an empty site name", sheetName)
	}
	return site, nil
}

// DateLayout is the layout used for dates written to sheet cells.
const DateLayout = "2006-01-02 15:04:05"

// FormatDate formats a timestamp for a sheet cell.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }
