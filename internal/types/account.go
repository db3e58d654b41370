package types

// Account active-flag values. The configuration sheet only allows these two.
const (
	AccountActive = "Active"
	AccountPaused = "Paused"
)

// AccountConfig is the per-site configuration record read from the
// Config_Accounts sheet. One record per site name.
type AccountConfig struct {
	SiteName      string `validate:"required"`
	Active        string `validate:"required,oneof=Active Paused"`
	WPBaseURL     string `validate:"required,url"`
	WPRecipeAPI   string
	WPUser        string `validate:"required"`
	WPAppPassword string `validate:"required"`
	WPAuthorID    int    `validate:"gte=0"`
	FacebookURL   string
	SitemapURL    string

	// Delivery-bridge webhook endpoints.
	MainWebhookURL      string
	ListWebhookURL      string
	BoardInfoWebhookURL string

	// Slide template ids. FeaturedTemplateID is optional; when empty the
	// featured-image remaster step passes the source photo through.
	PinTemplateID      string
	CollageTemplateID  string
	FeaturedTemplateID string
	ExportFolderID     string

	// Quota state, mutated only through the scheduler's counter update.
	MaxPostsPerDay int `validate:"gt=0"`
	DailyCounter   int `validate:"gte=0"`
	LastResetDate  string

	// RowIndex is the 1-indexed row of this record in the configuration
	// sheet, kept so counter writes do not need to re-resolve the account.
	RowIndex int
}

// IsActive reports whether row processing may run for this account.
func (a *AccountConfig) IsActive() bool { return a.Active == AccountActive }

// DefaultMaxPostsPerDay applies when the configuration cell is empty.
const DefaultMaxPostsPerDay = 6

// Board is one entry of the cross-account Pinterest board catalog.
// Unique on (SiteName, Name).
type Board struct {
	SiteName      string
	Name          string
	ID            string
	PinCount      string
	FollowerCount string
	Description   string
	LastChecked   string
}
