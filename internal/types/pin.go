package types

// PinText is the generated Pinterest copy for one row.
type PinText struct {
	PinterestTitle       string `json:"pinterest_title"`
	PinterestDescription string `json:"pinterest_description"`
	ImageTitle           string `json:"image_title"`
	ChosenBoardName      string `json:"chosen_board_name"`
}

// PinPayload is the outbound delivery-bridge request. Board ids can exceed
// 15 decimal digits, so they are serialized as strings.
type PinPayload struct {
	RowNumber       int    `json:"row_number"`
	BoardName       string `json:"board_name"`
	BoardID         string `json:"board_id"`
	ImageURL        string `json:"image_url"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DestinationLink string `json:"destination_link"`
	SheetName       string `json:"sheet_name"`
}

// ImageAsset is a rendered image persisted to shared storage.
type ImageAsset struct {
	ViewURL     string
	DownloadURL string
}
