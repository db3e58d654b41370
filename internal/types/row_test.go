package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  Trigger
		known bool
	}{
		{"ok", "OK", TriggerOK, true},
		{"draft", "DRAFT", TriggerDraft, true},
		{"pin", "PIN", TriggerPin, true},
		{"pin link", "PIN_LINK", TriggerPinLink, true},
		{"update article", "UPDATE_ARTICLE", TriggerUpdateArticle, true},
		{"add card", "ADD_CARD", TriggerAddCard, true},
		{"auto", "AUTO", TriggerAuto, true},
		{"whitespace trimmed", "  OK  ", TriggerOK, true},
		{"empty", "", "", false},
		{"status text", "published (auto)", "", false},
		{"waiting marker", MarkerWaiting, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTrigger(tt.raw)
			assert.Equal(t, tt.known, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRowPending(t *testing.T) {
	assert.True(t, (&Row{Title: "Beef Stew"}).Pending())
	assert.False(t, (&Row{Title: "Beef Stew", Trigger: "OK"}).Pending())
	assert.False(t, (&Row{Title: "Beef Stew", Status: "draft created"}).Pending())
	assert.False(t, (&Row{}).Pending())
	assert.False(t, (&Row{Title: "   "}).Pending())
}

func TestSiteFromDataSheet(t *testing.T) {
	site, err := SiteFromDataSheet("Data-MyKitchen")
	require.NoError(t, err)
	assert.Equal(t, "MyKitchen", site)

	_, err = SiteFromDataSheet("Config_Accounts")
	assert.Error(t, err)

	_, err = SiteFromDataSheet("Data-")
	assert.Error(t, err)

	assert.Equal(t, "Data-MyKitchen", DataSheetName("MyKitchen"))
}

func TestRowUpdateCells(t *testing.T) {
	u := &RowUpdate{
		Status:   Set("draft created"),
		Trigger:  Set(""),
		PinTitle: Set("Glazed Beef Loin"),
	}

	cells := u.Cells()
	require.Len(t, cells, 3)
	assert.Equal(t, "draft created", cells[ColStatus])
	assert.Equal(t, "", cells[ColTrigger])
	assert.Equal(t, "Glazed Beef Loin", cells[ColPinTitle])

	_, hasError := cells[ColError]
	assert.False(t, hasError, "unset fields must not be written")
}
