package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

func TestSendPin(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	payload := &types.PinPayload{
		RowNumber:       5,
		BoardName:       "Weeknight Dinners",
		BoardID:         "987654321098765432",
		ImageURL:        "https://drive.google.com/uc?export=download&id=x",
		Title:           "Cozy Beef Stew",
		Description:     "Hearty and rich.",
		DestinationLink: "https://site.example/beef-stew/",
		SheetName:       "Data-Foo",
	}
	require.NoError(t, New().SendPin(context.Background(), srv.URL, payload))

	assert.Equal(t, float64(5), captured["row_number"])
	assert.Equal(t, "987654321098765432", captured["board_id"], "board id travels as a string")
	assert.Equal(t, "Data-Foo", captured["sheet_name"])
}

func TestSendPin_Non2xxIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := New().SendPin(context.Background(), srv.URL, &types.PinPayload{})
	var dErr *DeliveryError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, "pin", dErr.Kind)
	assert.Contains(t, err.Error(), "429")
}

func TestSendPin_NoWebhookURL(t *testing.T) {
	err := New().SendPin(context.Background(), "", &types.PinPayload{})
	assert.Error(t, err)
}

func TestRequestBoardList(t *testing.T) {
	var captured map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
	}))
	defer srv.Close()

	require.NoError(t, New().RequestBoardList(context.Background(), srv.URL, "Foo"))
	assert.Equal(t, "list_boards", captured["action"])
	assert.Equal(t, "Foo", captured["site_name"])
}

func TestQuoteLargeNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "15-digit id is quoted",
			in:   `{"pin_id": 987654321098765}`,
			want: `{"pin_id": "987654321098765"}`,
		},
		{
			name: "18-digit id with no space",
			in:   `{"board_id":987654321098765432}`,
			want: `{"board_id": "987654321098765432"}`,
		},
		{
			name: "14-digit number untouched",
			in:   `{"pin_id": 98765432109876}`,
			want: `{"pin_id": 98765432109876}`,
		},
		{
			name: "already quoted id untouched",
			in:   `{"pin_id": "987654321098765"}`,
			want: `{"pin_id": "987654321098765"}`,
		},
		{
			name: "nested payload",
			in:   `{"data": {"id": 111222333444555666, "count": 3}}`,
			want: `{"data": {"id": "111222333444555666", "count": 3}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := QuoteLargeNumbers([]byte(tt.in))
			assert.Equal(t, tt.want, string(out))

			var parsed map[string]any
			assert.NoError(t, json.Unmarshal(out, &parsed), "result stays valid JSON")
		})
	}
}
