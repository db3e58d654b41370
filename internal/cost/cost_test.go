package cost

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diriredouane/AI-Recipe-Automator/internal/llm"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		model string
		usage llm.Usage
		want  float64
	}{
		{
			name:  "pro pricing",
			model: "gemini-2.5-pro",
			usage: llm.Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000},
			want:  11.25,
		},
		{
			name:  "flash pricing",
			model: "gemini-2.5-flash",
			usage: llm.Usage{InputTokens: 2_000_000, OutputTokens: 0},
			want:  0.60,
		},
		{
			name:  "lite pricing",
			model: "gemini-2.5-flash-lite",
			usage: llm.Usage{InputTokens: 0, OutputTokens: 1_000_000},
			want:  0.40,
		},
		{
			name:  "unknown model prices at zero",
			model: "some-future-model",
			usage: llm.Usage{InputTokens: 500, OutputTokens: 500},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Compute(tt.model, tt.usage), 1e-9)
		})
	}
}

func TestTrackerSummary(t *testing.T) {
	tr := NewTracker()
	tr.Record("Extract Title/Keyword (1st pass)", "gemini-2.5-flash", llm.Usage{InputTokens: 1000, OutputTokens: 100})
	tr.Record("WP Outline", "gemini-2.5-pro", llm.Usage{InputTokens: 2000, OutputTokens: 4000})

	summary := tr.Summary()
	require.True(t, strings.HasPrefix(summary, "Total: $"))
	assert.Contains(t, summary, "Extract Title/Keyword (1st pass) (gemini-2.5-flash): $")
	assert.Contains(t, summary, "WP Outline (gemini-2.5-pro): $")

	lines := strings.Split(summary, "\n")
	require.Len(t, lines, 4) // total, blank, two entries
	assert.Equal(t, "", lines[1])
}

func TestTrackerEmptySummary(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, "Total: $0.000000", tr.Summary())
}

func TestTrackerTotal(t *testing.T) {
	tr := NewTracker()
	tr.Record("a", "gemini-2.5-flash", llm.Usage{InputTokens: 1_000_000})
	tr.Record("b", "gemini-2.5-flash", llm.Usage{OutputTokens: 1_000_000})
	assert.InDelta(t, 2.80, tr.Total(), 1e-9)
	assert.Len(t, tr.Entries(), 2)
}
