// Package cost tracks per-call LLM spend and renders the per-row summary
// written back to the cost column.
package cost

import (
	"fmt"
	"strings"
	"sync"

	"github.com/diriredouane/AI-Recipe-Automator/internal/llm"
)

// Pricing is USD per one million tokens.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// pricingTable maps model names to their published per-million-token rates.
// Unknown models price at zero so the summary still itemizes the call.
var pricingTable = map[string]Pricing{
	"gemini-2.5-pro":        {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-2.5-flash":      {InputPerMillion: 0.30, OutputPerMillion: 2.50},
	"gemini-2.5-flash-lite": {InputPerMillion: 0.10, OutputPerMillion: 0.40},
}

// Entry is one priced LLM call.
type Entry struct {
	Name         string
	Model        string
	InputTokens  int32
	OutputTokens int32
	USD          float64
}

// Compute prices a single call.
func Compute(model string, usage llm.Usage) float64 {
	p, ok := pricingTable[model]
	if !ok {
		return 0
	}
	return float64(usage.InputTokens)/1e6*p.InputPerMillion +
		float64(usage.OutputTokens)/1e6*p.OutputPerMillion
}

// Tracker accumulates the cost entries of one row-processing run.
// Safe for concurrent use; parallel pipeline branches record into it.
type Tracker struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Record adds one priced call under a human-readable step name.
func (t *Tracker) Record(name, model string, usage llm.Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{
		Name:         name,
		Model:        model,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		USD:          Compute(model, usage),
	})
}

// Total returns the accumulated spend in USD.
func (t *Tracker) Total() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total float64
	for _, e := range t.entries {
		total += e.USD
	}
	return total
}

// Entries returns a copy of the recorded entries in call order.
func (t *Tracker) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Summary renders the itemized breakdown written to the cost column, on both
// success and failure paths.
func (t *Tracker) Summary() string {
	entries := t.Entries()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: $%.6f", t.Total()))
	if len(entries) == 0 {
		return sb.String()
	}
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("\n%s (%s): $%.6f", e.Name, e.Model, e.USD))
	}
	return sb.String()
}
