// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/diriredouane/AI-Recipe-Automator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintBrief outputs a human-readable summary of a generated content brief.
func (p *Printer) PrintBrief(brief *types.ContentBrief) {
	if brief == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Keyword:  %s\n", brief.TargetKeyword))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", brief.SEOTitle))
	sb.WriteString("\n")

	if len(brief.LSIKeywords) > 0 {
		sb.WriteString("LSI Keywords:\n")
		count := min(len(brief.LSIKeywords), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", brief.LSIKeywords[i]))
		}
		if len(brief.LSIKeywords) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(brief.LSIKeywords)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	sections := outlineSections(brief.OutlineMarkdown)
	if len(sections) > 0 {
		sb.WriteString("Outline:\n")
		count := min(len(sections), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", sections[i]))
		}
		if len(sections) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(sections)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Recipe:   %s (%d ingredients, %d steps)",
		brief.Recipe.Title, len(brief.Recipe.Ingredients), len(brief.Recipe.Instructions)))

	p.printBox("CONTENT BRIEF", sb.String())
}

// PrintCostSummary outputs the per-call model spend for a finished row.
func (p *Printer) PrintCostSummary(summary string) {
	if strings.TrimSpace(summary) == "" {
		return
	}
	p.printBox("MODEL COSTS", strings.TrimSpace(summary))
}

// PrintPinPayload outputs the pin request handed to the delivery bridge.
func (p *Printer) PrintPinPayload(payload *types.PinPayload) {
	if payload == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Row:      %d (%s)\n", payload.RowNumber, payload.SheetName))
	sb.WriteString(fmt.Sprintf("Board:    %s\n", payload.BoardName))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", payload.Title))
	sb.WriteString(fmt.Sprintf("Link:     %s", payload.DestinationLink))

	p.printBox("PIN REQUEST", sb.String())
}

// outlineSections extracts the heading lines of an outline.
func outlineSections(markdown string) []string {
	var sections []string
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			sections = append(sections, strings.TrimSpace(strings.TrimLeft(line, "#")))
		}
	}
	return sections
}
