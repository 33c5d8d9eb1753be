package tui

import (
	"fmt"
	"strings"

	"github.com/mlevkin/leakradar/internal/models"
)

// detailHeight is the fixed number of lines for the detail panel.
const detailHeight = 6

// renderDetail produces the detail view for a selected finding.
func renderDetail(f *models.Finding, width int) string {
	if f == nil {
		return styleDetailPanel.Width(width).Render("No finding selected")
	}

	var b strings.Builder

	sevStyled := severityStyle(f.Severity).Render(strings.ToUpper(f.Severity))
	b.WriteString(fmt.Sprintf("%s  %s", sevStyled, f.Title))
	if f.IsDemo {
		b.WriteString("  [sample]")
	}
	b.WriteString("\n")

	if f.URL != "" {
		b.WriteString(fmt.Sprintf("URL: %s\n", f.URL))
	}
	if f.Snippet != "" {
		b.WriteString(fmt.Sprintf("Snippet: %s\n", truncate(strings.ReplaceAll(f.Snippet, "\n", " "), 100)))
	}
	if f.Recommendation != "" {
		b.WriteString(fmt.Sprintf("Fix: %s\n", f.Recommendation))
	}

	parts := make([]string, 0, 3)
	if f.Query != "" {
		parts = append(parts, fmt.Sprintf("Query: %s", truncate(f.Query, 40)))
	}
	if f.Confidence > 0 {
		parts = append(parts, fmt.Sprintf("Confidence: %.0f%%", f.Confidence*100))
	}
	if f.Validated != nil && *f.Validated {
		parts = append(parts, "AI validated")
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, "  "))
	}

	return styleDetailPanel.Width(width).Render(b.String())
}
