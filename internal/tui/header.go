package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mlevkin/leakradar/internal/models"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 5

// renderHeader produces the header string from report metadata.
func renderHeader(report *models.ScanReport, width int) string {
	var b strings.Builder

	// Line 1: title, domain and mode
	modeText := modeStyle(string(report.Metadata.Mode)).Render(
		strings.ToUpper(string(report.Metadata.Mode)),
	)
	b.WriteString(fmt.Sprintf("LeakRadar  %s  Mode: %s", report.Metadata.Domain, modeText))
	b.WriteString("\n")

	// Line 2: findings and query totals
	b.WriteString(fmt.Sprintf("Findings: %d  Queries: %d  Failed: %d",
		len(report.Findings), report.Metadata.TotalQueries(), report.Metadata.TotalFailed()))
	if report.Metadata.Enriched {
		b.WriteString("  AI: enriched")
	}
	b.WriteString("\n")

	// Line 3: severity breakdown
	counts := report.CountBySeverity()
	sevParts := make([]string, 0, 5)
	for _, sev := range []string{"critical", "high", "medium", "low", "info"} {
		if count, ok := counts[sev]; ok && count > 0 {
			label := fmt.Sprintf("%s:%d", strings.ToUpper(sev[:1]), count)
			sevParts = append(sevParts, severityStyle(sev).Render(label))
		}
	}
	if len(sevParts) > 0 {
		b.WriteString(strings.Join(sevParts, "  "))
	}
	b.WriteString("\n")

	// Line 4: per-source stats
	b.WriteString(renderSourceLine(report.Metadata.Sources))

	return styleHeader.Width(width).Render(b.String())
}

func renderSourceLine(sources map[models.Source]models.SourceStats) string {
	if len(sources) == 0 {
		return ""
	}

	names := make([]models.Source, 0, len(sources))
	for src := range sources {
		names = append(names, src)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	parts := make([]string, 0, len(names))
	for _, src := range names {
		stats := sources[src]
		if stats.Queries == 0 {
			parts = append(parts, fmt.Sprintf("%s: skipped", src))
			continue
		}
		part := fmt.Sprintf("%s: %d/%d", src, stats.Succeeded, stats.Queries)
		if stats.RateLimited {
			part += " (limited)"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "  ")
}
