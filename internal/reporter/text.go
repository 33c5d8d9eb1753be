package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mlevkin/leakradar/internal/models"
)

// TextReporter generates human-readable scan reports
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new text reporter
func NewTextReporter(writer io.Writer) *TextReporter {
	return &TextReporter{
		writer: writer,
	}
}

// Generate creates a text report from a scan result
func (r *TextReporter) Generate(report *models.ScanReport) error {
	r.printHeader()
	r.printf("Domain:    %s\n", report.Metadata.Domain)
	r.printf("Scan ID:   %s\n", report.Metadata.ScanID)
	r.printf("Started:   %s\n", formatTimestamp(report.Metadata.StartedAt))
	r.printf("Duration:  %s\n", report.Metadata.Duration.Round(time.Millisecond))
	r.printf("Mode:      %s\n\n", strings.ToUpper(string(report.Metadata.Mode)))

	if report.Metadata.Disclaimer != "" {
		r.printf("NOTE: %s\n\n", report.Metadata.Disclaimer)
	}

	r.printSummary(report)
	r.printSources(report)
	r.printFindings(report)

	return nil
}

func (r *TextReporter) printHeader() {
	r.printf("╔════════════════════════════════════════════╗\n")
	r.printf("║         LeakRadar Exposure Report          ║\n")
	r.printf("╚════════════════════════════════════════════╝\n\n")
}

func (r *TextReporter) printSummary(report *models.ScanReport) {
	r.printf("Summary:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Total Findings: %d\n", len(report.Findings))

	counts := report.CountBySeverity()
	for _, sev := range []string{models.SeverityCritical, models.SeverityHigh,
		models.SeverityMedium, models.SeverityLow, models.SeverityInfo} {
		if counts[sev] > 0 {
			r.printf("  %s: %d\n", capitalize(sev), counts[sev])
		}
	}

	if len(report.Metadata.ValidKeys) > 0 {
		r.printf("  Valid Credentials: %s\n", strings.Join(report.Metadata.ValidKeys, ", "))
	}
	if len(report.Metadata.InvalidKeys) > 0 {
		r.printf("  Invalid Credentials: %s\n", strings.Join(report.Metadata.InvalidKeys, ", "))
	}
	if report.Metadata.Enriched {
		r.printf("  AI Enrichment: applied\n")
	}
	r.printf("\n")
}

func (r *TextReporter) printSources(report *models.ScanReport) {
	if len(report.Metadata.Sources) == 0 {
		return
	}

	var names []models.Source
	for src := range report.Metadata.Sources {
		names = append(names, src)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	r.printf("Sources:\n")
	r.printf("--------------------------------------------------\n")
	for _, src := range names {
		stats := report.Metadata.Sources[src]
		if stats.Queries == 0 {
			r.printf("  %-8s skipped\n", src)
			continue
		}
		line := fmt.Sprintf("  %-8s %d queries, %d succeeded, %d failed",
			src, stats.Queries, stats.Succeeded, stats.Failed)
		if stats.RateLimited {
			line += " (rate limited)"
		}
		r.printf("%s\n", line)
	}
	r.printf("\n")
}

func (r *TextReporter) printFindings(report *models.ScanReport) {
	if len(report.Findings) == 0 {
		r.printf("No findings.\n")
		return
	}

	// Most urgent first; stable within a severity level.
	findings := make([]models.Finding, len(report.Findings))
	copy(findings, report.Findings)
	sort.SliceStable(findings, func(i, j int) bool {
		return models.SeverityRank(findings[i].Severity) < models.SeverityRank(findings[j].Severity)
	})

	r.printf("Findings:\n")
	r.printf("--------------------------------------------------\n")
	for i, f := range findings {
		r.printf("\n%d. [%s] %s\n", i+1, strings.ToUpper(f.Severity), f.Title)
		if f.URL != "" {
			r.printf("   URL: %s\n", f.URL)
		}
		r.printf("   %s\n", truncateLine(f.Snippet, 120))
		if f.Recommendation != "" {
			r.printf("   Fix: %s\n", f.Recommendation)
		}
		if f.BusinessImpact != "" {
			r.printf("   Impact: %s\n", f.BusinessImpact)
		}
		if f.Validated != nil && *f.Validated {
			r.printf("   Validated by AI review\n")
		}
		if f.IsDemo {
			r.printf("   (sample data)\n")
		}
	}
	r.printf("\n")
}

func (r *TextReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncateLine(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
