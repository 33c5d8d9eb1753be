package reporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mlevkin/leakradar/internal/models"
)

func sampleReport() *models.ScanReport {
	validated := true
	return &models.ScanReport{
		Metadata: models.ScanMetadata{
			ScanID:    "scan-1234",
			Domain:    "example.com",
			StartedAt: time.Date(2026, 8, 15, 10, 30, 45, 0, time.UTC),
			Duration:  3200 * time.Millisecond,
			Mode:      models.ModeLive,
			ValidKeys: []string{models.LabelGitHub},
			Sources: map[models.Source]models.SourceStats{
				models.SourceGitHub: {Queries: 10, Succeeded: 9, Failed: 1},
				models.SourceGoogle: {},
			},
			Enriched: true,
		},
		Findings: []models.Finding{
			{
				ID:             "f-1",
				Source:         models.SourceGitHub,
				URL:            "https://github.com/acme/app/blob/main/.env",
				Title:          "Exposed environment file",
				Snippet:        "DB_PASSWORD=hunter2",
				Severity:       models.SeverityHigh,
				Recommendation: "Rotate the exposed credentials immediately.",
				BusinessImpact: "Attackers can access production data.",
				Validated:      &validated,
				Query:          `"example.com" password`,
			},
			{
				ID:       "f-2",
				Source:   models.SourceGitHub,
				URL:      "https://github.com/acme/app/blob/main/config.yml",
				Title:    "Config file mentioning domain",
				Snippet:  "host: example.com",
				Severity: models.SeverityCritical,
				Query:    `"example.com" config`,
			},
		},
	}
}

func TestTextReporterGenerate(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf)

	if err := r.Generate(sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	expectedFragments := []string{
		"LeakRadar Exposure Report",
		"Domain:    example.com",
		"Mode:      LIVE",
		"Total Findings: 2",
		"Critical: 1",
		"High: 1",
		"Valid Credentials: GitHub API",
		"AI Enrichment: applied",
		"10 queries, 9 succeeded, 1 failed",
		"Rotate the exposed credentials immediately.",
		"Validated by AI review",
	}

	for _, frag := range expectedFragments {
		if !strings.Contains(output, frag) {
			t.Errorf("expected output to contain %q", frag)
		}
	}
}

func TestTextReporterSortsBySeverity(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf)

	if err := r.Generate(sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	critIdx := strings.Index(output, "[CRITICAL]")
	highIdx := strings.Index(output, "[HIGH]")
	if critIdx < 0 || highIdx < 0 {
		t.Fatal("expected both severity labels in output")
	}
	if critIdx > highIdx {
		t.Error("expected critical finding to be listed before high")
	}
}

func TestTextReporterSkippedSource(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf)

	if err := r.Generate(sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "google   skipped") {
		t.Error("expected skipped marker for source with zero queries")
	}
}

func TestTextReporterDemoMode(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf)

	report := sampleReport()
	report.Metadata.Mode = models.ModeDemo
	report.Metadata.Disclaimer = "Running in DEMO mode: results are sample data."
	report.Findings = []models.Finding{
		{
			ID:       "demo-example.com-1",
			Source:   models.SourceDemo,
			Title:    "Sample exposed credentials",
			Snippet:  "SAMPLE DATA - not from your domain",
			Severity: models.SeverityCritical,
			IsDemo:   true,
		},
	}

	if err := r.Generate(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Mode:      DEMO") {
		t.Error("expected DEMO mode line")
	}
	if !strings.Contains(output, "NOTE: Running in DEMO mode") {
		t.Error("expected disclaimer note")
	}
	if !strings.Contains(output, "(sample data)") {
		t.Error("expected sample data marker on demo finding")
	}
}

func TestTextReporterNoFindings(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf)

	report := sampleReport()
	report.Findings = nil

	if err := r.Generate(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "No findings.") {
		t.Error("expected no findings message")
	}
}

func TestTextReporterRateLimitedSource(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf)

	report := sampleReport()
	report.Metadata.Sources[models.SourceGitHub] = models.SourceStats{
		Queries: 10, Succeeded: 2, Failed: 0, RateLimited: true,
	}

	if err := r.Generate(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "(rate limited)") {
		t.Error("expected rate limited marker")
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"critical", "Critical"},
		{"", ""},
		{"a", "A"},
		{"HIGH", "HIGH"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			if got := capitalize(tt.input); got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 2, 15, 10, 30, 45, 0, time.UTC)
	expected := "2026-02-15 10:30:45"
	if got := formatTimestamp(ts); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestTruncateLine(t *testing.T) {
	long := strings.Repeat("x", 150)
	got := truncateLine(long, 120)
	if len(got) != 123 {
		t.Fatalf("expected truncated length 123, got %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected ellipsis suffix")
	}

	multi := "line one\nline two"
	if got := truncateLine(multi, 120); strings.Contains(got, "\n") {
		t.Error("expected newlines flattened")
	}
}
