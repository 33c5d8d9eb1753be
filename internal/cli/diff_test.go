package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mlevkin/leakradar/internal/models"
)

func diffReport(ts time.Time, findings []models.Finding) *models.ScanReport {
	return &models.ScanReport{
		Metadata: models.ScanMetadata{
			ScanID:    "diff-test",
			Domain:    "example.com",
			StartedAt: ts,
			Mode:      models.ModeLive,
		},
		Findings: findings,
	}
}

func TestComputeDiff(t *testing.T) {
	baseTime := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	currTime := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	baseline := diffReport(baseTime, []models.Finding{
		{ID: "1", Source: models.SourceGitHub, URL: "https://a", Title: "old leak", Severity: models.SeverityHigh},
		{ID: "2", Source: models.SourceGoogle, URL: "https://b", Title: "fixed leak", Severity: models.SeverityLow},
	})
	current := diffReport(currTime, []models.Finding{
		{ID: "3", Source: models.SourceGitHub, URL: "https://a", Title: "old leak", Severity: models.SeverityHigh},
		{ID: "4", Source: models.SourceGitHub, URL: "https://c", Title: "new leak", Severity: models.SeverityCritical},
	})

	result := computeDiff(baseline, current)

	if result.Summary.BaselineTotal != 2 || result.Summary.CurrentTotal != 2 {
		t.Errorf("totals = %d/%d, want 2/2",
			result.Summary.BaselineTotal, result.Summary.CurrentTotal)
	}
	if result.Summary.NewCount != 1 {
		t.Errorf("NewCount = %d, want 1", result.Summary.NewCount)
	}
	if result.Summary.ResolvedCount != 1 {
		t.Errorf("ResolvedCount = %d, want 1", result.Summary.ResolvedCount)
	}
	if result.Summary.Delta != 0 {
		t.Errorf("Delta = %d, want 0", result.Summary.Delta)
	}

	if len(result.NewFindings) != 1 || result.NewFindings[0].URL != "https://c" {
		t.Errorf("unexpected new findings: %+v", result.NewFindings)
	}
	if len(result.ResolvedFindings) != 1 || result.ResolvedFindings[0].URL != "https://b" {
		t.Errorf("unexpected resolved findings: %+v", result.ResolvedFindings)
	}

	if result.Summary.NewBySeverity["critical"] != 1 {
		t.Errorf("NewBySeverity = %v", result.Summary.NewBySeverity)
	}
	if result.Summary.NewBySource["github"] != 1 {
		t.Errorf("NewBySource = %v", result.Summary.NewBySource)
	}
}

func TestComputeDiffNoChanges(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	findings := []models.Finding{
		{ID: "1", Source: models.SourceGitHub, URL: "https://a", Title: "leak", Severity: models.SeverityHigh},
	}

	result := computeDiff(diffReport(ts, findings), diffReport(ts.Add(time.Hour), findings))

	if result.Summary.NewCount != 0 || result.Summary.ResolvedCount != 0 {
		t.Errorf("expected no drift, got new=%d resolved=%d",
			result.Summary.NewCount, result.Summary.ResolvedCount)
	}
}

func TestFindingKey(t *testing.T) {
	withURL := models.Finding{Source: models.SourceGitHub, URL: "https://a", Title: "x"}
	if findingKey(withURL) != "https://a" {
		t.Errorf("key = %q, want URL", findingKey(withURL))
	}

	withoutURL := models.Finding{Source: models.SourceDemo, Title: "sample"}
	if findingKey(withoutURL) != "demo|sample" {
		t.Errorf("key = %q, want source|title fallback", findingKey(withoutURL))
	}
}

func TestLoadReportFromFile(t *testing.T) {
	report := diffReport(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), []models.Finding{
		{ID: "1", Source: models.SourceGitHub, URL: "https://a", Title: "leak", Severity: models.SeverityHigh},
	})

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "baseline.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	loaded, err := loadReportFromFile(path)
	if err != nil {
		t.Fatalf("loadReportFromFile failed: %v", err)
	}
	if loaded.Metadata.Domain != "example.com" {
		t.Errorf("domain = %q", loaded.Metadata.Domain)
	}
	if len(loaded.Findings) != 1 {
		t.Errorf("findings = %d, want 1", len(loaded.Findings))
	}
}

func TestLoadReportFromFileMissing(t *testing.T) {
	if _, err := loadReportFromFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadReportFromFileInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := loadReportFromFile(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
