package demo

import (
	"strings"
	"testing"
	"time"

	"github.com/mlevkin/leakradar/internal/models"
)

func TestFindingsFixedSize(t *testing.T) {
	got := Findings("example.com", time.Now())
	if len(got) != DatasetSize {
		t.Fatalf("expected %d findings, got %d", DatasetSize, len(got))
	}
}

func TestFindingsAllFlaggedDemo(t *testing.T) {
	for _, f := range Findings("example.com", time.Now()) {
		if !f.IsDemo {
			t.Errorf("finding %s not flagged as demo", f.ID)
		}
		if f.Source != models.SourceDemo {
			t.Errorf("finding %s has source %s, want %s", f.ID, f.Source, models.SourceDemo)
		}
		if !strings.Contains(f.Snippet, "SAMPLE DATA") {
			t.Errorf("finding %s snippet does not mark itself as sample data", f.ID)
		}
	}
}

func TestFindingsSeveritySpread(t *testing.T) {
	bySeverity := make(map[string]int)
	for _, f := range Findings("example.com", time.Now()) {
		if !models.IsValidSeverity(f.Severity) {
			t.Errorf("finding %s has invalid severity %q", f.ID, f.Severity)
		}
		bySeverity[f.Severity]++
	}

	// Every level must be represented so reports demonstrate the full range.
	for _, sev := range []string{models.SeverityCritical, models.SeverityHigh,
		models.SeverityMedium, models.SeverityLow, models.SeverityInfo} {
		if bySeverity[sev] == 0 {
			t.Errorf("no demo finding with severity %s", sev)
		}
	}
}

func TestFindingsUniqueURLs(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range Findings("example.com", time.Now()) {
		if seen[f.URL] {
			t.Errorf("duplicate demo URL %s", f.URL)
		}
		seen[f.URL] = true
	}
}
