package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mlevkin/leakradar/internal/models"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func baseReport() *models.ScanReport {
	return &models.ScanReport{
		Metadata: models.ScanMetadata{
			Domain: "example.com",
			Mode:   models.ModeLive,
			Sources: map[models.Source]models.SourceStats{
				models.SourceGitHub: {Queries: 5, Succeeded: 5},
				models.SourceGoogle: {},
			},
		},
		Findings: []models.Finding{
			{ID: "f-1", Source: models.SourceGitHub, Severity: models.SeverityCritical, URL: "https://github.com/a/b"},
			{ID: "f-2", Source: models.SourceGitHub, Severity: models.SeverityLow, URL: "https://github.com/c/d"},
		},
	}
}

func TestEvaluateNilPolicy(t *testing.T) {
	var p *Policy
	result := p.Evaluate(baseReport())
	if !result.Pass {
		t.Error("nil policy should pass")
	}
}

func TestMaxFindingsPass(t *testing.T) {
	p := &Policy{Rules: Rules{MaxFindings: intPtr(5)}}
	result := p.Evaluate(baseReport())
	if !result.Pass {
		t.Errorf("expected pass, got violations: %v", result.Violations)
	}
}

func TestMaxFindingsFail(t *testing.T) {
	p := &Policy{Rules: Rules{MaxFindings: intPtr(1)}}
	result := p.Evaluate(baseReport())
	if result.Pass {
		t.Error("expected fail: 2 findings exceeds limit 1")
	}
	if len(result.Violations) != 1 || result.Violations[0].Rule != "max_findings" {
		t.Errorf("expected max_findings violation, got %v", result.Violations)
	}
}

func TestMaxCriticalPass(t *testing.T) {
	p := &Policy{Rules: Rules{MaxCritical: intPtr(1)}}
	result := p.Evaluate(baseReport())
	if !result.Pass {
		t.Errorf("expected pass, got violations: %v", result.Violations)
	}
}

func TestMaxCriticalFail(t *testing.T) {
	p := &Policy{Rules: Rules{MaxCritical: intPtr(0)}}
	result := p.Evaluate(baseReport())
	if result.Pass {
		t.Error("expected fail: 1 critical exceeds limit 0")
	}
	if result.Violations[0].Rule != "max_critical" {
		t.Errorf("expected max_critical, got %s", result.Violations[0].Rule)
	}
}

func TestMaxHighPass(t *testing.T) {
	p := &Policy{Rules: Rules{MaxHigh: intPtr(0)}}
	result := p.Evaluate(baseReport())
	if !result.Pass {
		t.Errorf("expected pass (0 high findings), got violations: %v", result.Violations)
	}
}

func TestRequireLivePass(t *testing.T) {
	p := &Policy{Rules: Rules{RequireLive: boolPtr(true)}}
	result := p.Evaluate(baseReport())
	if !result.Pass {
		t.Errorf("expected pass in live mode, got violations: %v", result.Violations)
	}
}

func TestRequireLiveFail(t *testing.T) {
	p := &Policy{Rules: Rules{RequireLive: boolPtr(true)}}
	report := baseReport()
	report.Metadata.Mode = models.ModeDemo
	result := p.Evaluate(report)
	if result.Pass {
		t.Error("expected fail: demo mode with require_live")
	}
	if result.Violations[0].Rule != "require_live" {
		t.Errorf("expected require_live, got %s", result.Violations[0].Rule)
	}
}

func TestForbidSeveritiesFail(t *testing.T) {
	p := &Policy{Rules: Rules{ForbidSeverities: []string{models.SeverityCritical}}}
	result := p.Evaluate(baseReport())
	if result.Pass {
		t.Error("expected fail: critical severity is forbidden")
	}
}

func TestForbidSeveritiesPass(t *testing.T) {
	p := &Policy{Rules: Rules{ForbidSeverities: []string{models.SeverityHigh}}}
	result := p.Evaluate(baseReport())
	if !result.Pass {
		t.Errorf("expected pass (no high findings), got violations: %v", result.Violations)
	}
}

func TestRequireSourcesPass(t *testing.T) {
	p := &Policy{Rules: Rules{RequireSources: []string{"github"}}}
	result := p.Evaluate(baseReport())
	if !result.Pass {
		t.Errorf("expected pass, got violations: %v", result.Violations)
	}
}

func TestRequireSourcesFailSkipped(t *testing.T) {
	p := &Policy{Rules: Rules{RequireSources: []string{"google"}}}
	result := p.Evaluate(baseReport())
	if result.Pass {
		t.Error("expected fail: google ran zero queries")
	}
}

func TestMultipleViolations(t *testing.T) {
	p := &Policy{
		Rules: Rules{
			MaxFindings: intPtr(0),
			MaxCritical: intPtr(0),
			RequireLive: boolPtr(true),
		},
	}
	report := baseReport()
	report.Metadata.Mode = models.ModeDemo
	result := p.Evaluate(report)
	if result.Pass {
		t.Error("expected fail")
	}
	if len(result.Violations) != 3 {
		t.Errorf("expected 3 violations, got %d: %v", len(result.Violations), result.Violations)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".leakradar-policy.yaml")

	content := `version: "1"
rules:
  max_findings: 10
  max_critical: 0
  require_live: true
  forbid_severities:
    - critical
  require_sources:
    - github
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if p == nil {
		t.Fatal("expected policy, got nil")
	}
	if p.Version != "1" {
		t.Errorf("expected version 1, got %s", p.Version)
	}
	if p.Rules.MaxFindings == nil || *p.Rules.MaxFindings != 10 {
		t.Errorf("expected max_findings 10, got %v", p.Rules.MaxFindings)
	}
	if p.Rules.RequireLive == nil || !*p.Rules.RequireLive {
		t.Errorf("expected require_live true, got %v", p.Rules.RequireLive)
	}
	if len(p.Rules.ForbidSeverities) != 1 || p.Rules.ForbidSeverities[0] != "critical" {
		t.Errorf("expected forbid critical, got %v", p.Rules.ForbidSeverities)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	p, err := LoadFromFile("/nonexistent/path")
	if err != nil {
		t.Errorf("expected nil error for missing file, got %v", err)
	}
	if p != nil {
		t.Error("expected nil policy for missing file")
	}
}
