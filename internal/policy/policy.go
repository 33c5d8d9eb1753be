package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/mlevkin/leakradar/internal/models"
	"gopkg.in/yaml.v3"
)

// Policy defines enforcement rules for scan results.
type Policy struct {
	Version string `yaml:"version"`
	Rules   Rules  `yaml:"rules"`
}

// Rules contains all configurable policy rules.
type Rules struct {
	MaxFindings      *int     `yaml:"max_findings,omitempty"`
	MaxCritical      *int     `yaml:"max_critical,omitempty"`
	MaxHigh          *int     `yaml:"max_high,omitempty"`
	RequireLive      *bool    `yaml:"require_live,omitempty"`
	ForbidSeverities []string `yaml:"forbid_severities,omitempty"`
	RequireSources   []string `yaml:"require_sources,omitempty"`
}

// Violation is a single policy failure.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result holds the outcome of a policy check.
type Result struct {
	Pass       bool        `json:"pass"`
	Violations []Violation `json:"violations"`
}

// LoadFromFile reads a policy file.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	return &p, nil
}

// FindPolicyFile searches for a policy file in the current directory
// and parent directories up to the filesystem root.
func FindPolicyFile() string {
	names := []string{".leakradar-policy.yaml", ".leakradar-policy.yml"}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range names {
			path := dir + "/" + name
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := dir[:strings.LastIndex(dir, "/")]
		if parent == dir || parent == "" {
			break
		}
		dir = parent
	}

	return ""
}

// Evaluate checks a scan report against the policy rules.
func (p *Policy) Evaluate(report *models.ScanReport) *Result {
	if p == nil {
		return &Result{Pass: true}
	}

	var violations []Violation
	counts := report.CountBySeverity()

	// max_findings
	if p.Rules.MaxFindings != nil {
		if len(report.Findings) > *p.Rules.MaxFindings {
			violations = append(violations, Violation{
				Rule:    "max_findings",
				Message: fmt.Sprintf("total findings %d exceeds limit %d", len(report.Findings), *p.Rules.MaxFindings),
			})
		}
	}

	// max_critical
	if p.Rules.MaxCritical != nil {
		if counts[models.SeverityCritical] > *p.Rules.MaxCritical {
			violations = append(violations, Violation{
				Rule:    "max_critical",
				Message: fmt.Sprintf("critical findings %d exceeds limit %d", counts[models.SeverityCritical], *p.Rules.MaxCritical),
			})
		}
	}

	// max_high
	if p.Rules.MaxHigh != nil {
		if counts[models.SeverityHigh] > *p.Rules.MaxHigh {
			violations = append(violations, Violation{
				Rule:    "max_high",
				Message: fmt.Sprintf("high findings %d exceeds limit %d", counts[models.SeverityHigh], *p.Rules.MaxHigh),
			})
		}
	}

	// require_live
	if p.Rules.RequireLive != nil && *p.Rules.RequireLive {
		if report.Metadata.Mode != models.ModeLive {
			violations = append(violations, Violation{
				Rule:    "require_live",
				Message: fmt.Sprintf("scan ran in %s mode but live mode is required", report.Metadata.Mode),
			})
		}
	}

	// forbid_severities
	if len(p.Rules.ForbidSeverities) > 0 {
		for _, sev := range p.Rules.ForbidSeverities {
			if counts[sev] > 0 {
				violations = append(violations, Violation{
					Rule:    "forbid_severities",
					Message: fmt.Sprintf("forbidden severity %q has %d findings", sev, counts[sev]),
				})
			}
		}
	}

	// require_sources
	if len(p.Rules.RequireSources) > 0 {
		for _, src := range p.Rules.RequireSources {
			stats, found := report.Metadata.Sources[models.Source(src)]
			if !found || stats.Queries == 0 {
				violations = append(violations, Violation{
					Rule:    "require_sources",
					Message: fmt.Sprintf("required source %q did not run", src),
				})
			}
		}
	}

	return &Result{
		Pass:       len(violations) == 0,
		Violations: violations,
	}
}
