package models

import "time"

// Source identifies an external service a scanner queries.
type Source string

const (
	SourceGitHub Source = "github"
	SourceGoogle Source = "google"
	SourceDemo   Source = "demo"
)

// Human-readable labels for credentials, used in disclaimers and metadata.
const (
	LabelGitHub    = "GitHub API"
	LabelGoogleKey = "Google Search API"
	LabelGoogleCX  = "Google Search Engine ID"
	LabelOpenAI    = "OpenAI API"
)

// Severity levels for findings, ordered from most to least urgent.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// SeverityRank maps a severity to a sortable weight (lower = more urgent).
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	case SeverityInfo:
		return 4
	default:
		return 5
	}
}

// IsValidSeverity reports whether s is one of the known severity levels.
func IsValidSeverity(s string) bool {
	return SeverityRank(s) < 5
}

// Mode is the operating mode of a scan.
type Mode string

const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

// Credentials holds the per-service secrets supplied for one scan.
// The core never persists these; the caller owns their lifecycle.
type Credentials struct {
	GitHubToken string
	GoogleKey   string
	GoogleCX    string
	OpenAIKey   string
}

// HasGitHub reports whether a GitHub token was supplied.
func (c Credentials) HasGitHub() bool { return c.GitHubToken != "" }

// HasGoogle reports whether both Google search credentials were supplied.
func (c Credentials) HasGoogle() bool { return c.GoogleKey != "" && c.GoogleCX != "" }

// HasOpenAI reports whether an OpenAI key was supplied.
func (c Credentials) HasOpenAI() bool { return c.OpenAIKey != "" }

// CredentialStatus is the probe outcome for one credential.
// Recomputed on every scan; never cached between invocations.
type CredentialStatus struct {
	Label    string `json:"label"`
	Provided bool   `json:"provided"`
	Valid    bool   `json:"valid"`
	Reason   string `json:"reason,omitempty"`
}

// ScanMode is the resolved operating mode plus the credential split
// that produced it. Computed once per scan, immutable after.
type ScanMode struct {
	Mode        Mode     `json:"mode"`
	ValidKeys   []string `json:"valid_keys"`
	InvalidKeys []string `json:"invalid_keys"`
	Disclaimer  string   `json:"disclaimer,omitempty"`
}

// EnrichmentEnabled reports whether the AI enrichment stage may run.
func (m ScanMode) EnrichmentEnabled() bool {
	for _, k := range m.ValidKeys {
		if k == LabelOpenAI {
			return true
		}
	}
	return false
}

// QueryPayload is one query string bound for a single source.
type QueryPayload struct {
	Source   Source `json:"source"`
	Query    string `json:"query"`
	Priority int    `json:"priority"` // lower runs first
}

// Finding is one normalized unit of evidence from a source scanner
// or the demo dataset. Identity for deduplication is the URL.
type Finding struct {
	ID             string    `json:"id"`
	Source         Source    `json:"source"`
	URL            string    `json:"url"`
	Title          string    `json:"title,omitempty"`
	Snippet        string    `json:"snippet"`
	Severity       string    `json:"severity"`
	Recommendation string    `json:"recommendation,omitempty"`
	Confidence     float64   `json:"confidence"`
	Query          string    `json:"query,omitempty"`
	Validated      *bool     `json:"validated,omitempty"`
	ValidationNote string    `json:"validation_note,omitempty"`
	BusinessImpact string    `json:"business_impact,omitempty"`
	IsDemo         bool      `json:"is_demo,omitempty"`
	FoundAt        time.Time `json:"found_at"`
}

// SourceStats counts query outcomes for one source within a scan.
// Invariant: Succeeded+Failed <= Queries; queries past a rate-limit
// stop are counted as planned but never attempted.
type SourceStats struct {
	Queries     int  `json:"queries"`
	Succeeded   int  `json:"succeeded"`
	Failed      int  `json:"failed"`
	RateLimited bool `json:"rate_limited,omitempty"`
}

// ScanMetadata aggregates counters for one completed scan.
type ScanMetadata struct {
	ScanID      string                 `json:"scan_id"`
	Domain      string                 `json:"domain"`
	StartedAt   time.Time              `json:"started_at"`
	Duration    time.Duration          `json:"duration"`
	Mode        Mode                   `json:"mode"`
	ValidKeys   []string               `json:"valid_keys"`
	InvalidKeys []string               `json:"invalid_keys"`
	Disclaimer  string                 `json:"disclaimer,omitempty"`
	Sources     map[Source]SourceStats `json:"sources"`
	Enriched    bool                   `json:"enriched"`
}

// TotalQueries sums planned queries across sources.
func (m ScanMetadata) TotalQueries() int {
	total := 0
	for _, s := range m.Sources {
		total += s.Queries
	}
	return total
}

// TotalFailed sums failed queries across sources.
func (m ScanMetadata) TotalFailed() int {
	total := 0
	for _, s := range m.Sources {
		total += s.Failed
	}
	return total
}

// ScanReport is the consolidated scan result consumed by reporters,
// storage, and the policy engine.
type ScanReport struct {
	Metadata ScanMetadata `json:"metadata"`
	Findings []Finding    `json:"findings"`
}

// CountBySeverity tallies findings per severity level.
func (r *ScanReport) CountBySeverity() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// ProgressEvent is a transient phase notification; observed by callers,
// never stored.
type ProgressEvent struct {
	Phase   string `json:"phase"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// ProgressFunc receives progress events during a scan. Implementations
// must not block; the orchestrator calls them inline between phases.
type ProgressFunc func(ProgressEvent)
