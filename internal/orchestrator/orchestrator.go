// Package orchestrator sequences a scan: credential validation, mode
// resolution, source scanning, deduplication, optional AI enrichment,
// and final report assembly. A scan that starts always reaches Done;
// every failure past input validation degrades instead of aborting.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mlevkin/leakradar/internal/credcheck"
	"github.com/mlevkin/leakradar/internal/dedup"
	"github.com/mlevkin/leakradar/internal/demo"
	"github.com/mlevkin/leakradar/internal/enrich"
	"github.com/mlevkin/leakradar/internal/mode"
	"github.com/mlevkin/leakradar/internal/models"
	"github.com/mlevkin/leakradar/internal/queryplan"
	"github.com/mlevkin/leakradar/internal/sources"
	"github.com/mlevkin/leakradar/internal/validate"
)

// Phase labels emitted with progress events.
const (
	PhaseInit        = "init"
	PhaseCredentials = "credentials"
	PhaseMode        = "mode"
	PhaseGitHub      = "github"
	PhaseGoogle      = "google"
	PhaseDemo        = "demo"
	PhaseDedup       = "dedup"
	PhaseEnrich      = "enrich"
	PhaseDone        = "done"
)

// Fixed phase-to-percent ranges. Percent values only move forward; a
// skipped phase jumps straight to its end mark.
const (
	pctInit       = 0
	pctModeDone   = 15
	pctGitHubDone = 40
	pctGoogleDone = 70
	pctEnrichDone = 95
	pctDone       = 100
)

// Config wires an Orchestrator. Zero-value collaborators are replaced
// with production defaults at Run time; tests inject fakes.
type Config struct {
	Credentials models.Credentials
	Progress    models.ProgressFunc

	Checker  *credcheck.Checker
	GitHub   sources.Scanner
	Google   sources.Scanner
	Enricher *enrich.Enricher
	Now      func() time.Time
}

// Orchestrator runs scans. Each Run is independent; no state is shared
// between invocations beyond the source scanners' own result caches.
type Orchestrator struct {
	cfg         Config
	lastPercent int
}

// New creates an Orchestrator from the config, filling in defaults.
func New(cfg Config) *Orchestrator {
	if cfg.Checker == nil {
		cfg.Checker = credcheck.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Progress == nil {
		cfg.Progress = func(models.ProgressEvent) {}
	}
	return &Orchestrator{cfg: cfg}
}

// Run executes one scan. The only error return is an invalid domain;
// everything else degrades into the report's metadata.
func (o *Orchestrator) Run(ctx context.Context, rawDomain string) (*models.ScanReport, error) {
	domain := validate.CleanDomain(rawDomain)
	if err := validate.Domain(domain); err != nil {
		return nil, fmt.Errorf("invalid domain %q: %w", rawDomain, err)
	}

	o.lastPercent = 0
	started := o.cfg.Now()

	meta := models.ScanMetadata{
		ScanID:    uuid.NewString(),
		Domain:    domain,
		StartedAt: started,
		Sources:   make(map[models.Source]models.SourceStats),
	}

	o.emit(PhaseInit, pctInit, "starting scan of "+domain)

	// Credential validation and mode resolution.
	o.emit(PhaseCredentials, 5, "validating credentials")
	statuses := o.cfg.Checker.Check(ctx, o.cfg.Credentials)

	o.emit(PhaseMode, 10, "resolving scan mode")
	scanMode := mode.Resolve(statuses)
	meta.Mode = scanMode.Mode
	meta.ValidKeys = scanMode.ValidKeys
	meta.InvalidKeys = scanMode.InvalidKeys
	meta.Disclaimer = scanMode.Disclaimer
	o.emit(PhaseMode, pctModeDone, fmt.Sprintf("mode resolved: %s", scanMode.Mode))

	var findings []models.Finding
	if scanMode.Mode == models.ModeDemo {
		findings = o.runDemo(domain, &meta)
	} else {
		findings = o.runLive(ctx, domain, statuses, &meta)
	}

	// Deduplication sees the fully-merged result set, never a partial one.
	o.emit(PhaseDedup, pctGoogleDone, "deduplicating findings")
	findings = dedup.ByURL(findings)

	// Enrichment requires a valid model credential, live findings, and
	// at least one finding; it degrades to pass-through on any failure.
	if scanMode.Mode == models.ModeLive && scanMode.EnrichmentEnabled() && len(findings) > 0 {
		o.emit(PhaseEnrich, pctGoogleDone, "validating findings with language model")
		enricher := o.cfg.Enricher
		if enricher == nil {
			enricher = enrich.New(enrich.NewChatClient("", o.cfg.Credentials.OpenAIKey))
		}
		findings, meta.Enriched = enricher.Process(ctx, findings)
	}
	o.emit(PhaseEnrich, pctEnrichDone, "finalizing")

	meta.Duration = o.cfg.Now().Sub(started)
	o.emit(PhaseDone, pctDone, fmt.Sprintf("scan complete: %d findings", len(findings)))

	return &models.ScanReport{Metadata: meta, Findings: findings}, nil
}

// runDemo serves the static dataset; no network, no queries.
func (o *Orchestrator) runDemo(domain string, meta *models.ScanMetadata) []models.Finding {
	o.emit(PhaseDemo, 20, "no usable credentials, loading demonstration dataset")
	findings := demo.Findings(domain, o.cfg.Now())
	meta.Sources[models.SourceDemo] = models.SourceStats{}
	o.emit(PhaseDemo, pctGoogleDone, fmt.Sprintf("loaded %d sample findings", len(findings)))
	return findings
}

// runLive executes the query plan source by source, in fixed order:
// GitHub completes (or aborts) before Google begins. A source without
// valid credentials is skipped with zeroed counters.
func (o *Orchestrator) runLive(ctx context.Context, domain string, statuses credcheck.Statuses, meta *models.ScanMetadata) []models.Finding {
	plan := queryplan.Generate(domain)
	var findings []models.Finding

	meta.Sources[models.SourceGitHub] = models.SourceStats{}
	meta.Sources[models.SourceGoogle] = models.SourceStats{}

	if statuses.Valid(models.LabelGitHub) {
		payloads := plan.ForSource(models.SourceGitHub)
		o.emit(PhaseGitHub, pctModeDone, fmt.Sprintf("searching GitHub (%d queries)", len(payloads)))

		scanner := o.cfg.GitHub
		if scanner == nil {
			scanner = sources.NewGitHub("", o.cfg.Credentials.GitHubToken)
		}
		result := scanner.Scan(ctx, domain, payloads)
		findings = append(findings, result.Findings...)
		meta.Sources[models.SourceGitHub] = result.Stats
	}
	o.emit(PhaseGitHub, pctGitHubDone, sourceSummary("GitHub", meta.Sources[models.SourceGitHub]))

	if ctx.Err() == nil && statuses.Valid(models.LabelGoogleKey) && statuses.Valid(models.LabelGoogleCX) {
		payloads := plan.ForSource(models.SourceGoogle)
		o.emit(PhaseGoogle, pctGitHubDone, fmt.Sprintf("searching Google (%d queries)", len(payloads)))

		scanner := o.cfg.Google
		if scanner == nil {
			scanner = sources.NewGoogle("", o.cfg.Credentials.GoogleKey, o.cfg.Credentials.GoogleCX)
		}
		result := scanner.Scan(ctx, domain, payloads)
		findings = append(findings, result.Findings...)
		meta.Sources[models.SourceGoogle] = result.Stats
	}
	o.emit(PhaseGoogle, pctGoogleDone, sourceSummary("Google", meta.Sources[models.SourceGoogle]))

	return findings
}

func sourceSummary(name string, stats models.SourceStats) string {
	if stats.Queries == 0 {
		return name + " skipped (no valid credentials)"
	}
	msg := fmt.Sprintf("%s done: %d/%d queries succeeded", name, stats.Succeeded, stats.Queries)
	if stats.RateLimited {
		msg += " (stopped early: rate limit)"
	}
	return msg
}

// emit delivers a progress event with monotonically non-decreasing
// percent values.
func (o *Orchestrator) emit(phase string, percent int, message string) {
	if percent < o.lastPercent {
		percent = o.lastPercent
	}
	o.lastPercent = percent
	o.cfg.Progress(models.ProgressEvent{Phase: phase, Percent: percent, Message: message})
}
