// Package sources implements the rate-limited scanners that execute a
// query plan against external search services and normalize raw hits
// into findings.
package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mlevkin/leakradar/internal/models"
)

// ErrRateLimited signals that the external service told us to stop.
// The scanner aborts the remaining payloads for that source only.
var ErrRateLimited = errors.New("source rate limit reached")

// Result is the outcome of scanning one source: the normalized
// findings plus the query bookkeeping the orchestrator folds into
// scan metadata.
type Result struct {
	Findings []models.Finding
	Stats    models.SourceStats
}

// Scanner executes a query plan against one external source.
type Scanner interface {
	Source() models.Source
	Scan(ctx context.Context, domain string, payloads []models.QueryPayload) *Result
}

// Adaptive inter-query delay defaults. The delay starts at the base,
// grows by the multiplier after every request, and never exceeds the
// cap. A fresh policy is created per scan so state never leaks between
// runs.
const (
	defaultBaseDelay   = 500 * time.Millisecond
	defaultDelayGrow   = 1.3
	defaultMaxDelay    = 5 * time.Second
	defaultCallTimeout = 15 * time.Second
)

// delayPolicy produces the wait between consecutive queries to one
// source within a single scan.
type delayPolicy struct {
	bo *backoff.ExponentialBackOff
}

func newDelayPolicy(base time.Duration, growth float64, max time.Duration) *delayPolicy {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	bo.Multiplier = growth
	bo.MaxInterval = max
	bo.MaxElapsedTime = 0
	bo.RandomizationFactor = 0
	bo.Reset()
	return &delayPolicy{bo: bo}
}

// defaultDelayPolicy builds the per-scan pacing policy both scanners
// start from.
func defaultDelayPolicy() *delayPolicy {
	return newDelayPolicy(defaultBaseDelay, defaultDelayGrow, defaultMaxDelay)
}

// next returns the delay to apply before the upcoming request.
func (d *delayPolicy) next() time.Duration {
	return d.bo.NextBackOff()
}

// wait sleeps for the next adaptive delay, returning early if the
// context is cancelled.
func (d *delayPolicy) wait(ctx context.Context) error {
	select {
	case <-time.After(d.next()):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// noExposureFinding is the synthetic informational record emitted when
// a source ran to completion without producing a single hit, so callers
// never see an empty, ambiguous result for a source that worked.
func noExposureFinding(src models.Source, domain string, now time.Time) models.Finding {
	return models.Finding{
		ID:         fmt.Sprintf("%s-clean-%d", src, now.Unix()),
		Source:     src,
		Title:      fmt.Sprintf("No exposure detected via %s", sourceName(src)),
		Snippet:    fmt.Sprintf("All queries against %s completed without matching content for %s.", sourceName(src), domain),
		Severity:   models.SeverityInfo,
		Confidence: 1.0,
		FoundAt:    now,
	}
}

func sourceName(src models.Source) string {
	switch src {
	case models.SourceGitHub:
		return "GitHub code search"
	case models.SourceGoogle:
		return "Google web search"
	default:
		return string(src)
	}
}
