// Package dedup collapses findings that point at the same external URL.
package dedup

import "github.com/mlevkin/leakradar/internal/models"

// ByURL returns the findings with at most one entry per distinct URL.
// The first occurrence wins; later duplicates are dropped outright with
// no field merging. Findings without a URL are kept as-is. Idempotent.
func ByURL(findings []models.Finding) []models.Finding {
	if len(findings) == 0 {
		return findings
	}

	seen := make(map[string]bool, len(findings))
	out := make([]models.Finding, 0, len(findings))

	for _, f := range findings {
		if f.URL != "" {
			if seen[f.URL] {
				continue
			}
			seen[f.URL] = true
		}
		out = append(out, f)
	}

	return out
}
