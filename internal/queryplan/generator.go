package queryplan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mlevkin/leakradar/internal/models"
)

// MaxPayloadsPerSource bounds the plan so a scan stays within API
// quota and predictable wall-clock time.
const MaxPayloadsPerSource = 80

// Plan is the ordered payload list for one scan, grouped by source.
type Plan struct {
	Domain   string
	Payloads map[models.Source][]models.QueryPayload
}

// ForSource returns the ordered payloads targeting one source.
func (p *Plan) ForSource(src models.Source) []models.QueryPayload {
	return p.Payloads[src]
}

// Generate expands a cleaned domain into a capped, priority-ordered
// payload list per source. Deterministic for identical input.
func Generate(domain string) *Plan {
	variations := domainVariations(domain)

	plan := &Plan{
		Domain:   domain,
		Payloads: make(map[models.Source][]models.QueryPayload),
	}

	seen := make(map[models.Source]map[string]bool)

	for _, tpl := range catalogue {
		for _, variation := range variations {
			query := fmt.Sprintf(tpl.format, variation)
			for _, src := range tpl.sources {
				if seen[src] == nil {
					seen[src] = make(map[string]bool)
				}
				if seen[src][query] {
					continue
				}
				seen[src][query] = true
				plan.Payloads[src] = append(plan.Payloads[src], models.QueryPayload{
					Source:   src,
					Query:    query,
					Priority: tpl.priority,
				})
			}
		}
	}

	for src, payloads := range plan.Payloads {
		// Stable sort keeps catalogue order within equal priorities.
		sort.SliceStable(payloads, func(i, j int) bool {
			return payloads[i].Priority < payloads[j].Priority
		})
		if len(payloads) > MaxPayloadsPerSource {
			payloads = payloads[:MaxPayloadsPerSource]
		}
		plan.Payloads[src] = payloads
	}

	return plan
}

// domainVariations derives the query spellings for a domain: the raw
// name, the quoted name, dots replaced with hyphens, and the base
// label without its TLD (skipped when too short to be distinctive).
func domainVariations(domain string) []string {
	variations := []string{
		domain,
		`"` + domain + `"`,
	}

	if hyphenated := strings.ReplaceAll(domain, ".", "-"); hyphenated != domain {
		variations = append(variations, hyphenated)
	}

	if base, _, ok := strings.Cut(domain, "."); ok && len(base) >= 5 {
		variations = append(variations, base)
	}

	return variations
}
