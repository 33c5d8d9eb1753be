package tui

import (
	"sort"
	"strings"

	"github.com/mlevkin/leakradar/internal/models"
)

// filterState holds current active filters.
type filterState struct {
	Source     string
	Severity   string
	SearchText string
}

// sortField enumerates columns that can be sorted.
type sortField int

const (
	sortBySeverity sortField = iota
	sortBySource
	sortByTitle
	sortByURL
)

// sortFieldCount is the total number of sortable columns.
const sortFieldCount = 4

// applyFilters returns findings matching all active filters.
func applyFilters(findings []models.Finding, f filterState) []models.Finding {
	result := make([]models.Finding, 0, len(findings))
	searchLower := strings.ToLower(f.SearchText)

	for _, finding := range findings {
		if f.Source != "" && string(finding.Source) != f.Source {
			continue
		}
		if f.Severity != "" && finding.Severity != f.Severity {
			continue
		}
		if searchLower != "" && !matchesSearch(finding, searchLower) {
			continue
		}
		result = append(result, finding)
	}
	return result
}

func matchesSearch(f models.Finding, searchLower string) bool {
	return strings.Contains(strings.ToLower(string(f.Source)), searchLower) ||
		strings.Contains(strings.ToLower(f.Title), searchLower) ||
		strings.Contains(strings.ToLower(f.Severity), searchLower) ||
		strings.Contains(strings.ToLower(f.URL), searchLower) ||
		strings.Contains(strings.ToLower(f.Snippet), searchLower) ||
		strings.Contains(strings.ToLower(f.Query), searchLower)
}

// sortFindings sorts a slice of findings in place by the given field.
func sortFindings(findings []models.Finding, field sortField) {
	sort.SliceStable(findings, func(i, j int) bool {
		switch field {
		case sortBySeverity:
			return models.SeverityRank(findings[i].Severity) < models.SeverityRank(findings[j].Severity)
		case sortBySource:
			return findings[i].Source < findings[j].Source
		case sortByTitle:
			return findings[i].Title < findings[j].Title
		case sortByURL:
			return findings[i].URL < findings[j].URL
		default:
			return false
		}
	})
}

// uniqueSources returns deduplicated, sorted source names from findings.
func uniqueSources(findings []models.Finding) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, f := range findings {
		name := string(f.Source)
		if !seen[name] {
			seen[name] = true
			sources = append(sources, name)
		}
	}
	sort.Strings(sources)
	return sources
}

// sortFieldName returns a human-readable name for the sort field.
func sortFieldName(f sortField) string {
	switch f {
	case sortBySeverity:
		return "severity"
	case sortBySource:
		return "source"
	case sortByTitle:
		return "title"
	case sortByURL:
		return "url"
	default:
		return "unknown"
	}
}
