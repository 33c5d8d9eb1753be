// Package enrich runs deduplicated findings through a language model:
// a validation pass that filters likely false positives, then a per-item
// pass that rewrites severity, remediation, and business impact. Every
// failure degrades to pass-through; enrichment can improve a scan
// result but never lose it.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mlevkin/leakradar/internal/models"
)

const maxFindingsPerValidation = 20

// Enricher orchestrates the two model passes.
type Enricher struct {
	client *ChatClient
}

// New creates an Enricher. A nil client produces a pass-through enricher.
func New(client *ChatClient) *Enricher {
	return &Enricher{client: client}
}

// Process returns the (possibly filtered and rewritten) findings and
// whether enrichment actually changed anything. An empty input or a
// missing client passes through untouched.
func (e *Enricher) Process(ctx context.Context, findings []models.Finding) ([]models.Finding, bool) {
	if e.client == nil || len(findings) == 0 {
		return findings, false
	}

	validated, ok := e.validateBatch(ctx, findings)
	if !ok {
		validated = findings
	}

	enriched := make([]models.Finding, 0, len(validated))
	anyEnriched := ok
	for _, f := range validated {
		out, itemOK := e.enrichOne(ctx, f)
		if itemOK {
			anyEnriched = true
		}
		enriched = append(enriched, out)
	}

	return enriched, anyEnriched
}

// validationVerdict is the expected shape of the model's filter reply.
type validationVerdict struct {
	Genuine []int  `json:"genuine"`
	Note    string `json:"note"`
}

// validateBatch asks the model which findings are genuine concerns.
// Returns ok=false on any failure so the caller passes input through.
func (e *Enricher) validateBatch(ctx context.Context, findings []models.Finding) ([]models.Finding, bool) {
	batch := findings
	if len(batch) > maxFindingsPerValidation {
		batch = batch[:maxFindingsPerValidation]
	}

	var sb strings.Builder
	for i, f := range batch {
		fmt.Fprintf(&sb, "%d. [%s] %s -- %s\n", i, f.Severity, f.Title, truncate(f.Snippet, 200))
	}

	reply, err := e.client.Complete(ctx,
		"You review automated exposure-scan findings. Reply with JSON only: "+
			`{"genuine": [indices of entries that represent real security concerns], "note": "one sentence"}`,
		sb.String())
	if err != nil {
		return nil, false
	}

	var verdict validationVerdict
	if err := json.Unmarshal(extractJSON(reply), &verdict); err != nil {
		return nil, false
	}

	genuine := make(map[int]bool, len(verdict.Genuine))
	for _, idx := range verdict.Genuine {
		if idx >= 0 && idx < len(batch) {
			genuine[idx] = true
		}
	}
	// A verdict confirming nothing at all is more likely a malformed
	// reply than a scan full of false positives.
	if len(genuine) == 0 {
		return nil, false
	}

	confirmed := true
	var out []models.Finding
	for i, f := range batch {
		if !genuine[i] {
			continue
		}
		f.Validated = &confirmed
		if verdict.Note != "" {
			f.ValidationNote = verdict.Note
		}
		out = append(out, f)
	}
	// Findings beyond the batch cap were never judged; keep them.
	out = append(out, findings[len(batch):]...)

	return out, true
}

// itemEnrichment is the expected shape of the per-finding rewrite.
type itemEnrichment struct {
	Name           string `json:"name"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
	BusinessImpact string `json:"business_impact"`
}

// enrichOne rewrites one finding. A parse failure keeps the original
// fields; one malformed reply never fails the batch.
func (e *Enricher) enrichOne(ctx context.Context, f models.Finding) (models.Finding, bool) {
	prompt := fmt.Sprintf(
		"Finding from %s\nURL: %s\nSeverity (heuristic): %s\nSnippet: %s",
		f.Source, f.URL, f.Severity, truncate(f.Snippet, 300))

	reply, err := e.client.Complete(ctx,
		"You write concise remediation guidance for exposure-scan findings. Reply with JSON only: "+
			`{"name": "...", "severity": "critical|high|medium|low|info", "recommendation": "...", "business_impact": "..."}`,
		prompt)
	if err != nil {
		return f, false
	}

	var item itemEnrichment
	if err := json.Unmarshal(extractJSON(reply), &item); err != nil {
		return f, false
	}

	// Every field is untrusted text: merge only what parses cleanly.
	if item.Name != "" {
		f.Title = item.Name
	}
	if models.IsValidSeverity(item.Severity) {
		f.Severity = item.Severity
	}
	if item.Recommendation != "" {
		f.Recommendation = item.Recommendation
	}
	if item.BusinessImpact != "" {
		f.BusinessImpact = item.BusinessImpact
	}

	return f, true
}

// extractJSON pulls the first JSON object or array out of a reply that
// may be wrapped in code fences or prose.
func extractJSON(reply string) []byte {
	start := strings.IndexAny(reply, "{[")
	if start == -1 {
		return []byte(reply)
	}

	var closer byte
	if reply[start] == '{' {
		closer = '}'
	} else {
		closer = ']'
	}
	end := strings.LastIndexByte(reply, closer)
	if end <= start {
		return []byte(reply)
	}

	return []byte(reply[start : end+1])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
