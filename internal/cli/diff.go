package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlevkin/leakradar/internal/models"
	"github.com/mlevkin/leakradar/internal/storage"
)

var (
	diffFormat   string
	diffOutput   string
	diffBaseline string
	diffFailNew  bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what changed between two scan runs",
	Long: `Compare the latest scan run against a baseline to show drift.

Shows new findings, resolved findings, and summary deltas between two
runs. Useful in CI/CD to catch newly exposed material.

By default compares the two most recent stored runs. Use --baseline to
specify a report file as the comparison target.

Exit codes:
  0  No new findings (or --fail-new not set)
  1  New findings detected (with --fail-new)

Example:
  leakradar diff
  leakradar diff --fail-new
  leakradar diff --baseline ./baseline.json --format json`,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", "text",
		"output format: text or json")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "",
		"write output to file instead of stdout")
	diffCmd.Flags().StringVar(&diffBaseline, "baseline", "",
		"path to baseline report JSON (default: previous stored run)")
	diffCmd.Flags().BoolVar(&diffFailNew, "fail-new", false,
		"exit 1 if new findings are found (for CI gating)")
}

// DiffResult is the structured output of a diff operation.
type DiffResult struct {
	Baseline         string           `json:"baseline"`
	Current          string           `json:"current"`
	NewFindings      []models.Finding `json:"new_findings"`
	ResolvedFindings []models.Finding `json:"resolved_findings"`
	Summary          DiffSummary      `json:"summary"`
}

// DiffSummary holds aggregate counts for a diff.
type DiffSummary struct {
	BaselineTotal int            `json:"baseline_total"`
	CurrentTotal  int            `json:"current_total"`
	NewCount      int            `json:"new_count"`
	ResolvedCount int            `json:"resolved_count"`
	Delta         int            `json:"delta"` // positive = more findings
	NewBySeverity map[string]int `json:"new_by_severity"`
	NewBySource   map[string]int `json:"new_by_source"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		logError("Failed to get storage path: %v", err)
		return err
	}

	store := storage.NewLocal(storagePath)

	// Load current (latest) run.
	current, err := store.GetLatestRun()
	if err != nil {
		logError("No current run found: %v", err)
		fmt.Println("No stored runs found. Run 'leakradar scan --store' first.")
		return err
	}

	// Load baseline.
	var baseline *models.ScanReport
	if diffBaseline != "" {
		baseline, err = loadReportFromFile(diffBaseline)
		if err != nil {
			logError("Failed to load baseline: %v", err)
			return err
		}
	} else {
		reports, err := store.GetLastNRuns(2)
		if err != nil || len(reports) < 2 {
			fmt.Println("Need at least 2 stored runs for diff.")
			fmt.Println("Run 'leakradar scan --store' to generate more reports.")
			return nil
		}
		baseline = reports[0]
	}

	logVerbose("Comparing %s (current) vs %s (baseline)",
		current.Metadata.StartedAt.Format("2006-01-02 15:04"),
		baseline.Metadata.StartedAt.Format("2006-01-02 15:04"))

	result := computeDiff(baseline, current)

	// Output.
	if err := outputDiff(result, diffFormat, diffOutput); err != nil {
		return err
	}

	// CI gate.
	if diffFailNew && result.Summary.NewCount > 0 {
		return &PolicyFailedError{Violations: result.Summary.NewCount}
	}

	return nil
}

// findingKey identifies a finding for diff purposes. Findings without
// a URL (synthetic entries) fall back to source and title.
func findingKey(f models.Finding) string {
	if f.URL != "" {
		return f.URL
	}
	return string(f.Source) + "|" + f.Title
}

// computeDiff calculates new and resolved findings between baseline and current.
func computeDiff(baseline, current *models.ScanReport) *DiffResult {
	baseSet := make(map[string]models.Finding, len(baseline.Findings))
	for _, f := range baseline.Findings {
		baseSet[findingKey(f)] = f
	}

	currSet := make(map[string]models.Finding, len(current.Findings))
	for _, f := range current.Findings {
		currSet[findingKey(f)] = f
	}

	var newFindings, resolvedFindings []models.Finding

	for key, f := range currSet {
		if _, found := baseSet[key]; !found {
			newFindings = append(newFindings, f)
		}
	}

	for key, f := range baseSet {
		if _, found := currSet[key]; !found {
			resolvedFindings = append(resolvedFindings, f)
		}
	}

	// Build summary maps.
	newBySeverity := map[string]int{}
	newBySource := map[string]int{}
	for _, f := range newFindings {
		newBySeverity[f.Severity]++
		newBySource[string(f.Source)]++
	}

	return &DiffResult{
		Baseline:         baseline.Metadata.StartedAt.Format("2006-01-02 15:04:05"),
		Current:          current.Metadata.StartedAt.Format("2006-01-02 15:04:05"),
		NewFindings:      newFindings,
		ResolvedFindings: resolvedFindings,
		Summary: DiffSummary{
			BaselineTotal: len(baseline.Findings),
			CurrentTotal:  len(current.Findings),
			NewCount:      len(newFindings),
			ResolvedCount: len(resolvedFindings),
			Delta:         len(current.Findings) - len(baseline.Findings),
			NewBySeverity: newBySeverity,
			NewBySource:   newBySource,
		},
	}
}

// outputDiff renders the diff result to the chosen format.
func outputDiff(result *DiffResult, format, outputPath string) error {
	var writer *os.File
	if outputPath != "" {
		var err error
		writer, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	} else {
		writer = os.Stdout
	}

	switch format {
	case "json":
		enc := json.NewEncoder(writer)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "text":
		return printDiffText(writer, result)
	default:
		return fmt.Errorf("unsupported format: %s (use text or json)", format)
	}
}

func printDiffText(w *os.File, r *DiffResult) error {
	p := func(format string, args ...interface{}) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	p("╔════════════════════════════════════════════╗\n")
	p("║         LeakRadar Exposure Delta           ║\n")
	p("╚════════════════════════════════════════════╝\n\n")

	p("Baseline: %s\n", r.Baseline)
	p("Current:  %s\n\n", r.Current)

	// Summary line.
	deltaSign := "+"
	if r.Summary.Delta < 0 {
		deltaSign = ""
	}
	p("Findings: %d → %d (%s%d)\n", r.Summary.BaselineTotal, r.Summary.CurrentTotal, deltaSign, r.Summary.Delta)
	p("New: %d   Resolved: %d\n\n", r.Summary.NewCount, r.Summary.ResolvedCount)

	// New findings.
	if len(r.NewFindings) > 0 {
		p("New Findings:\n")
		p("--------------------------------------------------\n")
		for _, f := range r.NewFindings {
			sev := strings.ToUpper(f.Severity)
			p("  [%s] %s: %s\n", sev, f.Source, f.Title)
			if f.URL != "" {
				p("         %s\n", f.URL)
			}
		}
		p("\n")
	}

	// Resolved findings.
	if len(r.ResolvedFindings) > 0 {
		p("Resolved Findings:\n")
		p("--------------------------------------------------\n")
		for _, f := range r.ResolvedFindings {
			p("  ✓ %s: %s\n", f.Source, f.Title)
		}
		p("\n")
	}

	// Breakdown tables.
	if len(r.Summary.NewBySeverity) > 0 {
		p("New by Severity:\n")
		for sev, count := range r.Summary.NewBySeverity {
			p("  %s: %d\n", strings.ToUpper(sev), count)
		}
		p("\n")
	}

	if len(r.Summary.NewBySource) > 0 {
		p("New by Source:\n")
		for source, count := range r.Summary.NewBySource {
			p("  %s: %d\n", source, count)
		}
		p("\n")
	}

	if r.Summary.NewCount == 0 && r.Summary.ResolvedCount == 0 {
		p("No drift detected.\n")
	} else if r.Summary.NewCount == 0 {
		p("No new findings, only improvements.\n")
	}

	return nil
}

// loadReportFromFile loads a ScanReport from a JSON file path.
func loadReportFromFile(path string) (*models.ScanReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var report models.ScanReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}
