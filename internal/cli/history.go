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
	historyLast   int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored scan runs",
	Long: `Show a summary of recently stored scan runs.

Lists run timestamp, domain, mode, and findings breakdown for each
stored report, newest last.

Example:
  leakradar history
  leakradar history --last 20
  leakradar history --format json`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLast, "last", 0,
		"number of runs to show (default: from config, 7)")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text",
		"output format: text or json")
}

// historyEntry is one row of the history listing.
type historyEntry struct {
	Timestamp  string         `json:"timestamp"`
	Domain     string         `json:"domain"`
	Mode       string         `json:"mode"`
	Total      int            `json:"total_findings"`
	BySeverity map[string]int `json:"by_severity"`
	Enriched   bool           `json:"enriched"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		logError("Failed to get storage path: %v", err)
		return err
	}

	store := storage.NewLocal(storagePath)

	n := historyLast
	if n <= 0 {
		n = cfg.LastRuns
	}

	reports, err := store.GetLastNRuns(n)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(reports) == 0 {
		fmt.Println("No stored runs found. Run 'leakradar scan --store' first.")
		return nil
	}

	entries := make([]historyEntry, 0, len(reports))
	for _, r := range reports {
		entries = append(entries, summarizeRun(r))
	}

	switch historyFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "text":
		printHistoryText(entries)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (use text or json)", historyFormat)
	}
}

func summarizeRun(r *models.ScanReport) historyEntry {
	return historyEntry{
		Timestamp:  r.Metadata.StartedAt.Format("2006-01-02 15:04:05"),
		Domain:     r.Metadata.Domain,
		Mode:       string(r.Metadata.Mode),
		Total:      len(r.Findings),
		BySeverity: r.CountBySeverity(),
		Enriched:   r.Metadata.Enriched,
	}
}

func printHistoryText(entries []historyEntry) {
	fmt.Printf("Stored runs: %d\n\n", len(entries))
	fmt.Printf("%-20s %-24s %-5s %8s  %s\n",
		"Timestamp", "Domain", "Mode", "Findings", "Breakdown")
	fmt.Println(strings.Repeat("-", 78))

	for _, e := range entries {
		fmt.Printf("%-20s %-24s %-5s %8d  %s\n",
			e.Timestamp, truncateCol(e.Domain, 24), e.Mode, e.Total,
			formatBreakdown(e.BySeverity))
	}
}

// formatBreakdown renders severity counts as "C:1 H:2 M:0 L:3 I:0",
// skipping severities with no findings.
func formatBreakdown(bySeverity map[string]int) string {
	order := []struct {
		key   string
		label string
	}{
		{"critical", "C"},
		{"high", "H"},
		{"medium", "M"},
		{"low", "L"},
		{"info", "I"},
	}

	var parts []string
	for _, o := range order {
		if count := bySeverity[o.key]; count > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", o.label, count))
		}
	}
	if len(parts) == 0 {
		return "clean"
	}
	return strings.Join(parts, " ")
}

func truncateCol(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
