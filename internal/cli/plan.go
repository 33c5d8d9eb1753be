package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mlevkin/leakradar/internal/models"
	"github.com/mlevkin/leakradar/internal/queryplan"
	"github.com/mlevkin/leakradar/internal/validate"
)

var planFormat string

var planCmd = &cobra.Command{
	Use:   "plan <domain>",
	Short: "Show the query plan for a domain without scanning",
	Long: `Plan prints every search query a scan would issue for the domain,
grouped by source and ordered by priority. Nothing is sent anywhere;
use it to review the probe surface before a live scan.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFormat, "format", "text",
		"output format: text or json")
}

func runPlan(cmd *cobra.Command, args []string) error {
	domain := validate.CleanDomain(args[0])
	if err := validate.Domain(domain); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid domain %q: %v", args[0], err)}
	}

	plan := queryplan.Generate(domain)

	if planFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	sources := make([]models.Source, 0, len(plan.Payloads))
	for src := range plan.Payloads {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	fmt.Printf("Query plan for %s\n\n", plan.Domain)
	total := 0
	for _, src := range sources {
		payloads := plan.Payloads[src]
		total += len(payloads)
		fmt.Printf("%s (%d queries):\n", src, len(payloads))
		for _, p := range payloads {
			fmt.Printf("  [p%d] %s\n", p.Priority, p.Query)
		}
		fmt.Println()
	}
	fmt.Printf("Total: %d queries\n", total)
	return nil
}
