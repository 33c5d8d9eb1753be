package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mlevkin/leakradar/internal/models"
	"github.com/mlevkin/leakradar/internal/orchestrator"
	"github.com/mlevkin/leakradar/internal/tui"
)

var (
	scanFormat      string
	scanOutput      string
	scanStore       bool
	scanStorageDir  string
	scanNoEnrich    bool
	scanInteractive bool
	scanPlain       bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <domain>",
	Short: "Scan public search indexes for exposures tied to a domain",
	Long: `Scan performs a full exposure sweep:

  1. Validate - check which credentials are usable
  2. Search   - probe GitHub code search and Google Custom Search
  3. Classify - assign severity and deduplicate by URL
  4. Enrich   - optionally validate findings with a language model
  5. Report   - print results (text, json, or both)

With no usable search credentials the scan falls back to a demo mode
that serves clearly-labeled sample data.

Use --interactive to browse findings in a terminal UI afterwards.
Use --no-enrich to skip the AI pass even when an OpenAI key is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "",
		"output format: text, json, or both (default: from config)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "",
		"write output to file")
	scanCmd.Flags().BoolVar(&scanStore, "store", false,
		"persist results for history and diff")
	scanCmd.Flags().StringVar(&scanStorageDir, "storage-dir", "",
		"storage directory (default: .leakradar)")
	scanCmd.Flags().BoolVar(&scanNoEnrich, "no-enrich", false,
		"skip AI validation and enrichment")
	scanCmd.Flags().BoolVar(&scanInteractive, "interactive", false,
		"browse findings in a terminal UI after the scan")
	scanCmd.Flags().BoolVar(&scanPlain, "plain", false,
		"disable the live progress display")
}

func runScan(cmd *cobra.Command, args []string) error {
	domain := args[0]

	creds := cfg.Credentials()
	if scanNoEnrich || cfg.NoEnrich {
		creds.OpenAIKey = ""
	}

	report, err := executeScan(cmd.Context(), domain, creds)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	format := scanFormat
	if format == "" {
		format = cfg.Format
	}

	storageDir := scanStorageDir
	if storageDir == "" {
		storageDir = cfg.StorageDir
	}

	if err := RunPipeline(report, PipelineConfig{
		Format:     format,
		Output:     scanOutput,
		Store:      scanStore,
		StorageDir: storageDir,
	}); err != nil {
		return err
	}

	if scanInteractive {
		if err := tui.Run(report); err != nil {
			return fmt.Errorf("interactive view failed: %w", err)
		}
	}

	return nil
}

// executeScan runs the orchestrator, attaching either the progress TUI
// or plain stderr logging depending on the terminal.
func executeScan(ctx context.Context, domain string, creds models.Credentials) (*models.ScanReport, error) {
	useTUI := !scanPlain && term.IsTerminal(int(os.Stderr.Fd()))

	if !useTUI {
		orch := orchestrator.New(orchestrator.Config{
			Credentials: creds,
			Progress: func(ev models.ProgressEvent) {
				logVerbose("[%3d%%] %s: %s", ev.Percent, ev.Phase, ev.Message)
			},
		})
		return orch.Run(ctx, domain)
	}

	return runScanWithDisplay(func(progress models.ProgressFunc) (*models.ScanReport, error) {
		orch := orchestrator.New(orchestrator.Config{
			Credentials: creds,
			Progress:    progress,
		})
		return orch.Run(ctx, domain)
	}, tui.RunProgress)
}

// runScanWithDisplay executes run in a goroutine while feeding its
// progress events to display. The scan always completes: if the display
// exits early (error or user quit), unconsumed events are drained so
// the scan goroutine never blocks on a full buffer.
func runScanWithDisplay(
	run func(models.ProgressFunc) (*models.ScanReport, error),
	display func(<-chan models.ProgressEvent) error,
) (*models.ScanReport, error) {
	events := make(chan models.ProgressEvent, 16)

	type scanResult struct {
		report *models.ScanReport
		err    error
	}
	done := make(chan scanResult, 1)

	go func() {
		report, err := run(func(ev models.ProgressEvent) {
			events <- ev
		})
		close(events)
		done <- scanResult{report, err}
	}()

	if err := display(events); err != nil {
		logDebug("progress display failed: %v", err)
	}
	for range events {
	}

	res := <-done
	return res.report, res.err
}
