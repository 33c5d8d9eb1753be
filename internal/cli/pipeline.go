package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mlevkin/leakradar/internal/models"
	"github.com/mlevkin/leakradar/internal/policy"
	"github.com/mlevkin/leakradar/internal/reporter"
	"github.com/mlevkin/leakradar/internal/storage"
)

// PipelineConfig holds options for the shared reporting pipeline.
type PipelineConfig struct {
	Format     string
	Output     string
	Store      bool
	StorageDir string
}

// RunPipeline takes a finished scan report through the shared tail of
// the scan command: compare with previous run, store, output, policy.
func RunPipeline(report *models.ScanReport, pcfg PipelineConfig) error {
	// Step 1: Compare against the previous stored run
	hasPrevious := false
	var newCount, resolvedCount int
	if pcfg.Store {
		storagePath, err := getStoragePath(pcfg.StorageDir)
		if err != nil {
			logError("Failed to get storage path: %v", err)
			return err
		}

		store := storage.NewLocal(storagePath)
		if previous, err := store.GetLatestRun(); err == nil {
			hasPrevious = true
			newCount, resolvedCount = countChanges(previous, report)
			logVerbose("Compared with run from %s: %d new, %d resolved",
				previous.Metadata.StartedAt.Format("2006-01-02 15:04"), newCount, resolvedCount)
		} else {
			logDebug("No previous run found: %v", err)
		}
	}

	// Step 2: Store if enabled
	if pcfg.Store {
		storagePath, err := getStoragePath(pcfg.StorageDir)
		if err != nil {
			logError("Failed to get storage path: %v", err)
			return err
		}

		store := storage.NewLocal(storagePath)

		if err := store.EnsureDirectoryExists(); err != nil {
			logError("Failed to create storage directory: %v", err)
			return err
		}

		if err := store.SaveScanReport(report); err != nil {
			logError("Failed to store report: %v", err)
			return err
		}

		logVerbose("Stored report in: %s", storagePath)
	}

	// Step 3: Generate output
	if err := generateOutput(report, pcfg.Format, pcfg.Output); err != nil {
		logError("Failed to generate output: %v", err)
		return err
	}

	// Delta line after the text report. Kept off the json-to-stdout
	// path so piped output stays parseable.
	if hasPrevious && pcfg.Format != "json" {
		fmt.Printf("\nSince last scan: %d new, %d resolved\n", newCount, resolvedCount)
	}

	// Step 4: Policy enforcement (if .leakradar-policy.yaml exists)
	if policyPath := policy.FindPolicyFile(); policyPath != "" {
		logVerbose("Found policy file: %s", policyPath)

		pol, err := policy.LoadFromFile(policyPath)
		if err != nil {
			logError("Failed to load policy: %v", err)
			return err
		}

		if pol != nil {
			result := pol.Evaluate(report)
			if !result.Pass {
				for _, v := range result.Violations {
					logError("Policy violation [%s]: %s", v.Rule, v.Message)
				}
				return &PolicyFailedError{Violations: len(result.Violations)}
			}
			logVerbose("Policy check passed")
		}
	}

	return nil
}

// countChanges compares two reports by finding URL. Findings without a
// URL (synthetic entries) are excluded from the comparison.
func countChanges(previous, current *models.ScanReport) (newCount, resolvedCount int) {
	prevURLs := make(map[string]bool, len(previous.Findings))
	for _, f := range previous.Findings {
		if f.URL != "" {
			prevURLs[f.URL] = true
		}
	}

	currURLs := make(map[string]bool, len(current.Findings))
	for _, f := range current.Findings {
		if f.URL == "" {
			continue
		}
		currURLs[f.URL] = true
		if !prevURLs[f.URL] {
			newCount++
		}
	}

	for url := range prevURLs {
		if !currURLs[url] {
			resolvedCount++
		}
	}
	return newCount, resolvedCount
}

// generateOutput generates the output in the specified format(s).
func generateOutput(report *models.ScanReport, format, outputPath string) error {
	var writer *os.File
	if outputPath == "" {
		writer = os.Stdout
	} else {
		var err error
		writer, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	}

	switch format {
	case "text":
		textReporter := reporter.NewTextReporter(writer)
		return textReporter.Generate(report)

	case "json":
		jsonReporter := reporter.NewJSONReporter(writer, true)
		return jsonReporter.Generate(report)

	case "both":
		if outputPath == "" {
			textReporter := reporter.NewTextReporter(os.Stdout)
			if err := textReporter.Generate(report); err != nil {
				return err
			}

			jsonFile, err := os.Create("leakradar-report.json")
			if err != nil {
				return fmt.Errorf("failed to create JSON file: %w", err)
			}
			defer func() { _ = jsonFile.Close() }()

			jsonReporter := reporter.NewJSONReporter(jsonFile, true)
			return jsonReporter.Generate(report)
		}

		textReporter := reporter.NewTextReporter(writer)
		if err := textReporter.Generate(report); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(writer, "\n=== JSON Output ===\n\n"); err != nil {
			return err
		}

		jsonReporter := reporter.NewJSONReporter(writer, true)
		return jsonReporter.Generate(report)

	default:
		return fmt.Errorf("unsupported format: %s (use text, json, or both)", format)
	}
}

// getStoragePath resolves the storage path, expanding ~ and converting to absolute.
func getStoragePath(storageDir string) (string, error) {
	if len(storageDir) >= 2 && storageDir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		storageDir = filepath.Join(home, storageDir[2:])
	}

	absPath, err := filepath.Abs(storageDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}
