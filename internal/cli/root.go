package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlevkin/leakradar/internal/config"
)

const (
	// Exit codes
	ExitOK           = 0 // Success
	ExitPolicyFail   = 1 // Policy violations
	ExitInvalidInput = 2 // Invalid domain or arguments
	ExitRuntimeError = 3 // I/O, permissions, or runtime error
)

var (
	// Global config instance
	cfg *config.Config

	// Global flags
	configFile string
	verbose    bool
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "leakradar",
	Short: "LeakRadar - Domain exposure scanner",
	Long: `LeakRadar probes public code and web search indexes for strings tied to
your domain: leaked credentials, exposed configuration files, database
dumps, and other material an attacker would find first.

It provides:
- GitHub code search and Google Custom Search probing
- Severity classification and URL-level deduplication
- Optional AI validation and enrichment of findings
- Historical tracking and CI/CD integration with exit codes

Quick start:
  export LEAKRADAR_GITHUB_TOKEN=ghp_...
  leakradar doctor
  leakradar scan example.com --store

Other commands:
  leakradar plan example.com
  leakradar history --last 5
  leakradar diff`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}

		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		os.Exit(HandleError(err))
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ~/.leakradar.yaml or ./leakradar.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

// version is injected from main via SetVersion
var version = "dev"

// SetVersion sets the version string shown by the version command
func SetVersion(v string) {
	version = v
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("LeakRadar %s\n", version)
		fmt.Println("Domain exposure scanner")
	},
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	switch err.(type) {
	case *ValidationError:
		return ExitInvalidInput
	case *PolicyFailedError:
		return ExitPolicyFail
	default:
		if os.IsNotExist(err) || os.IsPermission(err) {
			return ExitRuntimeError
		}
		return ExitRuntimeError
	}
}

// ValidationError represents invalid user input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PolicyFailedError represents a policy check failure
type PolicyFailedError struct {
	Violations int
}

func (e *PolicyFailedError) Error() string {
	return fmt.Sprintf("policy check failed with %d violation(s)", e.Violations)
}

// logVerbose prints a message if verbose mode is enabled
func logVerbose(format string, args ...interface{}) {
	if cfg != nil && cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[INFO] "+format+"\n", args...)
	}
}

// logDebug prints a message if debug mode is enabled
func logDebug(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// logError prints an error message
func logError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+format+"\n", args...)
}
