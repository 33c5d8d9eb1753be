package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mlevkin/leakradar/internal/credcheck"
	"github.com/mlevkin/leakradar/internal/mode"
	"github.com/mlevkin/leakradar/internal/models"
	"github.com/mlevkin/leakradar/internal/validate"
)

var (
	doctorFormat  string
	doctorOffline bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check environment readiness and diagnose common problems",
	Long: `Doctor validates your LeakRadar setup end-to-end:

  1. Config file: found and readable?
  2. Credentials: well-formed?
  3. Live probes: do the credentials actually work?
  4. Scan mode: would a scan run live or fall back to demo?
  5. Storage: directory writable?

Fix the issues it reports, then run 'leakradar scan' with confidence.
Use --offline to skip the network probes.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "text",
		"output format: text or json")
	doctorCmd.Flags().BoolVar(&doctorOffline, "offline", false,
		"skip network credential probes")
}

type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "warn", "fail"
	Detail string `json:"detail,omitempty"`
}

type doctorResult struct {
	Checks  []doctorCheck `json:"checks"`
	Summary string        `json:"summary"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []doctorCheck

	// 1. Config file
	checks = append(checks, checkConfigFile())

	// 2. Credential formats
	checks = append(checks, checkCredentialFormats()...)

	// 3. Live probes and resolved mode
	if !doctorOffline {
		checks = append(checks, checkCredentialProbes(cmd)...)
	} else {
		checks = append(checks, doctorCheck{
			Name:   "probes",
			Status: "warn",
			Detail: "skipped (--offline)",
		})
	}

	// 4. Storage directory
	checks = append(checks, checkStorage())

	// Build summary
	fails, warns := 0, 0
	for _, c := range checks {
		switch c.Status {
		case "fail":
			fails++
		case "warn":
			warns++
		}
	}

	summary := "all checks passed"
	if fails > 0 {
		summary = fmt.Sprintf("%d issue(s) found", fails)
	} else if warns > 0 {
		summary = fmt.Sprintf("ok with %d warning(s)", warns)
	}

	result := doctorResult{Checks: checks, Summary: summary}

	if doctorFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return writeDoctorText(result)
}

func writeDoctorText(result doctorResult) error {
	icons := map[string]string{
		"ok":   "✓",
		"warn": "△",
		"fail": "✗",
	}

	for _, c := range result.Checks {
		icon := icons[c.Status]
		if c.Detail != "" {
			fmt.Printf("  %s %-22s %s\n", icon, c.Name, c.Detail)
		} else {
			fmt.Printf("  %s %s\n", icon, c.Name)
		}
	}

	fmt.Printf("\n%s\n", result.Summary)
	return nil
}

func checkConfigFile() doctorCheck {
	path := findConfigFile()
	if path == "" {
		return doctorCheck{
			Name:   "config",
			Status: "warn",
			Detail: "no config file found (using defaults and LEAKRADAR_* env vars)",
		}
	}

	return doctorCheck{
		Name:   "config",
		Status: "ok",
		Detail: path,
	}
}

// findConfigFile mirrors the config package's search order.
func findConfigFile() string {
	if configFile != "" {
		return configFile
	}

	candidates := []string{"leakradar.yaml", "leakradar.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, "leakradar.yaml"),
			filepath.Join(home, ".leakradar.yaml"))
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "leakradar", "leakradar.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// checkCredentialFormats verifies each configured credential looks
// plausible without touching the network.
func checkCredentialFormats() []doctorCheck {
	creds := cfg.Credentials()

	type formatCheck struct {
		name     string
		value    string
		validate func(string) error
		hint     string
	}

	items := []formatCheck{
		{"github token", creds.GitHubToken, validate.GitHubToken, "set LEAKRADAR_GITHUB_TOKEN for GitHub code search"},
		{"google key", creds.GoogleKey, validate.GoogleKey, "set LEAKRADAR_GOOGLE_KEY for Google Custom Search"},
		{"google cx", creds.GoogleCX, validate.GoogleCX, "set LEAKRADAR_GOOGLE_CX (search engine ID)"},
		{"openai key", creds.OpenAIKey, validate.OpenAIKey, "set LEAKRADAR_OPENAI_KEY to enable AI enrichment"},
	}

	var checks []doctorCheck
	for _, item := range items {
		c := doctorCheck{Name: item.name}
		switch {
		case item.value == "":
			c.Status = "warn"
			c.Detail = "not configured. " + item.hint
		case item.validate(item.value) != nil:
			c.Status = "fail"
			c.Detail = fmt.Sprintf("malformed: %v", item.validate(item.value))
		default:
			c.Status = "ok"
			c.Detail = "format looks valid"
		}
		checks = append(checks, c)
	}
	return checks
}

// checkCredentialProbes performs live credential validation and reports
// which scan mode would be used.
func checkCredentialProbes(cmd *cobra.Command) []doctorCheck {
	creds := cfg.Credentials()
	if !creds.HasGitHub() && !creds.HasGoogle() && !creds.HasOpenAI() {
		return []doctorCheck{{
			Name:   "scan mode",
			Status: "warn",
			Detail: "no credentials configured, scans will run in demo mode",
		}}
	}

	checker := credcheck.New()
	statuses := checker.Check(cmd.Context(), creds)

	labels := make([]string, 0, len(statuses))
	for label := range statuses {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var checks []doctorCheck
	for _, label := range labels {
		status := statuses[label]
		if !status.Provided {
			continue
		}
		c := doctorCheck{Name: label}
		if status.Valid {
			c.Status = "ok"
			c.Detail = "verified"
		} else {
			c.Status = "fail"
			c.Detail = status.Reason
		}
		checks = append(checks, c)
	}

	scanMode := mode.Resolve(statuses)
	modeCheck := doctorCheck{Name: "scan mode"}
	if scanMode.Mode == models.ModeLive {
		modeCheck.Status = "ok"
		modeCheck.Detail = "live"
		if scanMode.EnrichmentEnabled() {
			modeCheck.Detail = "live with AI enrichment"
		}
	} else {
		modeCheck.Status = "warn"
		modeCheck.Detail = "demo (no usable search credentials)"
	}
	checks = append(checks, modeCheck)

	return checks
}

func checkStorage() doctorCheck {
	storagePath := cfg.StorageDir
	if storagePath == "" {
		storagePath = ".leakradar"
	}

	info, err := os.Stat(storagePath)
	if err != nil {
		return doctorCheck{
			Name:   "storage",
			Status: "ok",
			Detail: fmt.Sprintf("%s (will be created on first --store)", storagePath),
		}
	}

	if !info.IsDir() {
		return doctorCheck{
			Name:   "storage",
			Status: "fail",
			Detail: fmt.Sprintf("%s exists but is not a directory", storagePath),
		}
	}

	// Try writing a temp file to check write access
	tmpFile := storagePath + "/.doctor-check"
	if err := os.WriteFile(tmpFile, []byte("ok"), 0600); err != nil {
		return doctorCheck{
			Name:   "storage",
			Status: "fail",
			Detail: fmt.Sprintf("%s not writable: %v", storagePath, err),
		}
	}
	_ = os.Remove(tmpFile)

	return doctorCheck{
		Name:   "storage",
		Status: "ok",
		Detail: storagePath,
	}
}
