package reporter

import (
	"encoding/json"
	"io"

	"github.com/mlevkin/leakradar/internal/models"
)

// JSONReporter generates machine-readable JSON reports
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// Generate creates a JSON report from the scan result
func (r *JSONReporter) Generate(report *models.ScanReport) error {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	// Add trailing newline for terminal output
	_, err = r.writer.Write([]byte("\n"))
	return err
}

// GenerateSummaryOnly creates a compact JSON summary without the full findings list
func (r *JSONReporter) GenerateSummaryOnly(report *models.ScanReport) error {
	summary := struct {
		ScanID        string                               `json:"scan_id"`
		Domain        string                               `json:"domain"`
		Timestamp     string                               `json:"timestamp"`
		Mode          models.Mode                          `json:"mode"`
		TotalFindings int                                  `json:"total_findings"`
		BySeverity    map[string]int                       `json:"by_severity"`
		Sources       map[models.Source]models.SourceStats `json:"sources"`
	}{
		ScanID:        report.Metadata.ScanID,
		Domain:        report.Metadata.Domain,
		Timestamp:     report.Metadata.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		Mode:          report.Metadata.Mode,
		TotalFindings: len(report.Findings),
		BySeverity:    report.CountBySeverity(),
		Sources:       report.Metadata.Sources,
	}

	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(summary, "", "  ")
	} else {
		data, err = json.Marshal(summary)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	// Add trailing newline
	_, err = r.writer.Write([]byte("\n"))
	return err
}
