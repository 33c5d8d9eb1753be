package storage

import (
	"time"

	"github.com/mlevkin/leakradar/internal/models"
)

// Storage defines the interface for persisting scan reports
type Storage interface {
	// SaveScanReport stores a complete scan report
	SaveScanReport(report *models.ScanReport) error

	// LoadScanReport loads a report from a specific timestamp
	LoadScanReport(timestamp time.Time) (*models.ScanReport, error)

	// GetLatestRun retrieves the most recent scan report
	GetLatestRun() (*models.ScanReport, error)

	// GetLastNRuns retrieves the last N scan reports
	GetLastNRuns(n int) ([]*models.ScanReport, error)

	// ListRuns returns all available run timestamps
	ListRuns() ([]time.Time, error)
}
