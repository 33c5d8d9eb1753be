package cli

import (
	"errors"
	"testing"

	"github.com/mlevkin/leakradar/internal/models"
)

func TestRunScanWithDisplayConsumesAllEvents(t *testing.T) {
	want := &models.ScanReport{Metadata: models.ScanMetadata{Domain: "example.com"}}

	var received []models.ProgressEvent
	report, err := runScanWithDisplay(
		func(progress models.ProgressFunc) (*models.ScanReport, error) {
			for i := 0; i <= 100; i += 20 {
				progress(models.ProgressEvent{Phase: "scan", Percent: i})
			}
			return want, nil
		},
		func(events <-chan models.ProgressEvent) error {
			for ev := range events {
				received = append(received, ev)
			}
			return nil
		},
	)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report != want {
		t.Error("report not passed through")
	}
	if len(received) != 6 {
		t.Errorf("display saw %d events, want 6", len(received))
	}
}

func TestRunScanWithDisplayEarlyExit(t *testing.T) {
	// A display that quits immediately without consuming anything must
	// not block the scan, even when more events are emitted than the
	// channel buffers.
	want := &models.ScanReport{Metadata: models.ScanMetadata{Domain: "example.com"}}

	report, err := runScanWithDisplay(
		func(progress models.ProgressFunc) (*models.ScanReport, error) {
			for i := 0; i < 40; i++ {
				progress(models.ProgressEvent{Phase: "scan", Percent: i})
			}
			return want, nil
		},
		func(events <-chan models.ProgressEvent) error {
			return nil
		},
	)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report != want {
		t.Error("report not passed through")
	}
}

func TestRunScanWithDisplayErrorExit(t *testing.T) {
	want := &models.ScanReport{Metadata: models.ScanMetadata{Domain: "example.com"}}

	report, err := runScanWithDisplay(
		func(progress models.ProgressFunc) (*models.ScanReport, error) {
			for i := 0; i < 40; i++ {
				progress(models.ProgressEvent{Phase: "scan", Percent: i})
			}
			return want, nil
		},
		func(events <-chan models.ProgressEvent) error {
			<-events
			return errors.New("terminal too small")
		},
	)

	if err != nil {
		t.Fatalf("display errors must not fail the scan: %v", err)
	}
	if report != want {
		t.Error("report not passed through")
	}
}

func TestRunScanWithDisplayScanError(t *testing.T) {
	scanErr := errors.New("invalid domain")

	report, err := runScanWithDisplay(
		func(progress models.ProgressFunc) (*models.ScanReport, error) {
			return nil, scanErr
		},
		func(events <-chan models.ProgressEvent) error {
			for range events {
			}
			return nil
		},
	)

	if err != scanErr {
		t.Errorf("err = %v, want scan error", err)
	}
	if report != nil {
		t.Error("expected nil report on scan failure")
	}
}
