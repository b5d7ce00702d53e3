package statistics

import (
	"strings"
	"testing"
)

func TestCountersAndSnapshot(t *testing.T) {
	s := NewStatistics()
	s.Start()

	s.IncrementFilesScanned()
	s.IncrementFilesScanned()
	s.IncrementTargetsFound()
	s.IncrementSourcesHandled()
	s.IncrementOutputsWritten("png")
	s.IncrementOutputsWritten("png")
	s.IncrementOutputsWritten("jpg")
	s.AddBytesWritten(2048)
	s.IncrementOpenErrors()
	s.AddError("/src/a.jpg", "open", "corrupt")
	s.SetCanceled(true)
	s.Finalize()

	snap := s.Snapshot()
	if snap.FilesScanned != 2 || snap.TargetsFound != 1 || snap.SourcesHandled != 1 {
		t.Fatalf("unexpected discovery/handled counters: %+v", snap)
	}
	if snap.OutputsWritten != 3 || snap.FormatStats["png"] != 2 || snap.FormatStats["jpg"] != 1 {
		t.Fatalf("unexpected output counters: %+v", snap)
	}
	if snap.OpenErrors != 1 || snap.ErrorCount != 1 || !snap.Canceled {
		t.Fatalf("unexpected error counters: %+v", snap)
	}

	snap.FormatStats["png"] = 99
	if s.Snapshot().FormatStats["png"] != 2 {
		t.Fatalf("Snapshot shares the format map")
	}
}

func TestResetDiscovery(t *testing.T) {
	s := NewStatistics()
	s.IncrementFilesScanned()
	s.IncrementTargetsFound()
	s.ResetDiscovery()

	if snap := s.Snapshot(); snap.FilesScanned != 0 || snap.TargetsFound != 0 {
		t.Fatalf("ResetDiscovery left counters: %+v", snap)
	}
}

func TestResetConversion(t *testing.T) {
	s := NewStatistics()
	s.IncrementFilesScanned()
	s.IncrementSourcesHandled()
	s.IncrementSourcesFailed()
	s.IncrementOutputsWritten("png")
	s.AddBytesWritten(100)
	s.IncrementOpenErrors()
	s.IncrementSaveErrors()
	s.IncrementUnknownErrors()
	s.AddError("/src/a.png", "save", "disk full")
	s.Finalize()

	s.ResetConversion()

	snap := s.Snapshot()
	if snap.SourcesHandled != 0 || snap.SourcesFailed != 0 || snap.OutputsWritten != 0 || snap.BytesWritten != 0 {
		t.Fatalf("ResetConversion left conversion counters: %+v", snap)
	}
	if snap.OpenErrors != 0 || snap.SaveErrors != 0 || snap.UnknownErrors != 0 || snap.ErrorCount != 0 {
		t.Fatalf("ResetConversion left error counters: %+v", snap)
	}
	if len(snap.FormatStats) != 0 || s.FilesPerSecond != 0 {
		t.Fatalf("ResetConversion left formats %v, rate %v", snap.FormatStats, s.FilesPerSecond)
	}
	if snap.FilesScanned != 1 {
		t.Fatalf("ResetConversion touched discovery counters: %+v", snap)
	}
}

func TestSummaries(t *testing.T) {
	s := NewStatistics()
	if got := s.GetErrorSummary(); got != "No errors occurred during processing" {
		t.Fatalf("empty error summary = %q", got)
	}
	if got := s.GetFormatBreakdown(); got != "No outputs written" {
		t.Fatalf("empty breakdown = %q", got)
	}

	for i := 0; i < 12; i++ {
		s.AddError("/src/x.png", "save", "disk full")
	}
	s.IncrementOutputsWritten("tiff")
	s.IncrementOutputsWritten("bmp")
	s.AddBytesWritten(3 * 1024 * 1024)

	if got := s.GetErrorSummary(); !strings.Contains(got, "Errors (12 total)") || !strings.Contains(got, "and 2 more errors") {
		t.Fatalf("error summary = %q", got)
	}
	if got := s.GetFormatBreakdown(); !strings.Contains(got, "  bmp: 1\n  tiff: 1\n") {
		t.Fatalf("breakdown not sorted: %q", got)
	}
	if got := s.GetSummary(); !strings.Contains(got, "Bytes Written: 3.0 MB") || !strings.Contains(got, "(completed)") {
		t.Fatalf("summary = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:           "0 B",
		1023:        "1023 B",
		1024:        "1.0 KB",
		1536:        "1.5 KB",
		1024 * 1024: "1.0 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
