package statistics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Statistics contains counters for discovery and conversion runs.
// Counters are atomic so that progress readers on other goroutines can
// sample them while the engine is working.
type Statistics struct {
	FilesScanned   int64
	TargetsFound   int64
	SourcesHandled int64
	SourcesFailed  int64
	OutputsWritten int64
	BytesWritten   int64

	OpenErrors    int64
	SaveErrors    int64
	UnknownErrors int64

	Canceled bool

	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	FilesPerSecond float64

	Errors []StatError

	FormatStats map[string]int64

	mutex sync.RWMutex
}

// StatError represents an error recorded against a source file.
type StatError struct {
	FilePath  string    `json:"file_path"`
	Operation string    `json:"operation"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a point-in-time copy of the counters, safe to serialize.
type Snapshot struct {
	FilesScanned   int64            `json:"files_scanned"`
	TargetsFound   int64            `json:"targets_found"`
	SourcesHandled int64            `json:"sources_handled"`
	SourcesFailed  int64            `json:"sources_failed"`
	OutputsWritten int64            `json:"outputs_written"`
	BytesWritten   int64            `json:"bytes_written"`
	OpenErrors     int64            `json:"open_errors"`
	SaveErrors     int64            `json:"save_errors"`
	UnknownErrors  int64            `json:"unknown_errors"`
	Canceled       bool             `json:"canceled"`
	Duration       string           `json:"duration"`
	FormatStats    map[string]int64 `json:"formats"`
	ErrorCount     int              `json:"error_count"`
}

// NewStatistics returns a new Statistics instance.
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime:   time.Now(),
		FormatStats: make(map[string]int64),
		Errors:      make([]StatError, 0),
	}
}

// Start resets the timing fields for a new run.
func (s *Statistics) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.StartTime = time.Now()
	s.EndTime = time.Time{}
	s.Duration = 0
	s.Canceled = false
}

// IncrementFilesScanned increases the count of scanned files by 1.
func (s *Statistics) IncrementFilesScanned() {
	atomic.AddInt64(&s.FilesScanned, 1)
}

// IncrementTargetsFound increases the count of matched source files by 1.
func (s *Statistics) IncrementTargetsFound() {
	atomic.AddInt64(&s.TargetsFound, 1)
}

// ResetDiscovery zeroes the discovery counters before a new walk.
func (s *Statistics) ResetDiscovery() {
	atomic.StoreInt64(&s.FilesScanned, 0)
	atomic.StoreInt64(&s.TargetsFound, 0)
}

// ResetConversion zeroes the conversion counters, per-format counts and the
// error list before a new conversion run.
func (s *Statistics) ResetConversion() {
	atomic.StoreInt64(&s.SourcesHandled, 0)
	atomic.StoreInt64(&s.SourcesFailed, 0)
	atomic.StoreInt64(&s.OutputsWritten, 0)
	atomic.StoreInt64(&s.BytesWritten, 0)
	atomic.StoreInt64(&s.OpenErrors, 0)
	atomic.StoreInt64(&s.SaveErrors, 0)
	atomic.StoreInt64(&s.UnknownErrors, 0)

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.FormatStats = make(map[string]int64)
	s.Errors = make([]StatError, 0)
	s.FilesPerSecond = 0
}

// IncrementSourcesHandled increases the count of processed source files by 1.
func (s *Statistics) IncrementSourcesHandled() {
	atomic.AddInt64(&s.SourcesHandled, 1)
}

// IncrementSourcesFailed increases the count of sources without any written output by 1.
func (s *Statistics) IncrementSourcesFailed() {
	atomic.AddInt64(&s.SourcesFailed, 1)
}

// IncrementOutputsWritten records one written output file of the given format.
func (s *Statistics) IncrementOutputsWritten(format string) {
	atomic.AddInt64(&s.OutputsWritten, 1)
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.FormatStats[format]++
}

// AddBytesWritten adds the size of a written output file.
func (s *Statistics) AddBytesWritten(bytes int64) {
	atomic.AddInt64(&s.BytesWritten, bytes)
}

// IncrementOpenErrors increases the count of unreadable sources by 1.
func (s *Statistics) IncrementOpenErrors() {
	atomic.AddInt64(&s.OpenErrors, 1)
}

// IncrementSaveErrors increases the count of failed writes by 1.
func (s *Statistics) IncrementSaveErrors() {
	atomic.AddInt64(&s.SaveErrors, 1)
}

// IncrementUnknownErrors increases the count of unclassified failures by 1.
func (s *Statistics) IncrementUnknownErrors() {
	atomic.AddInt64(&s.UnknownErrors, 1)
}

// SetCanceled marks the run as canceled.
func (s *Statistics) SetCanceled(canceled bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Canceled = canceled
}

// AddError records an error that occurred during processing.
func (s *Statistics) AddError(filePath, operation, errorMsg string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.Errors = append(s.Errors, StatError{
		FilePath:  filePath,
		Operation: operation,
		Error:     errorMsg,
		Timestamp: time.Now(),
	})
}

// Finalize calculates duration and throughput.
func (s *Statistics) Finalize() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)

	handled := atomic.LoadInt64(&s.SourcesHandled)
	if s.Duration.Seconds() > 0 {
		s.FilesPerSecond = float64(handled) / s.Duration.Seconds()
	}
}

// Snapshot returns a copy of the current counters.
func (s *Statistics) Snapshot() Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	formats := make(map[string]int64, len(s.FormatStats))
	for k, v := range s.FormatStats {
		formats[k] = v
	}

	return Snapshot{
		FilesScanned:   atomic.LoadInt64(&s.FilesScanned),
		TargetsFound:   atomic.LoadInt64(&s.TargetsFound),
		SourcesHandled: atomic.LoadInt64(&s.SourcesHandled),
		SourcesFailed:  atomic.LoadInt64(&s.SourcesFailed),
		OutputsWritten: atomic.LoadInt64(&s.OutputsWritten),
		BytesWritten:   atomic.LoadInt64(&s.BytesWritten),
		OpenErrors:     atomic.LoadInt64(&s.OpenErrors),
		SaveErrors:     atomic.LoadInt64(&s.SaveErrors),
		UnknownErrors:  atomic.LoadInt64(&s.UnknownErrors),
		Canceled:       s.Canceled,
		Duration:       s.Duration.Round(time.Millisecond).String(),
		FormatStats:    formats,
		ErrorCount:     len(s.Errors),
	}
}

// GetSummary returns a formatted summary of all statistics.
func (s *Statistics) GetSummary() string {
	snap := s.Snapshot()

	s.mutex.RLock()
	fps := s.FilesPerSecond
	s.mutex.RUnlock()

	status := "completed"
	if snap.Canceled {
		status = "canceled"
	}

	return fmt.Sprintf(`Image Conversion Summary (%s):

Discovery:
		Files Scanned: %d
		Images Matched: %d

Conversion:
		Sources Handled: %d
		Sources Without Output: %d
		Outputs Written: %d
		Bytes Written: %s

Errors:
		Open Errors: %d
		Save Errors: %d
		Unknown Errors: %d

Performance:
		Duration: %s
		Files/Second: %.2f`,
		status,
		snap.FilesScanned,
		snap.TargetsFound,
		snap.SourcesHandled,
		snap.SourcesFailed,
		snap.OutputsWritten,
		formatBytes(snap.BytesWritten),
		snap.OpenErrors,
		snap.SaveErrors,
		snap.UnknownErrors,
		snap.Duration,
		fps)
}

// GetFormatBreakdown returns a formatted breakdown of outputs per format.
func (s *Statistics) GetFormatBreakdown() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.FormatStats) == 0 {
		return "No outputs written"
	}

	names := make([]string, 0, len(s.FormatStats))
	for name := range s.FormatStats {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Outputs by format:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %d\n", name, s.FormatStats[name])
	}
	return b.String()
}

// GetErrorSummary returns a summary of errors that occurred during processing.
func (s *Statistics) GetErrorSummary() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.Errors) == 0 {
		return "No errors occurred during processing"
	}

	result := fmt.Sprintf("Errors (%d total):\n", len(s.Errors))
	for i, err := range s.Errors {
		if i >= 10 {
			result += fmt.Sprintf("  ... and %d more errors\n", len(s.Errors)-10)
			break
		}
		result += fmt.Sprintf("  [%s] %s: %s - %s\n",
			err.Timestamp.Format("15:04:05"),
			err.Operation,
			err.FilePath,
			err.Error)
	}
	return result
}

// formatBytes returns a human-readable string for a byte count.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
