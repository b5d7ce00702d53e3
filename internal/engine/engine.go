package engine

import (
	"sync/atomic"
	"time"

	"image-converter-go/internal/codec"
	"image-converter-go/internal/formats"
	"image-converter-go/internal/statistics"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// DiscoveryProgressFunc receives the number of matches and of files scanned so far.
type DiscoveryProgressFunc func(matches, scanned int)

// ConversionProgressFunc receives the source being handled and the counts so far.
type ConversionProgressFunc func(current string, handled, total int)

// LogHookFunc forwards user-facing engine messages, e.g. to a WebSocket.
type LogHookFunc func(level, message string)

// Options tunes progress reporting.
type Options struct {
	// ProgressEvery is the file cadence at which discovery may report.
	ProgressEvery int
	// ProgressInterval is the minimum time between two discovery reports.
	ProgressInterval time.Duration
	Now              func() time.Time
	LogHook          LogHookFunc
}

// DefaultOptions returns the default reporting cadence.
func DefaultOptions() Options {
	return Options{
		ProgressEvery:    100,
		ProgressInterval: 200 * time.Millisecond,
		Now:              time.Now,
	}
}

// DiscoveryResult is the outcome of Discover.
type DiscoveryResult struct {
	Targets     *TargetSet
	ErroredKeys []string
	Canceled    bool
	Scanned     int
}

// ConversionResult is the outcome of ConvertAll.
type ConversionResult struct {
	Targets     *TargetSet
	ErroredKeys []string
	Canceled    bool
	Handled     int
	LogPath     string
}

// Engine holds the conversion configuration and the current target set.
// It is driven from one goroutine; only the cancel requests may come from others.
type Engine struct {
	fs     afero.Fs
	codec  codec.Codec
	logger *logrus.Logger
	stats  *statistics.Statistics
	opts   Options

	sourcePath   string
	outputPath   string
	selectedAt   time.Time
	sourceFilter formats.Filter
	outputFilter formats.Filter
	scalePercent int
	targets      *TargetSet

	cancelDiscovery  atomic.Bool
	cancelConversion atomic.Bool
}

// New returns an Engine with every source format enabled, jpg output and 100% scale.
func New(fs afero.Fs, c codec.Codec, logger *logrus.Logger, stats *statistics.Statistics, opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = defaults.ProgressEvery
	}
	if opts.ProgressInterval < 0 {
		opts.ProgressInterval = defaults.ProgressInterval
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}
	if stats == nil {
		stats = statistics.NewStatistics()
	}
	return &Engine{
		fs:           fs,
		codec:        c,
		logger:       logger,
		stats:        stats,
		opts:         opts,
		sourceFilter: formats.AllEnabled(),
		outputFilter: formats.NewFilter(formats.JPG),
		scalePercent: 100,
		targets:      NewTargetSet(),
	}
}

// SetSourcePath validates path and makes it the source folder.
// The previous target set is discarded. On error nothing changes.
func (e *Engine) SetSourcePath(path string) error {
	abs, err := ValidateDir(e.fs, path)
	if err != nil {
		return err
	}
	e.ClearSourcePath()
	e.sourcePath = abs
	e.selectedAt = e.opts.Now()
	e.logger.Infof("Source folder set to %s", abs)
	return nil
}

// ClearSourcePath unsets the source folder and drops the target set.
func (e *Engine) ClearSourcePath() {
	e.sourcePath = ""
	e.selectedAt = time.Time{}
	e.targets = NewTargetSet()
}

// SetOutputPath validates path and makes it the output folder. On error nothing changes.
func (e *Engine) SetOutputPath(path string) error {
	abs, err := ValidateDir(e.fs, path)
	if err != nil {
		return err
	}
	e.outputPath = abs
	e.logger.Infof("Output folder set to %s", abs)
	return nil
}

// ClearOutputPath unsets the output folder.
func (e *Engine) ClearOutputPath() {
	e.outputPath = ""
}

func (e *Engine) SourcePath() string    { return e.sourcePath }
func (e *Engine) OutputPath() string    { return e.outputPath }
func (e *Engine) SelectedAt() time.Time { return e.selectedAt }
func (e *Engine) ScalePercent() int     { return e.scalePercent }

// Targets returns the current target set.
func (e *Engine) Targets() *TargetSet { return e.targets }

// Statistics returns the counters the engine updates.
func (e *Engine) Statistics() *statistics.Statistics { return e.stats }

// SetScale sets the output scale in percent.
func (e *Engine) SetScale(percent int) error {
	if percent < 1 || percent > 100 {
		return ErrInvalidScale
	}
	e.scalePercent = percent
	return nil
}

// SourceFilter returns a copy of the source format filter.
func (e *Engine) SourceFilter() formats.Filter { return e.sourceFilter.Clone() }

// OutputFilter returns a copy of the output format filter.
func (e *Engine) OutputFilter() formats.Filter { return e.outputFilter.Clone() }

// SetSourceFilter replaces the source format filter. It affects the next discovery only.
func (e *Engine) SetSourceFilter(f formats.Filter) {
	e.sourceFilter = formats.NewFilter(f.Enabled()...)
}

// SetOutputFilter replaces the output format filter.
func (e *Engine) SetOutputFilter(f formats.Filter) {
	e.outputFilter = formats.NewFilter(f.Enabled()...)
}

// SetSourceFormat toggles one source format.
func (e *Engine) SetSourceFormat(ext formats.Extension, enabled bool) error {
	return e.sourceFilter.Set(ext, enabled)
}

// SetOutputFormat toggles one output format.
func (e *Engine) SetOutputFormat(ext formats.Extension, enabled bool) error {
	return e.outputFilter.Set(ext, enabled)
}

// RequestCancelDiscovery asks a running Discover to stop. Safe from any goroutine.
func (e *Engine) RequestCancelDiscovery() {
	e.cancelDiscovery.Store(true)
}

// RequestCancelConversion asks a running ConvertAll to stop. Safe from any goroutine.
func (e *Engine) RequestCancelConversion() {
	e.cancelConversion.Store(true)
}

// SetLogHook installs fn to receive user-facing messages. Call it before starting an operation.
func (e *Engine) SetLogHook(fn LogHookFunc) {
	e.opts.LogHook = fn
}

func (e *Engine) notify(level, message string) {
	if e.opts.LogHook != nil {
		e.opts.LogHook(level, message)
	}
}
