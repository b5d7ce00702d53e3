package inspect

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
	"time"

	"image-converter-go/internal/codec"
	"image-converter-go/internal/formats"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Report describes one image file without fully decoding it.
type Report struct {
	Path         string            `json:"path"`
	Extension    formats.Extension `json:"extension,omitempty"`
	Decoder      string            `json:"decoder"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	ScalePercent int               `json:"scale_percent"`
	ScaledWidth  int               `json:"scaled_width"`
	ScaledHeight int               `json:"scaled_height"`
	Size         int64             `json:"size"`
	ModTime      time.Time         `json:"mod_time"`
	EXIF         *EXIFInfo         `json:"exif,omitempty"`
}

// EXIFInfo holds the metadata fields worth showing before a conversion.
type EXIFInfo struct {
	Date        *time.Time `json:"date,omitempty"`
	DateSource  DateSource `json:"date_source"`
	Make        string     `json:"make,omitempty"`
	Model       string     `json:"model,omitempty"`
	Orientation int        `json:"orientation,omitempty"`
}

// CacheStats contains statistics about cache performance.
type CacheStats struct {
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	HitRate      float64 `json:"hit_rate"`
	TotalQueries int64   `json:"total_queries"`
}

// Inspector probes image files. Results are cached by path, size and mtime.
type Inspector struct {
	fs     afero.Fs
	logger *logrus.Logger
	cache  *sync.Map
	stats  CacheStats
	mutex  sync.RWMutex
}

// NewInspector returns a new Inspector.
func NewInspector(fs afero.Fs, logger *logrus.Logger) *Inspector {
	return &Inspector{
		fs:     fs,
		logger: logger,
		cache:  &sync.Map{},
	}
}

// Inspect reads the header and metadata of the file at path and computes the
// size it would have at scalePercent.
func (i *Inspector) Inspect(path string, scalePercent int) (*Report, error) {
	info, err := i.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a folder", path)
	}

	key := cacheKey(path, info)
	if value, ok := i.cache.Load(key); ok {
		i.countQuery(true)
		report := value.(Report)
		report.applyScale(scalePercent)
		return &report, nil
	}
	i.countQuery(false)

	report := Report{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	if ext, ok := formats.MatchPath(path, formats.AllEnabled()); ok {
		report.Extension = ext
	}

	if err := i.readHeader(path, &report); err != nil {
		return nil, err
	}
	report.EXIF = i.readEXIF(path)

	i.cache.Store(key, report)
	report.applyScale(scalePercent)
	return &report, nil
}

// ClearCache removes all cached reports and resets statistics.
func (i *Inspector) ClearCache() {
	i.cache = &sync.Map{}
	i.mutex.Lock()
	i.stats = CacheStats{}
	i.mutex.Unlock()
}

// GetCacheStats returns cache statistics for this inspector.
func (i *Inspector) GetCacheStats() CacheStats {
	i.mutex.RLock()
	defer i.mutex.RUnlock()

	stats := i.stats
	if stats.TotalQueries > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.TotalQueries)
	}
	return stats
}

func (r *Report) applyScale(scalePercent int) {
	if scalePercent < 1 || scalePercent > 100 {
		scalePercent = 100
	}
	r.ScalePercent = scalePercent
	r.ScaledWidth, r.ScaledHeight = codec.ScaledSize(r.Width, r.Height, scalePercent)
}

func (i *Inspector) readHeader(path string, report *Report) error {
	file, err := i.fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	cfg, name, err := image.DecodeConfig(file)
	if err != nil {
		return fmt.Errorf("failed to read image header: %w", err)
	}
	report.Decoder = name
	report.Width = cfg.Width
	report.Height = cfg.Height
	return nil
}

// readEXIF returns nil when the file carries no readable EXIF block.
func (i *Inspector) readEXIF(path string) *EXIFInfo {
	file, err := i.fs.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		i.logger.Debugf("No EXIF in %s: %v", path, err)
		return nil
	}

	meta := &EXIFInfo{}
	meta.Date, meta.DateSource = i.extractDate(x, path)
	meta.Make = stringTag(x, exif.Make)
	meta.Model = stringTag(x, exif.Model)
	if field, err := x.Get(exif.Orientation); err == nil {
		if v, err := field.Int(0); err == nil {
			meta.Orientation = v
		}
	}
	return meta
}

func (i *Inspector) extractDate(x *exif.Exif, path string) (*time.Time, DateSource) {
	if tm, err := x.DateTime(); err == nil {
		i.logger.Debugf("Extracted DateTime from EXIF: %v for file %s", tm, path)
		return &tm, DateSourceEXIFDateTime
	}

	sources := []struct {
		tag    exif.FieldName
		source DateSource
	}{
		{exif.DateTimeOriginal, DateSourceEXIFDateTimeOriginal},
		{exif.DateTimeDigitized, DateSourceEXIFDateTimeDigitized},
	}
	for _, s := range sources {
		if date := parseEXIFDateTime(stringTag(x, s.tag)); date != nil {
			return date, s.source
		}
	}
	return nil, DateSourceUnknown
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	field, err := x.Get(name)
	if err != nil {
		return ""
	}
	value, err := field.StringVal()
	if err != nil {
		return ""
	}
	return value
}

// parseEXIFDateTime returns nil if dateStr matches none of the known layouts.
func parseEXIFDateTime(dateStr string) *time.Time {
	if dateStr == "" {
		return nil
	}

	layouts := []string{
		"2006:01:02 15:04:05",
		"2006-01-02 15:04:05",
		"2006:01:02",
		"2006-01-02",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if date, err := time.Parse(layout, dateStr); err == nil {
			return &date
		}
	}
	return nil
}

func cacheKey(path string, info os.FileInfo) string {
	return fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())
}

func (i *Inspector) countQuery(hit bool) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	if hit {
		i.stats.Hits++
	} else {
		i.stats.Misses++
	}
	i.stats.TotalQueries++
}
