package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Extension is a canonical image format identifier.
type Extension string

// Canonical extensions understood by the converter.
const (
	BMP  Extension = "bmp"
	GIF  Extension = "gif"
	JPG  Extension = "jpg"
	PNG  Extension = "png"
	TIFF Extension = "tiff"
	WEBP Extension = "webp"
)

// All lists the canonical extensions in their fixed iteration order.
var All = []Extension{BMP, GIF, JPG, PNG, TIFF, WEBP}

// ErrUnknownExtension is returned when a name is not one of the canonical extensions.
var ErrUnknownExtension = errors.New("unknown image extension")

type matcher struct {
	ext       Extension
	pattern   *regexp.Regexp
	spellings []string
}

// matchers is walked in order; the first full match wins.
var matchers = []matcher{
	{BMP, regexp.MustCompile(`(?i)^(?:bmp)$`), []string{"bmp"}},
	{GIF, regexp.MustCompile(`(?i)^(?:gif)$`), []string{"gif"}},
	{JPG, regexp.MustCompile(`(?i)^(?:jpg|jpeg)$`), []string{"jpg", "jpeg"}},
	{PNG, regexp.MustCompile(`(?i)^(?:png)$`), []string{"png"}},
	{TIFF, regexp.MustCompile(`(?i)^(?:tif|tiff)$`), []string{"tif", "tiff"}},
	{WEBP, regexp.MustCompile(`(?i)^(?:webp)$`), []string{"webp"}},
}

// String returns the extension name.
func (e Extension) String() string {
	return string(e)
}

// Spellings returns the file extensions accepted as this canonical type.
func (e Extension) Spellings() []string {
	for _, m := range matchers {
		if m.ext == e {
			return append([]string(nil), m.spellings...)
		}
	}
	return nil
}

// Parse resolves a canonical extension name, case-insensitively.
// A leading dot is accepted.
func Parse(name string) (Extension, error) {
	n := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	for _, ext := range All {
		if string(ext) == n {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownExtension, name)
}

// Match returns the canonical extension whose pattern accepts ext.
// ext may carry a leading dot.
func Match(ext string) (Extension, bool) {
	return match(ext, nil)
}

// MatchEnabled is like Match but only considers extensions enabled in filter.
func MatchEnabled(ext string, filter Filter) (Extension, bool) {
	return match(ext, filter)
}

// MatchPath matches the extension of a file path against the enabled entries of filter.
func MatchPath(path string, filter Filter) (Extension, bool) {
	return MatchEnabled(filepath.Ext(path), filter)
}

func match(ext string, filter Filter) (Extension, bool) {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return "", false
	}
	for _, m := range matchers {
		if filter != nil && !filter[m.ext] {
			continue
		}
		if m.pattern.MatchString(ext) {
			return m.ext, true
		}
	}
	return "", false
}
