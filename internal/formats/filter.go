package formats

import (
	"fmt"
	"strings"
)

// Filter maps each canonical extension to whether it is enabled.
// Keys outside All are never stored.
type Filter map[Extension]bool

// NewFilter returns a filter with every canonical key present and only the given
// extensions enabled.
func NewFilter(enabled ...Extension) Filter {
	f := make(Filter, len(All))
	for _, ext := range All {
		f[ext] = false
	}
	for _, ext := range enabled {
		if _, ok := f[ext]; ok {
			f[ext] = true
		}
	}
	return f
}

// AllEnabled returns a filter with every canonical extension enabled.
func AllEnabled() Filter {
	return NewFilter(All...)
}

// ParseFilter builds a filter from extension names such as "jpg", "PNG" or ".tif".
// Names are resolved through the matcher table, so "jpeg" enables jpg.
func ParseFilter(names []string) (Filter, error) {
	f := NewFilter()
	for _, name := range names {
		ext, err := Parse(name)
		if err != nil {
			var ok bool
			if ext, ok = Match(strings.TrimSpace(name)); !ok {
				return nil, err
			}
		}
		f[ext] = true
	}
	return f, nil
}

// Set enables or disables ext. Names are canonicalized, so "JPG" sets jpg.
func (f Filter) Set(ext Extension, enabled bool) error {
	canonical, err := Parse(string(ext))
	if err != nil {
		return err
	}
	f[canonical] = enabled
	return nil
}

// Enabled returns the enabled extensions in canonical order.
func (f Filter) Enabled() []Extension {
	var out []Extension
	for _, ext := range All {
		if f[ext] {
			out = append(out, ext)
		}
	}
	return out
}

// Any reports whether at least one extension is enabled.
func (f Filter) Any() bool {
	return len(f.Enabled()) > 0
}

// Clone returns an independent copy of f.
func (f Filter) Clone() Filter {
	c := NewFilter()
	for ext, on := range f {
		if _, ok := c[ext]; ok {
			c[ext] = on
		}
	}
	return c
}

// String renders the enabled extensions as a comma-separated list.
func (f Filter) String() string {
	enabled := f.Enabled()
	if len(enabled) == 0 {
		return "(none)"
	}
	names := make([]string, len(enabled))
	for i, ext := range enabled {
		names[i] = string(ext)
	}
	return strings.Join(names, ",")
}

// Names returns the enabled extension names, suitable for config files.
func (f Filter) Names() []string {
	enabled := f.Enabled()
	names := make([]string, len(enabled))
	for i, ext := range enabled {
		names[i] = string(ext)
	}
	return names
}

// GoString is used by %#v in test failures.
func (f Filter) GoString() string {
	return fmt.Sprintf("formats.Filter{%s}", f.String())
}
