package engine

import (
	"bytes"
	"encoding/json"

	"image-converter-go/internal/formats"
)

// ErrorRecord describes one failure for a source file.
type ErrorRecord struct {
	Kind    ErrorKind         `json:"kind"`
	Format  formats.Extension `json:"format,omitempty"`
	Message string            `json:"message,omitempty"`
}

// OutputRecord is one written output file. It serializes as {"<path>": written}.
type OutputRecord struct {
	Path    string
	Written bool
}

// MarshalJSON implements json.Marshaler.
func (o OutputRecord) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(map[string]bool{o.Path: o.Written})
}

// TargetEntry is the conversion record of one source file.
type TargetEntry struct {
	Errors  []ErrorRecord  `json:"errors"`
	Outputs []OutputRecord `json:"outputs"`
}

func newTargetEntry() *TargetEntry {
	return &TargetEntry{
		Errors:  []ErrorRecord{},
		Outputs: []OutputRecord{},
	}
}

// HasErrors reports whether any failure was recorded.
func (t *TargetEntry) HasErrors() bool {
	return len(t.Errors) > 0
}

func (t *TargetEntry) addError(kind ErrorKind, format formats.Extension, err error) {
	rec := ErrorRecord{Kind: kind, Format: format}
	if err != nil {
		rec.Message = err.Error()
	}
	t.Errors = append(t.Errors, rec)
}

func (t *TargetEntry) addOutput(path string) {
	t.Outputs = append(t.Outputs, OutputRecord{Path: path, Written: true})
}

// TargetSet maps absolute source paths to their entries, in insertion order.
type TargetSet struct {
	paths   []string
	entries map[string]*TargetEntry
}

// NewTargetSet returns an empty set.
func NewTargetSet() *TargetSet {
	return &TargetSet{entries: make(map[string]*TargetEntry)}
}

// Add inserts an empty entry for path, or returns the existing one.
func (s *TargetSet) Add(path string) *TargetEntry {
	if entry, ok := s.entries[path]; ok {
		return entry
	}
	entry := newTargetEntry()
	s.entries[path] = entry
	s.paths = append(s.paths, path)
	return entry
}

// Get returns the entry for path.
func (s *TargetSet) Get(path string) (*TargetEntry, bool) {
	entry, ok := s.entries[path]
	return entry, ok
}

// Len returns the number of entries.
func (s *TargetSet) Len() int {
	return len(s.paths)
}

// Paths returns the source paths in insertion order.
func (s *TargetSet) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Subset returns a set holding the entries of paths that are present, sharing them.
func (s *TargetSet) Subset(paths []string) *TargetSet {
	sub := NewTargetSet()
	for _, path := range paths {
		if entry, ok := s.entries[path]; ok && sub.entries[path] == nil {
			sub.entries[path] = entry
			sub.paths = append(sub.paths, path)
		}
	}
	return sub
}

// Each calls fn for every entry in insertion order.
func (s *TargetSet) Each(fn func(path string, entry *TargetEntry)) {
	for _, path := range s.paths {
		fn(path, s.entries[path])
	}
}

// ErroredKeys returns, in insertion order, the paths whose entry has errors.
func (s *TargetSet) ErroredKeys() []string {
	keys := []string{}
	s.Each(func(path string, entry *TargetEntry) {
		if entry.HasErrors() {
			keys = append(keys, path)
		}
	})
	return keys
}

// MarshalJSON writes the set as a JSON object keyed by source path, preserving order.
func (s *TargetSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, path := range s.paths {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(path)
		if err != nil {
			return nil, err
		}
		value, err := marshalNoEscape(s.entries[path])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalNoEscape is json.Marshal without HTML escaping, so paths stay readable.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
