package engine

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"image-converter-go/internal/formats"

	"github.com/spf13/afero"
)

type logEntry struct {
	Errors  []map[string]string `json:"errors"`
	Outputs []map[string]bool   `json:"outputs"`
}

func readLog(t *testing.T, fs afero.Fs, path string) map[string]logEntry {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read log %s: %v", path, err)
	}
	var entries map[string]logEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("log is not JSON: %v\n%s", err, data)
	}
	return entries
}

func TestTargetSetKeepsInsertionOrder(t *testing.T) {
	s := NewTargetSet()
	s.Add("/z.png")
	s.Add("/a.png").addError(ImageOpenError, "", errors.New("corrupt"))
	s.Add("/m&n.png").addOutput("/out/m&n.jpg")
	s.Add("/z.png")

	if s.Len() != 3 {
		t.Fatalf("Len = %d", s.Len())
	}
	if keys := s.ErroredKeys(); len(keys) != 1 || keys[0] != "/a.png" {
		t.Fatalf("ErroredKeys = %v", keys)
	}

	data, err := marshalNoEscape(s)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !(strings.Index(out, `"/z.png"`) < strings.Index(out, `"/a.png"`) &&
		strings.Index(out, `"/a.png"`) < strings.Index(out, `"/m&n.png"`)) {
		t.Fatalf("order not preserved: %s", out)
	}
	if !strings.Contains(out, `"/z.png":{"errors":[],"outputs":[]}`) {
		t.Fatalf("empty entry encoding: %s", out)
	}
	if !strings.Contains(out, `{"/out/m&n.jpg":true}`) {
		t.Fatalf("output record encoding: %s", out)
	}
	if !strings.Contains(out, `{"kind":"ImageOpenError","message":"corrupt"}`) {
		t.Fatalf("error record encoding: %s", out)
	}
}

func TestErrorRecordFormat(t *testing.T) {
	entry := newTargetEntry()
	entry.addError(UnknownError, formats.WEBP, errors.New("unsupported"))

	data, err := json.Marshal(entry.Errors[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"kind":"UnknownError","format":"webp","message":"unsupported"}` {
		t.Fatalf("record = %s", data)
	}
}

func TestTargetSetSubset(t *testing.T) {
	s := NewTargetSet()
	a := s.Add("/a.png")
	s.Add("/b.png")
	s.Add("/c.png")

	sub := s.Subset([]string{"/c.png", "/a.png", "/missing.png", "/a.png"})
	if got := sub.Paths(); len(got) != 2 || got[0] != "/c.png" || got[1] != "/a.png" {
		t.Fatalf("Subset paths = %v", got)
	}
	if entry, _ := sub.Get("/a.png"); entry != a {
		t.Fatalf("Subset copied the entry instead of sharing it")
	}
}
