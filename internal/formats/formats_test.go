package formats

import (
	"errors"
	"testing"
)

func TestMatchCanonicalSpellings(t *testing.T) {
	tests := []struct {
		ext  string
		want Extension
	}{
		{"jpg", JPG},
		{"jpeg", JPG},
		{"JPG", JPG},
		{"Jpeg", JPG},
		{".jpeg", JPG},
		{"tif", TIFF},
		{"tiff", TIFF},
		{"TIF", TIFF},
		{"bmp", BMP},
		{"GIF", GIF},
		{"png", PNG},
		{"WebP", WEBP},
	}

	for _, tt := range tests {
		got, ok := Match(tt.ext)
		if !ok {
			t.Errorf("Match(%q) did not match, want %s", tt.ext, tt.want)
			continue
		}
		if got != tt.want {
			t.Errorf("Match(%q) = %s, want %s", tt.ext, got, tt.want)
		}
	}
}

func TestMatchRejectsUnknown(t *testing.T) {
	for _, ext := range []string{"txt", "", ".", "jpgx", "xjpg", "tiff2", "jp", "heic"} {
		if got, ok := Match(ext); ok {
			t.Errorf("Match(%q) = %s, want no match", ext, got)
		}
	}
}

func TestMatchEnabledRespectsFilter(t *testing.T) {
	filter := NewFilter(PNG)

	if _, ok := MatchEnabled("jpg", filter); ok {
		t.Fatalf("jpg matched although only png is enabled")
	}
	if got, ok := MatchEnabled("PNG", filter); !ok || got != PNG {
		t.Fatalf("MatchEnabled(PNG) = %s, %v; want png, true", got, ok)
	}
	if got, ok := MatchPath("/photos/a/b.Png", filter); !ok || got != PNG {
		t.Fatalf("MatchPath = %s, %v; want png, true", got, ok)
	}
	if _, ok := MatchPath("/photos/noext", filter); ok {
		t.Fatalf("file without extension matched")
	}
}

func TestParse(t *testing.T) {
	if ext, err := Parse(" .TIFF "); err != nil || ext != TIFF {
		t.Fatalf("Parse(.TIFF) = %s, %v", ext, err)
	}
	if _, err := Parse("jpeg"); !errors.Is(err, ErrUnknownExtension) {
		t.Fatalf("Parse(jpeg) error = %v, want ErrUnknownExtension", err)
	}
}

func TestFilterDefaultsAndOrder(t *testing.T) {
	all := AllEnabled()
	if got := all.String(); got != "bmp,gif,jpg,png,tiff,webp" {
		t.Fatalf("AllEnabled().String() = %q", got)
	}

	f := NewFilter(WEBP, BMP)
	enabled := f.Enabled()
	if len(enabled) != 2 || enabled[0] != BMP || enabled[1] != WEBP {
		t.Fatalf("Enabled() = %v, want [bmp webp]", enabled)
	}
	if len(f) != len(All) {
		t.Fatalf("filter has %d keys, want %d", len(f), len(All))
	}
}

func TestFilterSetAndClone(t *testing.T) {
	f := NewFilter(JPG)
	c := f.Clone()

	if err := c.Set(PNG, true); err != nil {
		t.Fatalf("Set(png): %v", err)
	}
	if f[PNG] {
		t.Fatalf("Clone shares state with the original")
	}
	if err := c.Set(Extension("heic"), true); !errors.Is(err, ErrUnknownExtension) {
		t.Fatalf("Set(heic) error = %v, want ErrUnknownExtension", err)
	}
	if _, ok := c["heic"]; ok {
		t.Fatalf("unknown key stored in filter")
	}

	if err := c.Set(Extension("GIF"), true); err != nil {
		t.Fatalf("Set(GIF): %v", err)
	}
	if !c[GIF] || len(c) != len(All) {
		t.Fatalf("Set(GIF) = %#v with %d keys", c, len(c))
	}
	if got := c.String(); got != "gif,jpg,png" {
		t.Fatalf("enabled = %q, want gif,jpg,png", got)
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter([]string{"jpeg", ".TIF", "png"})
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	if got := f.String(); got != "jpg,png,tiff" {
		t.Fatalf("ParseFilter = %q, want jpg,png,tiff", got)
	}

	if _, err := ParseFilter([]string{"psd"}); !errors.Is(err, ErrUnknownExtension) {
		t.Fatalf("ParseFilter(psd) error = %v, want ErrUnknownExtension", err)
	}

	empty, err := ParseFilter(nil)
	if err != nil || empty.Any() {
		t.Fatalf("ParseFilter(nil) = %v, %v; want empty filter", empty, err)
	}
}

func TestSpellings(t *testing.T) {
	got := TIFF.Spellings()
	if len(got) != 2 || got[0] != "tif" || got[1] != "tiff" {
		t.Fatalf("TIFF.Spellings() = %v", got)
	}
	if Extension("psd").Spellings() != nil {
		t.Fatalf("unknown extension has spellings")
	}
}
