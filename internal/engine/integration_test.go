package engine

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"image-converter-go/internal/codec"
	"image-converter-go/internal/formats"
	"image-converter-go/internal/logger"
	"image-converter-go/internal/statistics"

	"github.com/spf13/afero"
)

func TestConvertWithImagingCodec(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("/src", 0755)
	fs.MkdirAll("/out", 0755)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 64, 32))); err != nil {
		t.Fatal(err)
	}
	afero.WriteFile(fs, "/src/banner.png", buf.Bytes(), 0644)

	e := New(fs, codec.NewImaging(fs), logger.Discard(), statistics.NewStatistics(), DefaultOptions())
	if err := e.SetSourcePath("/src"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetOutputPath("/out"); err != nil {
		t.Fatal(err)
	}
	e.SetOutputFilter(formats.NewFilter(formats.GIF, formats.WEBP))
	if err := e.SetScale(25); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Discover(nil); err != nil {
		t.Fatal(err)
	}

	res, err := e.ConvertAll(nil)
	if err != nil {
		t.Fatalf("ConvertAll: %v", err)
	}

	entry, _ := res.Targets.Get("/src/banner.png")
	if len(entry.Outputs) != 1 || entry.Outputs[0].Path != "/out/banner.gif" {
		t.Fatalf("outputs = %+v", entry.Outputs)
	}
	if len(entry.Errors) != 1 || entry.Errors[0].Kind != UnknownError || entry.Errors[0].Format != formats.WEBP {
		t.Fatalf("errors = %+v", entry.Errors)
	}
	if ok, _ := afero.Exists(fs, "/out/banner.webp"); ok {
		t.Fatalf("failed webp save left a file behind")
	}

	img, err := codec.NewImaging(fs).Open("/out/banner.gif")
	if err != nil {
		t.Fatalf("reopen output: %v", err)
	}
	if w, h := img.Size(); w != 16 || h != 8 {
		t.Fatalf("output size = %dx%d, want 16x8", w, h)
	}
}
