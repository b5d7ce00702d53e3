package codec

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	_ "golang.org/x/image/webp"

	"image-converter-go/internal/formats"
)

// Imaging is the default Codec, backed by disintegration/imaging.
type Imaging struct {
	fs afero.Fs
}

// NewImaging creates a Codec that reads and writes through fs.
func NewImaging(fs afero.Fs) *Imaging {
	return &Imaging{fs: fs}
}

// Open decodes the image at path, applying any EXIF orientation.
func (c *Imaging) Open(path string) (Image, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &imagingImage{fs: c.fs, img: img}, nil
}

type imagingImage struct {
	fs  afero.Fs
	img image.Image
}

func (i *imagingImage) Size() (int, int) {
	b := i.img.Bounds()
	return b.Dx(), b.Dy()
}

func (i *imagingImage) Resize(width, height int) (Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &imagingImage{fs: i.fs, img: imaging.Resize(i.img, width, height, imaging.Lanczos)}, nil
}

// Save writes the image to path. A partially written file is removed on failure.
func (i *imagingImage) Save(path string, ext formats.Extension) error {
	format, err := encodeFormat(ext)
	if err != nil {
		return err
	}

	out, err := i.fs.Create(path)
	if err != nil {
		return err
	}

	if err := imaging.Encode(out, i.img, format); err != nil {
		_ = out.Close()
		_ = i.fs.Remove(path)
		return err
	}

	if err := out.Close(); err != nil {
		_ = i.fs.Remove(path)
		return err
	}
	return nil
}

func encodeFormat(ext formats.Extension) (imaging.Format, error) {
	format, err := imaging.FormatFromExtension(string(ext))
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", ext, err)
	}
	return format, nil
}
