package codec

import (
	"errors"

	"image-converter-go/internal/formats"
)

// ErrInvalidSize is returned when an image is resized to a non-positive dimension.
var ErrInvalidSize = errors.New("invalid image size")

// Codec opens image files.
type Codec interface {
	// Open decodes the image at path.
	Open(path string) (Image, error)
}

// Image is a decoded image held in memory.
type Image interface {
	// Size returns the width and height in pixels.
	Size() (width, height int)
	// Resize returns a new image scaled to exactly width x height.
	Resize(width, height int) (Image, error)
	// Save encodes the image to path in the given format.
	Save(path string, ext formats.Extension) error
}

// ScaledSize applies a percentage to both axes, truncating to whole pixels.
func ScaledSize(width, height, scalePercent int) (int, int) {
	return width * scalePercent / 100, height * scalePercent / 100
}

// CanEncode reports whether the bundled codec can write ext.
func CanEncode(ext formats.Extension) bool {
	_, err := encodeFormat(ext)
	return err == nil
}
