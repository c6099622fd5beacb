package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// MaxImageSize bounds how much is read from an image source.
const MaxImageSize = 32 * 1024 * 1024

var (
	// ErrNotImage is returned when the input is not a recognised image type.
	ErrNotImage = errors.New("input is not an image")

	// ErrTooLarge is returned when the input exceeds MaxImageSize.
	ErrTooLarge = errors.New("image is too large")
)

// Decoded is a decoded picture and the type it was sniffed as.
type Decoded struct {
	Image image.Image
	MIME  string // e.g. "image/jpeg"
}

// Decode reads an image from r, rejecting non-image content and applying
// EXIF orientation.
func Decode(r io.Reader) (*Decoded, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, MaxImageSize)
	}

	return DecodeBytes(data)
}

// DecodeBytes is Decode for data already in memory.
func DecodeBytes(data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no data", ErrNotImage)
	}

	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: detected %q", ErrNotImage, kind.MIME.Value)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", kind.MIME.Value, err)
	}

	return &Decoded{
		Image: img,
		MIME:  kind.MIME.Value,
	}, nil
}
