package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Options selects the filters Preprocess applies.
type Options struct {
	// Invert flips colors, for light text on a dark background.
	Invert bool

	// Grayscale drops color information.
	Grayscale bool

	// Threshold binarizes the image at this luminance level (1-255).
	// Zero disables it.
	Threshold uint8

	// MaxWidth downscales wider images, keeping the aspect ratio.
	// Zero disables it.
	MaxWidth int
}

// Preprocess returns img with the selected filters applied. The input is
// never modified; with no options set it is returned unchanged.
func Preprocess(img image.Image, opts Options) image.Image {
	out := img

	if opts.MaxWidth > 0 && out.Bounds().Dx() > opts.MaxWidth {
		out = imaging.Resize(out, opts.MaxWidth, 0, imaging.Lanczos)
	}
	if opts.Invert {
		out = imaging.Invert(out)
	}
	if opts.Grayscale {
		out = imaging.Grayscale(out)
	}
	if opts.Threshold > 0 {
		out = segment.Threshold(out, opts.Threshold)
	}

	return out
}
