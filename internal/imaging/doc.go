// Package imaging decodes user supplied pictures and prepares them for OCR.
//
// Uploads and camera captures arrive as raw bytes of unknown type. Decode
// sniffs the content before decoding so that a text file or a PDF is rejected
// with ErrNotImage instead of a generic decoder error, and applies the EXIF
// orientation that phone cameras record instead of rotating pixels.
//
// # Supported Formats
//
// PNG, JPEG and GIF through the standard library, plus WebP, BMP and TIFF
// through golang.org/x/image.
//
// # Preprocessing
//
// Preprocess applies the optional filters in a fixed order: downscale,
// invert, grayscale, threshold. Inverting helps with light text on a dark
// background, thresholding with uneven lighting.
package imaging
