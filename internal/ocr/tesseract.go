package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the traineddata used when none is configured.
const DefaultLanguage = "eng"

// ErrNoImage is returned when Recognize is called without an image.
var ErrNoImage = errors.New("no image to recognize")

// Recognizer turns an image into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Tesseract recognizes text with libtesseract. The zero value reads English
// from the default tessdata location.
type Tesseract struct {
	// Language is a traineddata name such as "eng" or "chi_sim". Several
	// may be combined, e.g. "eng+spa".
	Language string

	// TessdataPrefix overrides the tessdata directory.
	TessdataPrefix string

	// PageSegMode is passed through when non-zero.
	PageSegMode gosseract.PageSegMode
}

// Recognize returns the text Tesseract finds in img, with surrounding
// whitespace trimmed. An image without text yields "" and no error.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if img == nil {
		return "", ErrNoImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}

	lang := t.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if t.PageSegMode != 0 {
		if err := client.SetPageSegMode(t.PageSegMode); err != nil {
			return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	text = strings.TrimSpace(text)
	log.Debug("ocr finished", "lang", lang, "chars", len(text))

	return text, nil
}

// Version reports the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

var _ Recognizer = (*Tesseract)(nil)
