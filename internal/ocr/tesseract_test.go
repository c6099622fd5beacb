package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// textImage renders text in black on a white background, scaled up so
// Tesseract has enough pixels to work with.
func textImage(text string) image.Image {
	const scale = 4

	small := image.NewRGBA(image.Rect(0, 0, 10+7*len(text), 24))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(5), Y: fixed.I(17)},
	}
	d.DrawString(text)

	b := small.Bounds()
	big := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	for y := 0; y < big.Bounds().Dy(); y++ {
		for x := 0; x < big.Bounds().Dx(); x++ {
			big.Set(x, y, small.At(x/scale, y/scale))
		}
	}
	return big
}

func TestTesseract_Recognize(t *testing.T) {
	tess := &Tesseract{}

	got, err := tess.Recognize(context.Background(), textImage("HELLO"))
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}

	if !strings.Contains(strings.ToUpper(got), "HELLO") {
		t.Errorf("expected HELLO in OCR output, got %q", got)
	}
	if got != strings.TrimSpace(got) {
		t.Errorf("output not trimmed: %q", got)
	}
}

func TestTesseract_BlankImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 40))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	got, err := (&Tesseract{}).Recognize(context.Background(), img)
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	if got != "" {
		t.Errorf("expected no text, got %q", got)
	}
}

func TestTesseract_Errors(t *testing.T) {
	tess := &Tesseract{}

	if _, err := tess.Recognize(context.Background(), nil); !errors.Is(err, ErrNoImage) {
		t.Errorf("expected ErrNoImage, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tess.Recognize(ctx, textImage("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
