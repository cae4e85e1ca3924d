// Package imaging converts artwork into PNGs a Pebble watch can display:
// scaled to fit the screen and quantized to the 64-color palette.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
)

// Pebble Time screen dimensions.
const (
	maxWidth  = 144
	maxHeight = 168
)

// ErrConflictingSize is returned when both a ratio and an explicit size are
// requested.
var ErrConflictingSize = errors.New("specify either ratio or size, not both")

// Options controls output sizing. Zero values mean "fit the screen."
// Width/Height bound the output box (aspect ratio is preserved within it);
// Ratio scales relative to the source. Images are never upscaled.
type Options struct {
	Width  int
	Height int
	Ratio  float64
}

// ConvertToPebblePNG decodes an image, scales it per opts, quantizes it to
// the Pebble 64-color palette with dithering, and re-encodes it as PNG.
func ConvertToPebblePNG(data []byte, opts Options) ([]byte, error) {
	if opts.Ratio != 0 && (opts.Width != 0 || opts.Height != 0) {
		return nil, ErrConflictingSize
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	targetW, targetH := targetSize(bounds.Dx(), bounds.Dy(), opts)

	scaled := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, xdraw.Over, nil)

	quantized := image.NewPaletted(scaled.Bounds(), pebblePalette)
	draw.FloydSteinberg.Draw(quantized, scaled.Bounds(), scaled, image.Point{})

	var out bytes.Buffer
	if err := png.Encode(&out, quantized); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}

// targetSize computes the output dimensions: an explicit box, a single-axis
// bound, a scale ratio, or the default screen fit. Aspect ratio is always
// preserved and images are never upscaled.
func targetSize(srcW, srcH int, opts Options) (int, int) {
	ratio := opts.Ratio

	switch {
	case opts.Width != 0 && opts.Height != 0:
		ratio = math.Min(float64(opts.Width)/float64(srcW), float64(opts.Height)/float64(srcH))
	case opts.Width != 0:
		ratio = float64(opts.Width) / float64(srcW)
	case opts.Height != 0:
		ratio = float64(opts.Height) / float64(srcH)
	case ratio == 0:
		ratio = math.Min(float64(maxWidth)/float64(srcW), float64(maxHeight)/float64(srcH))
	}

	if ratio > 1 {
		ratio = 1
	}

	w := int(math.Round(float64(srcW) * ratio))
	h := int(math.Round(float64(srcH) * ratio))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
