package imaging

import "image/color"

// pebblePalette is the 64-color palette of the Pebble Time display: every
// combination of 2-bit-per-channel RGB.
var pebblePalette = buildPebblePalette()

func buildPebblePalette() color.Palette {
	levels := []uint8{0, 85, 170, 255}
	palette := make(color.Palette, 0, 64)
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				palette = append(palette, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
	}
	return palette
}
