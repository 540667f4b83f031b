package imaging

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
//
// HSL makes it easy to see why a pixel was or was not taken as outline red:
// outline strokes sit near hue 0 with high saturation, walls and ink have
// saturation close to zero.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// PixelSample describes one pixel of a floor plan together with the
// classifier's verdict for it.
type PixelSample struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Hex      string   `json:"hex"`
	RGB      RGBColor `json:"rgb"`
	HSL      HSLColor `json:"hsl"`
	RedRatio float64  `json:"red_ratio"`
	Class    string   `json:"class"`
}

// SamplePixel extracts the color at (x, y) and classifies it.
//
// # Coordinate System
//
// Coordinates are 0-based with origin at top-left:
//   - Valid X range: 0 to width-1
//   - Valid Y range: 0 to height-1
//
// Returns an error if the coordinates are outside the raster.
func SamplePixel(r *Raster, p ClassifierParams, x, y int) (*PixelSample, error) {
	if !r.In(x, y) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r8, g8, b8 := r.RGB(x, y)
	c := colorful.Color{R: float64(r8) / 255, G: float64(g8) / 255, B: float64(b8) / 255}
	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}

	ratio := 0.0
	if sum := int(r8) + int(g8) + int(b8); sum > 0 {
		ratio = float64(r8) / float64(sum)
	}

	return &PixelSample{
		X:        x,
		Y:        y,
		Hex:      fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		RGB:      RGBColor{R: r8, G: g8, B: b8},
		HSL:      HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
		RedRatio: math.Round(ratio*1000) / 1000,
		Class:    p.Classify(r8, g8, b8).String(),
	}, nil
}
