package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{220, 30, 30, 255}
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// fillRect paints the inclusive rectangle (x1,y1)-(x2,y2).
func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			img.Set(x, y, c)
		}
	}
}

// strokeRect draws an outline of the given thickness inside the inclusive
// rectangle (x1,y1)-(x2,y2).
func strokeRect(img *image.RGBA, x1, y1, x2, y2, thickness int, c color.Color) {
	fillRect(img, x1, y1, x2, y1+thickness-1, c)
	fillRect(img, x1, y2-thickness+1, x2, y2, c)
	fillRect(img, x1, y1, x1+thickness-1, y2, c)
	fillRect(img, x2-thickness+1, y1, x2, y2, c)
}

// maskFromPoints builds a mask with exactly the listed pixels on.
func maskFromPoints(width, height int, pts ...image.Point) *Mask {
	m := NewMask(width, height, PurposeDarkInk)
	for _, p := range pts {
		m.Set(p.X, p.Y, true)
	}
	return m
}

// writePNG encodes img to a temporary PNG file and returns its path.
func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return tmpFile.Name()
}
