package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ironsheep/seatmap/internal/imaging"
	"github.com/ironsheep/seatmap/internal/ocr"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{220, 30, 30, 255}
)

const (
	planWidth  = 460
	planHeight = 340
)

// seatCentres is a 3x4 grid inside the outline.
var seatCentres = func() []image.Point {
	var pts []image.Point
	for _, y := range []int{110, 170, 230} {
		for _, x := range []int{120, 190, 260, 330} {
			pts = append(pts, image.Pt(x, y))
		}
	}
	return pts
}()

// strayMark sits left of the outline, where a legend would be.
var strayMark = image.Pt(25, 170)

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func strokeRect(img *image.RGBA, r image.Rectangle, thickness int, c color.Color) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// seatMark draws a hollow 16x20 box centred near p, roughly the footprint of
// a two-digit seat number once dilated.
func seatMark(img *image.RGBA, p image.Point) {
	strokeRect(img, image.Rect(p.X-8, p.Y-10, p.X+8, p.Y+10), 2, black)
}

// floorPlan renders the test plan: an optional red room outline, the seat
// grid, and one stray mark outside the outline.
func floorPlan(withOutline bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, planWidth, planHeight))
	fillRect(img, img.Bounds(), white)
	if withOutline {
		strokeRect(img, image.Rect(50, 50, 410, 290), 3, red)
	}
	for _, p := range seatCentres {
		seatMark(img, p)
	}
	seatMark(img, strayMark)
	return img
}

func planRaster(withOutline bool) *imaging.Raster {
	return imaging.NewRaster(floorPlan(withOutline))
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
	return path
}

func intPtr(v int) *int { return &v }

func noWords() ocr.Recognizer {
	return ocr.RecognizerFunc(func(context.Context, []byte) ([]ocr.Word, error) {
		return nil, nil
	})
}

func testOCRParams() ocr.Params {
	p := ocr.DefaultParams()
	p.Timeout = 5 * time.Second
	return p
}
