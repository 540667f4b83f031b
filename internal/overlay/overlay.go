// Package overlay draws diagnostic images of a seat extraction: the blobs the
// labeler found, the candidates each detector proposed, what the refiner
// removed, and the final numbered seats.
//
// Overlays are for humans checking a room. Nothing reads them back.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ironsheep/seatmap/internal/detection"
	"github.com/ironsheep/seatmap/internal/imaging"
	"github.com/ironsheep/seatmap/internal/seating"
)

var font *truetype.Font

func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Scene is everything drawn on top of the floor plan.
type Scene struct {
	Components []imaging.Component
	Candidates []detection.Candidate
	Removed    []seating.Removal
	Seats      []seating.Seat
	// SeatScores, when set, is aligned with Seats and printed under each ID.
	SeatScores []float64
	// GridSpacing, when positive, draws a labelled coordinate grid so seat
	// positions can be read off the image.
	GridSpacing int
}

// Palette colours. Hues are spread around the wheel so the sources stay
// distinguishable on both white paper and faded scans.
var (
	gridColor      = color.NRGBA{R: 40, G: 120, B: 220, A: 70}
	componentColor = colorful.Hsv(0, 0, 0.75)
	removedColor   = colorful.Hsv(0, 0.95, 0.9)
	seatColor      = colorful.Hsv(130, 0.85, 0.6)
	sourceColors   = map[detection.Source]colorful.Color{
		detection.SourceBlob:  colorful.Hsv(210, 0.85, 0.9),
		detection.SourceOCR:   colorful.Hsv(30, 0.9, 0.95),
		detection.SourceFused: colorful.Hsv(280, 0.7, 0.85),
	}
)

// SourceColor returns the marker colour for a candidate source.
func SourceColor(s detection.Source) color.Color {
	if c, ok := sourceColors[s]; ok {
		return c
	}
	return componentColor
}

// Render draws the scene over a copy of the raster.
func Render(r *imaging.Raster, s Scene) image.Image {
	dc := gg.NewContextForImage(r.Image())
	if s.GridSpacing > 0 {
		drawGrid(dc, s.GridSpacing)
	}

	dc.SetLineWidth(1)
	dc.SetColor(componentColor)
	for _, c := range s.Components {
		dc.DrawRectangle(float64(c.MinX), float64(c.MinY), float64(c.Width()), float64(c.Height()))
		dc.Stroke()
	}

	for _, c := range s.Candidates {
		dc.SetColor(SourceColor(c.Source))
		dc.DrawCircle(c.X, c.Y, 3)
		dc.Fill()
	}

	dc.SetLineWidth(2)
	dc.SetColor(removedColor)
	for _, rm := range s.Removed {
		x, y := rm.Candidate.X, rm.Candidate.Y
		dc.DrawLine(x-5, y-5, x+5, y+5)
		dc.DrawLine(x-5, y+5, x+5, y-5)
		dc.Stroke()
	}

	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 11}))
	for i, seat := range s.Seats {
		dc.SetColor(seatColor)
		dc.DrawCircle(seat.X, seat.Y, 7)
		dc.Stroke()
		dc.DrawStringAnchored(seat.ID, seat.X, seat.Y-10, 0.5, 0)
		if i < len(s.SeatScores) {
			dc.SetColor(color.Gray{Y: 90})
			dc.DrawStringAnchored(fmt.Sprintf("%.1f", s.SeatScores[i]), seat.X, seat.Y+18, 0.5, 0)
		}
	}

	return dc.Image()
}

func drawGrid(dc *gg.Context, spacing int) {
	w, h := dc.Width(), dc.Height()
	dc.SetLineWidth(1)
	dc.SetColor(gridColor)
	for x := spacing; x < w; x += spacing {
		dc.DrawLine(float64(x)+0.5, 0, float64(x)+0.5, float64(h))
	}
	for y := spacing; y < h; y += spacing {
		dc.DrawLine(0, float64(y)+0.5, float64(w), float64(y)+0.5)
	}
	dc.Stroke()

	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 8}))
	dc.SetColor(color.NRGBA{R: 40, G: 120, B: 220, A: 200})
	for x := spacing; x < w; x += spacing {
		dc.DrawString(fmt.Sprint(x), float64(x)+2, 9)
	}
	for y := spacing; y < h; y += spacing {
		dc.DrawString(fmt.Sprint(y), 2, float64(y)-2)
	}
}

// Save renders the scene and writes it as PNG, creating parent directories.
func Save(path string, r *imaging.Raster, s Scene) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create overlay directory")
	}
	if err := gg.SavePNG(path, Render(r, s)); err != nil {
		return errors.Wrapf(err, "failed to write overlay %s", path)
	}
	return nil
}
