package detection

import (
	"image"

	"github.com/ironsheep/seatmap/internal/imaging"
)

// Geometry bounds the shape of a component that may be a seat.
//
// Bounds are inclusive. A zero maximum disables that upper bound.
type Geometry struct {
	MinWidth  int `yaml:"min_width"`
	MaxWidth  int `yaml:"max_width"`
	MinHeight int `yaml:"min_height"`
	MaxHeight int `yaml:"max_height"`

	// MinPixels rejects noise specks, MaxPixels rejects walls and furniture.
	MinPixels int `yaml:"min_pixels"`
	MaxPixels int `yaml:"max_pixels"`

	// Aspect is width/height.
	MinAspect float64 `yaml:"min_aspect"`
	MaxAspect float64 `yaml:"max_aspect"`

	// MaxFill is the largest pixelCount/bboxArea a seat may have.
	MaxFill float64 `yaml:"max_fill"`

	// BorderMargin drops components whose box comes within this many pixels
	// of the image edge.
	BorderMargin int `yaml:"border_margin"`

	// Captions, legends and capacity text live in fixed bands: centres above
	// TopBand×height or below BottomBand×height are dropped.
	TopBand    float64 `yaml:"top_band"`
	BottomBand float64 `yaml:"bottom_band"`
}

// DefaultGeometry returns bounds for dilated seat-number glyph groups on a
// plan rendered at roughly 150 DPI.
func DefaultGeometry() Geometry {
	return Geometry{
		MinWidth:     6,
		MaxWidth:     60,
		MinHeight:    8,
		MaxHeight:    45,
		MinPixels:    20,
		MaxPixels:    900,
		MinAspect:    0.3,
		MaxAspect:    4.0,
		MaxFill:      0.85,
		BorderMargin: 5,
		TopBand:      0.04,
		BottomBand:   0.90,
	}
}

// Rejections counts components dropped by each Filter predicate.
type Rejections struct {
	Size   int `json:"size"`
	Pixels int `json:"pixels"`
	Aspect int `json:"aspect"`
	Fill   int `json:"fill"`
	Margin int `json:"margin"`
	Band   int `json:"band"`
}

// Total returns the number of rejected components.
func (r Rejections) Total() int {
	return r.Size + r.Pixels + r.Aspect + r.Fill + r.Margin + r.Band
}

// Filter turns labelled components into blob candidates.
//
// Parameters:
//   - comps: Components from imaging.Label over the glyph mask.
//   - g: Thresholds to apply. Zero maximums disable that upper bound.
//   - width, height: Raster size, used for the border margin and the caption
//     bands.
//
// Returns:
//   - []Candidate: One SourceBlob candidate per surviving component, at its
//     box midpoint with Weight equal to its pixel count.
//   - Rejections: How many components each predicate turned away.
//
// # Predicates
//
// Each component is checked, in order, against box size, pixel count, aspect
// ratio (w/h), fill ratio (pixels / box area), border margin and the top and
// bottom caption bands. The predicates are independent; the first failing
// one is the one counted in Rejections.
func Filter(comps []imaging.Component, g Geometry, width, height int) ([]Candidate, Rejections) {
	var rej Rejections
	out := make([]Candidate, 0, len(comps))

	for _, c := range comps {
		w, h := c.Width(), c.Height()
		cx, cy := c.Center()

		switch {
		case !within(w, g.MinWidth, g.MaxWidth) || !within(h, g.MinHeight, g.MaxHeight):
			rej.Size++
		case !within(c.PixelCount, g.MinPixels, g.MaxPixels):
			rej.Pixels++
		case !withinF(float64(w)/float64(h), g.MinAspect, g.MaxAspect):
			rej.Aspect++
		case g.MaxFill > 0 && float64(c.PixelCount)/float64(c.Area()) > g.MaxFill:
			rej.Fill++
		case c.MinX < g.BorderMargin || c.MinY < g.BorderMargin ||
			c.MaxX >= width-g.BorderMargin || c.MaxY >= height-g.BorderMargin:
			rej.Margin++
		case cy < g.TopBand*float64(height) || (g.BottomBand > 0 && cy > g.BottomBand*float64(height)):
			rej.Band++
		default:
			out = append(out, Candidate{
				X:       cx,
				Y:       cy,
				Weight:  float64(c.PixelCount),
				Members: 1,
				Source:  SourceBlob,
				Box:     image.Rect(c.MinX, c.MinY, c.MaxX+1, c.MaxY+1),
			})
		}
	}

	return out, rej
}

func within(v, lo, hi int) bool {
	return v >= lo && (hi <= 0 || v <= hi)
}

func withinF(v, lo, hi float64) bool {
	return v >= lo && (hi <= 0 || v <= hi)
}
