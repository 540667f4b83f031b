package pipeline

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ironsheep/seatmap/internal/detection"
	"github.com/ironsheep/seatmap/internal/imaging"
	"github.com/ironsheep/seatmap/internal/ocr"
	"github.com/ironsheep/seatmap/internal/seating"
)

// Params holds every threshold of the per-room extraction.
type Params struct {
	Classifier imaging.ClassifierParams `yaml:"classifier"`

	// BoundaryRadius closes gaps in the room outline before the flood fill.
	BoundaryRadius int `yaml:"boundary_radius"`
	// GlyphRadius joins the digits of one seat number into a single blob.
	GlyphRadius int `yaml:"glyph_radius"`
	// MinBoundaryPixels is the smallest outline that counts as a room
	// boundary.
	MinBoundaryPixels int `yaml:"min_boundary_pixels"`

	Geometry detection.Geometry `yaml:"geometry"`

	// OCREnabled turns digit recognition on. Without it only the blob pool is
	// populated.
	OCREnabled bool       `yaml:"ocr_enabled"`
	OCR        ocr.Params `yaml:"ocr"`
	// ROIPadding grows the outline's bounding box before OCR cropping.
	ROIPadding int `yaml:"roi_padding"`

	// GlyphMergeRadius merges candidates within one detector.
	GlyphMergeRadius float64 `yaml:"glyph_merge_radius"`
	// FusionRadius merges blob and OCR candidates into the union pool.
	FusionRadius float64 `yaml:"fusion_radius"`
	// MinSeparation is the smallest allowed distance between two seats.
	MinSeparation float64 `yaml:"min_separation"`

	Refine    seating.Params   `yaml:"refine"`
	Selection seating.Selector `yaml:"selection"`
}

// DefaultParams returns the extraction defaults.
func DefaultParams() Params {
	return Params{
		Classifier:        imaging.DefaultClassifierParams(),
		BoundaryRadius:    3,
		GlyphRadius:       2,
		MinBoundaryPixels: 400,
		Geometry:          detection.DefaultGeometry(),
		OCREnabled:        true,
		OCR:               ocr.DefaultParams(),
		ROIPadding:        10,
		GlyphMergeRadius:  12,
		FusionRadius:      25,
		MinSeparation:     15,
		Refine:            seating.DefaultParams(),
		Selection:         seating.DefaultSelector(),
	}
}

// Validate reports the first invalid field.
func (p Params) Validate() error {
	c := p.Classifier
	switch {
	case c.RedRatioMin < 0 || c.RedRatioMin > 1:
		return fmt.Errorf("classifier red_ratio_min must be within [0,1], got %g", c.RedRatioMin)
	case c.InkBrightnessMax < 0 || c.InkBrightnessMax > 255:
		return fmt.Errorf("classifier ink_brightness_max must be within [0,255], got %d", c.InkBrightnessMax)
	case p.BoundaryRadius < 0:
		return fmt.Errorf("boundary_radius must be >= 0, got %d", p.BoundaryRadius)
	case p.GlyphRadius < 0:
		return fmt.Errorf("glyph_radius must be >= 0, got %d", p.GlyphRadius)
	case p.MinBoundaryPixels < 1:
		return fmt.Errorf("min_boundary_pixels must be >= 1, got %d", p.MinBoundaryPixels)
	case p.ROIPadding < 0:
		return fmt.Errorf("roi_padding must be >= 0, got %d", p.ROIPadding)
	case p.GlyphMergeRadius < 0 || p.FusionRadius < 0 || p.MinSeparation < 0:
		return fmt.Errorf("merge radii and min_separation must be >= 0")
	}

	g := p.Geometry
	switch {
	case g.MaxWidth > 0 && g.MinWidth > g.MaxWidth:
		return fmt.Errorf("geometry min_width %d exceeds max_width %d", g.MinWidth, g.MaxWidth)
	case g.MaxHeight > 0 && g.MinHeight > g.MaxHeight:
		return fmt.Errorf("geometry min_height %d exceeds max_height %d", g.MinHeight, g.MaxHeight)
	case g.MaxPixels > 0 && g.MinPixels > g.MaxPixels:
		return fmt.Errorf("geometry min_pixels %d exceeds max_pixels %d", g.MinPixels, g.MaxPixels)
	case g.MaxAspect > 0 && g.MinAspect > g.MaxAspect:
		return fmt.Errorf("geometry min_aspect %g exceeds max_aspect %g", g.MinAspect, g.MaxAspect)
	case g.TopBand < 0 || g.BottomBand > 1 || (g.BottomBand > 0 && g.TopBand >= g.BottomBand):
		return fmt.Errorf("geometry bands must satisfy 0 <= top_band < bottom_band <= 1, got %g and %g", g.TopBand, g.BottomBand)
	}

	if p.OCREnabled {
		if err := p.OCR.Validate(); err != nil {
			return err
		}
	}
	if err := p.Refine.Validate(); err != nil {
		return errors.Wrap(err, "refine")
	}
	if err := p.Selection.Validate(); err != nil {
		return errors.Wrap(err, "selection")
	}
	return nil
}
