package imaging

// PixelClass is the classifier verdict for a single pixel.
type PixelClass int

const (
	// Background is paper, light fills and anything not otherwise classified.
	Background PixelClass = iota
	// BoundaryRed is the saturated red stroke used to draw room outlines.
	BoundaryRed
	// DarkInk is dark text or line work, typically seat-number glyphs.
	DarkInk
)

func (c PixelClass) String() string {
	switch c {
	case Background:
		return "background"
	case BoundaryRed:
		return "boundary-red"
	case DarkInk:
		return "dark-ink"
	default:
		return "unknown"
	}
}

// ClassifierParams holds the colour thresholds of the pixel classifier.
type ClassifierParams struct {
	// DarknessFloor is the minimum r+g+b for a red pixel; darker pixels are ink.
	DarknessFloor int `yaml:"darkness_floor"`
	// RedMin is the minimum red component of a boundary pixel.
	RedMin int `yaml:"red_min"`
	// RedRatioMin is the minimum r/(r+g+b) of a boundary pixel.
	RedRatioMin float64 `yaml:"red_ratio_min"`
	// GreenCap bounds both the green and blue components of a boundary pixel.
	GreenCap int `yaml:"green_cap"`
	// InkBrightnessMax is the maximum (r+g+b)/3 of a dark-ink pixel.
	InkBrightnessMax int `yaml:"ink_brightness_max"`
}

// DefaultClassifierParams returns thresholds tuned for red outlines on
// scanned or rendered black-and-white floor plans.
func DefaultClassifierParams() ClassifierParams {
	return ClassifierParams{
		DarknessFloor:    150,
		RedMin:           140,
		RedRatioMin:      0.5,
		GreenCap:         110,
		InkBrightnessMax: 110,
	}
}

// IsBoundaryRed reports whether the colour belongs to a red outline stroke.
//
// The ratio test, rather than the red value alone, is what separates
// anti-aliased red edges from grey walls and dark ink.
func (p ClassifierParams) IsBoundaryRed(r, g, b uint8) bool {
	sum := int(r) + int(g) + int(b)
	if sum < p.DarknessFloor || sum == 0 {
		return false
	}
	if int(r) < p.RedMin || int(g) > p.GreenCap || int(b) > p.GreenCap {
		return false
	}
	return float64(r)/float64(sum) >= p.RedRatioMin
}

// IsDarkInk reports whether the colour is dark ink. Boundary-red pixels are
// never ink.
func (p ClassifierParams) IsDarkInk(r, g, b uint8) bool {
	if p.IsBoundaryRed(r, g, b) {
		return false
	}
	return (int(r)+int(g)+int(b))/3 <= p.InkBrightnessMax
}

// Classify returns the class of a single pixel colour.
func (p ClassifierParams) Classify(r, g, b uint8) PixelClass {
	switch {
	case p.IsBoundaryRed(r, g, b):
		return BoundaryRed
	case p.IsDarkInk(r, g, b):
		return DarkInk
	default:
		return Background
	}
}

// BoundaryMask marks every boundary-red pixel of the raster.
func BoundaryMask(r *Raster, p ClassifierParams) *Mask {
	m := NewMask(r.Width, r.Height, PurposeBoundary)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if p.IsBoundaryRed(r.RGB(x, y)) {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// InkMask marks every dark-ink pixel of the raster that is not set in any of
// the exclude masks. Nil excludes are ignored.
func InkMask(r *Raster, p ClassifierParams, exclude ...*Mask) *Mask {
	m := NewMask(r.Width, r.Height, PurposeDarkInk)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if !p.IsDarkInk(r.RGB(x, y)) || excluded(x, y, exclude) {
				continue
			}
			m.Set(x, y, true)
		}
	}
	return m
}

func excluded(x, y int, masks []*Mask) bool {
	for _, m := range masks {
		if m != nil && m.At(x, y) {
			return true
		}
	}
	return false
}
