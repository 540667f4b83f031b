package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Raster is an immutable RGBA floor-plan bitmap with its origin at (0, 0).
//
// Every pipeline stage reads pixels through a Raster; none of them writes to
// one. Stages that need a modified picture (for example with everything
// outside a room outline painted white) derive a new Raster instead.
//
// Partially transparent pixels are composited over white when the Raster is
// built, so callers never have to reason about alpha. PDF renderers commonly
// produce transparent backgrounds and a transparent pixel must read as paper,
// not as ink.
type Raster struct {
	Width  int
	Height int

	img *image.NRGBA
}

// NewRaster converts any decoded image into a Raster.
func NewRaster(src image.Image) *Raster {
	img := imaging.Clone(src)
	flattenAlpha(img)
	b := img.Bounds()
	return &Raster{Width: b.Dx(), Height: b.Dy(), img: img}
}

// flattenAlpha composites every pixel of img over an opaque white background.
func flattenAlpha(img *image.NRGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		if a == 255 {
			continue
		}
		for c := 0; c < 3; c++ {
			v := uint32(img.Pix[i+c])
			img.Pix[i+c] = uint8((v*a + 255*(255-a)) / 255)
		}
		img.Pix[i+3] = 255
	}
}

// RGB returns the 8-bit colour components at (x, y). Coordinates must be in range.
func (r *Raster) RGB(x, y int) (uint8, uint8, uint8) {
	i := y*r.img.Stride + x*4
	p := r.img.Pix[i : i+3 : i+3]
	return p[0], p[1], p[2]
}

// In reports whether (x, y) lies inside the raster.
func (r *Raster) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.Width && y < r.Height
}

// Image exposes the raster as a standard image for encoders and drawing
// libraries. The returned image must not be modified.
func (r *Raster) Image() image.Image {
	return r.img
}

// WhiteOut returns a copy of the raster in which every pixel set in any of the
// given masks is replaced with white. Nil masks are ignored.
func (r *Raster) WhiteOut(masks ...*Mask) *Raster {
	out := imaging.Clone(r.img)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			for _, m := range masks {
				if m == nil || !m.At(x, y) {
					continue
				}
				i := y*out.Stride + x*4
				out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = 255, 255, 255, 255
				break
			}
		}
	}
	return &Raster{Width: r.Width, Height: r.Height, img: out}
}
