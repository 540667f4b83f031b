package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// MaskBounds returns the smallest rectangle containing every on pixel of m,
// in image.Rectangle convention (Max exclusive). An empty mask yields an
// empty rectangle.
func MaskBounds(m *Mask) image.Rectangle {
	minX, minY := m.Width, m.Height
	maxX, maxY := -1, -1
	for y := 0; y < m.Height; y++ {
		row := m.bits[y*m.Width : (y+1)*m.Width]
		for x, on := range row {
			if !on {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Crop extracts a rectangular region as a new Raster whose origin is the
// region's top-left corner. The rectangle is clipped to the raster first.
func (r *Raster) Crop(rect image.Rectangle) *Raster {
	rect = rect.Intersect(image.Rect(0, 0, r.Width, r.Height))
	cropped := imaging.Crop(r.img, rect)
	b := cropped.Bounds()
	return &Raster{Width: b.Dx(), Height: b.Dy(), img: cropped}
}
