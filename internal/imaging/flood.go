package imaging

import "github.com/pkg/errors"

// ErrNoBoundaryDetected is returned by ClassifyOutside when the boundary mask
// holds too few pixels to be a drawn room outline.
var ErrNoBoundaryDetected = errors.New("no boundary detected")

// CheckBoundary reports whether a raw boundary mask holds enough pixels to be
// a drawn room outline. It must see the mask before any dilation: growing a
// short red rule by a few pixels multiplies its count and would let it pass.
//
// # Errors
//
// Returns ErrNoBoundaryDetected when the mask has fewer than minPixels pixels.
func CheckBoundary(boundary *Mask, minPixels int) error {
	if n := boundary.Count(); n < minPixels {
		return errors.Wrapf(ErrNoBoundaryDetected, "%d boundary pixels, need %d", n, minPixels)
	}
	return nil
}

// ClassifyOutside marks every pixel reachable from the image border without
// crossing the boundary mask.
//
// The traversal is a breadth-first search seeded with every border pixel that
// is not part of the boundary, expanding across 4-connected neighbours that
// are neither visited nor boundary. The boundary itself and everything it
// encloses stay off in the result.
//
// The queue is a flat slice of pixel indices so memory use is bounded by the
// pixel count regardless of region shape.
//
// # Errors
//
// Returns ErrNoBoundaryDetected, without filling, when the boundary has fewer
// than minPixels pixels. Callers skip outline masking for that image.
func ClassifyOutside(boundary *Mask, minPixels int) (*Mask, error) {
	if err := CheckBoundary(boundary, minPixels); err != nil {
		return nil, err
	}

	w, h := boundary.Width, boundary.Height
	outside := NewMask(w, h, PurposeOutside)
	if w == 0 || h == 0 {
		return outside, nil
	}

	queue := make([]int, 0, 2*(w+h))
	seed := func(x, y int) {
		i := y*w + x
		if boundary.bits[i] || outside.bits[i] {
			return
		}
		outside.bits[i] = true
		queue = append(queue, i)
	}

	for x := 0; x < w; x++ {
		seed(x, 0)
		seed(x, h-1)
	}
	for y := 0; y < h; y++ {
		seed(0, y)
		seed(w-1, y)
	}

	for head := 0; head < len(queue); head++ {
		i := queue[head]
		x, y := i%w, i/w
		if x > 0 {
			seed(x-1, y)
		}
		if x < w-1 {
			seed(x+1, y)
		}
		if y > 0 {
			seed(x, y-1)
		}
		if y < h-1 {
			seed(x, y+1)
		}
	}

	return outside, nil
}
