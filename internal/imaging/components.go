package imaging

// Component is one 4-connected blob of on pixels found by Label.
//
// Bounds are inclusive on both ends: a single pixel at (5, 7) has
// MinX == MaxX == 5 and MinY == MaxY == 7.
type Component struct {
	ID         int `json:"id"`
	MinX       int `json:"min_x"`
	MinY       int `json:"min_y"`
	MaxX       int `json:"max_x"`
	MaxY       int `json:"max_y"`
	PixelCount int `json:"pixel_count"`
}

// Width returns the bounding-box width in pixels.
func (c Component) Width() int { return c.MaxX - c.MinX + 1 }

// Height returns the bounding-box height in pixels.
func (c Component) Height() int { return c.MaxY - c.MinY + 1 }

// Area returns the bounding-box area in pixels.
func (c Component) Area() int { return c.Width() * c.Height() }

// Center returns the bounding-box midpoint.
func (c Component) Center() (float64, float64) {
	return float64(c.MinX+c.MaxX) / 2, float64(c.MinY+c.MaxY) / 2
}

// Label finds the 4-connected components of a mask.
//
// It returns a label per pixel (0 for off pixels, otherwise the component ID)
// and one Component record per blob. IDs start at 1 and follow raster-scan
// discovery order, so the output is deterministic for a given mask.
//
// The fill uses an explicit stack instead of recursion, bounding memory by the
// pixel count; every pixel is pushed at most once.
//
// The same routine serves both large seat-icon blobs and small digit blobs;
// only the input mask and the downstream filter differ.
func Label(m *Mask) ([]int32, []Component) {
	w, h := m.Width, m.Height
	labels := make([]int32, w*h)
	var comps []Component
	var stack []int

	for start, on := range m.bits {
		if !on || labels[start] != 0 {
			continue
		}

		id := int32(len(comps) + 1)
		sx, sy := start%w, start/w
		c := Component{ID: int(id), MinX: sx, MinY: sy, MaxX: sx, MaxY: sy}

		labels[start] = id
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := i%w, i/w
			c.PixelCount++
			if x < c.MinX {
				c.MinX = x
			}
			if x > c.MaxX {
				c.MaxX = x
			}
			if y < c.MinY {
				c.MinY = y
			}
			if y > c.MaxY {
				c.MaxY = y
			}

			push := func(n int) {
				if m.bits[n] && labels[n] == 0 {
					labels[n] = id
					stack = append(stack, n)
				}
			}
			if x > 0 {
				push(i - 1)
			}
			if x < w-1 {
				push(i + 1)
			}
			if y > 0 {
				push(i - w)
			}
			if y < h-1 {
				push(i + w)
			}
		}

		comps = append(comps, c)
	}

	return labels, comps
}
