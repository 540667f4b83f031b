package imaging

// Purpose names what a Mask marks. It is carried along for logging and for
// the diagnostic overlay; no algorithm branches on it.
type Purpose string

// Mask purposes produced by the pipeline.
const (
	PurposeBoundary        Purpose = "boundary"
	PurposeDilatedBoundary Purpose = "boundary-dilated"
	PurposeDarkInk         Purpose = "dark-ink"
	PurposeGlyphs          Purpose = "glyphs-dilated"
	PurposeOutside         Purpose = "outside-region"
)

// Mask is a width×height grid of booleans stored row-major (index y*Width+x).
//
// A Mask belongs to the stage that allocated it. That stage fills it with Set
// and then hands it on; downstream stages only read it and derive new masks
// rather than editing shared ones.
type Mask struct {
	Width   int
	Height  int
	Purpose Purpose

	bits []bool
}

// NewMask allocates an all-off mask.
func NewMask(width, height int, purpose Purpose) *Mask {
	return &Mask{
		Width:   width,
		Height:  height,
		Purpose: purpose,
		bits:    make([]bool, width*height),
	}
}

// At reports whether (x, y) is on. Out-of-range coordinates read as off.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.bits[y*m.Width+x]
}

// Set turns (x, y) on or off. Only the allocating stage may call Set.
func (m *Mask) Set(x, y int, on bool) {
	m.bits[y*m.Width+x] = on
}

// Count returns the number of on pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Bits exposes the underlying row-major storage for read-only scans.
func (m *Mask) Bits() []bool {
	return m.bits
}

// Union returns a new mask that is on wherever m or any of others is on.
func (m *Mask) Union(purpose Purpose, others ...*Mask) *Mask {
	out := NewMask(m.Width, m.Height, purpose)
	copy(out.bits, m.bits)
	for _, o := range others {
		for i, b := range o.bits {
			if b {
				out.bits[i] = true
			}
		}
	}
	return out
}
