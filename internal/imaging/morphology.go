package imaging

// Dilate returns a new mask in which a pixel is on when any input pixel within
// Euclidean distance radius (dx²+dy² ≤ radius²) is on.
//
// The pipeline dilates twice with different radii: a few pixels on the
// boundary mask so the flood fill cannot leak through printing gaps, and a
// smaller radius on the ink mask so the strokes of a multi-digit seat number
// join into one blob without bridging neighbouring seats.
//
// A radius of zero or less returns an unchanged copy. Cost is
// O(width × height × radius²); radii are single-digit in practice.
func Dilate(m *Mask, radius int, purpose Purpose) *Mask {
	out := NewMask(m.Width, m.Height, purpose)
	if radius <= 0 {
		copy(out.bits, m.bits)
		return out
	}

	offsets := diskOffsets(radius)
	for y := 0; y < m.Height; y++ {
		row := m.bits[y*m.Width : (y+1)*m.Width]
		for x, on := range row {
			if !on {
				continue
			}
			for _, o := range offsets {
				nx, ny := x+o[0], y+o[1]
				if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
					continue
				}
				out.bits[ny*m.Width+nx] = true
			}
		}
	}
	return out
}

// diskOffsets lists every (dx, dy) inside the disk of the given radius.
func diskOffsets(radius int) [][2]int {
	r2 := radius * radius
	offsets := make([][2]int, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				offsets = append(offsets, [2]int{dx, dy})
			}
		}
	}
	return offsets
}
