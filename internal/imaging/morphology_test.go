package imaging

import (
	"image"
	"testing"
)

func TestDilate_EmptyMaskStaysEmpty(t *testing.T) {
	m := NewMask(30, 20, PurposeDarkInk)
	for radius := 0; radius <= 6; radius++ {
		if got := Dilate(m, radius, PurposeGlyphs).Count(); got != 0 {
			t.Errorf("radius %d: Count = %d, want 0", radius, got)
		}
	}
}

func TestDilate_SinglePixelIsDisk(t *testing.T) {
	const cx, cy = 10, 10

	for _, radius := range []int{1, 2, 3, 5} {
		m := maskFromPoints(21, 21, image.Point{X: cx, Y: cy})
		out := Dilate(m, radius, PurposeGlyphs)

		for y := 0; y < 21; y++ {
			for x := 0; x < 21; x++ {
				dx, dy := x-cx, y-cy
				want := dx*dx+dy*dy <= radius*radius
				if got := out.At(x, y); got != want {
					t.Fatalf("radius %d: pixel (%d,%d) = %v, want %v", radius, x, y, got, want)
				}
			}
		}
	}
}

func TestDilate_DiskSizeRadius3(t *testing.T) {
	m := maskFromPoints(21, 21, image.Point{X: 10, Y: 10})
	if got := Dilate(m, 3, PurposeGlyphs).Count(); got != 29 {
		t.Errorf("Count = %d, want 29", got)
	}
}

func TestDilate_ClipsAtEdges(t *testing.T) {
	m := maskFromPoints(5, 5, image.Point{X: 0, Y: 0})
	out := Dilate(m, 1, PurposeGlyphs)
	if got := out.Count(); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}

func TestDilate_DoesNotModifyInput(t *testing.T) {
	m := maskFromPoints(9, 9, image.Point{X: 4, Y: 4})
	_ = Dilate(m, 2, PurposeGlyphs)
	if got := m.Count(); got != 1 {
		t.Errorf("input mask changed: Count = %d, want 1", got)
	}
}

func TestDilate_ZeroRadiusCopies(t *testing.T) {
	m := maskFromPoints(9, 9, image.Point{X: 1, Y: 2}, image.Point{X: 7, Y: 7})
	out := Dilate(m, 0, PurposeGlyphs)
	if out == m {
		t.Fatal("Dilate must return a new mask")
	}
	if out.Count() != 2 || !out.At(1, 2) || !out.At(7, 7) {
		t.Error("zero-radius dilation changed the mask")
	}
	if out.Purpose != PurposeGlyphs {
		t.Errorf("Purpose = %q, want %q", out.Purpose, PurposeGlyphs)
	}
}
