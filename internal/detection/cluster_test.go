package detection

import (
	"math"
	"testing"
)

func TestMerge_WithinRadius(t *testing.T) {
	a := Candidate{X: 0, Y: 0, Weight: 1, Members: 1, Source: SourceOCR, Confidence: 0.9}
	b := Candidate{X: 3, Y: 4, Weight: 3, Members: 1, Source: SourceBlob}

	got := Merge([]Candidate{a, b}, 6)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}

	c := got[0]
	if math.Abs(c.X-2.25) > 1e-9 || math.Abs(c.Y-3) > 1e-9 {
		t.Errorf("centroid = (%v,%v), want (2.25,3)", c.X, c.Y)
	}
	if c.Weight != 4 || c.Members != 2 {
		t.Errorf("Weight=%v Members=%d, want 4 and 2", c.Weight, c.Members)
	}
	if c.Source != SourceFused {
		t.Errorf("Source = %s, want fused", c.Source)
	}
	if c.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", c.Confidence)
	}
}

func TestMerge_ConfidentReadingSeedsEqualPoints(t *testing.T) {
	weak := Candidate{X: 40, Y: 40, Weight: 1, Members: 1, Source: SourceOCR, Confidence: 0.35}
	strong := Candidate{X: 40, Y: 40, Weight: 1, Members: 1, Source: SourceOCR, Confidence: 0.92}

	for _, in := range [][]Candidate{{weak, strong}, {strong, weak}} {
		// A zero radius merges nothing, exposing the visiting order.
		got := Merge(in, 0)
		if len(got) != 2 {
			t.Fatalf("got %d candidates, want 2", len(got))
		}
		if got[0].Confidence != 0.92 {
			t.Errorf("first seed confidence = %v, want 0.92", got[0].Confidence)
		}
	}
}

func TestMerge_AtRadiusStaysDistinct(t *testing.T) {
	a := Candidate{X: 0, Y: 0, Weight: 1, Members: 1}
	b := Candidate{X: 3, Y: 4, Weight: 1, Members: 1}

	if got := Merge([]Candidate{a, b}, 5); len(got) != 2 {
		t.Errorf("d == radius: got %d candidates, want 2", len(got))
	}
	if got := Merge([]Candidate{a, b}, 4); len(got) != 2 {
		t.Errorf("d > radius: got %d candidates, want 2", len(got))
	}
}

func TestMerge_SinglePassIsNotTransitive(t *testing.T) {
	cands := []Candidate{
		{X: 0, Y: 0, Weight: 1, Members: 1},
		{X: 4, Y: 0, Weight: 1, Members: 1},
		{X: 8, Y: 0, Weight: 1, Members: 1},
	}

	got := Merge(cands, 5)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].X != 2 || got[1].X != 8 {
		t.Errorf("got X=%v,%v want 2,8", got[0].X, got[1].X)
	}
}

func TestMerge_OrderIndependent(t *testing.T) {
	cands := []Candidate{
		{X: 10, Y: 10, Weight: 2, Members: 1},
		{X: 12, Y: 11, Weight: 1, Members: 1},
		{X: 50, Y: 10, Weight: 1, Members: 1},
		{X: 11, Y: 40, Weight: 5, Members: 1},
	}
	reversed := make([]Candidate, len(cands))
	for i, c := range cands {
		reversed[len(cands)-1-i] = c
	}

	a, b := Merge(cands, 5), Merge(reversed, 5)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y || a[i].Weight != b[i].Weight {
			t.Errorf("result %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMerge_DoesNotModifyInput(t *testing.T) {
	cands := []Candidate{{X: 5, Y: 5, Weight: 1}, {X: 0, Y: 0, Weight: 1}}
	_ = Merge(cands, 1)
	if cands[0].X != 5 {
		t.Error("Merge reordered the caller's slice")
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(nil, 10); len(got) != 0 {
		t.Errorf("got %d candidates, want 0", len(got))
	}
}

func TestSeparate_ReachesFixedPoint(t *testing.T) {
	cands := []Candidate{
		{X: 0, Y: 0, Weight: 1, Members: 1},
		{X: 4, Y: 0, Weight: 100, Members: 1},
		{X: 8.5, Y: 0, Weight: 1, Members: 1},
	}

	// One pass leaves the heavy centroid 4.54 px from the last point.
	if got := Merge(cands, 5); len(got) != 2 {
		t.Fatalf("single pass: got %d candidates, want 2", len(got))
	}

	got := Separate(cands, 5)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Weight != 102 || got[0].Members != 3 {
		t.Errorf("unexpected merged candidate %+v", got[0])
	}
}

func TestSeparate_Guarantee(t *testing.T) {
	var cands []Candidate
	for i := 0; i < 30; i++ {
		cands = append(cands, Candidate{
			X:       float64((i * 37) % 100),
			Y:       float64((i * 53) % 80),
			Weight:  float64(1 + i%4),
			Members: 1,
		})
	}

	got := Separate(cands, 12)
	if d := MinSeparation(got); d < 12 {
		t.Errorf("MinSeparation = %v, want >= 12", d)
	}
}

func TestMinSeparation(t *testing.T) {
	if !math.IsInf(MinSeparation(nil), 1) {
		t.Error("MinSeparation of empty set should be +Inf")
	}
	got := MinSeparation([]Candidate{{X: 0, Y: 0}, {X: 6, Y: 8}, {X: 30, Y: 0}})
	if got != 10 {
		t.Errorf("MinSeparation = %v, want 10", got)
	}
}
