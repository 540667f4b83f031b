package seating

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.uber.org/zap/zaptest"

	"github.com/ironsheep/seatmap/internal/detection"
)

func intPtr(v int) *int { return &v }

// gridWithOutliers returns a 5x8 seat grid (60 px columns, 80 px rows) plus
// five isolated points that share no row or column with anything.
func gridWithOutliers() (grid, outliers []detection.Candidate) {
	for r := 0; r < 5; r++ {
		for c := 0; c < 8; c++ {
			grid = append(grid, detection.Candidate{
				X: float64(100 + 60*c), Y: float64(100 + 80*r),
				Weight: 30, Members: 1, Source: detection.SourceBlob,
			})
		}
	}
	outliers = pts(700, 610, 820, 750, 40, 690, 610, 900, 950, 520)
	return grid, outliers
}

func TestRefine_ConvergesToCapacity(t *testing.T) {
	grid, outliers := gridWithOutliers()
	// Interleave so removal order cannot come from input position.
	var pool []detection.Candidate
	pool = append(pool, outliers[:2]...)
	pool = append(pool, grid[:20]...)
	pool = append(pool, outliers[2:]...)
	pool = append(pool, grid[20:]...)

	r := NewRefiner(DefaultParams(), zaptest.NewLogger(t))
	res := r.Refine(pool, intPtr(40))

	if len(res.Kept) != 40 {
		t.Fatalf("expected 40 kept, got %d", len(res.Kept))
	}
	if len(res.Removed) != 5 {
		t.Fatalf("expected 5 removed, got %d", len(res.Removed))
	}
	if err := res.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	isOutlier := map[[2]float64]bool{}
	for _, o := range outliers {
		isOutlier[[2]float64{o.X, o.Y}] = true
	}
	for i, rm := range res.Removed {
		if !isOutlier[[2]float64{rm.Candidate.X, rm.Candidate.Y}] {
			t.Errorf("removal %d was grid point (%g,%g)", i, rm.Candidate.X, rm.Candidate.Y)
		}
		if rm.Round != i+1 {
			t.Errorf("removal %d has round %d", i, rm.Round)
		}
	}
	for _, k := range res.Kept {
		if isOutlier[[2]float64{k.X, k.Y}] {
			t.Errorf("outlier (%g,%g) survived", k.X, k.Y)
		}
	}
	if len(res.Scores) != len(res.Kept) {
		t.Errorf("expected a score per kept candidate, got %d", len(res.Scores))
	}
}

func TestRefine_ExactMatchIsIdentity(t *testing.T) {
	grid, _ := gridWithOutliers()
	r := NewRefiner(DefaultParams(), nil)

	res := r.Refine(grid, intPtr(len(grid)))
	if diff := cmp.Diff(grid, res.Kept); diff != "" {
		t.Errorf("Refine changed an exact-size pool (-want +got):\n%s", diff)
	}
	if len(res.Removed) != 0 {
		t.Errorf("expected no removals, got %d", len(res.Removed))
	}
}

func TestRefine_UnknownCapacity(t *testing.T) {
	grid, outliers := gridWithOutliers()
	pool := append(append([]detection.Candidate(nil), grid...), outliers...)
	r := NewRefiner(DefaultParams(), nil)

	for name, capacity := range map[string]*int{"nil": nil, "zero": intPtr(0), "negative": intPtr(-3)} {
		t.Run(name, func(t *testing.T) {
			res := r.Refine(pool, capacity)
			if len(res.Kept) != len(pool) {
				t.Errorf("expected pool unchanged, got %d of %d", len(res.Kept), len(pool))
			}
			if res.Err() != nil {
				t.Errorf("unexpected error: %v", res.Err())
			}
		})
	}
}

func TestRefine_Shortfall(t *testing.T) {
	r := NewRefiner(DefaultParams(), nil)
	res := r.Refine(pts(10, 10, 100, 10), intPtr(5))

	if len(res.Kept) != 2 {
		t.Fatalf("expected full pool of 2, got %d", len(res.Kept))
	}
	if res.Shortfall != 3 {
		t.Errorf("expected shortfall 3, got %d", res.Shortfall)
	}
	if !errors.Is(res.Err(), ErrInsufficientCandidates) {
		t.Errorf("expected ErrInsufficientCandidates, got %v", res.Err())
	}
}

func TestRefine_DoesNotMutateInput(t *testing.T) {
	grid, outliers := gridWithOutliers()
	pool := append(append([]detection.Candidate(nil), outliers...), grid...)
	before := append([]detection.Candidate(nil), pool...)

	NewRefiner(DefaultParams(), nil).Refine(pool, intPtr(40))

	if diff := cmp.Diff(before, pool); diff != "" {
		t.Errorf("input modified (-before +after):\n%s", diff)
	}
}

func TestRefine_TieBreaksOnWeightThenReadingOrder(t *testing.T) {
	// Zero weights make every score equal, so only the tie-break decides.
	p := Params{RowTolerance: 35}
	r := NewRefiner(p, nil)

	cands := pts(100, 100, 200, 100, 300, 100)
	cands[0].Weight = 5
	cands[1].Weight = 5
	cands[2].Weight = 2
	res := r.Refine(cands, intPtr(2))
	if got := res.Removed[0].Candidate; got.X != 300 {
		t.Errorf("expected lighter candidate at x=300 removed, got x=%g", got.X)
	}

	// Equal weights: the later reading position goes first.
	res = r.Refine(pts(100, 100, 200, 100, 300, 100), intPtr(2))
	if got := res.Removed[0].Candidate; got.X != 300 {
		t.Errorf("expected last candidate in reading order removed, got x=%g", got.X)
	}
}

func TestRefine_TieBreaksOnConfidence(t *testing.T) {
	r := NewRefiner(Params{RowTolerance: 35}, nil)

	// Three OCR readings of equal weight; only the engine confidence differs.
	cands := pts(100, 100, 200, 100, 300, 100)
	for i, conf := range []float64{0.9, 0.4, 0.8} {
		cands[i].Weight = 1
		cands[i].Source = detection.SourceOCR
		cands[i].Confidence = conf
	}

	res := r.Refine(cands, intPtr(2))
	if got := res.Removed[0].Candidate; got.X != 200 {
		t.Errorf("expected least confident reading at x=200 removed, got x=%g", got.X)
	}
}

func TestScore_ClutterAndSupport(t *testing.T) {
	p := Params{ClutterPenalty: 1, SupportWeight: 1}
	r := NewRefiner(p, nil)

	// Nearest distances are 10, 10, 100, 100 so m is 55 and the pair 10 apart
	// falls under the clutter distance.
	cands := pts(0, 0, 10, 0, 500, 500, 600, 500)
	cands[2].Members = 9

	scores := r.Score(cands)
	if scores[0] != -1 || scores[1] != -1 {
		t.Errorf("expected clutter penalty on close pair, got %v", scores[:2])
	}
	if scores[2] != 4 {
		t.Errorf("expected support capped at 4, got %g", scores[2])
	}
	if scores[3] != 0 {
		t.Errorf("expected zero score, got %g", scores[3])
	}
}
