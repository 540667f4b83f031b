package seating

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/seatmap/internal/detection"
)

// ErrInsufficientCandidates reports that a room has a known capacity but the
// candidate pool is smaller than it. The full pool is still returned.
var ErrInsufficientCandidates = errors.New("fewer candidates than capacity")

// Params holds the refiner's scoring weights and alignment tolerances.
//
// Distances in the neighbourhood rules are relative to m, the median
// nearest-neighbour distance of the current working set.
type Params struct {
	// NeighborReward is added when 1-5 others lie within [0.5m, 2.5m].
	NeighborReward float64 `yaml:"neighbor_reward"`
	// CrowdReward is added when more than 5 others lie in that window.
	CrowdReward float64 `yaml:"crowd_reward"`
	// IsolationPenalty is subtracted when none do.
	IsolationPenalty float64 `yaml:"isolation_penalty"`
	// ClutterPenalty is subtracted for every other candidate closer than 0.3m.
	ClutterPenalty float64 `yaml:"clutter_penalty"`
	// RowWeight multiplies the number of others within RowTolerance in Y.
	RowWeight float64 `yaml:"row_weight"`
	// ColumnWeight multiplies the number of others within ColumnTolerance in
	// X that are not in the same row.
	ColumnWeight float64 `yaml:"column_weight"`
	// SupportWeight multiplies min(Members-1, 4).
	SupportWeight float64 `yaml:"support_weight"`

	RowTolerance    float64 `yaml:"row_tolerance"`
	ColumnTolerance float64 `yaml:"column_tolerance"`
}

// DefaultParams returns the refiner defaults.
func DefaultParams() Params {
	return Params{
		NeighborReward:   2,
		CrowdReward:      1,
		IsolationPenalty: 3,
		ClutterPenalty:   2,
		RowWeight:        0.5,
		ColumnWeight:     0.25,
		SupportWeight:    0.5,
		RowTolerance:     35,
		ColumnTolerance:  20,
	}
}

// Validate reports the first invalid field.
func (p Params) Validate() error {
	if p.RowTolerance < 0 {
		return fmt.Errorf("row_tolerance must be >= 0, got %g", p.RowTolerance)
	}
	if p.ColumnTolerance < 0 {
		return fmt.Errorf("column_tolerance must be >= 0, got %g", p.ColumnTolerance)
	}
	return nil
}

const (
	windowLow     = 0.5
	windowHigh    = 2.5
	clutterFactor = 0.3
	crowdLimit    = 5
	maxSupport    = 4
)

// Removal records one candidate dropped by the refiner and the score it had
// in the round it was dropped.
type Removal struct {
	Candidate detection.Candidate `json:"candidate"`
	Score     float64             `json:"score"`
	Round     int                 `json:"round"`
}

// Result is the outcome of a refinement.
type Result struct {
	// Kept preserves the input order of the surviving candidates.
	Kept []detection.Candidate
	// Scores[i] is the final score of Kept[i].
	Scores []float64
	// Removed lists dropped candidates in removal order.
	Removed []Removal
	// Shortfall is capacity - len(Kept) when the pool was too small.
	Shortfall int
}

// Err returns ErrInsufficientCandidates when the pool could not reach the
// capacity, and nil otherwise.
func (r Result) Err() error {
	if r.Shortfall > 0 {
		return errors.Wrapf(ErrInsufficientCandidates, "short by %d", r.Shortfall)
	}
	return nil
}

// Refiner prunes a candidate pool down to a room's known capacity.
type Refiner struct {
	params Params
	logger *zap.Logger
}

// NewRefiner returns a Refiner. A nil logger is replaced with a no-op logger.
func NewRefiner(params Params, logger *zap.Logger) *Refiner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refiner{params: params, logger: logger}
}

// Refine removes the lowest-scoring candidate, one at a time, until exactly
// capacity remain.
//
// Parameters:
//   - cands: The selected candidate pool. It is copied, never modified.
//   - capacity: The room's declared seat count. nil or < 1 means unknown.
//
// Returns:
//   - Result: Kept candidates with their final scores, every removal in
//     order, and the Shortfall when the pool is smaller than capacity.
//
// # Algorithm
//
//  1. If capacity is unknown or len(cands) <= capacity, return the pool as is
//  2. Score every candidate against the current median nearest-neighbour
//     distance (see Score)
//  3. Remove the lowest score. Ties remove the lower Weight, then the lower
//     OCR Confidence, then the later reading position
//  4. Repeat from 2 until exactly capacity remain
//
// Scores are recomputed from scratch after every removal, since removing a
// point changes the median spacing and every neighbour count near it.
//
// Refine never fails; a short pool is reported through Result.Err.
func (r *Refiner) Refine(cands []detection.Candidate, capacity *int) Result {
	work := append([]detection.Candidate(nil), cands...)
	rank := readingRank(work, r.params.RowTolerance)

	if capacity == nil || *capacity < 1 || len(work) <= *capacity {
		res := Result{Kept: work, Scores: r.Score(work)}
		if capacity != nil && *capacity > len(work) {
			res.Shortfall = *capacity - len(work)
		}
		return res
	}

	var removed []Removal
	for round := 1; len(work) > *capacity; round++ {
		scores := r.Score(work)
		victim := 0
		for i := 1; i < len(work); i++ {
			if r.worse(work, scores, rank, i, victim) {
				victim = i
			}
		}

		removed = append(removed, Removal{Candidate: work[victim], Score: scores[victim], Round: round})
		r.logger.Debug("refiner removed candidate",
			zap.Int("round", round),
			zap.Float64("x", work[victim].X),
			zap.Float64("y", work[victim].Y),
			zap.Float64("score", scores[victim]),
			zap.Int("remaining", len(work)-1),
		)

		work = append(work[:victim], work[victim+1:]...)
		rank = append(rank[:victim], rank[victim+1:]...)
	}

	return Result{Kept: work, Scores: r.Score(work), Removed: removed}
}

// worse reports whether candidate i should be removed before candidate j.
func (r *Refiner) worse(cands []detection.Candidate, scores []float64, rank []int, i, j int) bool {
	if scores[i] != scores[j] {
		return scores[i] < scores[j]
	}
	if cands[i].Weight != cands[j].Weight {
		return cands[i].Weight < cands[j].Weight
	}
	if cands[i].Confidence != cands[j].Confidence {
		return cands[i].Confidence < cands[j].Confidence
	}
	return rank[i] > rank[j]
}

// Score returns the plausibility score of every candidate against the rest
// of the set.
func (r *Refiner) Score(cands []detection.Candidate) []float64 {
	scores := make([]float64, len(cands))
	if len(cands) == 0 {
		return scores
	}

	idx := newNeighborIndex(cands)
	m := idx.medianNearest()
	p := r.params

	for i, c := range cands {
		var s float64

		if m > 0 && !math.IsInf(m, 0) {
			near := 0
			for _, d := range idx.within(i, windowHigh*m) {
				if d >= windowLow*m {
					near++
				}
				if d < clutterFactor*m {
					s -= p.ClutterPenalty
				}
			}
			switch {
			case near == 0:
				s -= p.IsolationPenalty
			case near <= crowdLimit:
				s += p.NeighborReward
			default:
				s += p.CrowdReward
			}
		}

		rows, cols := 0, 0
		for j, o := range cands {
			if j == i {
				continue
			}
			sameRow := math.Abs(o.Y-c.Y) <= p.RowTolerance
			if sameRow {
				rows++
			} else if math.Abs(o.X-c.X) <= p.ColumnTolerance {
				cols++
			}
		}
		s += p.RowWeight * float64(rows)
		s += p.ColumnWeight * float64(cols)

		support := c.Members - 1
		if support > maxSupport {
			support = maxSupport
		}
		if support > 0 {
			s += p.SupportWeight * float64(support)
		}

		scores[i] = s
	}
	return scores
}
