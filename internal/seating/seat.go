package seating

import (
	"math"
	"sort"
	"strconv"

	"github.com/ironsheep/seatmap/internal/detection"
)

// Seat is one extracted seat position. IDs are 1-based and follow reading
// order: top row first, left to right within a row.
type Seat struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// ReadingOrder assigns IDs "1", "2", ... to the candidates in reading order.
//
// Candidates are sorted by Y; a new row starts whenever a candidate is more
// than rowTol below the first candidate of the current row. Each row is then
// sorted by X. Coordinates are rounded to one decimal place.
func ReadingOrder(cands []detection.Candidate, rowTol float64) []Seat {
	order := ReadingIndex(cands, rowTol)
	seats := make([]Seat, len(order))
	for pos, i := range order {
		seats[pos] = Seat{
			ID: strconv.Itoa(pos + 1),
			X:  round1(cands[i].X),
			Y:  round1(cands[i].Y),
		}
	}
	return seats
}

// ReadingIndex returns the indexes of cands in reading order, so callers can
// carry per-candidate data over to the Seat at the same position.
func ReadingIndex(cands []detection.Candidate, rowTol float64) []int {
	idx := make([]int, len(cands))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ca, cb := cands[idx[a]], cands[idx[b]]
		if ca.Y != cb.Y {
			return ca.Y < cb.Y
		}
		return ca.X < cb.X
	})

	for start := 0; start < len(idx); {
		rowY := cands[idx[start]].Y
		end := start + 1
		for end < len(idx) && cands[idx[end]].Y-rowY <= rowTol {
			end++
		}
		row := idx[start:end]
		sort.SliceStable(row, func(a, b int) bool {
			return cands[row[a]].X < cands[row[b]].X
		})
		start = end
	}
	return idx
}

// readingRank maps each candidate index to its reading-order position.
func readingRank(cands []detection.Candidate, rowTol float64) []int {
	rank := make([]int, len(cands))
	for pos, i := range ReadingIndex(cands, rowTol) {
		rank[i] = pos
	}
	return rank
}

// RoundingSlack bounds how much rounding both seats of a pair to one decimal
// can shrink their distance: each moves at most 0.05·√2. Separating by
// MinSeparation plus this slack keeps rounded seats MinSeparation apart.
const RoundingSlack = 0.15

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
