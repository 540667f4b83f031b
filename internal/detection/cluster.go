package detection

import "sort"

// Merge collapses candidates that lie strictly closer than radius.
//
// Parameters:
//   - cands: Candidates from one or more detectors. Not modified.
//   - radius: Merge distance in pixels. A pair exactly radius apart stays
//     distinct.
//
// Returns:
//   - []Candidate: The merged set, one entry per seed in visiting order.
//
// # Algorithm
//
//  1. Sort by (Y, X); at the same point the more confident OCR reading
//     comes first
//  2. Each candidate not yet absorbed becomes a seed and absorbs every other
//     unabsorbed candidate closer than radius to it
//  3. The group is replaced by its Weight-weighted centroid carrying the
//     summed Weight and Members, the highest Confidence, the union of the
//     boxes, and SourceFused when the group mixes sources
//
// This is one greedy pass, not density clustering: a merged centroid is not
// compared again. The fixed visiting order makes the result reproducible.
// The pipeline runs it with a tight radius to join fragments of one number
// and with a wider radius to join two detectors' views of the same seat.
func Merge(cands []Candidate, radius float64) []Candidate {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sortReading(sorted)

	absorbed := make([]bool, len(sorted))
	out := make([]Candidate, 0, len(sorted))

	for i, seed := range sorted {
		if absorbed[i] {
			continue
		}
		absorbed[i] = true
		group := []Candidate{seed}

		for j := i + 1; j < len(sorted); j++ {
			if absorbed[j] || seed.Distance(sorted[j]) >= radius {
				continue
			}
			absorbed[j] = true
			group = append(group, sorted[j])
		}

		out = append(out, combine(group))
	}

	return out
}

// Separate re-applies Merge until no two candidates are closer than minSep.
// Each pass either merges at least one pair or leaves the set unchanged, so
// the loop ends after at most len(cands) passes.
func Separate(cands []Candidate, minSep float64) []Candidate {
	cur := Merge(cands, minSep)
	for {
		next := Merge(cur, minSep)
		if len(next) == len(cur) {
			return next
		}
		cur = next
	}
}

// combine returns the weighted centroid of a group.
func combine(group []Candidate) Candidate {
	if len(group) == 1 {
		return group[0]
	}

	var sumW, sumX, sumY float64
	out := Candidate{Source: group[0].Source, Box: group[0].Box}
	for _, c := range group {
		w := c.Weight
		if w <= 0 {
			w = 1
		}
		sumW += w
		sumX += c.X * w
		sumY += c.Y * w

		out.Weight += c.Weight
		out.Members += c.Members
		if c.Confidence > out.Confidence {
			out.Confidence = c.Confidence
		}
		if c.Source != out.Source {
			out.Source = SourceFused
		}
		out.Box = out.Box.Union(c.Box)
	}
	out.X = sumX / sumW
	out.Y = sumY / sumW
	return out
}

// sortReading orders candidates by Y, then X. Candidates at the same point
// put the more confident OCR reading first so it seeds the group.
func sortReading(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Y != cands[j].Y {
			return cands[i].Y < cands[j].Y
		}
		if cands[i].X != cands[j].X {
			return cands[i].X < cands[j].X
		}
		return cands[i].Confidence > cands[j].Confidence
	})
}
