package detection

import (
	"image"
	"math"
)

// Source identifies which detector produced a candidate.
type Source string

const (
	// SourceBlob marks candidates from ink-blob geometry.
	SourceBlob Source = "blob"
	// SourceOCR marks candidates from OCR digit word boxes.
	SourceOCR Source = "ocr"
	// SourceFused marks candidates merged from more than one source.
	SourceFused Source = "fused"
)

// Candidate is a provisional seat position.
//
// Weight is the supporting pixel count (1 for an OCR word) and drives the
// weighted centroid when candidates merge. Members counts how many raw
// detections were merged into the candidate; it is what the refiner rewards
// as multi-glyph support.
type Candidate struct {
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Weight     float64         `json:"weight"`
	Members    int             `json:"members"`
	Source     Source          `json:"source"`
	Confidence float64         `json:"confidence,omitempty"`
	Box        image.Rectangle `json:"-"`
}

// Distance returns the Euclidean distance between two candidates.
func (c Candidate) Distance(o Candidate) float64 {
	return math.Hypot(c.X-o.X, c.Y-o.Y)
}

// MinSeparation returns the smallest pairwise distance in cands, or +Inf when
// there are fewer than two.
func MinSeparation(cands []Candidate) float64 {
	best := math.Inf(1)
	for i := range cands {
		for j := i + 1; j < len(cands); j++ {
			if d := cands[i].Distance(cands[j]); d < best {
				best = d
			}
		}
	}
	return best
}
