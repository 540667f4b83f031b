package seating

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/ironsheep/seatmap/internal/detection"
)

// seatPoint is a candidate position that remembers its index in the working
// set, so k-d tree results can be mapped back after the tree reorders points.
type seatPoint struct {
	x, y float64
	idx  int
}

func (p seatPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(seatPoint)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("seating: illegal dimension")
	}
}

func (p seatPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (p seatPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(seatPoint)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

type seatPoints []seatPoint

func (p seatPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p seatPoints) Len() int                      { return len(p) }
func (p seatPoints) Pivot(d kdtree.Dim) int {
	return seatPlane{seatPoints: p, Dim: d}.Pivot()
}
func (p seatPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// seatPlane sorts seatPoints along one dimension for median partitioning.
type seatPlane struct {
	kdtree.Dim
	seatPoints
}

func (p seatPlane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.seatPoints[i].x < p.seatPoints[j].x
	}
	return p.seatPoints[i].y < p.seatPoints[j].y
}

func (p seatPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p seatPlane) Slice(start, end int) kdtree.SortSlicer {
	p.seatPoints = p.seatPoints[start:end]
	return p
}

func (p seatPlane) Swap(i, j int) {
	p.seatPoints[i], p.seatPoints[j] = p.seatPoints[j], p.seatPoints[i]
}

// neighborIndex answers nearest-neighbour and radius queries over a fixed set
// of candidates.
type neighborIndex struct {
	pts  []seatPoint
	tree *kdtree.Tree
}

func newNeighborIndex(cands []detection.Candidate) *neighborIndex {
	pts := make([]seatPoint, len(cands))
	for i, c := range cands {
		pts[i] = seatPoint{x: c.X, y: c.Y, idx: i}
	}
	// kdtree.New reorders its input; keep pts in index order for queries.
	treePts := make(seatPoints, len(pts))
	copy(treePts, pts)
	return &neighborIndex{pts: pts, tree: kdtree.New(treePts, false)}
}

// nearest returns the distance from point i to its closest other point, or
// +Inf when there is none.
func (n *neighborIndex) nearest(i int) float64 {
	keep := kdtree.NewNKeeper(2)
	n.tree.NearestSet(keep, n.pts[i])

	best := math.Inf(1)
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		if cd.Comparable.(seatPoint).idx == i {
			continue
		}
		if d := math.Sqrt(cd.Dist); d < best {
			best = d
		}
	}
	return best
}

// within returns the distances from point i to every other point no further
// than r.
func (n *neighborIndex) within(i int, r float64) []float64 {
	keep := kdtree.NewDistKeeper(r * r)
	n.tree.NearestSet(keep, n.pts[i])

	var out []float64
	for _, cd := range keep.Heap {
		if cd.Comparable == nil || cd.Comparable.(seatPoint).idx == i {
			continue
		}
		out = append(out, math.Sqrt(cd.Dist))
	}
	return out
}

// medianNearest returns the median nearest-neighbour distance, or 0 when
// fewer than two points exist.
func (n *neighborIndex) medianNearest() float64 {
	if len(n.pts) < 2 {
		return 0
	}
	nn := make(stats.Float64Data, len(n.pts))
	for i := range n.pts {
		nn[i] = n.nearest(i)
	}
	m, err := stats.Median(nn)
	if err != nil {
		return 0
	}
	return m
}
