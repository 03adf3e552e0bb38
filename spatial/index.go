package spatial

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/meshweight/geom"
)

// ErrEmptyInput is returned by Build when there is nothing to index.
var ErrEmptyInput = errors.New("spatial: no points to index")

// Point is an indexed position with a caller-defined identifier.
type Point struct {
	ID  int
	Pos r3.Vec
}

// Hit is a query result: the identifier of an indexed point and its
// Euclidean distance to the query.
type Hit struct {
	ID       int
	Distance float64
}

// Index is a balanced, read-only k-d tree.
type Index struct {
	tree *kdtree.Tree
	n    int
}

// Build indexes points. The slice is copied; ids need not be unique
// or contiguous. Returns ErrEmptyInput for an empty slice.
func Build(points []Point) (*Index, error) {
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}
	items := make(entries, len(points))
	for i, p := range points {
		items[i] = entry{id: p.ID, seq: i, pos: p.Pos}
	}

	return &Index{tree: kdtree.New(items, false), n: len(items)}, nil
}

// Len returns the number of indexed points.
func (ix *Index) Len() int { return ix.n }

// Nearest returns the indexed point closest to q.
// Ties are broken in favour of the earliest inserted point.
func (ix *Index) Nearest(q r3.Vec) Hit {
	query := entry{pos: q}
	c, d2 := ix.tree.Nearest(query)
	best := c.(entry)

	// Collect everything at exactly the best distance to apply the tie-break.
	keep := kdtree.NewDistKeeper(d2)
	ix.tree.NearestSet(keep, query)
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		if e := cd.Comparable.(entry); cd.Dist == d2 && e.seq < best.seq {
			best = e
		}
	}

	return Hit{ID: best.id, Distance: math.Sqrt(d2)}
}

// WithinRadius returns every indexed point at distance ≤ radius from q,
// ordered by distance then insertion order. A negative radius yields nil.
func (ix *Index) WithinRadius(q r3.Vec, radius float64) []Hit {
	if radius < 0 || math.IsNaN(radius) {
		return nil
	}
	keep := kdtree.NewDistKeeper(radius * radius)
	ix.tree.NearestSet(keep, entry{pos: q})

	return collect(keep.Heap)
}

// KNearest returns up to k points closest to q, nearest first.
func (ix *Index) KNearest(q r3.Vec, k int) []Hit {
	if k <= 0 {
		return nil
	}
	keep := kdtree.NewNKeeper(k)
	ix.tree.NearestSet(keep, entry{pos: q})

	return collect(keep.Heap)
}

// collect converts a keeper heap into sorted hits, dropping sentinel slots.
func collect(h kdtree.Heap) []Hit {
	found := make([]entry, 0, len(h))
	dists := make(map[int]float64, len(h))
	for _, cd := range h {
		if cd.Comparable == nil {
			continue
		}
		e := cd.Comparable.(entry)
		found = append(found, e)
		dists[e.seq] = cd.Dist
	}
	sort.Slice(found, func(i, j int) bool {
		di, dj := dists[found[i].seq], dists[found[j].seq]
		if di != dj {
			return di < dj
		}
		return found[i].seq < found[j].seq
	})

	hits := make([]Hit, len(found))
	for i, e := range found {
		hits[i] = Hit{ID: e.id, Distance: math.Sqrt(dists[e.seq])}
	}
	return hits
}

// entry is the kdtree.Comparable stored in the tree. seq records the
// insertion position and drives the tie-break.
type entry struct {
	id  int
	seq int
	pos r3.Vec
}

// Compare returns the signed distance of e from the plane through c
// perpendicular to dimension d.
func (e entry) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	o := c.(entry)
	return geom.Coord(e.pos, int(d)) - geom.Coord(o.pos, int(d))
}

// Dims returns 3.
func (e entry) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between e and c.
func (e entry) Distance(c kdtree.Comparable) float64 {
	o := c.(entry)
	return r3.Norm2(r3.Sub(e.pos, o.pos))
}

// entries implements kdtree.Interface.
type entries []entry

func (p entries) Index(i int) kdtree.Comparable { return p[i] }
func (p entries) Len() int                      { return len(p) }
func (p entries) Pivot(d kdtree.Dim) int        { return plane{Dim: d, entries: p}.Pivot() }
func (p entries) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// plane sorts entries along one dimension for median partitioning.
type plane struct {
	kdtree.Dim
	entries
}

func (p plane) Less(i, j int) bool {
	return geom.Coord(p.entries[i].pos, int(p.Dim)) < geom.Coord(p.entries[j].pos, int(p.Dim))
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.entries = p.entries[start:end]
	return p
}
func (p plane) Swap(i, j int) { p.entries[i], p.entries[j] = p.entries[j], p.entries[i] }
