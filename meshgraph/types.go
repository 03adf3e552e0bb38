package meshgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for mesh graph construction and traversal.
var (
	// ErrInvalidEdge is returned when an edge endpoint is negative,
	// not below the vertex count, or both endpoints are equal.
	ErrInvalidEdge = errors.New("meshgraph: invalid edge")

	// ErrVertexOutOfRange is returned when a query references a vertex
	// outside [0, VertexCount).
	ErrVertexOutOfRange = errors.New("meshgraph: vertex out of range")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("meshgraph: invalid option supplied")
)

// Edge is an unordered pair of vertex indices.
type Edge = [2]int

// Option configures BFSBounded via functional arguments.
// Invalid options are recorded and surfaced as ErrOptionViolation.
type Option func(*BFSOptions)

// BFSOptions holds parameters and callbacks for a bounded traversal.
type BFSOptions struct {
	// MaxDepth is the largest hop count from the seed that is visited.
	// Zero visits the seed only.
	MaxDepth int

	// FilterNeighbor can skip edges by returning false.
	// Called for each edge curr→neighbor.
	FilterNeighbor func(curr, neighbor int) bool

	// OnVisit is called for each visited vertex with its depth.
	OnVisit func(v, depth int)

	err error
}

// DefaultOptions returns depth 0, no filtering and a no-op visit hook.
func DefaultOptions() BFSOptions {
	return BFSOptions{
		MaxDepth:       0,
		FilterNeighbor: func(_, _ int) bool { return true },
		OnVisit:        func(int, int) {},
	}
}

// WithMaxDepth limits the traversal to d hops from the seed.
//
//	d >= 0: visit vertices at depth ≤ d
//	d < 0:  invalid option → ErrOptionViolation
func WithMaxDepth(d int) Option {
	return func(o *BFSOptions) {
		if d < 0 {
			o.err = fmt.Errorf("%w: MaxDepth cannot be negative (%d)", ErrOptionViolation, d)
			return
		}
		o.MaxDepth = d
	}
}

// WithFilterNeighbor skips neighbors when fn returns false.
func WithFilterNeighbor(fn func(curr, neighbor int) bool) Option {
	return func(o *BFSOptions) {
		if fn != nil {
			o.FilterNeighbor = fn
		}
	}
}

// WithOnVisit registers a callback run once per visited vertex.
func WithOnVisit(fn func(v, depth int)) Option {
	return func(o *BFSOptions) {
		if fn != nil {
			o.OnVisit = fn
		}
	}
}

// BFSResult holds the outcome of a bounded traversal.
//   - Order: vertices in visit sequence, seed first.
//   - Depth: hop count from the seed for every visited vertex.
type BFSResult struct {
	Order []int
	Depth map[int]int
}

// Contains reports whether v was reached.
func (r *BFSResult) Contains(v int) bool {
	_, ok := r.Depth[v]
	return ok
}
