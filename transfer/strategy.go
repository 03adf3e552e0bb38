package transfer

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/meshweight/geom"
	"github.com/katalvlaran/meshweight/mesh"
	"github.com/katalvlaran/meshweight/meshgraph"
	"github.com/katalvlaran/meshweight/spatial"
)

// Hit is the resolved query of one island member.
type Hit struct {
	// Member is the source vertex the query was made for.
	Member int
	// Point is the query position in target space.
	Point r3.Vec
	// Vertex is the nearest admitted target vertex.
	Vertex   int
	Distance float64
	Weight   float64
}

// Target is the read-only view of the target mesh handed to a Spreader.
type Target struct {
	Snapshot *mesh.Snapshot
	Graph    *meshgraph.Graph
	Index    *spatial.Index
	// Keep reports whether a vertex may receive weight; nil admits all.
	Keep func(v int) bool
}

func (t *Target) admits(v int) bool { return t.Keep == nil || t.Keep(v) }

// Patch is the per-vertex result of spreading one island.
type Patch struct {
	Weights map[int]float64
	// Fallback is set when the strategy degraded to direct assignment.
	Fallback bool
}

// Spreader resolves an island's hits into target vertex weights.
// Implementations must be safe for concurrent use; Run calls Spread from
// several workers at once.
type Spreader interface {
	Name() string
	Spread(t *Target, hits []Hit) (Patch, error)
}

// LocalSpread expands each hit vertex into its neighborhood of at most Depth
// edges and assigns the hit's weight to every vertex reached. Overlaps within
// an island resolve to the later hit.
type LocalSpread struct {
	Depth int
}

// Name implements Spreader.
func (s LocalSpread) Name() string { return fmt.Sprintf("spread(%d)", s.Depth) }

// Spread implements Spreader.
func (s LocalSpread) Spread(t *Target, hits []Hit) (Patch, error) {
	out := make(map[int]float64, len(hits))
	opts := []meshgraph.Option{meshgraph.WithMaxDepth(s.Depth)}
	if t.Keep != nil {
		opts = append(opts, meshgraph.WithFilterNeighbor(func(_, nbr int) bool { return t.Keep(nbr) }))
	}
	for _, h := range hits {
		res, err := t.Graph.BFSBounded(h.Vertex, opts...)
		if err != nil {
			return Patch{}, fmt.Errorf("spread from vertex %d: %w", h.Vertex, err)
		}
		for _, v := range res.Order {
			out[v] = h.Weight
		}
	}
	return Patch{Weights: out}, nil
}

// Barycentric fan-triangulates the hit vertices of an island and fills every
// target vertex inside a triangle with the barycentric blend of the corner
// weights. Hit vertices themselves always receive their hit weight.
type Barycentric struct {
	// PlaneTolerance rejects vertices farther than this from a triangle's
	// plane. Zero disables the check.
	PlaneTolerance float64
	// FacingOnly rejects vertices whose normal points away from the
	// triangle, oriented by the corners' vertex normals.
	FacingOnly bool
}

// Name implements Spreader.
func (b Barycentric) Name() string { return "barycentric" }

// containsTol absorbs rounding on triangle edges.
const containsTol = 1e-9

type corner struct {
	vertex int
	weight float64
}

// Spread implements Spreader.
func (b Barycentric) Spread(t *Target, hits []Hit) (Patch, error) {
	out := make(map[int]float64, len(hits))
	for _, h := range hits {
		out[h.Vertex] = h.Weight
	}

	// distinct hit vertices, first occurrence wins
	corners := make([]corner, 0, len(hits))
	seen := make(map[int]bool, len(hits))
	for _, h := range hits {
		if seen[h.Vertex] {
			continue
		}
		seen[h.Vertex] = true
		corners = append(corners, corner{vertex: h.Vertex, weight: h.Weight})
	}
	if len(corners) < 3 {
		return Patch{Weights: out, Fallback: true}, nil
	}

	pos := t.Snapshot.Positions
	filled := false
	for _, f := range geom.Fan(len(corners)) {
		ca, cb, cc := corners[f[0]], corners[f[1]], corners[f[2]]
		tri := geom.Triangle{A: pos[ca.vertex], B: pos[cb.vertex], C: pos[cc.vertex]}
		normal, ok := tri.Normal()
		if !ok {
			continue
		}
		filled = true
		facing := b.facing(t, normal, ca.vertex, cb.vertex, cc.vertex)

		for v, p := range pos {
			if !t.admits(v) {
				continue
			}
			if b.PlaneTolerance > 0 && tri.PlaneDistance(p) > b.PlaneTolerance {
				continue
			}
			if facing != nil && !facing(v) {
				continue
			}
			u, bv, bw, ok := tri.Barycentric(p)
			if !ok || u < -containsTol || bv < -containsTol || bw < -containsTol {
				continue
			}
			out[v] = clamp01(u*ca.weight + bv*cb.weight + bw*cc.weight)
		}
	}

	return Patch{Weights: out, Fallback: !filled}, nil
}

// facing returns a predicate accepting vertices whose normal agrees with the
// triangle normal, or nil when the check is off or cannot be oriented.
func (b Barycentric) facing(t *Target, normal r3.Vec, corners ...int) func(int) bool {
	if !b.FacingOnly {
		return nil
	}
	normals := t.Snapshot.Normals
	var ref r3.Vec
	for _, c := range corners {
		ref = r3.Add(ref, normals[c])
	}
	d := r3.Dot(ref, normal)
	if d == 0 {
		return nil
	}
	if d < 0 {
		normal = r3.Scale(-1, normal)
	}
	return func(v int) bool { return r3.Dot(normals[v], normal) > 0 }
}

func clamp01(w float64) float64 {
	switch {
	case w < 0:
		return 0
	case w > 1:
		return 1
	default:
		return w
	}
}
