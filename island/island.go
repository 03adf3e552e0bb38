// Package island extracts weight islands: the vertices of one named vertex
// group carrying non-zero weight, with their centroid and each member's
// offset from it.
//
// The centroid is the unweighted mean of member positions, so an island is
// treated as a uniform geometric region regardless of how weight is spread
// across it.
//
// Islands are derived per transfer call and never cached; a mesh may be
// edited between calls.
package island

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/meshweight/geom"
	"github.com/katalvlaran/meshweight/mesh"
	"github.com/katalvlaran/meshweight/meshgraph"
	"github.com/katalvlaran/meshweight/spatial"
)

// Sentinel errors for island extraction.
var (
	// ErrEmptyGroup is returned when a group has no vertex with weight > 0,
	// including when the group does not exist.
	ErrEmptyGroup = errors.New("island: group has no weighted vertices")

	// ErrWeightRange is returned when a group weight lies outside [0, 1].
	ErrWeightRange = errors.New("island: weight outside [0,1]")
)

// Member is one vertex of an island.
type Member struct {
	Vertex   int
	Position r3.Vec
	// Offset is Position − Centroid.
	Offset r3.Vec
	Weight float64
}

// Island is a named group's weighted vertex set.
type Island struct {
	Name     string
	Centroid r3.Vec
	Members  []Member
}

// Extract collects the vertices of group name on m with weight > 0, in
// ascending vertex order, and computes the centroid and offsets.
//
// Returns ErrEmptyGroup if the group is missing or has no positive weight,
// ErrWeightRange for weights outside [0, 1] or NaN.
func Extract(m mesh.Accessor, name string) (*Island, error) {
	weights, ok := m.Attribute(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q does not exist", ErrEmptyGroup, name)
	}
	n := m.VertexCount()
	members := make([]Member, 0, len(weights))
	for v := 0; v < n; v++ {
		w, ok := weights[v]
		if !ok {
			continue
		}
		if math.IsNaN(w) || w < 0 || w > 1 {
			return nil, fmt.Errorf("%w: %q vertex %d = %v", ErrWeightRange, name, v, w)
		}
		if w > 0 {
			members = append(members, Member{Vertex: v, Position: m.VertexPosition(v), Weight: w})
		}
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyGroup, name)
	}

	return build(name, members), nil
}

// build computes centroid and offsets for members.
func build(name string, members []Member) *Island {
	pts := make([]r3.Vec, len(members))
	for i, mb := range members {
		pts[i] = mb.Position
	}
	// members is non-empty, so Centroid cannot fail.
	c, _ := geom.Centroid(pts)
	for i := range members {
		members[i].Offset = r3.Sub(members[i].Position, c)
	}
	return &Island{Name: name, Centroid: c, Members: members}
}

// Len returns the number of members.
func (is *Island) Len() int { return len(is.Members) }

// Vertices returns member vertex ids in ascending order.
func (is *Island) Vertices() []int {
	vs := make([]int, len(is.Members))
	for i, mb := range is.Members {
		vs[i] = mb.Vertex
	}
	return vs
}

// Weights returns member weights keyed by vertex.
func (is *Island) Weights() map[int]float64 {
	out := make(map[int]float64, len(is.Members))
	for _, mb := range is.Members {
		out[mb.Vertex] = mb.Weight
	}
	return out
}

// Split divides the island into its contiguous patches over g. Each patch
// gets its own centroid; patches are ordered by their lowest vertex. An
// island that is already contiguous is returned as a single element.
func (is *Island) Split(g *meshgraph.Graph) ([]*Island, error) {
	comps, err := g.ConnectedComponents(is.Vertices())
	if err != nil {
		return nil, fmt.Errorf("island: split %q: %w", is.Name, err)
	}
	if len(comps) == 1 {
		return []*Island{is}, nil
	}
	byVertex := make(map[int]Member, len(is.Members))
	for _, mb := range is.Members {
		byVertex[mb.Vertex] = mb
	}
	parts := make([]*Island, 0, len(comps))
	for _, comp := range comps {
		members := make([]Member, len(comp))
		for i, v := range comp {
			members[i] = byVertex[v]
		}
		parts = append(parts, build(is.Name, members))
	}
	return parts, nil
}

// CenterVertex returns the member closest to the centroid; ties go to the
// lowest vertex id.
func (is *Island) CenterVertex() (int, error) {
	pts := make([]spatial.Point, len(is.Members))
	for i, mb := range is.Members {
		pts[i] = spatial.Point{ID: mb.Vertex, Pos: mb.Position}
	}
	ix, err := spatial.Build(pts)
	if err != nil {
		return 0, fmt.Errorf("island: center of %q: %w", is.Name, err)
	}
	return ix.Nearest(is.Centroid).ID, nil
}
