package mesh

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/meshweight/geom"
	"github.com/katalvlaran/meshweight/meshgraph"
	"github.com/katalvlaran/meshweight/spatial"
)

// Snapshot is a plain-array copy of an Accessor's geometry, taken once per
// transfer so indexing never reads a live, mutable mesh.
type Snapshot struct {
	Positions []r3.Vec
	Normals   []r3.Vec
	Edges     [][2]int
}

// Capture copies positions, normals and edges out of a.
// Returns ErrNonFinite if a position is NaN or infinite.
func Capture(a Accessor) (*Snapshot, error) {
	n := a.VertexCount()
	s := &Snapshot{
		Positions: make([]r3.Vec, n),
		Normals:   make([]r3.Vec, n),
	}
	for i := 0; i < n; i++ {
		p := a.VertexPosition(i)
		if !geom.Finite(p) {
			return nil, fmt.Errorf("%w: position %d = %v", ErrNonFinite, i, p)
		}
		s.Positions[i] = p
		s.Normals[i] = a.VertexNormal(i)
	}
	if err := deepcopy.Copy(&s.Edges, a.Edges()); err != nil {
		return nil, fmt.Errorf("mesh: copy edges: %w", err)
	}

	return s, nil
}

// VertexCount returns the number of captured vertices.
func (s *Snapshot) VertexCount() int { return len(s.Positions) }

// Graph builds the adjacency of the captured edge list.
func (s *Snapshot) Graph() (*meshgraph.Graph, error) {
	return meshgraph.New(len(s.Positions), s.Edges)
}

// Points returns the captured vertices as index input, keeping only the
// vertices for which keep returns true. A nil keep selects every vertex.
func (s *Snapshot) Points(keep func(v int) bool) []spatial.Point {
	pts := make([]spatial.Point, 0, len(s.Positions))
	for i, p := range s.Positions {
		if keep != nil && !keep(i) {
			continue
		}
		pts = append(pts, spatial.Point{ID: i, Pos: p})
	}
	return pts
}

// CaptureAttribute returns a private copy of the named attribute of a.
// A *Mesh already hands out copies; other accessors are deep-copied.
func CaptureAttribute(a Accessor, name string) (map[int]float64, bool, error) {
	src, ok := a.Attribute(name)
	if !ok {
		return nil, false, nil
	}
	if _, own := a.(*Mesh); own {
		return src, true, nil
	}
	out := make(map[int]float64, len(src))
	if err := deepcopy.Copy(&out, src); err != nil {
		return nil, true, fmt.Errorf("mesh: copy attribute %q: %w", name, err)
	}
	return out, true, nil
}
