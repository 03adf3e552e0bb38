// File: mesh.go
// Role: in-memory Accessor with vertex-group storage.
//
// Concurrency:
//   - Geometry is immutable after New.
//   - Vertex groups are guarded by mu; readers receive copies.
package mesh

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tiendc/go-deepcopy"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/meshweight/geom"
)

// Option configures a Mesh at construction.
type Option func(*Mesh)

// WithNormals sets per-vertex normals. Missing entries default to the zero vector.
func WithNormals(normals []r3.Vec) Option {
	return func(m *Mesh) {
		m.normals = normals
	}
}

// WithName labels the mesh for logs.
func WithName(name string) Option {
	return func(m *Mesh) {
		m.name = name
	}
}

// Mesh is a thread-safe in-memory Accessor.
type Mesh struct {
	name      string
	positions []r3.Vec
	normals   []r3.Vec
	edges     [][2]int

	mu     sync.RWMutex
	groups map[string]map[int]float64
}

// New creates a Mesh from positions and an edge list. Inputs are copied.
//
// Returns ErrNonFinite for NaN/Inf positions and ErrInvalidEdge for edges
// that are out of range or self-loops.
func New(positions []r3.Vec, edges [][2]int, opts ...Option) (*Mesh, error) {
	m := &Mesh{groups: make(map[string]map[int]float64)}
	for _, opt := range opts {
		opt(m)
	}
	n := len(positions)
	for i, p := range positions {
		if !geom.Finite(p) {
			return nil, fmt.Errorf("%w: position %d = %v", ErrNonFinite, i, p)
		}
	}
	for i, e := range edges {
		if e[0] < 0 || e[1] < 0 || e[0] >= n || e[1] >= n || e[0] == e[1] {
			return nil, fmt.Errorf("%w: edge %d (%d,%d) with %d vertices", ErrInvalidEdge, i, e[0], e[1], n)
		}
	}

	m.positions = append([]r3.Vec(nil), positions...)
	m.edges = append([][2]int(nil), edges...)
	normals := make([]r3.Vec, n)
	copy(normals, m.normals)
	m.normals = normals

	return m, nil
}

// Name returns the label given with WithName.
func (m *Mesh) Name() string { return m.name }

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.positions) }

// VertexPosition returns the position of vertex i.
func (m *Mesh) VertexPosition(i int) r3.Vec { return m.positions[i] }

// VertexNormal returns the normal of vertex i.
func (m *Mesh) VertexNormal(i int) r3.Vec { return m.normals[i] }

// Edges returns a copy of the edge list.
func (m *Mesh) Edges() [][2]int {
	return append([][2]int(nil), m.edges...)
}

// Attribute returns a copy of the named vertex group.
func (m *Mesh) Attribute(name string) (map[int]float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[name]
	if !ok {
		return nil, false
	}
	var out map[int]float64
	if err := deepcopy.Copy(&out, g); err != nil {
		return nil, false
	}
	if out == nil {
		out = map[int]float64{}
	}
	return out, true
}

// AttributeNames returns the vertex-group names in ascending order.
func (m *Mesh) AttributeNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.groups))
	for name := range m.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasAttribute reports whether the named vertex group exists.
func (m *Mesh) HasAttribute(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.groups[name]
	return ok
}

// AddAttribute creates an empty vertex group if it is missing (idempotent).
func (m *Mesh) AddAttribute(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[name]; !ok {
		m.groups[name] = make(map[int]float64)
	}
	return nil
}

// SetAttributeValue stores weight for vertex in the named group, creating
// the group if needed and replacing any previous value.
func (m *Mesh) SetAttributeValue(name string, vertex int, weight float64) error {
	if name == "" {
		return ErrEmptyName
	}
	if vertex < 0 || vertex >= len(m.positions) {
		return fmt.Errorf("%w: %d", ErrVertexOutOfRange, vertex)
	}
	if math.IsNaN(weight) || weight < 0 || weight > 1 {
		return fmt.Errorf("%w: %v at vertex %d", ErrWeightRange, weight, vertex)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[name]
	if !ok {
		g = make(map[int]float64)
		m.groups[name] = g
	}
	g[vertex] = weight
	return nil
}

// RemoveAttributeValue drops vertex from the named group. Missing entries are a no-op.
func (m *Mesh) RemoveAttributeValue(name string, vertex int) error {
	if vertex < 0 || vertex >= len(m.positions) {
		return fmt.Errorf("%w: %d", ErrVertexOutOfRange, vertex)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.groups[name]; ok {
		delete(g, vertex)
	}
	return nil
}

// RemoveAttribute deletes the named group. Missing groups are a no-op.
func (m *Mesh) RemoveAttribute(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, name)
	return nil
}

// SetAttribute replaces the named group with weights.
func (m *Mesh) SetAttribute(name string, weights map[int]float64) error {
	if name == "" {
		return ErrEmptyName
	}
	for v, w := range weights {
		if v < 0 || v >= len(m.positions) {
			return fmt.Errorf("%w: %d", ErrVertexOutOfRange, v)
		}
		if math.IsNaN(w) || w < 0 || w > 1 {
			return fmt.Errorf("%w: %v at vertex %d", ErrWeightRange, w, v)
		}
	}
	g := make(map[int]float64, len(weights))
	for v, w := range weights {
		g[v] = w
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[name] = g
	return nil
}
