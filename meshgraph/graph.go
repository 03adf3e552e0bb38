package meshgraph

import (
	"fmt"
	"sort"
)

// Graph is the undirected vertex adjacency of a mesh. It is immutable once built.
type Graph struct {
	n   int
	adj [][]int
}

// New builds adjacency lists for vertexCount vertices from edges.
// Duplicate edges (in either orientation) are counted once, so the degree
// of a vertex equals its number of distinct incident edges. Neighbor lists
// are sorted ascending, which makes every traversal reproducible.
//
// Returns ErrInvalidEdge if an endpoint is negative, ≥ vertexCount,
// or the edge is a self-loop.
// Complexity: O(V + E log d), d = maximum degree.
func New(vertexCount int, edges []Edge) (*Graph, error) {
	if vertexCount < 0 {
		return nil, fmt.Errorf("%w: negative vertex count %d", ErrVertexOutOfRange, vertexCount)
	}
	adj := make([][]int, vertexCount)
	for i, e := range edges {
		a, b := e[0], e[1]
		if a < 0 || b < 0 || a >= vertexCount || b >= vertexCount {
			return nil, fmt.Errorf("%w: edge %d (%d,%d) outside [0,%d)", ErrInvalidEdge, i, a, b, vertexCount)
		}
		if a == b {
			return nil, fmt.Errorf("%w: edge %d is a self-loop on %d", ErrInvalidEdge, i, a)
		}
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}
	for v := range adj {
		adj[v] = sortedUnique(adj[v])
	}

	return &Graph{n: vertexCount, adj: adj}, nil
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return g.n }

// Neighbors returns the sorted neighbors of v. The slice must not be modified.
func (g *Graph) Neighbors(v int) ([]int, error) {
	if !g.has(v) {
		return nil, fmt.Errorf("%w: %d", ErrVertexOutOfRange, v)
	}
	return g.adj[v], nil
}

// Degree returns the number of distinct edges incident to v, or 0 if v is out of range.
func (g *Graph) Degree(v int) int {
	if !g.has(v) {
		return 0
	}
	return len(g.adj[v])
}

// EdgeCount returns the number of distinct undirected edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, nbrs := range g.adj {
		total += len(nbrs)
	}
	return total / 2
}

func (g *Graph) has(v int) bool { return v >= 0 && v < g.n }

func sortedUnique(s []int) []int {
	if len(s) < 2 {
		return s
	}
	sort.Ints(s)
	out := s[:1]
	for _, x := range s[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
