// Package meshgraph derives an undirected adjacency structure from a mesh
// edge list and runs the two traversals weight transfer needs: connected
// components of a vertex subset, and bounded-depth breadth-first search.
//
// What:
//
//   - New validates the edge list and builds sorted neighbor lists.
//   - ConnectedComponents splits a vertex subset into contiguous patches
//     ("islands") using only edges inside the subset.
//   - BFSBounded spreads a seed vertex into its k-hop neighbourhood over
//     the full mesh, with optional neighbor filtering and a visit hook.
//   - Boundary lists the rim vertices of a subset.
//
// Determinism:
//
//	Neighbor lists are sorted ascending and components are emitted in the
//	order of their first vertex in the input subset, so identical inputs
//	produce identical outputs.
//
// Complexity (V = vertices, E = edges):
//
//   - New:                 O(V + E log d)
//   - ConnectedComponents: O(S + E_S) for a subset of size S
//   - BFSBounded:          O(V_k + E_k) for the visited neighbourhood
//
// Usage:
//
//	g, err := meshgraph.New(len(positions), edges)
//	patch, err := g.BFSBounded(seed, meshgraph.WithMaxDepth(8))
//	islands, err := g.ConnectedComponents(groupVertices)
//
// Errors:
//
//   - ErrInvalidEdge:      edge endpoint out of range, or a self-loop.
//   - ErrVertexOutOfRange: query vertex outside the graph.
//   - ErrOptionViolation:  invalid Option (negative MaxDepth).
package meshgraph
