package meshgraph

import (
	"fmt"
	"sort"
)

// ConnectedComponents partitions subset into groups that are path-connected
// using only edges whose endpoints both lie in subset.
//
// Components are returned in the order their first vertex appears in subset;
// each component is sorted ascending. Duplicate ids in subset are ignored.
// Returns ErrVertexOutOfRange if any id is outside the graph.
//
// Time:   O(S + E_S), S = |subset|, E_S = edges incident to subset.
// Memory: O(S).
func (g *Graph) ConnectedComponents(subset []int) ([][]int, error) {
	member := make(map[int]bool, len(subset))
	for _, v := range subset {
		if !g.has(v) {
			return nil, fmt.Errorf("%w: %d", ErrVertexOutOfRange, v)
		}
		member[v] = true
	}

	seen := make(map[int]bool, len(member))
	var comps [][]int
	for _, seed := range subset {
		if seen[seed] {
			continue
		}
		// BFS restricted to the induced subgraph
		queue := []int{seed}
		seen[seed] = true
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			for _, w := range g.adj[u] {
				if member[w] && !seen[w] {
					seen[w] = true
					queue = append(queue, w)
				}
			}
		}
		sort.Ints(queue)
		comps = append(comps, queue)
	}
	return comps, nil
}

// Boundary returns the members of subset, ascending, that have at least one
// neighbor outside subset. These are the rim vertices of a patch.
func (g *Graph) Boundary(subset []int) ([]int, error) {
	member := make(map[int]bool, len(subset))
	for _, v := range subset {
		if !g.has(v) {
			return nil, fmt.Errorf("%w: %d", ErrVertexOutOfRange, v)
		}
		member[v] = true
	}
	var rim []int
	for v := range member {
		for _, w := range g.adj[v] {
			if !member[w] {
				rim = append(rim, v)
				break
			}
		}
	}
	sort.Ints(rim)
	return rim, nil
}
