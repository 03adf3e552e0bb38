package meshgraph

import "fmt"

// queueItem pairs a vertex with its hop count from the seed.
type queueItem struct {
	v     int
	depth int
}

// walker encapsulates mutable traversal state.
type walker struct {
	graph   *Graph
	opts    BFSOptions
	queue   []queueItem
	visited []bool
	res     *BFSResult
}

// BFSBounded returns every vertex reachable from seed within MaxDepth edge
// hops over the full mesh adjacency, seed included. A vertex is visited at
// most once, at the depth it was first reached.
//
// With no options MaxDepth is 0 and the result is {seed}. Results are
// monotonic: the set for depth k is a subset of the set for k+1.
//
// Returns ErrVertexOutOfRange for an invalid seed and ErrOptionViolation for
// bad options.
// Complexity: O(V_k + E_k) for the visited neighbourhood.
func (g *Graph) BFSBounded(seed int, opts ...Option) (*BFSResult, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if !g.has(seed) {
		return nil, fmt.Errorf("%w: seed %d", ErrVertexOutOfRange, seed)
	}

	w := &walker{
		graph:   g,
		opts:    o,
		queue:   make([]queueItem, 0, 16),
		visited: make([]bool, g.n),
		res: &BFSResult{
			Order: make([]int, 0, 16),
			Depth: make(map[int]int, 16),
		},
	}
	w.enqueue(seed, 0)
	w.loop()

	return w.res, nil
}

// Within is shorthand for BFSBounded with WithMaxDepth(maxDepth),
// returning the visit order only.
func (g *Graph) Within(seed, maxDepth int) ([]int, error) {
	res, err := g.BFSBounded(seed, WithMaxDepth(maxDepth))
	if err != nil {
		return nil, err
	}
	return res.Order, nil
}

// enqueue marks v visited at depth d and adds it to the queue.
func (w *walker) enqueue(v, d int) {
	w.visited[v] = true
	w.res.Depth[v] = d
	w.queue = append(w.queue, queueItem{v: v, depth: d})
}

// loop processes the queue until it is empty.
func (w *walker) loop() {
	for qi := 0; qi < len(w.queue); qi++ {
		item := w.queue[qi]
		w.res.Order = append(w.res.Order, item.v)
		w.opts.OnVisit(item.v, item.depth)
		w.enqueueNeighbors(item)
	}
}

// enqueueNeighbors applies filtering and MaxDepth and enqueues unseen neighbors.
func (w *walker) enqueueNeighbors(item queueItem) {
	next := item.depth + 1
	if next > w.opts.MaxDepth {
		return
	}
	for _, nbr := range w.graph.adj[item.v] {
		if w.visited[nbr] || !w.opts.FilterNeighbor(item.v, nbr) {
			continue
		}
		w.enqueue(nbr, next)
	}
}
