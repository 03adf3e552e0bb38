package transfer

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/meshweight/anchor"
	"github.com/katalvlaran/meshweight/geom"
	"github.com/katalvlaran/meshweight/island"
	"github.com/katalvlaran/meshweight/mesh"
	"github.com/katalvlaran/meshweight/meshgraph"
	"github.com/katalvlaran/meshweight/spatial"
)

// Job names one island transfer: a source group, the target group it is
// written to, and the anchor joints that relate the two meshes.
type Job struct {
	SourceAttribute string
	TargetAttribute string
	Anchor          anchor.Pair
}

// String implements fmt.Stringer.
func (j Job) String() string {
	return fmt.Sprintf("%s→%s@%s", j.SourceAttribute, j.TargetAttribute, j.Anchor)
}

// JobsForGroups returns one job per group of src, writing to the group of the
// same name and anchored on the joint of the same name.
func JobsForGroups(src mesh.AttributeLister) []Job {
	names := src.AttributeNames()
	jobs := make([]Job, len(names))
	for i, n := range names {
		jobs[i] = Job{SourceAttribute: n, TargetAttribute: n, Anchor: anchor.Same(n)}
	}
	return jobs
}

// Engine transfers weight islands from a source mesh onto target meshes.
// An Engine holds no per-run state and may be reused across calls.
type Engine struct {
	source   mesh.Accessor
	resolver *anchor.Resolver
	opts     Options
}

// NewEngine binds a source mesh and the two skeletons used for anchoring.
// Returns ErrOptionViolation if any option is invalid.
func NewEngine(source mesh.Accessor, sourceSkeleton, targetSkeleton mesh.SkeletonAccessor, opts ...Option) (*Engine, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: nil source mesh", ErrOptionViolation)
	}
	r := anchor.NewResolver(sourceSkeleton, targetSkeleton)
	r.Logger = o.Logger

	return &Engine{source: source, resolver: r, opts: o}, nil
}

// Options returns a copy of the engine's options.
func (e *Engine) Options() Options { return e.opts }

// task is one island, or one contiguous part of it, ready to plan.
type task struct {
	job       Job
	part      int
	island    *island.Island
	placement anchor.Placement
}

// plan is a fully resolved, not yet committed island.
type plan struct {
	task    task
	weights map[int]float64
	result  IslandResult
	skipped []SkippedVertex
}

// shared is the per-run target state read by every worker.
type shared struct {
	snapshot *mesh.Snapshot
	graph    *meshgraph.Graph
}

func capture(target mesh.Accessor) (*shared, error) {
	s, err := mesh.Capture(target)
	if err != nil {
		return nil, err
	}
	g, err := s.Graph()
	if err != nil {
		return nil, err
	}
	return &shared{snapshot: s, graph: g}, nil
}

// prepare extracts the job's island and resolves its placement. With
// SplitIslands set, each contiguous part becomes its own task; parts are
// numbered from 1, 0 meaning the whole group.
func (e *Engine) prepare(job Job, srcGraph *meshgraph.Graph) ([]task, error) {
	is, err := island.Extract(e.source, job.SourceAttribute)
	if err != nil {
		return nil, err
	}
	parts := []*island.Island{is}
	if e.opts.SplitIslands && srcGraph != nil {
		if parts, err = is.Split(srcGraph); err != nil {
			return nil, err
		}
	}
	tasks := make([]task, 0, len(parts))
	for i, p := range parts {
		pl, err := e.resolver.Resolve(job.Anchor, p.Centroid)
		if err != nil {
			return nil, err
		}
		part := 0
		if len(parts) > 1 {
			part = i + 1
		}
		tasks = append(tasks, task{job: job, part: part, island: p, placement: pl})
	}
	return tasks, nil
}

// sourceGraph returns the source adjacency when islands are split.
func (e *Engine) sourceGraph() (*meshgraph.Graph, error) {
	if !e.opts.SplitIslands {
		return nil, nil
	}
	s, err := mesh.Capture(e.source)
	if err != nil {
		return nil, fmt.Errorf("transfer: capture source: %w", err)
	}
	return s.Graph()
}

// plan indexes the target, queries every member and spreads the hits.
// It only reads; nothing is written to the target.
func (e *Engine) plan(t task, sh *shared) (*plan, error) {
	ix, err := spatial.Build(sh.snapshot.Points(e.opts.CandidateFilter))
	if err != nil {
		return nil, fmt.Errorf("index target for %q: %w", t.job.SourceAttribute, err)
	}
	view := &Target{Snapshot: sh.snapshot, Graph: sh.graph, Index: ix, Keep: e.opts.CandidateFilter}

	hits := make([]Hit, 0, t.island.Len())
	var skipped []SkippedVertex
	for _, mb := range t.island.Members {
		q := r3.Add(t.placement.TargetCentroid, mb.Offset)
		if !geom.Finite(q) {
			skipped = append(skipped, SkippedVertex{Source: t.job.SourceAttribute, Vertex: mb.Vertex})
			continue
		}
		h := ix.Nearest(q)
		hits = append(hits, Hit{Member: mb.Vertex, Point: q, Vertex: h.ID, Distance: h.Distance, Weight: mb.Weight})
	}

	patch, err := e.opts.Spreader.Spread(view, hits)
	if err != nil {
		return nil, fmt.Errorf("spread %q: %w", t.job.SourceAttribute, err)
	}

	return &plan{
		task:    t,
		weights: patch.Weights,
		skipped: skipped,
		result: IslandResult{
			Source:           t.job.SourceAttribute,
			Target:           t.job.TargetAttribute,
			Part:             t.part,
			Strategy:         e.opts.Spreader.Name(),
			Members:          t.island.Len(),
			Fallback:         patch.Fallback,
			DegenerateAnchor: t.placement.Degenerate,
		},
	}, nil
}

// TransferIsland places an already extracted island on target through pair
// and writes it to targetAttribute. The write is all-or-nothing.
func (e *Engine) TransferIsland(is *island.Island, pair anchor.Pair, target mesh.Accessor, targetAttribute string) (*Report, error) {
	sh, err := capture(target)
	if err != nil {
		return nil, fmt.Errorf("transfer: capture target: %w", err)
	}
	pl, err := e.resolver.Resolve(pair, is.Centroid)
	if err != nil {
		return nil, err
	}
	job := Job{SourceAttribute: is.Name, TargetAttribute: targetAttribute, Anchor: pair}
	p, err := e.plan(task{job: job, island: is, placement: pl}, sh)
	if err != nil {
		return nil, err
	}
	n, err := commit(target, targetAttribute, p.weights)
	if err != nil {
		return nil, err
	}
	p.result.Written = n

	rep := &Report{}
	rep.addIsland(p.result, p.skipped)
	e.logIsland(p.result)
	return rep, nil
}

// Transfer runs a single job against target. Failures are returned, not
// skipped; an empty group is reported as a skip with a nil error.
func (e *Engine) Transfer(job Job, target mesh.Accessor) (*Report, error) {
	rep, err := e.Run([]Job{job}, target)
	if err != nil {
		return rep, err
	}
	for _, s := range rep.Skipped {
		if !errors.Is(s.Err, island.ErrEmptyGroup) {
			return rep, s.Err
		}
	}
	return rep, nil
}

func (e *Engine) logIsland(r IslandResult) {
	e.opts.Logger.Debug("island transferred",
		slog.String("source", r.Source),
		slog.String("target", r.Target),
		slog.Int("part", r.Part),
		slog.String("strategy", r.Strategy),
		slog.Int("members", r.Members),
		slog.Int("written", r.Written),
		slog.Bool("fallback", r.Fallback))
}

func (e *Engine) logSkip(job Job, part int, err error) {
	e.opts.Logger.Warn("island skipped",
		slog.String("source", job.SourceAttribute),
		slog.String("target", job.TargetAttribute),
		slog.Int("part", part),
		slog.Any("err", err))
}
