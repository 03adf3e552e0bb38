package transfer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/meshweight/island"
	"github.com/katalvlaran/meshweight/mesh"
)

// outcome is what a worker hands to the writer for one task.
type outcome struct {
	seq  int
	task task
	plan *plan
	err  error
}

// Run transfers every job onto target.
//
// Islands are extracted and anchored up front, then planned concurrently by a
// pool of Options.Workers goroutines. A single writer commits finished plans
// in job order, so islands that overlap on a target attribute resolve to the
// later job and a run is deterministic. Each island commits all of its writes
// or none.
//
// Under SkipIsland, failing islands are recorded in Report.Skipped and the
// run continues. Under AbortRun, the first failure in job order stops the
// run and is returned along with the report of what was committed before
// it. Empty groups are skipped under both policies. A commit whose rollback
// fails stops the run under either policy and its ErrRollback is returned.
func (e *Engine) Run(jobs []Job, target mesh.Accessor) (*Report, error) {
	rep := &Report{}
	sh, err := capture(target)
	if err != nil {
		return rep, fmt.Errorf("transfer: capture target: %w", err)
	}
	srcGraph, err := e.sourceGraph()
	if err != nil {
		return rep, err
	}

	var tasks []task
	for _, job := range jobs {
		ts, err := e.prepare(job, srcGraph)
		if err == nil {
			tasks = append(tasks, ts...)
			continue
		}
		if e.opts.Policy == AbortRun && !errors.Is(err, island.ErrEmptyGroup) {
			e.opts.Logger.Error("transfer aborted", slog.String("job", job.String()), slog.Any("err", err))
			return rep, err
		}
		rep.addSkip(job, 0, err)
		e.logSkip(job, 0, err)
	}

	err = e.execute(tasks, sh, target, rep)
	e.opts.Logger.Info("transfer finished",
		slog.Int("jobs", len(jobs)),
		slog.Int("islands", len(rep.Islands)),
		slog.Int("skipped", len(rep.Skipped)),
		slog.Int("written", rep.VerticesWritten))
	return rep, err
}

// cutoff is the lowest task sequence number that stopped the run. Tasks
// after it are not planned; tasks before it always are.
type cutoff struct{ seq atomic.Int64 }

func newCutoff(total int) *cutoff {
	c := &cutoff{}
	c.seq.Store(int64(total))
	return c
}

func (c *cutoff) lower(seq int) {
	for {
		cur := c.seq.Load()
		if int64(seq) >= cur || c.seq.CompareAndSwap(cur, int64(seq)) {
			return
		}
	}
}

func (c *cutoff) after(seq int) bool { return int64(seq) > c.seq.Load() }

// execute plans tasks on the worker pool and commits them through one writer.
func (e *Engine) execute(tasks []task, sh *shared, target mesh.Accessor, rep *Report) error {
	if len(tasks) == 0 {
		return nil
	}
	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	stop := newCutoff(len(tasks))

	results := make(chan outcome, len(tasks))
	var (
		wg       sync.WaitGroup
		writeErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		writeErr = e.write(results, len(tasks), target, rep, stop)
	}()

	for i, t := range tasks {
		g.Go(func() error {
			if stop.after(i) {
				results <- outcome{seq: i, task: t, err: ErrAborted}
				return nil
			}
			p, err := e.plan(t, sh)
			if err != nil && e.opts.Policy == AbortRun {
				stop.lower(i)
			}
			results <- outcome{seq: i, task: t, plan: p, err: err}
			return nil
		})
	}
	// workers report through results; the writer owns the run error
	_ = g.Wait()
	close(results)
	wg.Wait()
	return writeErr
}

// write is the single writer. It buffers outcomes until the next one in job
// order is available and commits them in sequence.
func (e *Engine) write(results <-chan outcome, total int, target mesh.Accessor, rep *Report, stop *cutoff) error {
	pending := make(map[int]outcome, total)
	next := 0
	var failed error

	halt := func(seq int, err error) {
		failed = err
		stop.lower(seq)
	}
	settle := func(seq int, o outcome) {
		switch {
		case failed != nil:
			rep.addSkip(o.task.job, o.task.part, ErrAborted)
		case o.err != nil:
			rep.addSkip(o.task.job, o.task.part, o.err)
			e.logSkip(o.task.job, o.task.part, o.err)
			if e.opts.Policy == AbortRun && !errors.Is(o.err, ErrAborted) {
				halt(seq, o.err)
			}
		default:
			n, err := commit(target, o.task.job.TargetAttribute, o.plan.weights)
			if err != nil {
				rep.addSkip(o.task.job, o.task.part, err)
				e.logSkip(o.task.job, o.task.part, err)
				if e.opts.Policy == AbortRun || errors.Is(err, ErrRollback) {
					halt(seq, err)
				}
				break
			}
			o.plan.result.Written = n
			rep.addIsland(o.plan.result, o.plan.skipped)
			e.logIsland(o.plan.result)
		}
		e.opts.Progress(seq+1, total)
	}

	for o := range results {
		pending[o.seq] = o
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			settle(next, ready)
			next++
		}
	}
	if failed != nil {
		e.opts.Logger.Error("transfer aborted", slog.Any("err", failed))
	}
	return failed
}

// commit writes weights to attribute name on target in ascending vertex
// order. If the target rejects a write, the island is rolled back and
// ErrCommit is returned, joined with ErrRollback when the rollback fails.
func commit(target mesh.Accessor, name string, weights map[int]float64) (int, error) {
	n := target.VertexCount()
	vertices := make([]int, 0, len(weights))
	for v, w := range weights {
		if v < 0 || v >= n {
			return 0, fmt.Errorf("%w: %q vertex %d out of range", ErrCommit, name, v)
		}
		if math.IsNaN(w) || w < 0 || w > 1 {
			return 0, fmt.Errorf("%w: %q vertex %d weight %v", ErrCommit, name, v, w)
		}
		vertices = append(vertices, v)
	}
	sort.Ints(vertices)

	prev, existed, err := mesh.CaptureAttribute(target, name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCommit, err)
	}
	for i, v := range vertices {
		if err := target.SetAttributeValue(name, v, weights[v]); err != nil {
			cerr := fmt.Errorf("%w: %q vertex %d: %v", ErrCommit, name, v, err)
			if rerr := rollback(target, name, vertices[:i], prev, existed); rerr != nil {
				return 0, errors.Join(cerr, rerr)
			}
			return 0, cerr
		}
	}
	return len(vertices), nil
}

// rollback restores done to the values in prev. Vertices that had no value
// are removed when the target supports it and zeroed otherwise, since a
// zero weight is not membership. An attribute the commit created is
// deleted when the target supports it.
func rollback(target mesh.Accessor, name string, done []int, prev map[int]float64, existed bool) error {
	remover, canRemove := target.(mesh.AttributeValueRemover)
	var errs []error
	for _, v := range done {
		var err error
		switch old, ok := prev[v]; {
		case ok:
			err = target.SetAttributeValue(name, v, old)
		case canRemove:
			err = remover.RemoveAttributeValue(name, v)
		default:
			err = target.SetAttributeValue(name, v, 0)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("vertex %d: %w", v, err))
		}
	}
	if !existed && len(errs) == 0 {
		if r, ok := target.(mesh.AttributeRemover); ok {
			if err := r.RemoveAttribute(name); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %q: %w", ErrRollback, name, errors.Join(errs...))
	}
	return nil
}
