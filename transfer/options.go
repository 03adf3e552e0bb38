package transfer

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// Sentinel errors for transfer runs.
var (
	// ErrOptionViolation is returned by NewEngine when an invalid Option is supplied.
	ErrOptionViolation = errors.New("transfer: invalid option supplied")

	// ErrCommit is returned when the target mesh rejects an island's writes.
	// The island's earlier writes are rolled back.
	ErrCommit = errors.New("transfer: commit failed")

	// ErrRollback is returned, joined with ErrCommit, when undoing a
	// rejected commit also fails. The target may hold part of the island
	// and the run stops under either policy.
	ErrRollback = errors.New("transfer: rollback failed")

	// ErrAborted marks islands that were not processed because the run
	// stopped early.
	ErrAborted = errors.New("transfer: run aborted")
)

// DefaultDepth is the LocalSpread depth used by DefaultOptions.
const DefaultDepth = 8

// FailurePolicy selects how a run reacts to a failing island.
type FailurePolicy int

const (
	// SkipIsland records the failure in the report and continues with the
	// remaining islands.
	SkipIsland FailurePolicy = iota
	// AbortRun stops scheduling further islands and returns the error.
	// Empty groups are still skipped, never fatal.
	AbortRun
)

// String implements fmt.Stringer.
func (p FailurePolicy) String() string {
	switch p {
	case SkipIsland:
		return "skip"
	case AbortRun:
		return "abort"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// Option configures an Engine via functional arguments.
// Invalid options are recorded and surfaced as ErrOptionViolation by NewEngine.
type Option func(*Options)

// Options holds the tunables of an Engine.
type Options struct {
	// Spreader turns the nearest-vertex hits of an island into target weights.
	Spreader Spreader

	// Workers is the size of the island worker pool used by Run.
	Workers int

	// Policy decides between skip-and-report and abort on island failures.
	Policy FailurePolicy

	// Logger receives structured progress and skip records.
	Logger *slog.Logger

	// CandidateFilter restricts which target vertices are indexed and may
	// receive weight. nil admits every vertex.
	CandidateFilter func(v int) bool

	// SplitIslands transfers each contiguous patch of a group separately.
	SplitIslands bool

	// Progress is called by the writer after each island is settled.
	Progress func(done, total int)

	err error
}

// DefaultOptions returns LocalSpread{Depth: DefaultDepth}, one worker per
// CPU, SkipIsland, slog.Default and no candidate filter.
func DefaultOptions() Options {
	return Options{
		Spreader: LocalSpread{Depth: DefaultDepth},
		Workers:  runtime.GOMAXPROCS(0),
		Policy:   SkipIsland,
		Logger:   slog.Default(),
		Progress: func(int, int) {},
	}
}

// WithSpreader sets a custom strategy.
func WithSpreader(s Spreader) Option {
	return func(o *Options) {
		if s == nil {
			o.err = fmt.Errorf("%w: nil Spreader", ErrOptionViolation)
			return
		}
		o.Spreader = s
	}
}

// WithLocalSpread selects the bounded-BFS strategy with the given depth.
func WithLocalSpread(depth int) Option {
	return func(o *Options) {
		if depth < 0 {
			o.err = fmt.Errorf("%w: spread depth cannot be negative (%d)", ErrOptionViolation, depth)
			return
		}
		o.Spreader = LocalSpread{Depth: depth}
	}
}

// WithBarycentric selects the barycentric-interpolation strategy.
func WithBarycentric(b Barycentric) Option {
	return func(o *Options) {
		if b.PlaneTolerance < 0 {
			o.err = fmt.Errorf("%w: plane tolerance cannot be negative (%v)", ErrOptionViolation, b.PlaneTolerance)
			return
		}
		o.Spreader = b
	}
}

// WithWorkers sets the worker pool size (n ≥ 1).
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.err = fmt.Errorf("%w: workers must be ≥ 1 (%d)", ErrOptionViolation, n)
			return
		}
		o.Workers = n
	}
}

// WithPolicy sets the failure policy.
func WithPolicy(p FailurePolicy) Option {
	return func(o *Options) {
		if p != SkipIsland && p != AbortRun {
			o.err = fmt.Errorf("%w: unknown policy %v", ErrOptionViolation, p)
			return
		}
		o.Policy = p
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithCandidateFilter restricts the target vertices considered.
func WithCandidateFilter(keep func(v int) bool) Option {
	return func(o *Options) {
		o.CandidateFilter = keep
	}
}

// WithSplitIslands transfers each contiguous patch of a group on its own.
func WithSplitIslands(split bool) Option {
	return func(o *Options) {
		o.SplitIslands = split
	}
}

// WithProgress registers a callback run after each island is settled.
func WithProgress(fn func(done, total int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.Progress = fn
		}
	}
}
