// Package transfer moves weight islands from a source mesh onto a target mesh
// with a different vertex layout.
//
// For every job the engine extracts the source island, places its centroid
// on the target through an anchor joint present on both skeletons, and
// queries the target for the vertex nearest each member's offset from that
// estimate. A Spreader then turns the hits into final target weights.
//
// Strategies:
//
//   - LocalSpread{Depth}: every hit vertex is grown into its Depth-hop mesh
//     neighborhood and each vertex reached takes the hit's weight.
//   - Barycentric{}: the hit vertices are fan-triangulated from the first
//     one, and target vertices inside a triangle get the barycentric blend
//     of the corner weights. Fewer than three distinct hits, or only
//     degenerate triangles, fall back to direct assignment.
//
// Writes:
//
//	Weights replace existing values, never accumulate, so repeating a
//	transfer with identical inputs leaves the target unchanged. Each island
//	is committed only after all of its weights are resolved; if the target
//	rejects a write the island's earlier writes are rolled back.
//
// Concurrency:
//
//	Run plans islands on a pool of Options.Workers goroutines
//	(golang.org/x/sync/errgroup). Planning only reads a snapshot of the
//	target taken once per run. One writer goroutine commits plans in job
//	order, so islands overlapping on the same target attribute resolve to
//	the later job.
//
// Failures:
//
//	SkipIsland (default) records a failing island in Report.Skipped and
//	carries on. AbortRun stops at the first failure in job order: islands
//	before it are committed, islands after it are reported as ErrAborted.
//	Empty groups are skipped under both policies. A rejected commit is
//	rolled back; if the rollback fails too, the run stops regardless of
//	policy.
//
// Usage:
//
//	e, err := transfer.NewEngine(src, srcSkeleton, dstSkeleton,
//	    transfer.WithLocalSpread(8),
//	    transfer.WithWorkers(4),
//	)
//	rep, err := e.Run(transfer.JobsForGroups(src), dst)
//
// Errors:
//
//   - ErrOptionViolation: invalid Option passed to NewEngine.
//   - ErrCommit:          the target rejected a write.
//   - ErrRollback:        a rejected commit could not be undone.
//   - ErrAborted:         island not processed after the run stopped.
//   - island.ErrEmptyGroup, anchor.ErrAnchorNotFound, spatial.ErrEmptyInput
//     are reported per island.
package transfer
