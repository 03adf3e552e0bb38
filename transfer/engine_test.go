package transfer_test

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/meshweight/anchor"
	"github.com/katalvlaran/meshweight/island"
	"github.com/katalvlaran/meshweight/mesh"
	"github.com/katalvlaran/meshweight/transfer"
)

var shift = r3.Vec{X: 10}

// EngineSuite transfers groups from a cube at the origin onto a copy of it
// translated by shift, anchored on a joint at the cube centre.
type EngineSuite struct {
	suite.Suite
	src    *mesh.Mesh
	dst    *mesh.Mesh
	srcSk  *mesh.Skeleton
	dstSk  *mesh.Skeleton
	logger *slog.Logger
}

func (s *EngineSuite) SetupTest() {
	var err error
	s.src, err = mesh.Cube(r3.Vec{}, 1, mesh.WithName("source"))
	require.NoError(s.T(), err)
	s.dst, err = mesh.Cube(shift, 1, mesh.WithName("target"))
	require.NoError(s.T(), err)
	s.srcSk, err = mesh.NewSkeleton(map[string]r3.Vec{"Root": {}, "Top": {Z: 1}})
	require.NoError(s.T(), err)
	s.dstSk = s.srcSk.Translated(shift)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *EngineSuite) engine(opts ...transfer.Option) *transfer.Engine {
	e, err := transfer.NewEngine(s.src, s.srcSk, s.dstSk, append([]transfer.Option{transfer.WithLogger(s.logger)}, opts...)...)
	require.NoError(s.T(), err)
	return e
}

func (s *EngineSuite) attr(name string) map[int]float64 {
	w, _ := s.dst.Attribute(name)
	return w
}

// TestCubeEndToEnd: two adjacent vertices land on the same two target vertices.
func (s *EngineSuite) TestCubeEndToEnd() {
	require.NoError(s.T(), s.src.SetAttribute("G", map[int]float64{0: 1, 1: 1}))
	e := s.engine(transfer.WithLocalSpread(0))

	rep, err := e.Run([]transfer.Job{{SourceAttribute: "G", TargetAttribute: "G", Anchor: anchor.Same("Root")}}, s.dst)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 2, rep.VerticesWritten)
	require.Empty(s.T(), rep.Skipped)
	require.Equal(s.T(), map[int]float64{0: 1, 1: 1}, s.attr("G"))
}

// TestLocalSpreadDepth: depth 1 reaches the three cube neighbors.
func (s *EngineSuite) TestLocalSpreadDepth() {
	require.NoError(s.T(), s.src.SetAttributeValue("G", 6, 0.4))
	e := s.engine(transfer.WithLocalSpread(1))

	rep, err := e.Transfer(transfer.Job{SourceAttribute: "G", TargetAttribute: "H", Anchor: anchor.Same("Top")}, s.dst)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 4, rep.VerticesWritten)
	require.Equal(s.T(), map[int]float64{2: 0.4, 5: 0.4, 6: 0.4, 7: 0.4}, s.attr("H"))
}

// TestSingleVertexDepthZero: one member, one write.
func (s *EngineSuite) TestSingleVertexDepthZero() {
	require.NoError(s.T(), s.src.SetAttributeValue("One", 3, 0.7))
	e := s.engine(transfer.WithLocalSpread(0))

	rep, err := e.Transfer(transfer.Job{SourceAttribute: "One", TargetAttribute: "One", Anchor: anchor.Same("Root")}, s.dst)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, rep.VerticesWritten)
	require.Equal(s.T(), map[int]float64{3: 0.7}, s.attr("One"))
}

// TestEmptyGroupSkipped: no crash, the other job still runs.
func (s *EngineSuite) TestEmptyGroupSkipped() {
	require.NoError(s.T(), s.src.SetAttribute("Empty", map[int]float64{0: 0}))
	require.NoError(s.T(), s.src.SetAttributeValue("G", 0, 1))
	e := s.engine(transfer.WithLocalSpread(0), transfer.WithPolicy(transfer.AbortRun))

	rep, err := e.Run([]transfer.Job{
		{SourceAttribute: "Empty", TargetAttribute: "Empty", Anchor: anchor.Same("Root")},
		{SourceAttribute: "G", TargetAttribute: "G", Anchor: anchor.Same("Root")},
	}, s.dst)
	require.NoError(s.T(), err)
	require.Equal(s.T(), []string{"Empty"}, rep.SkippedNames())
	require.ErrorIs(s.T(), rep.Skipped[0].Err, island.ErrEmptyGroup)
	require.Equal(s.T(), 1, rep.VerticesWritten)
	require.False(s.T(), s.dst.HasAttribute("Empty"))

	rep, err = e.Transfer(transfer.Job{SourceAttribute: "Empty", TargetAttribute: "Empty", Anchor: anchor.Same("Root")}, s.dst)
	require.NoError(s.T(), err)
	require.Len(s.T(), rep.Skipped, 1)
}

// TestMissingAnchorIsolated: under the default policy only that island is skipped.
func (s *EngineSuite) TestMissingAnchorIsolated() {
	require.NoError(s.T(), s.src.SetAttributeValue("A", 0, 1))
	require.NoError(s.T(), s.src.SetAttributeValue("B", 7, 0.5))
	e := s.engine(transfer.WithLocalSpread(0))

	rep, err := e.Run([]transfer.Job{
		{SourceAttribute: "A", TargetAttribute: "A", Anchor: anchor.Same("Hips")},
		{SourceAttribute: "B", TargetAttribute: "B", Anchor: anchor.Same("Root")},
	}, s.dst)
	require.NoError(s.T(), err)
	require.Equal(s.T(), []string{"A"}, rep.SkippedNames())
	require.ErrorIs(s.T(), rep.Err(), anchor.ErrAnchorNotFound)
	require.Equal(s.T(), map[int]float64{7: 0.5}, s.attr("B"))
	require.False(s.T(), s.dst.HasAttribute("A"))
}

// TestAbortPolicy: the missing anchor stops the run before anything is written.
func (s *EngineSuite) TestAbortPolicy() {
	require.NoError(s.T(), s.src.SetAttributeValue("A", 0, 1))
	require.NoError(s.T(), s.src.SetAttributeValue("B", 7, 0.5))
	e := s.engine(transfer.WithPolicy(transfer.AbortRun))

	rep, err := e.Run([]transfer.Job{
		{SourceAttribute: "B", TargetAttribute: "B", Anchor: anchor.Same("Root")},
		{SourceAttribute: "A", TargetAttribute: "A", Anchor: anchor.Same("Hips")},
	}, s.dst)
	require.ErrorIs(s.T(), err, anchor.ErrAnchorNotFound)
	require.Zero(s.T(), rep.VerticesWritten)
	require.False(s.T(), s.dst.HasAttribute("B"))
}

// TestIdempotent: a second identical run leaves the target unchanged.
func (s *EngineSuite) TestIdempotent() {
	require.NoError(s.T(), s.src.SetAttribute("G", map[int]float64{0: 1, 1: 0.5, 2: 0.25}))
	jobs := []transfer.Job{{SourceAttribute: "G", TargetAttribute: "G", Anchor: anchor.Same("Root")}}
	e := s.engine(transfer.WithLocalSpread(1))

	_, err := e.Run(jobs, s.dst)
	require.NoError(s.T(), err)
	first := s.attr("G")
	_, err = e.Run(jobs, s.dst)
	require.NoError(s.T(), err)
	require.Equal(s.T(), first, s.attr("G"))
}

// TestIdempotentBarycentric: the same holds for the barycentric fill.
func (s *EngineSuite) TestIdempotentBarycentric() {
	require.NoError(s.T(), s.src.SetAttribute("G", map[int]float64{0: 1, 1: 0.5, 2: 0.25}))
	jobs := []transfer.Job{{SourceAttribute: "G", TargetAttribute: "G", Anchor: anchor.Same("Root")}}
	e := s.engine(transfer.WithBarycentric(transfer.Barycentric{PlaneTolerance: 0.1}), transfer.WithWorkers(2))

	rep, err := e.Run(jobs, s.dst)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "barycentric", rep.Islands[0].Strategy)
	first := s.attr("G")
	require.Equal(s.T(), map[int]float64{0: 1, 1: 0.5, 2: 0.25}, first)

	rep, err = e.Run(jobs, s.dst)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 3, rep.VerticesWritten)
	require.Equal(s.T(), first, s.attr("G"))
}

// TestOverlapFollowsJobOrder: islands sharing a target attribute resolve to the later job.
func (s *EngineSuite) TestOverlapFollowsJobOrder() {
	require.NoError(s.T(), s.src.SetAttributeValue("A", 0, 0.2))
	require.NoError(s.T(), s.src.SetAttributeValue("B", 0, 0.9))
	jobs := []transfer.Job{
		{SourceAttribute: "A", TargetAttribute: "T", Anchor: anchor.Same("Root")},
		{SourceAttribute: "B", TargetAttribute: "T", Anchor: anchor.Same("Root")},
	}
	e := s.engine(transfer.WithLocalSpread(1), transfer.WithWorkers(4))

	for i := 0; i < 20; i++ {
		_, err := e.Run(jobs, s.dst)
		require.NoError(s.T(), err)
		require.Equal(s.T(), map[int]float64{0: 0.9, 1: 0.9, 3: 0.9, 4: 0.9}, s.attr("T"))
	}
}

// TestCandidateFilter: an excluded vertex never receives weight.
func (s *EngineSuite) TestCandidateFilter() {
	require.NoError(s.T(), s.src.SetAttributeValue("G", 0, 1))
	topOnly := func(v int) bool { return v >= 4 }
	e := s.engine(transfer.WithLocalSpread(2), transfer.WithCandidateFilter(topOnly))

	_, err := e.Transfer(transfer.Job{SourceAttribute: "G", TargetAttribute: "G", Anchor: anchor.Same("Root")}, s.dst)
	require.NoError(s.T(), err)
	// nearest admitted vertex is 4; the spread stays on the top face
	require.Equal(s.T(), map[int]float64{4: 1, 5: 1, 6: 1, 7: 1}, s.attr("G"))
}

// rejecting refuses writes to one vertex.
type rejecting struct {
	*mesh.Mesh
	vertex int
}

func (r rejecting) SetAttributeValue(name string, vertex int, weight float64) error {
	if vertex == r.vertex {
		return errors.New("locked vertex")
	}
	return r.Mesh.SetAttributeValue(name, vertex, weight)
}

// TestCommitRollback: a rejected write restores earlier writes of the island.
func (s *EngineSuite) TestCommitRollback() {
	require.NoError(s.T(), s.dst.SetAttributeValue("G", 0, 0.3))
	require.NoError(s.T(), s.src.SetAttributeValue("G", 0, 1))
	e := s.engine(transfer.WithLocalSpread(1))

	rep, err := e.Run([]transfer.Job{{SourceAttribute: "G", TargetAttribute: "G", Anchor: anchor.Same("Root")}}, rejecting{s.dst, 3})
	require.NoError(s.T(), err)
	require.Len(s.T(), rep.Skipped, 1)
	require.ErrorIs(s.T(), rep.Skipped[0].Err, transfer.ErrCommit)
	require.Zero(s.T(), rep.VerticesWritten)
	require.Equal(s.T(), map[int]float64{0: 0.3}, s.attr("G"))
}

// TestCommitRollback_NewAttribute: an attribute created by a failed commit is removed.
func (s *EngineSuite) TestCommitRollback_NewAttribute() {
	require.NoError(s.T(), s.src.SetAttributeValue("G", 0, 1))
	e := s.engine(transfer.WithLocalSpread(1))

	rep, err := e.Run([]transfer.Job{{SourceAttribute: "G", TargetAttribute: "G", Anchor: anchor.Same("Root")}}, rejecting{s.dst, 3})
	require.NoError(s.T(), err)
	require.ErrorIs(s.T(), rep.Skipped[0].Err, transfer.ErrCommit)
	require.False(s.T(), s.dst.HasAttribute("G"))
}

// hostOnly exposes nothing beyond mesh.Accessor: no removers. Writes that
// reject reports are refused.
type hostOnly struct {
	m      *mesh.Mesh
	reject func(vertex int, weight float64) bool
}

func (h hostOnly) VertexCount() int { return h.m.VertexCount() }

func (h hostOnly) VertexPosition(i int) r3.Vec { return h.m.VertexPosition(i) }

func (h hostOnly) VertexNormal(i int) r3.Vec { return h.m.VertexNormal(i) }

func (h hostOnly) Edges() [][2]int { return h.m.Edges() }

func (h hostOnly) Attribute(name string) (map[int]float64, bool) { return h.m.Attribute(name) }

func (h hostOnly) SetAttributeValue(name string, vertex int, weight float64) error {
	if h.reject(vertex, weight) {
		return errors.New("locked vertex")
	}
	return h.m.SetAttributeValue(name, vertex, weight)
}

// TestCommitRollback_HostOnly: without removers, undone writes are zeroed
// so the island leaves no members behind.
func (s *EngineSuite) TestCommitRollback_HostOnly() {
	require.NoError(s.T(), s.src.SetAttributeValue("G", 0, 1))
	host := hostOnly{m: s.dst, reject: func(v int, _ float64) bool { return v == 3 }}
	e := s.engine(transfer.WithLocalSpread(1))

	rep, err := e.Run([]transfer.Job{{SourceAttribute: "G", TargetAttribute: "G", Anchor: anchor.Same("Root")}}, host)
	require.NoError(s.T(), err)
	require.Len(s.T(), rep.Skipped, 1)
	require.ErrorIs(s.T(), rep.Skipped[0].Err, transfer.ErrCommit)
	require.NotErrorIs(s.T(), rep.Skipped[0].Err, transfer.ErrRollback)
	require.Zero(s.T(), rep.VerticesWritten)
	require.Equal(s.T(), map[int]float64{0: 0, 1: 0}, s.attr("G"))
	_, err = island.Extract(host, "G")
	require.ErrorIs(s.T(), err, island.ErrEmptyGroup)
}

// TestCommitRollback_RestoreFails: a rollback the host refuses stops the run
// even under SkipIsland.
func (s *EngineSuite) TestCommitRollback_RestoreFails() {
	require.NoError(s.T(), s.src.SetAttributeValue("G", 0, 1))
	require.NoError(s.T(), s.src.SetAttributeValue("H", 7, 0.5))
	host := hostOnly{m: s.dst, reject: func(v int, w float64) bool { return v == 3 || w == 0 }}
	e := s.engine(transfer.WithLocalSpread(1))

	rep, err := e.Run([]transfer.Job{
		{SourceAttribute: "G", TargetAttribute: "G", Anchor: anchor.Same("Root")},
		{SourceAttribute: "H", TargetAttribute: "H", Anchor: anchor.Same("Root")},
	}, host)
	require.ErrorIs(s.T(), err, transfer.ErrRollback)
	require.ErrorIs(s.T(), err, transfer.ErrCommit)
	require.Equal(s.T(), []string{"G", "H"}, rep.SkippedNames())
	require.ErrorIs(s.T(), rep.Skipped[0].Err, transfer.ErrRollback)
	require.ErrorIs(s.T(), rep.Skipped[1].Err, transfer.ErrAborted)
	require.Zero(s.T(), rep.VerticesWritten)
	require.False(s.T(), s.dst.HasAttribute("H"))
}

var errGate = errors.New("gate closed")

// gate fails islands whose first hit carries weight fail. Every other
// island waits for that failure before it finishes planning.
type gate struct {
	fail   float64
	failed chan struct{}
	once   *sync.Once
}

func newGate(fail float64) gate {
	return gate{fail: fail, failed: make(chan struct{}), once: &sync.Once{}}
}

func (g gate) Name() string { return "gate" }

func (g gate) Spread(_ *transfer.Target, hits []transfer.Hit) (transfer.Patch, error) {
	if len(hits) > 0 && hits[0].Weight == g.fail {
		g.once.Do(func() { close(g.failed) })
		return transfer.Patch{}, errGate
	}
	<-g.failed
	w := make(map[int]float64, len(hits))
	for _, h := range hits {
		w[h.Vertex] = h.Weight
	}
	return transfer.Patch{Weights: w}, nil
}

// TestAbortKeepsEarlierIslands: islands before the failing job commit even
// when they finish planning after it failed; islands after it do not.
func (s *EngineSuite) TestAbortKeepsEarlierIslands() {
	groups := []struct {
		name   string
		vertex int
		weight float64
	}{{"A", 0, 0.1}, {"B", 1, 0.9}, {"C", 2, 0.3}, {"D", 4, 0.4}}
	jobs := make([]transfer.Job, 0, len(groups))
	for _, g := range groups {
		require.NoError(s.T(), s.src.SetAttributeValue(g.name, g.vertex, g.weight))
		jobs = append(jobs, transfer.Job{SourceAttribute: g.name, TargetAttribute: g.name, Anchor: anchor.Same("Root")})
	}

	for i := 0; i < 20; i++ {
		e := s.engine(transfer.WithSpreader(newGate(0.9)), transfer.WithWorkers(2), transfer.WithPolicy(transfer.AbortRun))
		rep, err := e.Run(jobs, s.dst)
		require.ErrorIs(s.T(), err, errGate)
		require.Equal(s.T(), []string{"B", "C", "D"}, rep.SkippedNames())
		require.ErrorIs(s.T(), rep.Skipped[1].Err, transfer.ErrAborted)
		require.ErrorIs(s.T(), rep.Skipped[2].Err, transfer.ErrAborted)
		require.Len(s.T(), rep.Islands, 1)
		require.Equal(s.T(), map[int]float64{0: 0.1}, s.attr("A"))
		require.False(s.T(), s.dst.HasAttribute("C"))
		require.False(s.T(), s.dst.HasAttribute("D"))
	}
}

// TestProgress: one call per island, in order.
func (s *EngineSuite) TestProgress() {
	for _, g := range []string{"A", "B", "C"} {
		require.NoError(s.T(), s.src.SetAttributeValue(g, 0, 1))
	}
	var calls [][2]int
	e := s.engine(transfer.WithWorkers(2), transfer.WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))

	rep, err := e.Run(transfer.JobsForGroups(s.src), s.dst)
	require.NoError(s.T(), err)
	// Root is missing from the job list: A, B and C anchor on themselves
	require.Len(s.T(), rep.Skipped, 3)
	require.Equal(s.T(), [][2]int(nil), calls)

	s.srcSk = mustSkeleton(s.T(), map[string]r3.Vec{"A": {}, "B": {}, "C": {}})
	s.dstSk = s.srcSk.Translated(shift)
	e = s.engine(transfer.WithWorkers(2), transfer.WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))
	rep, err = e.Run(transfer.JobsForGroups(s.src), s.dst)
	require.NoError(s.T(), err)
	require.Empty(s.T(), rep.Skipped)
	require.Equal(s.T(), [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
	require.Equal(s.T(), []string{"A", "B", "C"}, []string{rep.Islands[0].Source, rep.Islands[1].Source, rep.Islands[2].Source})
}

// TestTransferIsland works on a pre-extracted island.
func (s *EngineSuite) TestTransferIsland() {
	require.NoError(s.T(), s.src.SetAttribute("G", map[int]float64{4: 1, 5: 1}))
	is, err := island.Extract(s.src, "G")
	require.NoError(s.T(), err)
	e := s.engine(transfer.WithLocalSpread(0))

	rep, err := e.TransferIsland(is, anchor.Pair{Source: "Root", Target: "Root"}, s.dst, "Copy")
	require.NoError(s.T(), err)
	require.Equal(s.T(), 2, rep.VerticesWritten)
	require.Equal(s.T(), map[int]float64{4: 1, 5: 1}, s.attr("Copy"))

	_, err = e.TransferIsland(is, anchor.Same("Nope"), s.dst, "Copy")
	require.ErrorIs(s.T(), err, anchor.ErrAnchorNotFound)
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func mustSkeleton(t *testing.T, joints map[string]r3.Vec) *mesh.Skeleton {
	t.Helper()
	sk, err := mesh.NewSkeleton(joints)
	require.NoError(t, err)
	return sk
}

func TestNewEngine_Options(t *testing.T) {
	m, err := mesh.Cube(r3.Vec{}, 1)
	require.NoError(t, err)

	for name, opt := range map[string]transfer.Option{
		"workers":    transfer.WithWorkers(0),
		"depth":      transfer.WithLocalSpread(-1),
		"tolerance":  transfer.WithBarycentric(transfer.Barycentric{PlaneTolerance: -1}),
		"policy":     transfer.WithPolicy(transfer.FailurePolicy(9)),
		"nil spread": transfer.WithSpreader(nil),
	} {
		_, err := transfer.NewEngine(m, nil, nil, opt)
		require.ErrorIs(t, err, transfer.ErrOptionViolation, name)
	}

	_, err = transfer.NewEngine(nil, nil, nil)
	require.ErrorIs(t, err, transfer.ErrOptionViolation)

	e, err := transfer.NewEngine(m, nil, nil)
	require.NoError(t, err)
	require.Equal(t, transfer.LocalSpread{Depth: transfer.DefaultDepth}, e.Options().Spreader)
	require.Equal(t, transfer.SkipIsland, e.Options().Policy)
}

func TestSplitIslands(t *testing.T) {
	src, err := mesh.Grid(r3.Vec{}, 1, 7, 1)
	require.NoError(t, err)
	dst, err := mesh.Grid(r3.Vec{Y: 5}, 1, 7, 1)
	require.NoError(t, err)
	require.NoError(t, src.SetAttribute("G", map[int]float64{0: 1, 1: 1, 2: 1, 5: 0.5, 6: 0.5}))
	srcSk := mustSkeleton(t, map[string]r3.Vec{"Root": {X: 3}})

	e, err := transfer.NewEngine(src, srcSk, srcSk.Translated(r3.Vec{Y: 5}),
		transfer.WithLocalSpread(0),
		transfer.WithSplitIslands(true),
		transfer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	rep, err := e.Transfer(transfer.Job{SourceAttribute: "G", TargetAttribute: "G", Anchor: anchor.Same("Root")}, dst)
	require.NoError(t, err)
	require.Len(t, rep.Islands, 2)
	require.Equal(t, 1, rep.Islands[0].Part)
	require.Equal(t, 3, rep.Islands[0].Written)
	require.Equal(t, 2, rep.Islands[1].Part)
	require.Equal(t, 2, rep.Islands[1].Written)

	got, _ := dst.Attribute("G")
	require.Equal(t, map[int]float64{0: 1, 1: 1, 2: 1, 5: 0.5, 6: 0.5}, got)
}
