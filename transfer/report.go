package transfer

import (
	"errors"
	"fmt"
)

// IslandResult summarises one committed island.
type IslandResult struct {
	Source   string
	Target   string
	Part     int
	Strategy string
	Members  int
	Written  int
	// Fallback is set when Barycentric fell back to direct assignment.
	Fallback bool
	// DegenerateAnchor is set when the source anchor coincided with the centroid.
	DegenerateAnchor bool
}

// Skip records an island that was not committed.
type Skip struct {
	Source string
	Target string
	Part   int
	Reason string
	Err    error
}

// SkippedVertex is a source member whose query could not be resolved.
type SkippedVertex struct {
	Source string
	Vertex int
}

// Report is the outcome of a transfer call.
type Report struct {
	// VerticesWritten counts target attribute writes across all islands.
	VerticesWritten int
	Islands         []IslandResult
	Skipped         []Skip
	SkippedVertices []SkippedVertex
}

// SkippedNames returns the source names of skipped islands, in report order.
func (r *Report) SkippedNames() []string {
	names := make([]string, len(r.Skipped))
	for i, s := range r.Skipped {
		names[i] = s.Source
	}
	return names
}

// Err joins the errors of all skipped islands, or returns nil.
func (r *Report) Err() error {
	errs := make([]error, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		errs = append(errs, fmt.Errorf("%s: %w", s.Source, s.Err))
	}
	return errors.Join(errs...)
}

func (r *Report) addIsland(res IslandResult, skipped []SkippedVertex) {
	r.Islands = append(r.Islands, res)
	r.VerticesWritten += res.Written
	r.SkippedVertices = append(r.SkippedVertices, skipped...)
}

func (r *Report) addSkip(job Job, part int, err error) {
	r.Skipped = append(r.Skipped, Skip{
		Source: job.SourceAttribute,
		Target: job.TargetAttribute,
		Part:   part,
		Reason: err.Error(),
		Err:    err,
	})
}
