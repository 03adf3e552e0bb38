// Package anchor relates a weight island on a source mesh to its expected
// location on a target mesh through a named correspondence point, usually a
// skeletal joint present on both skeletons under the same name.
//
// Only a translation is modeled: the island centroid keeps its distance and
// direction from the anchor. Differences in pose rotation or scale between
// source and target skeletons are not corrected.
package anchor

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/meshweight/geom"
	"github.com/katalvlaran/meshweight/mesh"
)

// Sentinel errors for anchor resolution.
var (
	// ErrDegenerateOffset is returned when the anchor and centroid coincide
	// and no direction can be derived. The accompanying result is still usable.
	ErrDegenerateOffset = errors.New("anchor: anchor coincides with centroid")

	// ErrAnchorNotFound is returned when a joint is missing on a skeleton.
	ErrAnchorNotFound = errors.New("anchor: joint not found")
)

// Pair names the anchor on the source and on the target skeleton.
type Pair struct {
	Source string
	Target string
}

// Same returns a Pair using name on both skeletons.
func Same(name string) Pair { return Pair{Source: name, Target: name} }

// String implements fmt.Stringer.
func (p Pair) String() string {
	if p.Source == p.Target {
		return p.Source
	}
	return p.Source + "→" + p.Target
}

// OffsetAndDirection returns the distance from centroid to anchor and the unit
// direction centroid→anchor. If the two points coincide it returns distance 0,
// geom.DefaultDirection and ErrDegenerateOffset.
func OffsetAndDirection(anchor, centroid r3.Vec) (distance float64, direction r3.Vec, err error) {
	delta := r3.Sub(anchor, centroid)
	dir, ok := geom.Unit(delta)
	if !ok {
		return 0, geom.DefaultDirection, ErrDegenerateOffset
	}
	return r3.Norm(delta), dir, nil
}

// Project returns target − distance·direction: the estimated centroid on the
// target side for an anchor at target.
func Project(target r3.Vec, distance float64, direction r3.Vec) r3.Vec {
	return r3.Sub(target, r3.Scale(distance, direction))
}

// Placement is a resolved correspondence for one island.
type Placement struct {
	Pair           Pair
	SourceAnchor   r3.Vec
	TargetAnchor   r3.Vec
	Distance       float64
	Direction      r3.Vec
	TargetCentroid r3.Vec
	// Degenerate is set when the source anchor coincided with the centroid.
	Degenerate bool
}

// Translation returns the rigid offset that maps source positions to target space.
func (p Placement) Translation() r3.Vec {
	return r3.Sub(p.TargetAnchor, p.SourceAnchor)
}

// Resolver looks anchors up on a source and a target skeleton.
type Resolver struct {
	Source mesh.SkeletonAccessor
	Target mesh.SkeletonAccessor
	Logger *slog.Logger
}

// NewResolver returns a Resolver logging to slog.Default.
func NewResolver(source, target mesh.SkeletonAccessor) *Resolver {
	return &Resolver{Source: source, Target: target, Logger: slog.Default()}
}

// Resolve places centroid, given in source space, relative to pair on the
// target skeleton. A missing joint yields ErrAnchorNotFound, with a name
// suggestion when the skeleton can list its joints. A coincident anchor is
// recovered locally: the placement is returned with Degenerate set.
func (r *Resolver) Resolve(pair Pair, centroid r3.Vec) (Placement, error) {
	src, err := lookup(r.Source, "source", pair.Source)
	if err != nil {
		return Placement{}, err
	}
	dst, err := lookup(r.Target, "target", pair.Target)
	if err != nil {
		return Placement{}, err
	}

	dist, dir, err := OffsetAndDirection(src, centroid)
	degenerate := errors.Is(err, ErrDegenerateOffset)
	if degenerate {
		r.logger().Warn("anchor coincides with island centroid",
			"anchor", pair.String(), "centroid", centroid)
	}

	return Placement{
		Pair:           pair,
		SourceAnchor:   src,
		TargetAnchor:   dst,
		Distance:       dist,
		Direction:      dir,
		TargetCentroid: Project(dst, dist, dir),
		Degenerate:     degenerate,
	}, nil
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func lookup(s mesh.SkeletonAccessor, side, name string) (r3.Vec, error) {
	if s == nil {
		return r3.Vec{}, fmt.Errorf("%w: no %s skeleton for %q", ErrAnchorNotFound, side, name)
	}
	head, ok := s.JointHeadPosition(name)
	if ok {
		return head, nil
	}
	if l, canList := s.(mesh.JointLister); canList {
		if hint, found := Suggest(name, l.JointNames()); found {
			return r3.Vec{}, fmt.Errorf("%w: %q on %s skeleton (did you mean %q?)", ErrAnchorNotFound, name, side, hint)
		}
	}
	return r3.Vec{}, fmt.Errorf("%w: %q on %s skeleton", ErrAnchorNotFound, name, side)
}
