// Package mesh defines the accessor interfaces the weight-transfer core reads
// meshes and skeletons through, plus thread-safe in-memory implementations
// and per-transfer snapshots.
//
// The host application owns the real scene objects; it adapts them to
// Accessor and SkeletonAccessor. Mesh and Skeleton in this package serve
// tests, examples and hosts that materialize their data up front.
//
// Errors:
//
//	ErrInvalidEdge       - edge endpoint out of range or a self-loop.
//	ErrVertexOutOfRange  - vertex index outside [0, VertexCount).
//	ErrWeightRange       - weight outside [0, 1] or not finite.
//	ErrNonFinite         - a position or normal has NaN/Inf coordinates.
//	ErrEmptyName         - empty attribute or joint name.
package mesh

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sentinel errors for mesh data.
var (
	// ErrInvalidEdge indicates an edge references a missing vertex or itself.
	ErrInvalidEdge = errors.New("mesh: invalid edge")

	// ErrVertexOutOfRange indicates a vertex index outside the mesh.
	ErrVertexOutOfRange = errors.New("mesh: vertex out of range")

	// ErrWeightRange indicates a weight outside [0, 1].
	ErrWeightRange = errors.New("mesh: weight outside [0,1]")

	// ErrNonFinite indicates a NaN or infinite coordinate.
	ErrNonFinite = errors.New("mesh: non-finite coordinate")

	// ErrEmptyName indicates an empty attribute or joint name.
	ErrEmptyName = errors.New("mesh: empty name")

	// ErrTooFewVertices indicates a primitive constructor got dimensions below one.
	ErrTooFewVertices = errors.New("mesh: too few vertices")
)

// Accessor is the read/write view of a mesh that transfer works against.
//
// Vertex indices are 0..VertexCount()-1 and must stay stable for the
// duration of a transfer. Attribute returns a partial map vertex → weight;
// ok is false when the attribute does not exist.
type Accessor interface {
	VertexCount() int
	VertexPosition(i int) r3.Vec
	VertexNormal(i int) r3.Vec
	Edges() [][2]int
	Attribute(name string) (weights map[int]float64, ok bool)
	SetAttributeValue(name string, vertex int, weight float64) error
}

// AttributeLister is implemented by accessors that can enumerate attributes.
type AttributeLister interface {
	AttributeNames() []string
}

// AttributeValueRemover is implemented by accessors that can drop a single
// vertex from an attribute. Transfer uses it to roll back failed commits.
type AttributeValueRemover interface {
	RemoveAttributeValue(name string, vertex int) error
}

// AttributeRemover is implemented by accessors that can delete a whole
// attribute. Transfer uses it to drop an attribute a failed commit created.
type AttributeRemover interface {
	RemoveAttribute(name string) error
}

// SkeletonAccessor resolves named joints to world-space head positions.
type SkeletonAccessor interface {
	JointHeadPosition(name string) (r3.Vec, bool)
}

// JointLister is implemented by skeletons that can enumerate joint names.
type JointLister interface {
	JointNames() []string
}
