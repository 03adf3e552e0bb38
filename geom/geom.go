package geom

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoPoints is returned by Centroid for an empty point set.
var ErrNoPoints = errors.New("geom: no points")

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-12

// Point3 is a position or direction in world space.
type Point3 = r3.Vec

// DefaultDirection is the direction reported for zero-length offsets.
var DefaultDirection = r3.Vec{X: 0, Y: 0, Z: 1}

// Centroid returns the arithmetic mean of points.
// Complexity: O(n).
func Centroid(points []r3.Vec) (r3.Vec, error) {
	if len(points) == 0 {
		return r3.Vec{}, ErrNoPoints
	}
	var sum r3.Vec
	for _, p := range points {
		sum = r3.Add(sum, p)
	}

	return r3.Scale(1/float64(len(points)), sum), nil
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// Unit returns v scaled to length one. If v is shorter than Epsilon
// it returns DefaultDirection and false.
func Unit(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if n < Epsilon || math.IsNaN(n) {
		return DefaultDirection, false
	}

	return r3.Scale(1/n, v), true
}

// Finite reports whether every coordinate of v is a finite number.
func Finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Coord returns the coordinate of v along axis 0 (X), 1 (Y) or 2 (Z).
func Coord(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
