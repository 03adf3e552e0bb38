package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is three corners in world space.
type Triangle struct {
	A, B, C r3.Vec
}

// Normal returns the unit normal of t following the A→B→C winding.
// ok is false for degenerate (zero-area) triangles.
func (t Triangle) Normal() (n r3.Vec, ok bool) {
	return Unit(r3.Cross(r3.Sub(t.B, t.A), r3.Sub(t.C, t.A)))
}

// Area returns the area of t.
func (t Triangle) Area() float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(t.B, t.A), r3.Sub(t.C, t.A)))
}

// PlaneDistance returns the unsigned distance from p to the plane of t.
// For degenerate triangles it returns +Inf.
func (t Triangle) PlaneDistance(p r3.Vec) float64 {
	n, ok := t.Normal()
	if !ok {
		return math.Inf(1)
	}
	return math.Abs(r3.Dot(n, r3.Sub(p, t.A)))
}

// Barycentric returns the coordinates (u, v, w) of p projected onto the
// plane of t, so that u·A + v·B + w·C is that projection and u+v+w = 1.
// ok is false when t is degenerate.
//
// At the corners the result is exact: A yields (1,0,0), B (0,1,0), C (0,0,1).
func (t Triangle) Barycentric(p r3.Vec) (u, v, w float64, ok bool) {
	e0 := r3.Sub(t.B, t.A)
	e1 := r3.Sub(t.C, t.A)
	e2 := r3.Sub(p, t.A)

	d00 := r3.Dot(e0, e0)
	d01 := r3.Dot(e0, e1)
	d11 := r3.Dot(e1, e1)
	d20 := r3.Dot(e2, e0)
	d21 := r3.Dot(e2, e1)

	denom := d00*d11 - d01*d01
	if math.Abs(denom) < Epsilon*math.Max(1, d00*d11) {
		return 0, 0, 0, false
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w

	return u, v, w, true
}

// Contains reports whether all barycentric coordinates of p are ≥ -tol.
func (t Triangle) Contains(p r3.Vec, tol float64) bool {
	u, v, w, ok := t.Barycentric(p)
	return ok && u >= -tol && v >= -tol && w >= -tol
}

// Fan returns the triangles (0, i, i+1) for i in [1, n-2] that fan-triangulate
// a polygon of n points from its first point. It returns nil for n < 3.
func Fan(n int) [][3]int {
	if n < 3 {
		return nil
	}
	tris := make([][3]int, 0, n-2)
	for i := 1; i+1 < n; i++ {
		tris = append(tris, [3]int{0, i, i + 1})
	}
	return tris
}
