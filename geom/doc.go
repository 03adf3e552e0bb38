// Package geom holds the small amount of 3D geometry shared by the
// meshweight packages: point aliases over gonum's r3.Vec, centroids,
// safe normalization, and triangles with barycentric coordinates.
//
// What:
//
//   - Point3 is r3.Vec; all coordinates are world space.
//   - Centroid computes the unweighted arithmetic mean of a point set.
//   - Unit normalizes a vector and reports whether it was degenerate.
//   - Triangle.Barycentric returns (u, v, w) for a point projected onto
//     the triangle plane. Corners map exactly to (1,0,0), (0,1,0), (0,0,1).
//   - Fan returns the index triples of a fan triangulation rooted at the
//     first point of a polygon.
//
// Errors:
//
//   - ErrNoPoints: Centroid called with an empty slice.
package geom
