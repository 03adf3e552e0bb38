// Package spatial provides a static nearest-neighbour index over 3D points.
//
// What:
//
//   - Build constructs a balanced k-d tree (median split on a depth-cycled
//     axis, gonum's spatial/kdtree) over (position, id) pairs.
//   - Nearest returns the closest point to a query and its distance.
//   - WithinRadius returns every point whose distance is ≤ radius.
//   - KNearest returns the k closest points, nearest first.
//
// Determinism:
//
//	Construction uses median-of-medians pivoting, so the tree shape depends
//	only on the input order. Among equidistant candidates the point that was
//	inserted first (lowest position in the Build slice) is returned.
//
// Lifecycle:
//
//	An Index is immutable after Build. It copies its input, so later changes
//	to the caller's slice or mesh are not observed; rebuild instead.
//
// Complexity:
//
//   - Build:        O(n log n)
//   - Nearest:      O(log n) expected
//   - WithinRadius: O(log n + m), m = number of results
//
// Errors:
//
//   - ErrEmptyInput: Build called with no points.
package spatial
