// Package meshweight transfers named per-vertex weight groups ("islands")
// from a source mesh onto a target mesh with a different vertex layout, by
// anchoring each island to a joint present on both skeletons.
//
// What is in the box?
//
//   - Spatial index: k-d tree nearest, radius and k-nearest queries
//   - Mesh graph: bounded BFS spread and connected components over edges
//   - Anchor resolver: rigid centroid placement relative to a joint
//   - Island extractor: members, centroid and offsets of a weight group
//   - Transfer engine: local-spread or barycentric fill, parallel planning,
//     ordered transactional commits, skip-or-abort failure policies
//
// Packages:
//
//	geom/       Point3 helpers, triangles, barycentric coordinates
//	spatial/    Index built on gonum's kdtree
//	meshgraph/  adjacency, BFSBounded, ConnectedComponents
//	mesh/       Accessor interfaces, in-memory Mesh/Skeleton, Snapshot
//	anchor/     OffsetAndDirection, Project, Resolver, Suggest
//	island/     Extract, Split, CenterVertex
//	transfer/   Engine, Job, Run, LocalSpread, Barycentric, Report
//	config/     TOML/YAML run settings
//	examples/   runnable walkthrough
//
// Quick picture:
//
//	source            anchor             target
//	  ● ●    offset ─┐   ✚   ┌─ offset    ○ ○ ○
//	  ● ●  centroid ─┴───┴───┴─ estimate  ○ ○ ○
//
// Only a translation is modeled between the skeletons; pose rotation and
// scale differences are not corrected.
//
//	go get github.com/katalvlaran/meshweight
package meshweight
