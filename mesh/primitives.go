// primitives.go: deterministic mesh constructors (cube, planar grid).
//
// Determinism:
//   - Stable vertex order and stable edge order for fixed parameters.
package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// cubeCorners lists unit-cube corner signs: bottom face 0-1-2-3 (z=-1),
// top face 4-5-6-7 (z=+1), vertex i+4 directly above vertex i.
var cubeCorners = [8]r3.Vec{
	{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
}

var cubeEdges = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Cube returns an 8-vertex, 12-edge cube centred at center with the given
// half extent. Normals point outward along the corner diagonals.
func Cube(center r3.Vec, half float64, opts ...Option) (*Mesh, error) {
	positions := make([]r3.Vec, len(cubeCorners))
	normals := make([]r3.Vec, len(cubeCorners))
	for i, c := range cubeCorners {
		positions[i] = r3.Add(center, r3.Scale(half, c))
		normals[i] = r3.Unit(c)
	}
	return New(positions, cubeEdges, append([]Option{WithNormals(normals)}, opts...)...)
}

// Grid returns a rows×cols planar grid in the XY plane at height z with
// the given spacing. Vertex (r, c) has index r*cols+c and position
// origin + (c·spacing, r·spacing, 0). Edges join right and bottom
// neighbors; normals are +Z.
func Grid(origin r3.Vec, rows, cols int, spacing float64, opts ...Option) (*Mesh, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: rows=%d, cols=%d", ErrTooFewVertices, rows, cols)
	}
	n := rows * cols
	positions := make([]r3.Vec, 0, n)
	normals := make([]r3.Vec, 0, n)
	var edges [][2]int
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			positions = append(positions, r3.Add(origin, r3.Vec{X: float64(c) * spacing, Y: float64(r) * spacing}))
			normals = append(normals, r3.Vec{Z: 1})
			v := r*cols + c
			if c+1 < cols {
				edges = append(edges, [2]int{v, v + 1})
			}
			if r+1 < rows {
				edges = append(edges, [2]int{v, v + cols})
			}
		}
	}
	return New(positions, edges, append([]Option{WithNormals(normals)}, opts...)...)
}
