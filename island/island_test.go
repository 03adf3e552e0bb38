package island_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/meshweight/island"
	"github.com/katalvlaran/meshweight/mesh"
)

func TestExtract_Cube(t *testing.T) {
	m, err := mesh.Cube(r3.Vec{}, 1)
	require.NoError(t, err)
	require.NoError(t, m.SetAttribute("G", map[int]float64{5: 0.5, 1: 1, 2: 0}))

	is, err := island.Extract(m, "G")
	require.NoError(t, err)
	assert.Equal(t, "G", is.Name)
	assert.Equal(t, []int{1, 5}, is.Vertices())
	assert.Equal(t, r3.Vec{X: 1, Y: -1, Z: 0}, is.Centroid)

	// unweighted mean, offsets relative to the centroid
	assert.Equal(t, r3.Vec{Z: -1}, is.Members[0].Offset)
	assert.Equal(t, r3.Vec{Z: 1}, is.Members[1].Offset)
	assert.Equal(t, map[int]float64{1: 1, 5: 0.5}, is.Weights())
}

func TestExtract_Empty(t *testing.T) {
	m, err := mesh.Cube(r3.Vec{}, 1)
	require.NoError(t, err)

	_, err = island.Extract(m, "missing")
	assert.ErrorIs(t, err, island.ErrEmptyGroup)

	require.NoError(t, m.SetAttribute("Z", map[int]float64{0: 0, 3: 0}))
	_, err = island.Extract(m, "Z")
	assert.ErrorIs(t, err, island.ErrEmptyGroup)
}

// badMesh returns out-of-range weights that mesh.Mesh would refuse to store.
type badMesh struct{ *mesh.Mesh }

func (b badMesh) Attribute(string) (map[int]float64, bool) {
	return map[int]float64{0: math.NaN()}, true
}

func TestExtract_WeightRange(t *testing.T) {
	m, err := mesh.Cube(r3.Vec{}, 1)
	require.NoError(t, err)
	_, err = island.Extract(badMesh{m}, "G")
	assert.ErrorIs(t, err, island.ErrWeightRange)
}

func TestExtract_SingleVertex(t *testing.T) {
	m, err := mesh.Cube(r3.Vec{}, 1)
	require.NoError(t, err)
	require.NoError(t, m.SetAttributeValue("One", 6, 0.3))

	is, err := island.Extract(m, "One")
	require.NoError(t, err)
	require.Equal(t, 1, is.Len())
	assert.Equal(t, m.VertexPosition(6), is.Centroid)
	assert.Equal(t, r3.Vec{}, is.Members[0].Offset)

	c, err := is.CenterVertex()
	require.NoError(t, err)
	assert.Equal(t, 6, c)
}

func TestSplitAndCenter(t *testing.T) {
	// 1×7 strip: 0-1-2-3-4-5-6
	m, err := mesh.Grid(r3.Vec{}, 1, 7, 1)
	require.NoError(t, err)
	require.NoError(t, m.SetAttribute("G", map[int]float64{0: 1, 1: 1, 2: 1, 5: 0.5, 6: 0.5}))
	s, err := mesh.Capture(m)
	require.NoError(t, err)
	g, err := s.Graph()
	require.NoError(t, err)

	is, err := island.Extract(m, "G")
	require.NoError(t, err)

	c, err := is.CenterVertex()
	require.NoError(t, err)
	assert.Equal(t, 2, c) // centroid x = 2.8

	parts, err := is.Split(g)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, []int{0, 1, 2}, parts[0].Vertices())
	assert.Equal(t, r3.Vec{X: 1}, parts[0].Centroid)
	assert.Equal(t, []int{5, 6}, parts[1].Vertices())
	assert.Equal(t, r3.Vec{X: 5.5}, parts[1].Centroid)
	assert.Equal(t, r3.Vec{X: -0.5}, parts[1].Members[0].Offset)

	whole, err := parts[0].Split(g)
	require.NoError(t, err)
	assert.Equal(t, []*island.Island{parts[0]}, whole)
}
