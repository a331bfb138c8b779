package airmesh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

type fakeTetrahedralizer struct {
	tets []Tetrahedron
	err  error
	got  Input
}

func (f *fakeTetrahedralizer) Tetrahedralize(_ context.Context, in Input) ([]Tetrahedron, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Tetrahedron, len(f.tets))
	copy(out, f.tets)
	return out, nil
}

// unitCorner is a right-angle tetrahedron; [0 1 2 3] has signed volume -1.
var unitCorner = []math.Vec3{
	{X: 0, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},
}

// grid3 is a flat 3x3 particle grid with its two-triangles-per-quad surface.
func grid3() ([]math.Vec3, []int32) {
	var pos []math.Vec3
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			pos = append(pos, math.Vec3{X: float32(x) * 50, Y: 0, Z: float32(2-y) * 50})
		}
	}
	var tris []int32
	for y := int32(0); y < 2; y++ {
		for x := int32(0); x < 2; x++ {
			i00, i01 := y*3+x, y*3+x+1
			i10, i11 := (y+1)*3+x, (y+1)*3+x+1
			tris = append(tris, i00, i01, i10, i01, i11, i10)
		}
	}
	return pos, tris
}

func TestSignedVolume(t *testing.T) {
	p := unitCorner
	assert.Equal(t, float32(-1), SignedVolume(p[0], p[1], p[2], p[3]))
	assert.Equal(t, float32(1), SignedVolume(p[0], p[1], p[3], p[2]))
	assert.Equal(t, float32(0), SignedVolume(p[0], p[1], p[2], math.Vec3{X: 3, Y: 3}))
}

func TestBuildInput(t *testing.T) {
	pos, tris := grid3()
	in := BuildInput(pos, tris)

	require.Equal(t, len(pos)+8, in.NumPoints())
	require.Len(t, in.Facets, len(tris)/3+6)
	assert.Empty(t, in.Switches)

	// Particles come first, unchanged
	assert.Equal(t, [3]float64{50, 0, 100}, in.Point(1))

	// Box grows by 2% of the largest half extent (50) on every side
	assert.Equal(t, [3]float64{-1, -1, -1}, in.Point(9))
	assert.Equal(t, [3]float64{101, 1, 101}, in.Point(16))

	// Surface triangles are single-polygon facets
	first := in.Facets[0]
	require.Len(t, first.Polygons, 1)
	assert.Equal(t, Polygon{0, 1, 3}, first.Polygons[0])

	// Box faces are offset past the particles
	last := in.Facets[len(in.Facets)-1]
	assert.Equal(t, Polygon{11, 12, 16, 15}, last.Polygons[0])
	for _, f := range in.Facets[len(tris)/3:] {
		for _, idx := range f.Polygons[0] {
			assert.GreaterOrEqual(t, idx, int32(len(pos)))
		}
	}
}

func TestBuild_FiltersSyntheticPoints(t *testing.T) {
	pos, tris := grid3()
	fake := &fakeTetrahedralizer{tets: []Tetrahedron{
		{0, 1, 3, 4},
		{0, 1, 3, 9},  // first box corner
		{16, 2, 5, 4}, // last box corner
		{4, 5, 7, 8},
		{4, 5, 7, 40}, // library-inserted point
	}}

	tets, err := NewBuilder(fake).Build(context.Background(), pos, tris)
	require.NoError(t, err)

	assert.Len(t, tets, 2)
	for _, tet := range tets {
		for _, idx := range tet {
			assert.Less(t, idx, int32(len(pos)))
		}
	}
	assert.Equal(t, len(pos)+8, fake.got.NumPoints())
}

func TestBuild_Orientation(t *testing.T) {
	tris := []int32{0, 1, 2}
	fake := &fakeTetrahedralizer{tets: []Tetrahedron{
		{0, 1, 2, 3},
		{0, 1, 3, 2},
		{3, 2, 1, 0},
	}}

	tets, err := NewBuilder(fake).Build(context.Background(), unitCorner, tris)
	require.NoError(t, err)
	require.Len(t, tets, 3)

	assert.Equal(t, Tetrahedron{0, 1, 3, 2}, tets[0], "negative tetrahedron swaps its last two indices")
	assert.Equal(t, Tetrahedron{0, 1, 3, 2}, tets[1], "positive tetrahedron is kept as is")
	for _, tet := range tets {
		assert.GreaterOrEqual(t, TetrahedronVolume(tet, unitCorner), float32(0))
	}
}

func TestBuild_PassesSwitches(t *testing.T) {
	pos, tris := grid3()
	fake := &fakeTetrahedralizer{}
	b := NewBuilder(fake)
	b.Switches = "pY"

	_, err := b.Build(context.Background(), pos, tris)
	require.NoError(t, err)
	assert.Equal(t, "pY", fake.got.Switches)
}

func TestBuild_Failure(t *testing.T) {
	pos, tris := grid3()
	fake := &fakeTetrahedralizer{err: &StatusError{Code: 3, Detail: "self-intersecting facets"}}

	tets, err := NewBuilder(fake).Build(context.Background(), pos, tris)
	require.Error(t, err)
	assert.Nil(t, tets)
	assert.ErrorIs(t, err, ErrMeshingFailed)

	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, 3, status.Code)
	assert.Contains(t, err.Error(), "self-intersecting facets")
}

func TestBuild_InvalidTriangles(t *testing.T) {
	pos, _ := grid3()
	fake := &fakeTetrahedralizer{}

	_, err := NewBuilder(fake).Build(context.Background(), pos, []int32{0, 1})
	assert.ErrorIs(t, err, ErrInvalidTriangles)

	_, err = NewBuilder(fake).Build(context.Background(), pos, []int32{0, 1, 9})
	assert.ErrorIs(t, err, ErrInvalidTriangles)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]Tetrahedron{{0, 1, 2, 3}, {5, 6, 7, 8}}, 9))
	assert.ErrorIs(t, Validate([]Tetrahedron{{0, 1, 2, 9}}, 9), ErrIndexOutOfRange)
	assert.ErrorIs(t, Validate([]Tetrahedron{{-1, 1, 2, 3}}, 9), ErrIndexOutOfRange)
	assert.NoError(t, Validate(nil, 0))
}

func TestStatusError(t *testing.T) {
	assert.Equal(t, "tetrahedralization failed with status 2", (&StatusError{Code: 2}).Error())
}
