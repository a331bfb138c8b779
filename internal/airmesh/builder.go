package airmesh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/airmesh-cloth/internal/logger"
	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

// Builder errors.
var (
	ErrMeshingFailed    = errors.New("air mesh generation failed")
	ErrInvalidTriangles = errors.New("invalid surface triangle list")
)

// boxMargin is the bounding box growth relative to its largest half extent.
const boxMargin = 0.02

// boxFaces are the 6 quads of the synthetic bounding box, indexing Bounds.Corners.
var boxFaces = [6][4]int32{
	{0, 1, 3, 2},
	{1, 5, 7, 3},
	{5, 4, 6, 7},
	{4, 0, 2, 6},
	{4, 5, 1, 0},
	{2, 3, 7, 6},
}

// Builder produces air-mesh tetrahedra for a cloth surface. It runs once per
// cloth at authoring time.
type Builder struct {
	Tetrahedralizer Tetrahedralizer
	// Switches is passed through to the meshing library.
	Switches string
}

// NewBuilder returns a Builder using t with the default (empty) switches.
func NewBuilder(t Tetrahedralizer) *Builder {
	return &Builder{Tetrahedralizer: t}
}

// Build tetrahedralizes the region bounded by the surface triangles and a
// slightly enlarged bounding box, and returns the tetrahedra spanning only
// particles, oriented non-negative. triangles holds index triples into positions.
func (b *Builder) Build(ctx context.Context, positions []math.Vec3, triangles []int32) ([]Tetrahedron, error) {
	if err := checkTriangles(triangles, len(positions)); err != nil {
		return nil, err
	}

	log := logger.Named("airmesh")
	start := time.Now()

	in := BuildInput(positions, triangles)
	in.Switches = b.Switches

	raw, err := b.Tetrahedralizer.Tetrahedralize(ctx, in)
	if err != nil {
		log.Warn("tetrahedralization failed", zap.Int("points", in.NumPoints()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrMeshingFailed, err)
	}

	tets := Filter(raw, len(positions))
	Orient(tets, positions)

	log.Info("air mesh generated",
		zap.Int("tetrahedra", len(tets)),
		zap.Int("discarded", len(raw)-len(tets)),
		zap.Duration("took", time.Since(start)))

	return tets, nil
}

// BuildInput assembles the meshing request: the particles followed by the 8
// bounding box corners, the surface triangles followed by the 6 box faces.
func BuildInput(positions []math.Vec3, triangles []int32) Input {
	n := int32(len(positions))

	bounds := math.BoundsOf(positions)
	bounds = bounds.ExpandBy(bounds.Extent().AbsMax() * boxMargin)

	points := make([]float64, 0, (len(positions)+8)*3)
	for _, p := range positions {
		points = append(points, float64(p.X), float64(p.Y), float64(p.Z))
	}
	for _, c := range bounds.Corners() {
		points = append(points, float64(c.X), float64(c.Y), float64(c.Z))
	}

	facets := make([]Facet, 0, len(triangles)/3+len(boxFaces))
	for i := 0; i+2 < len(triangles); i += 3 {
		facets = append(facets, Facet{Polygons: []Polygon{{triangles[i], triangles[i+1], triangles[i+2]}}})
	}
	for _, face := range boxFaces {
		facets = append(facets, Facet{Polygons: []Polygon{{face[0] + n, face[1] + n, face[2] + n, face[3] + n}}})
	}

	return Input{Points: points, Facets: facets}
}

func checkTriangles(triangles []int32, n int) error {
	if len(triangles)%3 != 0 {
		return fmt.Errorf("%w: length %d is not a multiple of 3", ErrInvalidTriangles, len(triangles))
	}
	for i, idx := range triangles {
		if idx < 0 || int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d, particle count %d", ErrInvalidTriangles, idx, i, n)
		}
	}
	return nil
}
