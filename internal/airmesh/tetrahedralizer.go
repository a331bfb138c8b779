package airmesh

import (
	"context"
	"fmt"
)

// Polygon is an ordered, planar loop of point indices (at least 3).
type Polygon []int32

// Facet is a planar boundary piece made of one or more polygons. Holes are not used.
type Facet struct {
	Polygons []Polygon
}

// Input is a piecewise-linear complex: points plus the facets that appear as
// unions of tetrahedron faces when the switches request boundary recovery.
type Input struct {
	// Points holds flat x, y, z triples.
	Points []float64
	Facets []Facet
	// Switches selects the meshing mode. Empty gives the plain Delaunay
	// tetrahedralization of Points; "p" also recovers Facets.
	Switches string
}

// NumPoints returns the number of points in the input.
func (in Input) NumPoints() int {
	return len(in.Points) / 3
}

// Point returns the coordinates of point i.
func (in Input) Point(i int) [3]float64 {
	return [3]float64{in.Points[3*i], in.Points[3*i+1], in.Points[3*i+2]}
}

// Tetrahedralizer is the boundary to an external meshing library. Implementations
// own every buffer they hand to the library and return tetrahedra as flat index
// quadruples into Input.Points. A non-zero library status is reported as *StatusError.
type Tetrahedralizer interface {
	Tetrahedralize(ctx context.Context, in Input) ([]Tetrahedron, error)
}

// StatusError carries a non-zero status code from the meshing library.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("tetrahedralization failed with status %d", e.Code)
	}
	return fmt.Sprintf("tetrahedralization failed with status %d: %s", e.Code, e.Detail)
}
