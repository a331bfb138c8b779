// Package delaunay is a pure Go tetrahedralizer for machines without TetGen.
// It computes the Delaunay tetrahedralization of the input points with the
// Bowyer-Watson algorithm. Facets are checked but not recovered, matching the
// meshing library's unconstrained mode.
package delaunay

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/airmesh-cloth/internal/airmesh"
)

// Errors returned by Tetrahedralize.
var (
	ErrTooFewPoints = errors.New("at least 4 points are required")
	ErrInvalidFacet = errors.New("invalid facet")
)

const (
	// jitter is the point perturbation relative to the input extent. It breaks
	// the co-spherical ties every regular grid produces.
	jitter = 1e-5
	// flatVolume is the relative volume below which a tetrahedron is dropped.
	flatVolume = 1e-9
	// cancelCheck is how many insertions run between context checks.
	cancelCheck = 64
)

// Tetrahedralizer implements airmesh.Tetrahedralizer. The zero value is ready to use.
type Tetrahedralizer struct {
	// Seed selects the perturbation sequence. Output is deterministic per seed.
	Seed uint64
}

// New returns a Tetrahedralizer with the default seed.
func New() *Tetrahedralizer {
	return &Tetrahedralizer{}
}

// Tetrahedralize implements airmesh.Tetrahedralizer. Switches are ignored.
func (t *Tetrahedralizer) Tetrahedralize(ctx context.Context, in airmesh.Input) ([]airmesh.Tetrahedron, error) {
	n := in.NumPoints()
	if err := checkFacets(in.Facets, n); err != nil {
		return nil, err
	}

	points := make([]r3.Vec, n)
	for i := range points {
		p := in.Point(i)
		points[i] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}

	cells, err := Triangulate(ctx, points, t.Seed)
	if err != nil {
		return nil, err
	}

	tets := make([]airmesh.Tetrahedron, len(cells))
	for i, c := range cells {
		tets[i] = airmesh.Tetrahedron{int32(c[0]), int32(c[1]), int32(c[2]), int32(c[3])}
	}
	return tets, nil
}

func checkFacets(facets []airmesh.Facet, n int) error {
	for i, f := range facets {
		if len(f.Polygons) == 0 {
			return fmt.Errorf("%w: facet %d has no polygons", ErrInvalidFacet, i)
		}
		for _, poly := range f.Polygons {
			if len(poly) < 3 {
				return fmt.Errorf("%w: facet %d has a polygon with %d vertices", ErrInvalidFacet, i, len(poly))
			}
			for _, idx := range poly {
				if idx < 0 || int(idx) >= n {
					return fmt.Errorf("%w: facet %d references point %d of %d", ErrInvalidFacet, i, idx, n)
				}
			}
		}
	}
	return nil
}

type cell struct {
	v      [4]int
	center r3.Vec
	radius float64 // squared
}

// Triangulate returns the Delaunay tetrahedra of points as index quadruples,
// each with positive signed volume. Tetrahedra that are flat in the
// unperturbed input are omitted.
func Triangulate(ctx context.Context, points []r3.Vec, seed uint64) ([][4]int, error) {
	n := len(points)
	if n < 4 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, n)
	}

	lo, hi := bounds(points)
	extent := math.Max(hi.X-lo.X, math.Max(hi.Y-lo.Y, hi.Z-lo.Z))
	if extent == 0 {
		return nil, nil
	}

	// Perturbed working copy followed by the 4 super tetrahedron corners.
	rng := rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
	work := make([]r3.Vec, n, n+4)
	for i, p := range points {
		offset := r3.Vec{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5, Z: rng.Float64() - 0.5}
		work[i] = r3.Add(p, r3.Scale(jitter*extent, offset))
	}
	center := r3.Scale(0.5, r3.Add(lo, hi))
	span := 100 * extent
	for _, dir := range [4]r3.Vec{{X: 1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: 1}} {
		work = append(work, r3.Add(center, r3.Scale(span, dir)))
	}

	cells := []cell{newCell(work, [4]int{n, n + 1, n + 2, n + 3})}

	faceCount := make(map[[3]int]int)
	for i := 0; i < n; i++ {
		if i%cancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		cells = insert(work, cells, i, faceCount)
	}

	tol := flatVolume * extent * extent * extent
	out := make([][4]int, 0, len(cells))
	for _, c := range cells {
		if c.v[0] >= n || c.v[1] >= n || c.v[2] >= n || c.v[3] >= n {
			continue
		}
		v := c.v
		vol := signedVolume(points[v[0]], points[v[1]], points[v[2]], points[v[3]])
		if math.Abs(vol) <= tol {
			continue
		}
		if vol < 0 {
			v[2], v[3] = v[3], v[2]
		}
		out = append(out, v)
	}
	return out, nil
}

// insert adds point p to the triangulation: every cell whose circumsphere
// contains p is removed and the cavity is re-filled with cells fanning from p.
func insert(points []r3.Vec, cells []cell, p int, faceCount map[[3]int]int) []cell {
	pos := points[p]

	kept := cells[:0:0]
	var bad []cell
	for _, c := range cells {
		if r3.Norm2(r3.Sub(pos, c.center)) < c.radius {
			bad = append(bad, c)
		} else {
			kept = append(kept, c)
		}
	}

	clear(faceCount)
	for _, c := range bad {
		for _, f := range faces(c.v) {
			faceCount[faceKey(f)]++
		}
	}
	// Faces seen once bound the cavity. Walk bad cells in order so the
	// result does not depend on map iteration.
	for _, c := range bad {
		for _, f := range faces(c.v) {
			if faceCount[faceKey(f)] == 1 {
				kept = append(kept, newCell(points, [4]int{f[0], f[1], f[2], p}))
			}
		}
	}
	return kept
}

func newCell(points []r3.Vec, v [4]int) cell {
	a := points[v[0]]
	u := r3.Sub(points[v[1]], a)
	w := r3.Sub(points[v[2]], a)
	x := r3.Sub(points[v[3]], a)

	denom := 2 * r3.Dot(u, r3.Cross(w, x))
	if denom == 0 {
		// A flat cell accepts every point so it is always replaced.
		return cell{v: v, center: a, radius: math.Inf(1)}
	}

	offset := r3.Scale(1/denom, r3.Add(
		r3.Add(r3.Scale(r3.Norm2(u), r3.Cross(w, x)), r3.Scale(r3.Norm2(w), r3.Cross(x, u))),
		r3.Scale(r3.Norm2(x), r3.Cross(u, w)),
	))
	return cell{v: v, center: r3.Add(a, offset), radius: r3.Norm2(offset)}
}

func faces(v [4]int) [4][3]int {
	return [4][3]int{
		{v[0], v[1], v[2]},
		{v[0], v[1], v[3]},
		{v[0], v[2], v[3]},
		{v[1], v[2], v[3]},
	}
}

func faceKey(f [3]int) [3]int {
	if f[0] > f[1] {
		f[0], f[1] = f[1], f[0]
	}
	if f[1] > f[2] {
		f[1], f[2] = f[2], f[1]
	}
	if f[0] > f[1] {
		f[0], f[1] = f[1], f[0]
	}
	return f
}

func signedVolume(p0, p1, p2, p3 r3.Vec) float64 {
	return r3.Dot(r3.Sub(p0, p3), r3.Cross(r3.Sub(p1, p3), r3.Sub(p2, p3)))
}

func bounds(points []r3.Vec) (lo, hi r3.Vec) {
	lo, hi = points[0], points[0]
	for _, p := range points[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return lo, hi
}
