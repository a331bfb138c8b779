// Package surface derives the renderable triangulated surface of a cloth grid:
// the index list (two triangles per quad per layer) and per-vertex UV and tangents.
package surface

import (
	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

// Vertex is one renderable cloth vertex.
type Vertex struct {
	Position math.Vec3
	UV       math.Vec2
	TangentX math.Vec3
	TangentY math.Vec3
	Normal   math.Vec3
}

// Grid describes the particle layout the surface is built over.
type Grid struct {
	ResolutionX int
	ResolutionY int
	NumLayers   int
}

// VerticesPerLayer returns (ResolutionX+1)*(ResolutionY+1).
func (g Grid) VerticesPerLayer() int {
	return (g.ResolutionX + 1) * (g.ResolutionY + 1)
}

// IndexCount returns the number of indices Indices produces.
func (g Grid) IndexCount() int {
	return g.ResolutionX * g.ResolutionY * 6 * g.NumLayers
}

// Indices returns the triangle list for every layer. Each cell contributes
// (I00, I01, I10) and (I01, I11, I10).
func Indices(g Grid) []int32 {
	indices := make([]int32, 0, g.IndexCount())
	perLayer := g.VerticesPerLayer()
	stride := g.ResolutionX + 1

	for layer := 0; layer < g.NumLayers; layer++ {
		base := layer * perLayer
		for y := 0; y < g.ResolutionY; y++ {
			for x := 0; x < g.ResolutionX; x++ {
				i00 := int32(base + y*stride + x)
				i01 := i00 + 1
				i10 := i00 + int32(stride)
				i11 := i10 + 1

				indices = append(indices,
					i00, i01, i10,
					i01, i11, i10,
				)
			}
		}
	}
	return indices
}

// BuildVertices derives UVs and tangents from grid neighbours. positions must
// hold NumLayers*VerticesPerLayer entries in grid order.
func BuildVertices(g Grid, positions []math.Vec3) []Vertex {
	vertices := make([]Vertex, len(positions))
	perLayer := g.VerticesPerLayer()
	stride := g.ResolutionX + 1

	for i, p := range positions {
		local := i % perLayer
		x := local % stride
		y := local / stride

		var tx, ty math.Vec3
		if x > 0 {
			tx = tx.Add(p.Sub(positions[i-1]))
		}
		if x < g.ResolutionX {
			tx = tx.Add(positions[i+1].Sub(p))
		}
		if y > 0 {
			ty = ty.Add(p.Sub(positions[i-stride]))
		}
		if y < g.ResolutionY {
			ty = ty.Add(positions[i+stride].Sub(p))
		}
		tx = tx.Normalize()
		ty = ty.Normalize()

		vertices[i] = Vertex{
			Position: p,
			UV:       math.Vec2{X: float32(x) / float32(g.ResolutionX), Y: float32(y) / float32(g.ResolutionY)},
			TangentX: tx,
			TangentY: ty,
			Normal:   tx.Cross(ty).Normalize(),
		}
	}
	return vertices
}
