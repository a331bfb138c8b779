// Package cloth implements the volumetric cloth simulation: grid topology,
// double-buffered particle positions, and the Verlet plus Gauss-Seidel solver
// over edge and air-mesh constraints.
package cloth

import (
	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

// GridParams are the structural dimensions of a cloth sheet. Resolutions must
// be at least 1; ranges are enforced by the caller (see config.Validate).
type GridParams struct {
	ResolutionX   int
	ResolutionY   int
	SizeX         float32
	SizeY         float32
	NumLayers     int
	LayerInterval float32
}

// Edge is a distance constraint between two particles.
type Edge struct {
	A, B       int32
	WeightA    float32
	WeightB    float32
	RestLength float32
}

// Topology is the fixed constraint graph of a cloth, built once at construction.
type Topology struct {
	Params GridParams
	// Positions are object-local.
	Positions []math.Vec3
	Weights   []float32
	Edges     []Edge
}

// ParticleCount returns (rx+1)*(ry+1)*layers.
func ParticleCount(rx, ry, layers int) int {
	return (rx + 1) * (ry + 1) * layers
}

// EdgeCount returns the number of edges of a cross-braced grid: horizontal,
// vertical and two diagonals per cell, for every layer.
func EdgeCount(rx, ry, layers int) int {
	perLayer := (rx+1)*ry + rx*(ry+1) + 2*rx*ry
	return perLayer * layers
}

// ParticleIndex returns the index of particle (layer, y, x).
func (p GridParams) ParticleIndex(layer, y, x int) int {
	return layer*(p.ResolutionX+1)*(p.ResolutionY+1) + y*(p.ResolutionX+1) + x
}

// BuildTopology lays out the particle grid and its edge list. Row y == 0 is the
// attachment line and is pinned. Rest lengths are left zero; see
// Topology.ComputeRestLengths.
func BuildTopology(p GridParams) *Topology {
	n := ParticleCount(p.ResolutionX, p.ResolutionY, p.NumLayers)
	t := &Topology{
		Params:    p,
		Positions: make([]math.Vec3, 0, n),
		Weights:   make([]float32, 0, n),
		Edges:     make([]Edge, 0, EdgeCount(p.ResolutionX, p.ResolutionY, p.NumLayers)),
	}

	rx, ry := float32(p.ResolutionX), float32(p.ResolutionY)
	for layer := 0; layer < p.NumLayers; layer++ {
		for y := 0; y <= p.ResolutionY; y++ {
			for x := 0; x <= p.ResolutionX; x++ {
				t.Positions = append(t.Positions, math.Vec3{
					X: float32(x)*p.SizeX/rx - p.SizeX/2,
					Y: float32(layer) * p.LayerInterval,
					Z: (ry-float32(y))*p.SizeY/ry - p.SizeY/2,
				})

				w := float32(1)
				if y == 0 {
					w = 0
				}
				t.Weights = append(t.Weights, w)
			}
		}
	}

	stride := p.ResolutionX + 1
	for layer := 0; layer < p.NumLayers; layer++ {
		// Horizontal
		for y := 0; y <= p.ResolutionY; y++ {
			for x := 0; x < p.ResolutionX; x++ {
				i := p.ParticleIndex(layer, y, x)
				t.addEdge(i, i+1)
			}
		}
		// Vertical
		for y := 0; y < p.ResolutionY; y++ {
			for x := 0; x <= p.ResolutionX; x++ {
				i := p.ParticleIndex(layer, y, x)
				t.addEdge(i, i+stride)
			}
		}
		// Diagonals
		for y := 0; y < p.ResolutionY; y++ {
			for x := 0; x < p.ResolutionX; x++ {
				i := p.ParticleIndex(layer, y, x)
				t.addEdge(i, i+stride+1)
				t.addEdge(i+1, i+stride)
			}
		}
	}

	return t
}

func (t *Topology) addEdge(a, b int) {
	t.Edges = append(t.Edges, Edge{
		A:       int32(a),
		B:       int32(b),
		WeightA: t.Weights[a],
		WeightB: t.Weights[b],
	})
}

// ComputeRestLengths sets every edge's rest length from positions, normally
// the world-space baseline configuration.
func (t *Topology) ComputeRestLengths(positions []math.Vec3) {
	for i := range t.Edges {
		e := &t.Edges[i]
		e.RestLength = positions[e.A].Distance(positions[e.B])
	}
}

// NumParticles returns the particle count.
func (t *Topology) NumParticles() int {
	return len(t.Positions)
}
