package cloth

import (
	"github.com/Faultbox/airmesh-cloth/internal/airmesh"
	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

// MaxDeltaTime bounds the integration step to keep frame hitches stable.
const MaxDeltaTime = float32(1.0 / 30.0)

const (
	// minEdgeLength is the length below which an edge has no usable direction.
	minEdgeLength = 1e-6
	// volumeTolerance is the relative size of a negligible gradient denominator.
	volumeTolerance = 1e-7
)

// gravityAxis is the world up axis the gravity scalar acts along.
var gravityAxis = math.Vec3{Z: 1}

// ClampDeltaTime limits dt to [0, MaxDeltaTime].
func ClampDeltaTime(dt float32) float32 {
	if dt < 0 {
		return 0
	}
	if dt > MaxDeltaTime {
		return MaxDeltaTime
	}
	return dt
}

// IntegrateParams are the per-step inputs of the Verlet phase.
type IntegrateParams struct {
	DeltaTime float32
	Damping   float32
	GravityZ  float32
	// Previous and Current are the owner transforms of the last and this frame.
	Previous math.Transform
	Current  math.Transform
}

// Integrate advances every particle one Verlet step and swaps the store.
// Pinned particles (weight 0) follow the owner transform rigidly; all others
// keep (1-damping) of their implicit velocity and receive gravity.
func Integrate(s *Store, weights []float32, p IntegrateParams) {
	cur := s.Current()
	prev := s.Previous()

	gravity := gravityAxis.Scale(p.DeltaTime * p.DeltaTime * p.GravityZ)
	retain := 1 - p.Damping

	for i := range cur {
		if weights[i] == 0 {
			local := p.Previous.InverseTransformPosition(cur[i])
			prev[i] = p.Current.TransformPosition(local)
			continue
		}
		velocity := cur[i].Sub(prev[i])
		prev[i] = cur[i].Add(velocity.Scale(retain)).Add(gravity)
	}

	s.Swap()
}

// RelaxEdges projects every edge towards its rest length once, in list order.
// Each endpoint moves in proportion to its own weight.
func RelaxEdges(positions []math.Vec3, edges []Edge) {
	for i := range edges {
		e := &edges[i]

		weightSum := e.WeightA + e.WeightB
		if weightSum <= 0 {
			continue
		}

		diff := positions[e.B].Sub(positions[e.A])
		length := diff.Length()
		if length < minEdgeLength {
			continue
		}

		scale := (length - e.RestLength) / (length * weightSum)
		positions[e.A] = positions[e.A].Add(diff.Scale(scale * e.WeightA))
		positions[e.B] = positions[e.B].Sub(diff.Scale(scale * e.WeightB))
	}
}

// RelaxTetrahedra pushes every inverted tetrahedron back towards zero volume
// once, in list order. Tetrahedra with non-negative volume are left alone.
func RelaxTetrahedra(positions []math.Vec3, weights []float32, tets []airmesh.Tetrahedron) {
	for _, tet := range tets {
		p0, p1, p2, p3 := positions[tet[0]], positions[tet[1]], positions[tet[2]], positions[tet[3]]

		grad0 := p1.Sub(p3).Cross(p2.Sub(p3))
		volume := p0.Sub(p3).Dot(grad0)
		if volume >= 0 {
			continue
		}

		grad1 := p2.Sub(p0).Cross(p3.Sub(p0)).Neg()
		grad2 := p3.Sub(p1).Cross(p0.Sub(p1))
		grad3 := p0.Sub(p2).Cross(p1.Sub(p2)).Neg()

		w0, w1, w2, w3 := weights[tet[0]], weights[tet[1]], weights[tet[2]], weights[tet[3]]
		denom := w0*grad0.LengthSquared() +
			w1*grad1.LengthSquared() +
			w2*grad2.LengthSquared() +
			w3*grad3.LengthSquared()

		g0 := grad0.LengthSquared()
		if abs(denom) <= g0*volumeTolerance {
			continue
		}

		scale := volume / denom
		positions[tet[0]] = p0.Sub(grad0.Scale(w0 * scale))
		positions[tet[1]] = p1.Sub(grad1.Scale(w1 * scale))
		positions[tet[2]] = p2.Sub(grad2.Scale(w2 * scale))
		positions[tet[3]] = p3.Sub(grad3.Scale(w3 * scale))
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
