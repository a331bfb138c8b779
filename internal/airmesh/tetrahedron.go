// Package airmesh converts a triangulated cloth surface into the tetrahedral
// "air mesh" that keeps layered cloth from collapsing.
package airmesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

// Tetrahedron holds 4 particle indices. Stored tetrahedra are oriented so that
// SignedVolume of their rest positions is non-negative.
type Tetrahedron = [4]int32

// ErrIndexOutOfRange reports a tetrahedron referencing a particle that does not exist.
var ErrIndexOutOfRange = errors.New("tetrahedron index out of range")

// SignedVolume returns dot(p0-p3, cross(p1-p3, p2-p3)), six times the signed
// volume of the tetrahedron.
func SignedVolume(p0, p1, p2, p3 math.Vec3) float32 {
	return p0.Sub(p3).Dot(p1.Sub(p3).Cross(p2.Sub(p3)))
}

// TetrahedronVolume evaluates SignedVolume for tet over positions.
func TetrahedronVolume(tet Tetrahedron, positions []math.Vec3) float32 {
	return SignedVolume(positions[tet[0]], positions[tet[1]], positions[tet[2]], positions[tet[3]])
}

// Filter keeps the tetrahedra whose indices all lie in [0, n). The synthetic
// bounding-box points, and any point the library inserted, sit at n and above.
func Filter(tets []Tetrahedron, n int) []Tetrahedron {
	kept := make([]Tetrahedron, 0, len(tets))
	for _, tet := range tets {
		if inRange(tet, n) {
			kept = append(kept, tet)
		}
	}
	return kept
}

// Orient swaps the last two indices of every tetrahedron with negative volume.
func Orient(tets []Tetrahedron, positions []math.Vec3) {
	for i := range tets {
		if TetrahedronVolume(tets[i], positions) < 0 {
			tets[i][2], tets[i][3] = tets[i][3], tets[i][2]
		}
	}
}

// Validate checks that every index of every tetrahedron lies in [0, n).
func Validate(tets []Tetrahedron, n int) error {
	for i, tet := range tets {
		if !inRange(tet, n) {
			return fmt.Errorf("%w: tetrahedron %d %v, particle count %d", ErrIndexOutOfRange, i, tet, n)
		}
	}
	return nil
}

func inRange(tet Tetrahedron, n int) bool {
	for _, idx := range tet {
		if idx < 0 || int(idx) >= n {
			return false
		}
	}
	return true
}
