package cloth

import (
	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

// Store holds the Verlet position history as two owned buffers and a selector
// naming the current one.
type Store struct {
	buffers [2][]math.Vec3
	current int
}

// NewStore returns a store with both buffers set to a copy of positions.
func NewStore(positions []math.Vec3) *Store {
	s := &Store{}
	s.Reset(positions)
	return s
}

// Reset sets both buffers to a copy of positions. A particle reset this way
// has zero implicit velocity.
func (s *Store) Reset(positions []math.Vec3) {
	s.buffers[0] = append(s.buffers[0][:0], positions...)
	s.buffers[1] = append(s.buffers[1][:0], positions...)
	s.current = 0
}

// Len returns the number of particles.
func (s *Store) Len() int {
	return len(s.buffers[0])
}

// Current returns the authoritative positions. The slice may be written.
func (s *Store) Current() []math.Vec3 {
	return s.buffers[s.current]
}

// Previous returns the positions of the step before. Callers outside the
// solver must not write to it.
func (s *Store) Previous() []math.Vec3 {
	return s.buffers[1-s.current]
}

// Swap toggles which buffer is current.
func (s *Store) Swap() {
	s.current = 1 - s.current
}
