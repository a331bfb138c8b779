package cloth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

func TestStore(t *testing.T) {
	initial := []math.Vec3{{X: 1}, {Y: 2}}
	s := NewStore(initial)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, initial, s.Current())
	assert.Equal(t, initial, s.Previous())

	// Buffers are owned copies
	initial[0] = math.Vec3{X: 100}
	assert.Equal(t, math.Vec3{X: 1}, s.Current()[0])

	s.Current()[0] = math.Vec3{Z: 3}
	assert.Equal(t, math.Vec3{X: 1}, s.Previous()[0])

	s.Swap()
	assert.Equal(t, math.Vec3{X: 1}, s.Current()[0])
	assert.Equal(t, math.Vec3{Z: 3}, s.Previous()[0])

	s.Swap()
	assert.Equal(t, math.Vec3{Z: 3}, s.Current()[0])

	s.Reset([]math.Vec3{{X: 7}})
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, s.Current(), s.Previous())
}
