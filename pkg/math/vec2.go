// Package math provides the small float32 vector toolkit shared by the cloth
// solver, the air-mesh builder and the mesh-building stage.
package math

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}
