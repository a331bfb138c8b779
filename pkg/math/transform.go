package math

// Transform is a rigid placement with non-uniform scale, applied as
// scale, then rotation, then translation.
type Transform struct {
	Translation Vec3
	Rotation    Quat
	Scale       Vec3
}

// TransformIdentity returns the transform that leaves points unchanged.
func TransformIdentity() Transform {
	return Transform{
		Rotation: QuatIdentity(),
		Scale:    Vec3{1, 1, 1},
	}
}

// TransformPosition maps a point from local space into the transform's parent space.
func (t Transform) TransformPosition(p Vec3) Vec3 {
	return t.Rotation.Rotate(p.Mul(t.Scale)).Add(t.Translation)
}

// InverseTransformPosition maps a point from parent space back into local space.
// Zero scale components collapse to zero instead of dividing.
func (t Transform) InverseTransformPosition(p Vec3) Vec3 {
	local := t.Rotation.Inverse().Rotate(p.Sub(t.Translation))
	return local.Mul(Vec3{safeReciprocal(t.Scale.X), safeReciprocal(t.Scale.Y), safeReciprocal(t.Scale.Z)})
}

func safeReciprocal(s float32) float32 {
	if s == 0 {
		return 0
	}
	return 1 / s
}
