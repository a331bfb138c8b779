package math

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max Vec3
}

// BoundsOf returns the smallest box containing all points.
// An empty slice yields the zero box.
func BoundsOf(points []Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Extent returns the half size of the box.
func (b Bounds) Extent() Vec3 {
	return b.Max.Sub(b.Min).Scale(0.5)
}

// ExpandBy grows the box by d on every side.
func (b Bounds) ExpandBy(d float32) Bounds {
	return Bounds{Min: b.Min.Sub(Splat(d)), Max: b.Max.Add(Splat(d))}
}

// Corners returns the 8 corners. Bit 0 of the index selects max X,
// bit 1 max Y and bit 2 max Z.
func (b Bounds) Corners() [8]Vec3 {
	var c [8]Vec3
	for i := range c {
		c[i] = b.Min
		if i&1 != 0 {
			c[i].X = b.Max.X
		}
		if i&2 != 0 {
			c[i].Y = b.Max.Y
		}
		if i&4 != 0 {
			c[i].Z = b.Max.Z
		}
	}
	return c
}
