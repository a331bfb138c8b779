package math

import "testing"

func TestBoundsOf(t *testing.T) {
	b := BoundsOf([]Vec3{{1, 2, 3}, {-1, 5, 0}, {0, 0, 10}})
	if b.Min != (Vec3{-1, 0, 0}) {
		t.Errorf("Min = %v, want (-1, 0, 0)", b.Min)
	}
	if b.Max != (Vec3{1, 5, 10}) {
		t.Errorf("Max = %v, want (1, 5, 10)", b.Max)
	}
	if b.Extent() != (Vec3{1, 2.5, 5}) {
		t.Errorf("Extent = %v, want (1, 2.5, 5)", b.Extent())
	}

	if empty := BoundsOf(nil); empty != (Bounds{}) {
		t.Errorf("empty bounds = %v, want zero", empty)
	}
}

func TestBoundsCorners(t *testing.T) {
	b := Bounds{Min: Vec3{0, 0, 0}, Max: Vec3{1, 2, 3}}.ExpandBy(1)
	c := b.Corners()

	if c[0] != (Vec3{-1, -1, -1}) {
		t.Errorf("corner 0 = %v", c[0])
	}
	if c[7] != (Vec3{2, 3, 4}) {
		t.Errorf("corner 7 = %v", c[7])
	}
	if c[1] != (Vec3{2, -1, -1}) || c[2] != (Vec3{-1, 3, -1}) || c[4] != (Vec3{-1, -1, 4}) {
		t.Errorf("axis corners wrong: %v %v %v", c[1], c[2], c[4])
	}
}
