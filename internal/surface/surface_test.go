package surface

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

func flatGrid(g Grid) []math.Vec3 {
	var pos []math.Vec3
	for layer := 0; layer < g.NumLayers; layer++ {
		for y := 0; y <= g.ResolutionY; y++ {
			for x := 0; x <= g.ResolutionX; x++ {
				pos = append(pos, math.Vec3{X: float32(x), Y: float32(layer), Z: float32(-y)})
			}
		}
	}
	return pos
}

func TestIndices(t *testing.T) {
	g := Grid{ResolutionX: 2, ResolutionY: 1, NumLayers: 2}
	indices := Indices(g)

	if len(indices) != g.IndexCount() {
		t.Fatalf("expected %d indices, got %d", g.IndexCount(), len(indices))
	}
	if len(indices) != 24 {
		t.Fatalf("expected 24 indices, got %d", len(indices))
	}

	// First cell of layer 0
	want := []int32{0, 1, 3, 1, 4, 3}
	for i, w := range want {
		if indices[i] != w {
			t.Errorf("index %d: expected %d, got %d", i, w, indices[i])
		}
	}

	// First cell of layer 1 is offset by 6 vertices
	for i, w := range want {
		if indices[12+i] != w+6 {
			t.Errorf("layer 1 index %d: expected %d, got %d", i, w+6, indices[12+i])
		}
	}
}

func TestBuildVertices(t *testing.T) {
	g := Grid{ResolutionX: 2, ResolutionY: 2, NumLayers: 1}
	vertices := BuildVertices(g, flatGrid(g))

	if len(vertices) != 9 {
		t.Fatalf("expected 9 vertices, got %d", len(vertices))
	}

	center := vertices[4]
	if center.UV != (math.Vec2{X: 0.5, Y: 0.5}) {
		t.Errorf("center UV: expected (0.5, 0.5), got %v", center.UV)
	}
	if center.TangentX != (math.Vec3{X: 1}) {
		t.Errorf("center TangentX: expected (1,0,0), got %v", center.TangentX)
	}
	if center.TangentY != (math.Vec3{Z: -1}) {
		t.Errorf("center TangentY: expected (0,0,-1), got %v", center.TangentY)
	}
	// X cross -Z = +Y
	if center.Normal != (math.Vec3{Y: 1}) {
		t.Errorf("center normal: expected (0,1,0), got %v", center.Normal)
	}

	corner := vertices[8]
	if corner.UV != (math.Vec2{X: 1, Y: 1}) {
		t.Errorf("corner UV: expected (1, 1), got %v", corner.UV)
	}
	if corner.TangentX != (math.Vec3{X: 1}) {
		t.Errorf("corner TangentX: expected (1,0,0), got %v", corner.TangentX)
	}
}

func TestWriteOBJ(t *testing.T) {
	g := Grid{ResolutionX: 1, ResolutionY: 1, NumLayers: 2}
	vertices := BuildVertices(g, flatGrid(g))

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, g, vertices, Indices(g)); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}
	out := buf.String()

	if n := strings.Count(out, "\nv "); n != 8 {
		t.Errorf("expected 8 positions, got %d", n)
	}
	if n := strings.Count(out, "\nf "); n != 4 {
		t.Errorf("expected 4 faces, got %d", n)
	}
	if !strings.Contains(out, "g layer1\n") {
		t.Error("expected a group for layer 1")
	}
	if !strings.Contains(out, "f 1/1/1 2/2/2 3/3/3\n") {
		t.Error("expected 1-based first face")
	}
}
