package surface

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteOBJ writes vertices and the triangle list as a Wavefront OBJ mesh with
// texture coordinates and normals. One object group is written per layer.
func WriteOBJ(w io.Writer, g Grid, vertices []Vertex, indices []int32) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# air-mesh cloth %dx%d, %d layer(s)\n", g.ResolutionX, g.ResolutionY, g.NumLayers)
	for _, v := range vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.Position.X, v.Position.Y, v.Position.Z)
	}
	for _, v := range vertices {
		fmt.Fprintf(bw, "vt %g %g\n", v.UV.X, v.UV.Y)
	}
	for _, v := range vertices {
		fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal.X, v.Normal.Y, v.Normal.Z)
	}

	perLayer := g.ResolutionX * g.ResolutionY * 6
	for i := 0; i+2 < len(indices); i += 3 {
		if perLayer > 0 && i%perLayer == 0 {
			fmt.Fprintf(bw, "g layer%d\n", i/perLayer)
		}
		// OBJ indices are 1-based
		a, b, c := indices[i]+1, indices[i+1]+1, indices[i+2]+1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}

	return bw.Flush()
}

// WriteOBJFile writes the mesh to path.
func WriteOBJFile(path string, g Grid, vertices []Vertex, indices []int32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating OBJ file: %w", err)
	}
	if err := WriteOBJ(f, g, vertices, indices); err != nil {
		f.Close()
		return fmt.Errorf("writing OBJ file: %w", err)
	}
	return f.Close()
}
