// Package tetgen adapts the TetGen command-line mesher to airmesh.Tetrahedralizer.
// It writes the request as a .poly file, runs the binary and reads the .ele
// output back. All files live in a temporary directory owned by one call.
package tetgen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/airmesh-cloth/internal/airmesh"
)

// ErrMalformedEle is returned when TetGen's element output cannot be parsed.
var ErrMalformedEle = errors.New("malformed .ele file")

// WritePoly writes in as a zero-based TetGen piecewise-linear complex: node
// list, one facet per input facet, no holes and no regions.
func WritePoly(w io.Writer, in airmesh.Input) error {
	bw := bufio.NewWriter(w)

	n := in.NumPoints()
	fmt.Fprintf(bw, "# nodes\n%d 3 0 0\n", n)
	for i := 0; i < n; i++ {
		p := in.Point(i)
		fmt.Fprintf(bw, "%d %s %s %s\n", i,
			strconv.FormatFloat(p[0], 'g', -1, 64),
			strconv.FormatFloat(p[1], 'g', -1, 64),
			strconv.FormatFloat(p[2], 'g', -1, 64))
	}

	fmt.Fprintf(bw, "# facets\n%d 0\n", len(in.Facets))
	for _, f := range in.Facets {
		fmt.Fprintf(bw, "%d 0\n", len(f.Polygons))
		for _, poly := range f.Polygons {
			bw.WriteString(strconv.Itoa(len(poly)))
			for _, idx := range poly {
				bw.WriteByte(' ')
				bw.WriteString(strconv.Itoa(int(idx)))
			}
			bw.WriteByte('\n')
		}
	}

	bw.WriteString("# holes\n0\n# regions\n0\n")
	return bw.Flush()
}

// ParseEle reads a TetGen .ele file with zero-based indices. Only the first
// four corners of each element are kept; attributes and the extra nodes of
// second-order elements are ignored.
func ParseEle(r io.Reader) ([]airmesh.Tetrahedron, error) {
	sc := bufio.NewScanner(r)

	var tets []airmesh.Tetrahedron
	count, perTet, lineNo := -1, 0, 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(stripComment(sc.Text()))
		if len(fields) == 0 {
			continue
		}

		if count < 0 {
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: line %d: header needs element and node counts", ErrMalformedEle, lineNo)
			}
			var err error
			if count, err = strconv.Atoi(fields[0]); err != nil || count < 0 {
				return nil, fmt.Errorf("%w: line %d: bad element count %q", ErrMalformedEle, lineNo, fields[0])
			}
			if perTet, err = strconv.Atoi(fields[1]); err != nil || perTet < 4 {
				return nil, fmt.Errorf("%w: line %d: bad nodes per element %q", ErrMalformedEle, lineNo, fields[1])
			}
			tets = make([]airmesh.Tetrahedron, 0, count)
			continue
		}

		if len(tets) == count {
			return nil, fmt.Errorf("%w: line %d: more than %d elements", ErrMalformedEle, lineNo, count)
		}
		if len(fields) < 1+perTet {
			return nil, fmt.Errorf("%w: line %d: expected %d nodes", ErrMalformedEle, lineNo, perTet)
		}

		var tet airmesh.Tetrahedron
		for k := 0; k < 4; k++ {
			v, err := strconv.ParseInt(fields[1+k], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedEle, lineNo, err)
			}
			tet[k] = int32(v)
		}
		tets = append(tets, tet)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading .ele: %w", err)
	}

	if count < 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedEle)
	}
	if len(tets) != count {
		return nil, fmt.Errorf("%w: expected %d elements, found %d", ErrMalformedEle, count, len(tets))
	}
	return tets, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}
