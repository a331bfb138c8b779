package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"
)

// createTestAMT creates a minimal valid AMT file for testing.
func createTestAMT(particles uint32, tets [][4]int32) []byte {
	buf := new(bytes.Buffer)

	// Magic "AMTT"
	buf.WriteString("AMTT")

	// Version 1.0 (stored as minor, major)
	buf.WriteByte(0) // minor
	buf.WriteByte(1) // major

	binary.Write(buf, binary.LittleEndian, particles)
	binary.Write(buf, binary.LittleEndian, uint32(len(tets)))
	for _, tet := range tets {
		for _, idx := range tet {
			binary.Write(buf, binary.LittleEndian, idx)
		}
	}

	return buf.Bytes()
}

func TestParseAMT_ValidFile(t *testing.T) {
	tets := [][4]int32{{0, 1, 2, 3}, {4, 5, 6, 7}}
	data := createTestAMT(18, tets)

	amt, err := ParseAMT(data)
	if err != nil {
		t.Fatalf("ParseAMT failed: %v", err)
	}

	if amt.Version.Major != 1 || amt.Version.Minor != 0 {
		t.Errorf("expected version 1.0, got %s", amt.Version)
	}
	if amt.NumParticles != 18 {
		t.Errorf("expected 18 particles, got %d", amt.NumParticles)
	}
	if len(amt.Tetrahedra) != 2 {
		t.Fatalf("expected 2 tetrahedra, got %d", len(amt.Tetrahedra))
	}
	for i, want := range tets {
		if amt.Tetrahedra[i] != want {
			t.Errorf("tetrahedron %d: expected %v, got %v", i, want, amt.Tetrahedra[i])
		}
	}
	if amt.MaxIndex() != 7 {
		t.Errorf("expected max index 7, got %d", amt.MaxIndex())
	}
}

func TestParseAMT_Empty(t *testing.T) {
	amt, err := ParseAMT(createTestAMT(9, nil))
	if err != nil {
		t.Fatalf("ParseAMT failed: %v", err)
	}
	if len(amt.Tetrahedra) != 0 {
		t.Errorf("expected no tetrahedra, got %d", len(amt.Tetrahedra))
	}
	if amt.MaxIndex() != -1 {
		t.Errorf("expected max index -1, got %d", amt.MaxIndex())
	}
}

func TestParseAMT_InvalidMagic(t *testing.T) {
	data := createTestAMT(4, [][4]int32{{0, 1, 2, 3}})
	copy(data, "XXXX")

	_, err := ParseAMT(data)
	if !errors.Is(err, ErrInvalidAMTMagic) {
		t.Errorf("expected ErrInvalidAMTMagic, got %v", err)
	}
}

func TestParseAMT_UnsupportedVersion(t *testing.T) {
	data := createTestAMT(4, nil)
	data[5] = 9 // major

	_, err := ParseAMT(data)
	if !errors.Is(err, ErrUnsupportedAMTVersion) {
		t.Errorf("expected ErrUnsupportedAMTVersion, got %v", err)
	}
}

func TestParseAMT_TruncatedData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"magic only", []byte("AMTT")},
		{"missing records", createTestAMT(8, [][4]int32{{0, 1, 2, 3}, {1, 2, 3, 4}})[:14+16+4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAMT(tt.data)
			if !errors.Is(err, ErrTruncatedAMTData) {
				t.Errorf("expected ErrTruncatedAMTData, got %v", err)
			}
		})
	}
}

func TestAMT_RoundTrip(t *testing.T) {
	original := &AMT{
		NumParticles: 50,
		Tetrahedra: [][4]int32{
			{3, 1, 2, 0},
			{10, 49, 7, 22},
			{0, 0, 0, 0},
			{5, 4, 3, 2},
		},
	}

	var buf bytes.Buffer
	if err := original.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if !bytes.Equal(buf.Bytes(), createTestAMT(50, original.Tetrahedra)) {
		t.Error("encoded bytes differ from the documented layout")
	}

	parsed, err := ParseAMT(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseAMT failed: %v", err)
	}
	if parsed.Version != AMTCurrentVersion {
		t.Errorf("expected version %s, got %s", AMTCurrentVersion, parsed.Version)
	}
	if len(parsed.Tetrahedra) != len(original.Tetrahedra) {
		t.Fatalf("expected %d tetrahedra, got %d", len(original.Tetrahedra), len(parsed.Tetrahedra))
	}
	for i := range original.Tetrahedra {
		if parsed.Tetrahedra[i] != original.Tetrahedra[i] {
			t.Errorf("record %d: expected %v, got %v", i, original.Tetrahedra[i], parsed.Tetrahedra[i])
		}
	}
}

func TestAMT_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloth.amt")
	amt := &AMT{NumParticles: 8, Tetrahedra: [][4]int32{{0, 1, 2, 3}}}

	if err := amt.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	parsed, err := ParseAMTFile(path)
	if err != nil {
		t.Fatalf("ParseAMTFile failed: %v", err)
	}
	if parsed.NumParticles != 8 || len(parsed.Tetrahedra) != 1 || parsed.Tetrahedra[0] != [4]int32{0, 1, 2, 3} {
		t.Errorf("unexpected contents: %+v", parsed)
	}
}

func TestParseAMTFile_Missing(t *testing.T) {
	if _, err := ParseAMTFile("/nonexistent/cloth.amt"); err == nil {
		t.Error("expected error for missing file")
	}
}
