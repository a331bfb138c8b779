package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// AMT format errors.
var (
	ErrInvalidAMTMagic       = errors.New("invalid AMT magic: expected 'AMTT'")
	ErrUnsupportedAMTVersion = errors.New("unsupported AMT version")
	ErrTruncatedAMTData      = errors.New("truncated AMT data")
)

const (
	amtMagic      = "AMTT"
	amtHeaderSize = 14

	// Record count sanity limit; a 64x64x16 cloth stays far below it.
	amtMaxRecords = 1 << 24
)

// AMTVersion represents the AMT file version.
type AMTVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v AMTVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AMTCurrentVersion is the version written by (*AMT).Write.
var AMTCurrentVersion = AMTVersion{Major: 1, Minor: 0}

// AMT is the persisted air-mesh tetrahedra list of one cloth instance.
//
// Layout (little endian):
//
//	"AMTT" | minor u8 | major u8 | particles u32 | count u32 | count * 4 * i32
type AMT struct {
	Version AMTVersion
	// NumParticles is the particle count the list was built for.
	NumParticles uint32
	Tetrahedra   [][4]int32
}

// ParseAMT parses an AMT file from raw bytes.
func ParseAMT(data []byte) (*AMT, error) {
	if len(data) < amtHeaderSize {
		return nil, ErrTruncatedAMTData
	}

	if string(data[0:4]) != amtMagic {
		return nil, ErrInvalidAMTMagic
	}

	// Version is stored as [minor, major]
	version := AMTVersion{
		Major: data[5],
		Minor: data[4],
	}
	if version.Major != AMTCurrentVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAMTVersion, version)
	}

	r := bytes.NewReader(data[6:])

	var particles, count uint32
	if err := binary.Read(r, binary.LittleEndian, &particles); err != nil {
		return nil, fmt.Errorf("%w: reading particle count", ErrTruncatedAMTData)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading record count", ErrTruncatedAMTData)
	}
	if count > amtMaxRecords {
		return nil, fmt.Errorf("invalid AMT record count: %d", count)
	}
	if r.Len() < int(count)*16 {
		return nil, fmt.Errorf("%w: expected %d records, have %d bytes", ErrTruncatedAMTData, count, r.Len())
	}

	amt := &AMT{
		Version:      version,
		NumParticles: particles,
		Tetrahedra:   make([][4]int32, count),
	}
	if err := binary.Read(r, binary.LittleEndian, amt.Tetrahedra); err != nil {
		return nil, fmt.Errorf("%w: reading records", ErrTruncatedAMTData)
	}

	return amt, nil
}

// ParseAMTFile parses an AMT file from disk.
func ParseAMTFile(path string) (*AMT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading AMT file: %w", err)
	}
	return ParseAMT(data)
}

// Write encodes the list in the current AMT version.
func (a *AMT) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(amtMagic)
	bw.WriteByte(AMTCurrentVersion.Minor)
	bw.WriteByte(AMTCurrentVersion.Major)

	if err := binary.Write(bw, binary.LittleEndian, a.NumParticles); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(a.Tetrahedra))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, a.Tetrahedra); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile writes the list to path, replacing any existing file.
func (a *AMT) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating AMT file: %w", err)
	}
	if err := a.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing AMT file: %w", err)
	}
	return f.Close()
}

// MaxIndex returns the largest particle index referenced, or -1 for an empty list.
func (a *AMT) MaxIndex() int32 {
	max := int32(-1)
	for _, tet := range a.Tetrahedra {
		for _, idx := range tet {
			if idx > max {
				max = idx
			}
		}
	}
	return max
}
