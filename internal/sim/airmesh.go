package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/Faultbox/airmesh-cloth/internal/airmesh"
	"github.com/Faultbox/airmesh-cloth/internal/cloth"
	"github.com/Faultbox/airmesh-cloth/internal/config"
	"github.com/Faultbox/airmesh-cloth/internal/delaunay"
	"github.com/Faultbox/airmesh-cloth/internal/tetgen"
	"github.com/Faultbox/airmesh-cloth/pkg/formats"
	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

// Air-mesh setup errors.
var (
	ErrUnknownBackend        = errors.New("unknown air-mesh backend")
	ErrParticleCountMismatch = errors.New("air mesh was baked for a different particle count")
)

// NewTetrahedralizer returns the meshing backend named in cfg.
func NewTetrahedralizer(cfg config.AirMeshConfig) (airmesh.Tetrahedralizer, error) {
	switch cfg.Backend {
	case config.BackendTetgen:
		return tetgen.New(cfg.TetgenPath), nil
	case config.BackendDelaunay:
		return delaunay.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// NewBuilder returns an air-mesh builder for cfg.
func NewBuilder(cfg config.AirMeshConfig) (*airmesh.Builder, error) {
	t, err := NewTetrahedralizer(cfg)
	if err != nil {
		return nil, err
	}
	b := airmesh.NewBuilder(t)
	b.Switches = cfg.Switches
	return b, nil
}

// Bake generates the air mesh of the configured cloth in its rest placement
// and returns it ready to persist.
func Bake(ctx context.Context, cfg *config.Config) (*formats.AMT, error) {
	b, err := NewBuilder(cfg.AirMesh)
	if err != nil {
		return nil, err
	}

	params := ClothParams(cfg)
	params.UseAirMesh = true
	c := cloth.New(params, math.TransformIdentity())
	if err := c.GenerateAirMesh(ctx, b); err != nil {
		return nil, err
	}

	return &formats.AMT{
		Version:      formats.AMTCurrentVersion,
		NumParticles: uint32(c.Store().Len()),
		Tetrahedra:   c.AirMesh(),
	}, nil
}

// LoadAirMeshFile installs the tetrahedra persisted at path into c.
func LoadAirMeshFile(c *cloth.Cloth, path string) error {
	amt, err := formats.ParseAMTFile(path)
	if err != nil {
		return err
	}
	if int(amt.NumParticles) != c.Store().Len() {
		return fmt.Errorf("%w: file has %d, cloth has %d", ErrParticleCountMismatch, amt.NumParticles, c.Store().Len())
	}
	return c.LoadAirMesh(amt.Tetrahedra)
}
