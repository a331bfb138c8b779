package cloth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/airmesh-cloth/internal/airmesh"
	"github.com/Faultbox/airmesh-cloth/internal/logger"
	"github.com/Faultbox/airmesh-cloth/internal/surface"
	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

// ErrAirMeshAlreadySet is returned when a cloth's air mesh is produced twice.
// Generating and loading are mutually exclusive per instance.
var ErrAirMeshAlreadySet = errors.New("air mesh already set")

// Params configures a cloth instance.
type Params struct {
	Grid          GridParams
	NumIterations int
	Damping       float32
	UseAirMesh    bool
}

// StepInput is what the host supplies every frame.
type StepInput struct {
	DeltaTime float32
	GravityZ  float32
	Transform math.Transform
}

// Stats describes the constraint state after a step.
type Stats struct {
	Particles  int
	Edges      int
	Tetrahedra int
	// MaxStrain is the largest |length-rest|/rest over all edges.
	MaxStrain float32
	// Inverted counts tetrahedra with negative signed volume.
	Inverted int
}

// Cloth is one simulated cloth instance. It is not safe for concurrent use;
// hand positions to other goroutines through Snapshot.
type Cloth struct {
	ID uuid.UUID

	params   Params
	topology *Topology
	store    *Store
	rest     []math.Vec3

	tets       []airmesh.Tetrahedron
	airMeshSet bool

	prevTransform math.Transform
	log           *zap.Logger
}

// New builds the topology, places it in world space with transform and
// derives rest lengths from that baseline.
func New(p Params, transform math.Transform) *Cloth {
	topology := BuildTopology(p.Grid)

	world := make([]math.Vec3, len(topology.Positions))
	for i, local := range topology.Positions {
		world[i] = transform.TransformPosition(local)
	}
	topology.ComputeRestLengths(world)

	c := &Cloth{
		ID:            uuid.New(),
		params:        p,
		topology:      topology,
		store:         NewStore(world),
		rest:          world,
		prevTransform: transform,
	}
	c.log = logger.Named("cloth", zap.Stringer("id", c.ID))
	c.log.Debug("cloth created",
		zap.Int("particles", topology.NumParticles()),
		zap.Int("edges", len(topology.Edges)),
		zap.Int("layers", p.Grid.NumLayers))

	return c
}

// Params returns the instance parameters.
func (c *Cloth) Params() Params {
	return c.params
}

// Topology returns the constraint graph. It must not be modified.
func (c *Cloth) Topology() *Topology {
	return c.topology
}

// Store returns the position history.
func (c *Cloth) Store() *Store {
	return c.store
}

// Triangles returns the surface triangle list of all layers.
func (c *Cloth) Triangles() []int32 {
	return surface.Indices(c.Grid())
}

// Grid returns the surface layout of the cloth.
func (c *Cloth) Grid() surface.Grid {
	return surface.Grid{
		ResolutionX: c.params.Grid.ResolutionX,
		ResolutionY: c.params.Grid.ResolutionY,
		NumLayers:   c.params.Grid.NumLayers,
	}
}

// RestPositions returns a copy of the world-space baseline the air mesh is
// built from.
func (c *Cloth) RestPositions() []math.Vec3 {
	return append([]math.Vec3(nil), c.rest...)
}

// GenerateAirMesh builds tetrahedra from the rest configuration. On failure
// the cloth keeps running without volume constraints and the error is returned
// for the caller to report.
func (c *Cloth) GenerateAirMesh(ctx context.Context, b *airmesh.Builder) error {
	if c.airMeshSet {
		return ErrAirMeshAlreadySet
	}
	c.airMeshSet = true

	tets, err := b.Build(ctx, c.rest, c.Triangles())
	if err != nil {
		c.log.Warn("air mesh disabled", zap.Error(err))
		return err
	}
	c.tets = tets
	return nil
}

// LoadAirMesh installs a previously generated tetrahedron list. A list with
// an index outside the particle range is rejected and the air mesh stays off.
func (c *Cloth) LoadAirMesh(tets []airmesh.Tetrahedron) error {
	if c.airMeshSet {
		return ErrAirMeshAlreadySet
	}
	c.airMeshSet = true

	if err := airmesh.Validate(tets, c.store.Len()); err != nil {
		c.log.Warn("air mesh rejected", zap.Error(err))
		return fmt.Errorf("loading air mesh: %w", err)
	}
	c.tets = append([]airmesh.Tetrahedron(nil), tets...)
	c.log.Debug("air mesh loaded", zap.Int("tetrahedra", len(tets)))
	return nil
}

// AirMesh returns a copy of the tetrahedron list.
func (c *Cloth) AirMesh() []airmesh.Tetrahedron {
	return append([]airmesh.Tetrahedron(nil), c.tets...)
}

// AirMeshEnabled reports whether volume constraints take part in the solve.
func (c *Cloth) AirMeshEnabled() bool {
	return c.params.UseAirMesh && len(c.tets) > 0
}

// Step advances the simulation by one frame: integration followed by
// NumIterations passes over edges and then tetrahedra.
func (c *Cloth) Step(in StepInput) {
	Integrate(c.store, c.topology.Weights, IntegrateParams{
		DeltaTime: ClampDeltaTime(in.DeltaTime),
		Damping:   c.params.Damping,
		GravityZ:  in.GravityZ,
		Previous:  c.prevTransform,
		Current:   in.Transform,
	})
	c.prevTransform = in.Transform

	positions := c.store.Current()
	useAirMesh := c.AirMeshEnabled()
	for i := 0; i < c.params.NumIterations; i++ {
		RelaxEdges(positions, c.topology.Edges)
		if useAirMesh {
			RelaxTetrahedra(positions, c.topology.Weights, c.tets)
		}
	}
}

// Snapshot returns a copy of the current world-space positions, safe to hand
// to another goroutine.
func (c *Cloth) Snapshot() []math.Vec3 {
	return append([]math.Vec3(nil), c.store.Current()...)
}

// LocalSnapshot returns the current positions in the owner's local frame, as
// of the last step.
func (c *Cloth) LocalSnapshot() []math.Vec3 {
	out := c.Snapshot()
	for i, p := range out {
		out[i] = c.prevTransform.InverseTransformPosition(p)
	}
	return out
}

// Bounds returns the bounding box of the current positions.
func (c *Cloth) Bounds() math.Bounds {
	return math.BoundsOf(c.store.Current())
}

// Stats measures the current constraint state.
func (c *Cloth) Stats() Stats {
	positions := c.store.Current()
	s := Stats{
		Particles:  len(positions),
		Edges:      len(c.topology.Edges),
		Tetrahedra: len(c.tets),
	}

	for _, e := range c.topology.Edges {
		if e.RestLength <= 0 {
			continue
		}
		strain := abs(positions[e.A].Distance(positions[e.B])-e.RestLength) / e.RestLength
		if strain > s.MaxStrain {
			s.MaxStrain = strain
		}
	}
	for _, tet := range c.tets {
		if airmesh.TetrahedronVolume(tet, positions) < 0 {
			s.Inverted++
		}
	}
	return s
}
