// Package sim wires configuration, the cloth solver and the air-mesh pipeline
// into a headless, fixed-step simulation run.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/airmesh-cloth/internal/cloth"
	"github.com/Faultbox/airmesh-cloth/internal/config"
	"github.com/Faultbox/airmesh-cloth/internal/logger"
	"github.com/Faultbox/airmesh-cloth/internal/surface"
	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

// Sim is one headless simulation run.
type Sim struct {
	cfg   *config.Config
	cloth *cloth.Cloth
	log   *zap.Logger
	frame int
}

// ClothParams maps configuration onto cloth parameters.
func ClothParams(cfg *config.Config) cloth.Params {
	return cloth.Params{
		Grid: cloth.GridParams{
			ResolutionX:   cfg.Cloth.ResolutionX,
			ResolutionY:   cfg.Cloth.ResolutionY,
			SizeX:         cfg.Cloth.SizeX,
			SizeY:         cfg.Cloth.SizeY,
			NumLayers:     cfg.Cloth.NumLayers,
			LayerInterval: cfg.Cloth.LayerInterval,
		},
		NumIterations: cfg.Simulation.NumIterations,
		Damping:       cfg.Simulation.Damping,
		UseAirMesh:    cfg.Cloth.UseAirMesh,
	}
}

// New creates the cloth and its air mesh. A configured .amt file is loaded
// (runtime path); otherwise the air mesh is generated in-process (authoring
// path). Air-mesh problems are logged and the run continues without it.
func New(ctx context.Context, cfg *config.Config) (*Sim, error) {
	log := logger.Named("sim")
	log.Info("initializing simulation",
		zap.Int("resolution_x", cfg.Cloth.ResolutionX),
		zap.Int("resolution_y", cfg.Cloth.ResolutionY),
		zap.Int("layers", cfg.Cloth.NumLayers),
		zap.Bool("air_mesh", cfg.Cloth.UseAirMesh))

	s := &Sim{
		cfg: cfg,
		log: log,
	}
	s.cloth = cloth.New(ClothParams(cfg), s.OwnerTransform(0))

	if cfg.Cloth.UseAirMesh {
		if err := s.setupAirMesh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			log.Warn("continuing without air mesh", zap.Error(err))
		}
	}

	log.Info("simulation initialized",
		zap.Stringer("cloth", s.cloth.ID),
		zap.Bool("air_mesh_enabled", s.cloth.AirMeshEnabled()))
	return s, nil
}

func (s *Sim) setupAirMesh(ctx context.Context) error {
	if s.cfg.AirMesh.File != "" {
		return LoadAirMeshFile(s.cloth, s.cfg.AirMesh.File)
	}

	b, err := NewBuilder(s.cfg.AirMesh)
	if err != nil {
		return err
	}
	return s.cloth.GenerateAirMesh(ctx, b)
}

// Cloth returns the simulated cloth.
func (s *Sim) Cloth() *cloth.Cloth {
	return s.cloth
}

// Frame returns the number of frames simulated so far.
func (s *Sim) Frame() int {
	return s.frame
}

// OwnerTransform returns the owner placement at time t (seconds): a sway
// along X with an optional yaw, or identity when sway is off.
func (s *Sim) OwnerTransform(t float32) math.Transform {
	tr := math.TransformIdentity()
	sim := s.cfg.Simulation
	if sim.SwayPeriod <= 0 || (sim.SwayAmplitude == 0 && sim.SwayAngle == 0) {
		return tr
	}
	phase := math32.Sin(2 * math32.Pi * t / sim.SwayPeriod)
	tr.Translation.X = sim.SwayAmplitude * phase
	if sim.SwayAngle != 0 {
		tr.Rotation = math.QuatFromAxisAngle(math.Vec3{Z: 1}, sim.SwayAngle*phase)
	}
	return tr
}

// Run simulates the configured number of frames at a fixed step.
func (s *Sim) Run(ctx context.Context) error {
	sim := s.cfg.Simulation
	dt := 1 / sim.FrameRate

	s.log.Info("starting simulation", zap.Int("frames", sim.Frames), zap.Float32("dt", dt))
	start := time.Now()

	for i := 0; i < sim.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("simulation stopped at frame %d: %w", s.frame, err)
		}
		s.Step(dt)

		if sim.StatsInterval > 0 && s.frame%sim.StatsInterval == 0 {
			s.logStats()
		}
	}

	s.log.Info("simulation finished",
		zap.Int("frames", s.frame),
		zap.Duration("took", time.Since(start)))
	s.logStats()
	return nil
}

// Step advances one frame of length dt.
func (s *Sim) Step(dt float32) {
	s.frame++
	s.cloth.Step(cloth.StepInput{
		DeltaTime: dt,
		GravityZ:  s.cfg.Simulation.GravityZ,
		Transform: s.OwnerTransform(float32(s.frame) * dt),
	})
}

func (s *Sim) logStats() {
	st := s.cloth.Stats()
	b := s.cloth.Bounds()
	s.log.Info("stats",
		zap.Int("frame", s.frame),
		zap.Float32("max_strain", st.MaxStrain),
		zap.Int("inverted", st.Inverted),
		zap.Int("tetrahedra", st.Tetrahedra),
		zap.Float32("min_z", b.Min.Z))
}

// WriteOBJ writes the current surface, in the owner's local frame, to path.
func (s *Sim) WriteOBJ(path string) error {
	grid := s.cloth.Grid()
	vertices := surface.BuildVertices(grid, s.cloth.LocalSnapshot())
	if err := surface.WriteOBJFile(path, grid, vertices, surface.Indices(grid)); err != nil {
		return err
	}
	s.log.Info("surface written", zap.String("path", path), zap.Int("vertices", len(vertices)))
	return nil
}

// Close releases the run.
func (s *Sim) Close() {
	s.log.Info("closing simulation", zap.Int("frames", s.frame))
}
