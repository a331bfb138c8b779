// Package config handles simulation configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all cloth and tool settings.
type Config struct {
	Cloth      ClothConfig      `yaml:"cloth" toml:"cloth"`
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation"`
	AirMesh    AirMeshConfig    `yaml:"air_mesh" toml:"air_mesh"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

// ClothConfig holds the structural parameters of the cloth sheet. Changing any
// of them requires rebuilding the cloth and its air mesh.
type ClothConfig struct {
	ResolutionX   int     `yaml:"resolution_x" toml:"resolution_x"`
	ResolutionY   int     `yaml:"resolution_y" toml:"resolution_y"`
	SizeX         float32 `yaml:"size_x" toml:"size_x"`
	SizeY         float32 `yaml:"size_y" toml:"size_y"`
	NumLayers     int     `yaml:"num_layers" toml:"num_layers"`
	LayerInterval float32 `yaml:"layer_interval" toml:"layer_interval"`
	UseAirMesh    bool    `yaml:"use_air_mesh" toml:"use_air_mesh"`
}

// SimulationConfig holds per-frame solver inputs and the headless run setup.
type SimulationConfig struct {
	NumIterations int     `yaml:"num_iterations" toml:"num_iterations"`
	Damping       float32 `yaml:"damping" toml:"damping"`
	GravityZ      float32 `yaml:"gravity_z" toml:"gravity_z"`
	FrameRate     float32 `yaml:"frame_rate" toml:"frame_rate"` // frames per second of the headless run
	Frames        int     `yaml:"frames" toml:"frames"`
	StatsInterval int     `yaml:"stats_interval" toml:"stats_interval"` // log stats every N frames, 0 disables
	SwayAmplitude float32 `yaml:"sway_amplitude" toml:"sway_amplitude"` // owner translation along X
	SwayPeriod    float32 `yaml:"sway_period" toml:"sway_period"`       // seconds
	SwayAngle     float32 `yaml:"sway_angle" toml:"sway_angle"`         // owner yaw about Z in radians, in phase with the translation
}

// AirMeshConfig selects how tetrahedra are produced and where they are persisted.
type AirMeshConfig struct {
	Backend    string `yaml:"backend" toml:"backend"` // "tetgen" or "delaunay"
	TetgenPath string `yaml:"tetgen_path" toml:"tetgen_path"`
	Switches   string `yaml:"switches" toml:"switches"`
	File       string `yaml:"file" toml:"file"` // persisted .amt list
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Air-mesh backends.
const (
	BackendTetgen   = "tetgen"
	BackendDelaunay = "delaunay"
)

// Default returns a Config with the component's stock values.
func Default() *Config {
	return &Config{
		Cloth: ClothConfig{
			ResolutionX:   16,
			ResolutionY:   16,
			SizeX:         100,
			SizeY:         100,
			NumLayers:     1,
			LayerInterval: 5,
			UseAirMesh:    true,
		},
		Simulation: SimulationConfig{
			NumIterations: 4,
			Damping:       0.01,
			GravityZ:      -980,
			FrameRate:     60,
			Frames:        600,
			StatsInterval: 60,
			SwayAmplitude: 0,
			SwayPeriod:    2,
		},
		AirMesh: AirMeshConfig{
			Backend:    BackendDelaunay,
			TetgenPath: "tetgen",
			Switches:   "",
			File:       "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ErrOutOfRange is returned by Validate for settings outside their documented range.
var ErrOutOfRange = errors.New("setting out of range")

// Validate checks every setting against its documented range. The cloth core
// performs no validation of its own.
func (c *Config) Validate() error {
	var errs []error

	checkInt := func(name string, v, min, max int) {
		if v < min || v > max {
			errs = append(errs, fmt.Errorf("%w: %s=%d, want [%d, %d]", ErrOutOfRange, name, v, min, max))
		}
	}
	checkFloat := func(name string, v, min, max float32) {
		if v < min || v > max {
			errs = append(errs, fmt.Errorf("%w: %s=%g, want [%g, %g]", ErrOutOfRange, name, v, min, max))
		}
	}

	checkInt("cloth.resolution_x", c.Cloth.ResolutionX, 1, 64)
	checkInt("cloth.resolution_y", c.Cloth.ResolutionY, 1, 64)
	checkInt("cloth.num_layers", c.Cloth.NumLayers, 1, 16)
	checkFloat("cloth.size_x", c.Cloth.SizeX, 0, 1000)
	checkFloat("cloth.size_y", c.Cloth.SizeY, 0, 1000)
	checkFloat("cloth.layer_interval", c.Cloth.LayerInterval, 0, 100)
	checkInt("simulation.num_iterations", c.Simulation.NumIterations, 1, 16)
	checkFloat("simulation.damping", c.Simulation.Damping, 0, 1)

	if c.Simulation.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: simulation.frame_rate=%g, want > 0", ErrOutOfRange, c.Simulation.FrameRate))
	}
	if c.Simulation.Frames < 0 {
		errs = append(errs, fmt.Errorf("%w: simulation.frames=%d, want >= 0", ErrOutOfRange, c.Simulation.Frames))
	}

	switch c.AirMesh.Backend {
	case BackendTetgen, BackendDelaunay:
	default:
		errs = append(errs, fmt.Errorf("unknown air_mesh.backend %q", c.AirMesh.Backend))
	}

	return errors.Join(errs...)
}
