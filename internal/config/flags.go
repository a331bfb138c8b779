package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagFrames     = flag.Int("frames", -1, "Number of frames to simulate")
	flagIterations = flag.Int("iterations", 0, "Constraint iterations per frame")
	flagNoAirMesh  = flag.Bool("no-airmesh", false, "Disable the air-mesh constraint family")
	flagAirMesh    = flag.String("airmesh", "", "Path to a persisted .amt tetrahedra file")
	flagBackend    = flag.String("backend", "", "Air-mesh backend: tetgen or delaunay")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFrames >= 0 {
		cfg.Simulation.Frames = *flagFrames
	}
	if *flagIterations > 0 {
		cfg.Simulation.NumIterations = *flagIterations
	}
	if *flagNoAirMesh {
		cfg.Cloth.UseAirMesh = false
	}
	if *flagAirMesh != "" {
		cfg.AirMesh.File = *flagAirMesh
	}
	if *flagBackend != "" {
		cfg.AirMesh.Backend = *flagBackend
	}
}
