// airbake is a CLI utility for generating and inspecting persisted air meshes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/airmesh-cloth/internal/airmesh"
	"github.com/Faultbox/airmesh-cloth/internal/cloth"
	"github.com/Faultbox/airmesh-cloth/internal/config"
	"github.com/Faultbox/airmesh-cloth/internal/logger"
	"github.com/Faultbox/airmesh-cloth/internal/sim"
	"github.com/Faultbox/airmesh-cloth/pkg/formats"
	"github.com/Faultbox/airmesh-cloth/pkg/math"
)

const (
	defaultOutput = "cloth.amt"
	defaultConfig = "cloth.yaml"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "init":
		cmdInit(args)
	case "bake":
		cmdBake(args)
	case "info":
		cmdInfo(args)
	case "verify":
		cmdVerify(args)
	case "watch":
		cmdWatch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`airbake - air-mesh cloth authoring utility

Usage:
  airbake <command> [options]

Commands:
  init [-o cloth.yaml] [-force]        Write the default config (.yaml or .toml)
  bake [-config file] [-o out.amt]     Generate and save the air mesh
  info <file.amt>                      Show file information
  verify [-config file] <file.amt>     Check indices (and orientation with a config)
  watch -config file [-o out.amt]      Re-bake whenever the config changes

Examples:
  airbake init -o cloth.toml
  airbake bake -config cloth.yaml -o cloth.amt
  airbake bake -backend tetgen -switches pq1.4
  airbake info cloth.amt
  airbake verify -config cloth.yaml cloth.amt`)
}

// loadConfig loads path (or the standard locations) and applies backend overrides.
func loadConfig(path, backend, switches string) *config.Config {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if backend != "" {
		cfg.AirMesh.Backend = backend
	}
	if switches != "" {
		cfg.AirMesh.Switches = switches
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func outputPath(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.AirMesh.File != "" {
		return cfg.AirMesh.File
	}
	return defaultOutput
}

func bake(ctx context.Context, cfg *config.Config, out string) error {
	start := time.Now()
	amt, err := sim.Bake(ctx, cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := amt.WriteFile(out); err != nil {
		return err
	}
	fmt.Printf("Baked: %s (%d tetrahedra, %d particles, %s)\n",
		out, len(amt.Tetrahedra), amt.NumParticles, time.Since(start).Round(time.Millisecond))
	return nil
}

func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	out := fs.String("o", defaultConfig, "Output config file (.yaml or .toml)")
	force := fs.Bool("force", false, "Overwrite an existing file")
	fs.Parse(args)

	if _, err := os.Stat(*out); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use -force to overwrite)\n", *out)
		os.Exit(1)
	}

	if err := config.Default().SaveTo(*out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config: %s\n", *out)
}

func cmdBake(args []string) {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (.yaml or .toml)")
	out := fs.String("o", "", "Output .amt file (default: air_mesh.file or "+defaultOutput+")")
	backend := fs.String("backend", "", "Override air-mesh backend: tetgen or delaunay")
	switches := fs.String("switches", "", "Override meshing library switches")
	fs.Parse(args)

	cfg := loadConfig(*configPath, *backend, *switches)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := bake(ctx, cfg, outputPath(*out, cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: airbake info <file.amt>")
		os.Exit(1)
	}

	amt, err := formats.ParseAMTFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File:       %s\n", args[0])
	fmt.Printf("Version:    %s\n", amt.Version)
	fmt.Printf("Particles:  %d\n", amt.NumParticles)
	fmt.Printf("Tetrahedra: %d\n", len(amt.Tetrahedra))
	if len(amt.Tetrahedra) > 0 {
		fmt.Printf("Max index:  %d\n", amt.MaxIndex())
	}
}

func cmdVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	configPath := fs.String("config", "", "Config the file was baked from; enables orientation checks")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: airbake verify [-config file] <file.amt>")
		os.Exit(1)
	}

	amt, err := formats.ParseAMTFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := airmesh.Validate(amt.Tetrahedra, int(amt.NumParticles)); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK: %d tetrahedra within %d particles\n", len(amt.Tetrahedra), amt.NumParticles)

	if *configPath == "" {
		return
	}

	cfg := loadConfig(*configPath, "", "")
	c := cloth.New(sim.ClothParams(cfg), math.TransformIdentity())
	rest := c.RestPositions()
	if len(rest) != int(amt.NumParticles) {
		fmt.Fprintf(os.Stderr, "FAIL: config has %d particles, file has %d\n", len(rest), amt.NumParticles)
		os.Exit(1)
	}

	negative := 0
	for _, tet := range amt.Tetrahedra {
		if airmesh.TetrahedronVolume(tet, rest) < 0 {
			negative++
		}
	}
	if negative > 0 {
		fmt.Fprintf(os.Stderr, "FAIL: %d tetrahedra have negative rest volume\n", negative)
		os.Exit(1)
	}
	fmt.Println("OK: all tetrahedra oriented")
}

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file to watch (required)")
	out := fs.String("o", "", "Output .amt file (default: air_mesh.file or "+defaultOutput+")")
	fs.Parse(args)

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: airbake watch -config <file> [-o out.amt]")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath, "", "")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := bake(ctx, cfg, outputPath(*out, cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	// Editors often replace files, so watch the directory.
	target, err := filepath.Abs(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", target)

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != target || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			rebake(ctx, target, *out)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}

func rebake(ctx context.Context, path, out string) {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		logger.Warn("config rejected, keeping previous air mesh", zap.Error(err))
		return
	}
	if err := bake(ctx, cfg, outputPath(out, cfg)); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Warn("bake failed", zap.Error(err))
	}
}
