// Package main is the entry point for the headless air-mesh cloth simulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/airmesh-cloth/internal/config"
	"github.com/Faultbox/airmesh-cloth/internal/logger"
	"github.com/Faultbox/airmesh-cloth/internal/sim"
)

var flagOBJ = flag.String("obj", "", "Write the final cloth surface to this OBJ file")

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Air-Mesh Cloth ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := sim.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create simulation", zap.Error(err))
		os.Exit(1)
	}
	defer s.Close()

	if err := s.Run(ctx); err != nil {
		logger.Error("simulation error", zap.Error(err))
		os.Exit(1)
	}

	if *flagOBJ != "" {
		if err := s.WriteOBJ(*flagOBJ); err != nil {
			logger.Error("failed to write surface", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("simulation completed normally")
}
