// Package main is the headless tilt maze simulator.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/tiltmaze/internal/config"
	"github.com/Faultbox/tiltmaze/internal/game"
	"github.com/Faultbox/tiltmaze/internal/logger"
	"github.com/Faultbox/tiltmaze/internal/scene"
	"github.com/Faultbox/tiltmaze/internal/trace"
)

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

	logger.Info("=== TiltMaze Simulator ===")
	logger.Sugar.Debugf("Config: %+v", cfg)
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	sc := scene.Default()
	if cfg.Run.Scene != "" {
		var err error
		if sc, err = scene.Load(cfg.Run.Scene); err != nil {
			return err
		}
	}

	g, err := game.New(cfg, sc)
	if err != nil {
		return err
	}

	if cfg.Run.Trace != "" {
		rec, err := trace.Create(cfg.Run.Trace)
		if err != nil {
			return err
		}
		g.SetRecorder(rec)
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Error("writing trace", zap.String("path", cfg.Run.Trace), zap.Error(err))
				return
			}
			logger.Info("Trace written", zap.String("path", cfg.Run.Trace), zap.Int("frames", rec.Frames()))
		}()
	}

	script := game.Script(game.Idle)
	if cfg.Run.Autopilot {
		ap, err := game.NewAutopilot(g)
		if err != nil {
			return err
		}
		logger.Info("Autopilot engaged", zap.Int("route", len(ap.Route())))
		script = ap.Input
	}

	st, err := g.Run(ctx, cfg.Run.Frames, script)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Warn("interrupted", zap.Int("frames", st.Frames))
	case err != nil:
		return err
	}

	last := g.Last()
	fmt.Printf("scene      %s\n", g.Level().Name)
	fmt.Printf("frames     %d (%.2fs simulated, %v wall)\n", st.Frames, g.Time(), st.Wall)
	fmt.Printf("position   %.4f %.4f %.4f\n", last.Pose.Position.X, last.Pose.Position.Y, last.Pose.Position.Z)
	fmt.Printf("state      %s\n", last.State)
	fmt.Printf("impacts    %d\n", st.Impacts)
	fmt.Printf("respawns   %d\n", st.Respawns)
	fmt.Printf("resting    %d frames\n", st.RestingFrames)
	fmt.Printf("max pen    %.6f\n", st.MaxPenetration)
	if ok, at := g.GoalReached(); ok {
		fmt.Printf("goal       reached at %.2fs\n", at)
	}
	return nil
}
