// Package main is a terminal viewer for the tilt maze: WASD tilts the maze
// and the ball is drawn top-down.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/tiltmaze/internal/config"
	"github.com/Faultbox/tiltmaze/internal/game"
	"github.com/Faultbox/tiltmaze/internal/logger"
	"github.com/Faultbox/tiltmaze/internal/scene"
)

var flagSound = flag.Bool("sound", false, "Click on impacts")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// The screen owns stdout, so logs only go to the file if one is set.
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, false); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sc := scene.Default()
	if cfg.Run.Scene != "" {
		if sc, err = scene.Load(cfg.Run.Scene); err != nil {
			fmt.Fprintf(os.Stderr, "Scene error: %v\n", err)
			os.Exit(1)
		}
	}
	g, err := game.New(cfg, sc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scene error: %v\n", err)
		os.Exit(1)
	}

	v, err := newViewer(g, *flagSound)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer v.cleanup()

	if err := v.run(); err != nil {
		v.cleanup()
		logger.Error("viewer stopped", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
