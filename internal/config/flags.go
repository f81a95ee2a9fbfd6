package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagScene    = flag.String("scene", "", "Scene file to load")
	flagSubSteps = flag.Int("substeps", 0, "Physics sub-steps per frame")
	flagFrames   = flag.Int("frames", 0, "Frames to simulate in headless mode")
	flagTrace    = flag.String("trace", "", "Write a per-frame trace to this file")
	flagSplit    = flag.String("split", "", "BVH split heuristic (midpoint, median)")
	flagPilot    = flag.Bool("autopilot", false, "Steer the ball to the goal marker")
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
	if *flagScene != "" {
		cfg.Run.Scene = *flagScene
	}
	if *flagSubSteps > 0 {
		cfg.Simulation.SubSteps = *flagSubSteps
	}
	if *flagFrames > 0 {
		cfg.Run.Frames = *flagFrames
	}
	if *flagTrace != "" {
		cfg.Run.Trace = *flagTrace
	}
	if *flagSplit != "" {
		cfg.BVH.Split = *flagSplit
	}
	if *flagPilot {
		cfg.Run.Autopilot = true
	}
}
