// Package config handles simulator configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulator settings.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Solver     SolverConfig     `yaml:"solver"`
	BVH        BVHConfig        `yaml:"bvh"`
	Control    ControlConfig    `yaml:"control"`
	Run        RunConfig        `yaml:"run"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig holds integrator settings.
type SimulationConfig struct {
	SubSteps         int           `yaml:"substeps"`
	Gravity          [3]float32    `yaml:"gravity,flow"`
	RestingThreshold float32       `yaml:"resting_threshold"`
	ContactSlop      float32       `yaml:"contact_slop"`
	AirDrag          float32       `yaml:"air_drag"`
	FallLimit        float32       `yaml:"fall_limit"`
	FixedTimestep    time.Duration `yaml:"fixed_timestep"`
}

// SolverConfig holds resting-contact solver settings.
type SolverConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float32 `yaml:"tolerance"`
}

// BVHConfig holds tree construction settings.
type BVHConfig struct {
	MaxLeafSize int     `yaml:"max_leaf_size"`
	Split       string  `yaml:"split"` // "midpoint" or "median"
	MinExtent   float32 `yaml:"min_extent"`
}

// ControlConfig holds maze tilt settings.
type ControlConfig struct {
	MaxTiltDeg    float32 `yaml:"max_tilt_deg"`
	TiltRateDeg   float32 `yaml:"tilt_rate_deg"`
	ReturnRateDeg float32 `yaml:"return_rate_deg"`
}

// RunConfig holds settings for a headless run.
type RunConfig struct {
	Frames    int    `yaml:"frames"`
	Scene     string `yaml:"scene"`     // Scene file; empty selects the built-in maze
	Trace     string `yaml:"trace"`     // Trace output path; empty disables tracing
	Autopilot bool   `yaml:"autopilot"` // Steer the ball to the goal marker
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			SubSteps:         100,
			Gravity:          [3]float32{0, -9.81, 0},
			RestingThreshold: 1e-3,
			ContactSlop:      1e-3,
			AirDrag:          0,
			FallLimit:        -50,
			FixedTimestep:    time.Second / 60,
		},
		Solver: SolverConfig{
			MaxIterations: 100,
			Tolerance:     1e-5,
		},
		BVH: BVHConfig{
			MaxLeafSize: 4,
			Split:       "midpoint",
			MinExtent:   1e-4,
		},
		Control: ControlConfig{
			MaxTiltDeg:    30,
			TiltRateDeg:   60,
			ReturnRateDeg: 60,
		},
		Run: RunConfig{
			Frames: 600,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the simulator cannot run with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.Simulation.SubSteps >= 1, "simulation.substeps must be at least 1, got %d", c.Simulation.SubSteps)
	check(c.Simulation.RestingThreshold > 0, "simulation.resting_threshold must be positive, got %v", c.Simulation.RestingThreshold)
	check(c.Simulation.ContactSlop >= 0, "simulation.contact_slop must not be negative, got %v", c.Simulation.ContactSlop)
	check(c.Simulation.AirDrag >= 0, "simulation.air_drag must not be negative, got %v", c.Simulation.AirDrag)
	check(c.Simulation.FixedTimestep > 0, "simulation.fixed_timestep must be positive, got %v", c.Simulation.FixedTimestep)
	check(c.Solver.MaxIterations >= 1, "solver.max_iterations must be at least 1, got %d", c.Solver.MaxIterations)
	check(c.Solver.Tolerance > 0, "solver.tolerance must be positive, got %v", c.Solver.Tolerance)
	check(c.BVH.MaxLeafSize >= 1, "bvh.max_leaf_size must be at least 1, got %d", c.BVH.MaxLeafSize)
	check(c.BVH.Split == "midpoint" || c.BVH.Split == "median", "bvh.split must be midpoint or median, got %q", c.BVH.Split)
	check(c.Control.MaxTiltDeg >= 0 && c.Control.MaxTiltDeg < 90, "control.max_tilt_deg must be in [0, 90), got %v", c.Control.MaxTiltDeg)
	check(c.Run.Frames >= 0, "run.frames must not be negative, got %d", c.Run.Frames)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Warnings lists settings that are valid but likely to misbehave.
func (c *Config) Warnings() []string {
	var w []string
	if n := c.Simulation.SubSteps; n < 30 || n > 200 {
		w = append(w, fmt.Sprintf("simulation.substeps %d is outside 30-200: expect tunnelling or slow frames", n))
	}
	if c.Simulation.ContactSlop > c.Simulation.RestingThreshold*10 {
		w = append(w, "simulation.contact_slop is much larger than resting_threshold: resting balls will hover")
	}
	return w
}
