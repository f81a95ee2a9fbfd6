// Package game drives a level: it turns player input into maze tilt, steps
// the physics world at a fixed timestep and reports each frame.
package game

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/tiltmaze/internal/bvh"
	"github.com/Faultbox/tiltmaze/internal/config"
	"github.com/Faultbox/tiltmaze/internal/logger"
	"github.com/Faultbox/tiltmaze/internal/physics"
	"github.com/Faultbox/tiltmaze/internal/scene"
	"github.com/Faultbox/tiltmaze/internal/trace"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

// WorldOptions maps the simulation, solver and BVH settings onto physics
// options.
func WorldOptions(cfg *config.Config) (physics.Options, error) {
	split, err := bvh.SplitterByName(cfg.BVH.Split)
	if err != nil {
		return physics.Options{}, err
	}
	sim := cfg.Simulation
	opts := physics.DefaultOptions()
	opts.SubSteps = sim.SubSteps
	opts.Gravity = math.Vec3{X: sim.Gravity[0], Y: sim.Gravity[1], Z: sim.Gravity[2]}
	opts.RestingThreshold = sim.RestingThreshold
	opts.ContactSlop = sim.ContactSlop
	opts.AirDrag = sim.AirDrag
	opts.FallLimit = sim.FallLimit
	opts.Solver = physics.SolverOptions{
		MaxIterations: cfg.Solver.MaxIterations,
		Tolerance:     cfg.Solver.Tolerance,
	}
	opts.BVH = bvh.Options{
		MaxLeafSize: cfg.BVH.MaxLeafSize,
		Splitter:    split,
		MinExtent:   cfg.BVH.MinExtent,
	}
	opts.Logger = logger.Named("physics")
	return opts, nil
}

// Game is one running level.
type Game struct {
	level *scene.Level
	tilt  *Tilt
	dt    float32
	log   *zap.Logger

	frame int
	time  float64
	last  physics.FrameResult
	rec   *trace.Recorder

	goal     Cell
	hasGoal  bool
	goalTime float64 // simulated time the goal was first reached, or -1
}

// New builds sc into a fresh world using cfg.
func New(cfg *config.Config, sc *scene.Scene) (*Game, error) {
	opts, err := WorldOptions(cfg)
	if err != nil {
		return nil, err
	}
	lvl, err := sc.Build(opts)
	if err != nil {
		return nil, fmt.Errorf("building scene %q: %w", sc.Name, err)
	}

	g := &Game{
		level:    lvl,
		tilt:     NewTilt(cfg.Control),
		dt:       float32(cfg.Simulation.FixedTimestep.Seconds()),
		log:      logger.Named("game"),
		goalTime: -1,
	}
	if lvl.Layout != nil {
		col, row, ok := lvl.Layout.FindCell(scene.GoalMarker)
		g.goal, g.hasGoal = Cell{col, row}, ok
	}
	g.last = lvl.World.Step(0)

	g.log.Info("Level loaded",
		zap.String("scene", lvl.Name),
		zap.Int("meshes", len(lvl.World.Meshes())),
		zap.Int("platforms", len(lvl.Platforms)),
		zap.Int("zones", len(lvl.World.Zones())),
		logger.Vec3("spawn", lvl.World.Spawn()),
	)
	return g, nil
}

// Level returns the running level.
func (g *Game) Level() *scene.Level { return g.level }

// Tilt returns the maze tilt controller.
func (g *Game) Tilt() *Tilt { return g.tilt }

// Timestep returns the fixed frame length in seconds.
func (g *Game) Timestep() float32 { return g.dt }

// Frame returns the number of frames simulated.
func (g *Game) Frame() int { return g.frame }

// Time returns the simulated time in seconds.
func (g *Game) Time() float64 { return g.time }

// Last returns the most recent frame result.
func (g *Game) Last() physics.FrameResult { return g.last }

// GoalReached reports whether the ball has entered the goal cell, and when.
func (g *Game) GoalReached() (bool, float64) {
	return g.goalTime >= 0, g.goalTime
}

// SetRecorder attaches a trace recorder; nil detaches it.
func (g *Game) SetRecorder(r *trace.Recorder) { g.rec = r }

// Update applies input for dt seconds, moves every platform to the new
// tilt and steps the world.
func (g *Game) Update(dt float32, in Input) (physics.FrameResult, error) {
	g.tilt.Update(dt, in)
	t := g.tilt.Transform(g.level.Pivot)
	for _, h := range g.level.Platforms {
		if err := g.level.World.SetMeshTransform(h, t); err != nil {
			return g.last, fmt.Errorf("tilting %v: %w", h, err)
		}
	}

	prev := g.last.State
	res := g.level.World.Step(dt)
	g.frame++
	g.time += float64(dt)
	g.last = res

	if res.State != prev {
		g.log.Debug("State changed",
			zap.Int("frame", g.frame),
			zap.Stringer("from", prev),
			zap.Stringer("to", res.State),
		)
	}
	if res.Respawned {
		g.tilt.Reset()
	}
	g.checkGoal(res)

	if g.rec != nil {
		if err := g.rec.Record(g.frame, g.time, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Step runs one fixed-timestep frame.
func (g *Game) Step(in Input) (physics.FrameResult, error) {
	return g.Update(g.dt, in)
}

// Reset levels the maze and returns the ball to its spawn point.
func (g *Game) Reset() error {
	g.tilt.Reset()
	for _, h := range g.level.Platforms {
		if err := g.level.World.TeleportMesh(h, math.RigidIdentity()); err != nil {
			return err
		}
	}
	g.level.World.Respawn()
	g.last = g.level.World.Step(0)
	g.goalTime = -1
	return nil
}

func (g *Game) checkGoal(res physics.FrameResult) {
	if !g.hasGoal || g.goalTime >= 0 {
		return
	}
	local := g.level.LayoutFrame().ApplyInverse(res.Pose.Position)
	if col, row, ok := g.level.Layout.CellAt(local); ok && (Cell{col, row}) == g.goal {
		g.goalTime = g.time
		g.log.Info("Goal reached", zap.Int("frame", g.frame), zap.Float64("time", g.time))
	}
}

// Stats summarises a Run.
type Stats struct {
	Frames         int
	Impacts        int
	Respawns       int
	RestingFrames  int
	MaxPenetration float32
	Wall           time.Duration
}

// Run simulates frames fixed-timestep frames, taking input from script.
// It stops early with ctx's error when ctx is done.
func (g *Game) Run(ctx context.Context, frames int, script Script) (Stats, error) {
	if script == nil {
		script = Idle
	}
	var st Stats
	start := time.Now()
	perSecond := max(1, int(1/g.dt+0.5))

	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			st.Wall = time.Since(start)
			return st, err
		}

		res, err := g.Step(script(i, g.last))
		if err != nil {
			st.Wall = time.Since(start)
			return st, err
		}
		st.Frames++
		st.Impacts += res.Impacts
		st.MaxPenetration = max(st.MaxPenetration, res.MaxPenetration)
		if res.Respawned {
			st.Respawns++
		}
		if res.State == physics.Resting {
			st.RestingFrames++
		}

		if g.frame%perSecond == 0 {
			g.log.Debug("tick",
				zap.Int("frame", g.frame),
				zap.Float64("time", g.time),
				logger.Vec3("pos", res.Pose.Position),
				logger.Vec3("vel", res.Velocity),
				zap.Stringer("state", res.State),
				zap.Float32("tiltX", g.tilt.X),
				zap.Float32("tiltZ", g.tilt.Z),
			)
		}
	}

	st.Wall = time.Since(start)
	g.log.Info("Run finished",
		zap.Int("frames", st.Frames),
		zap.Int("impacts", st.Impacts),
		zap.Int("respawns", st.Respawns),
		zap.Float32("maxPenetration", st.MaxPenetration),
		zap.Duration("wall", st.Wall),
	)
	return st, nil
}
