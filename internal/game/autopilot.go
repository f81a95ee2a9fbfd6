package game

import (
	"errors"

	"github.com/Faultbox/tiltmaze/internal/geometry"
	"github.com/Faultbox/tiltmaze/internal/physics"
	"github.com/Faultbox/tiltmaze/internal/scene"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

// ErrNoRoute is returned when the level has no layout, no goal marker, or
// no open path from the ball to the goal.
var ErrNoRoute = errors.New("no route to goal")

// Script supplies the input for a frame given the previous frame's result.
type Script func(frame int, last physics.FrameResult) Input

// Idle never tilts the maze.
func Idle(int, physics.FrameResult) Input { return Input{} }

// Segment holds one input for a number of frames.
type Segment struct {
	Frames int
	Input  Input
}

// Sequence plays segments in order and idles once they run out.
func Sequence(segments ...Segment) Script {
	return func(frame int, _ physics.FrameResult) Input {
		for _, s := range segments {
			if frame < s.Frames {
				return s.Input
			}
			frame -= s.Frames
		}
		return Input{}
	}
}

// Autopilot tuning.
const (
	cruiseSpeed  = 0.8  // cells per second
	leanPerSpeed = 10   // degrees of tilt per cell/s of velocity error
	maxLean      = 12   // degrees
	inputPerDeg  = 0.5  // input per degree of tilt error
	arriveRadius = 0.25 // cells
)

// Autopilot tilts the maze to roll the ball along the shortest route from
// its current cell to the goal marker.
type Autopilot struct {
	game   *Game
	layout geometry.Layout
	route  []Cell
	next   int
}

// NewAutopilot plans a route for g's ball.
func NewAutopilot(g *Game) (*Autopilot, error) {
	lvl := g.Level()
	if lvl.Layout == nil || len(lvl.Platforms) == 0 {
		return nil, ErrNoRoute
	}
	l := *lvl.Layout
	col, row, ok := l.FindCell(scene.GoalMarker)
	if !ok {
		return nil, ErrNoRoute
	}
	ap := &Autopilot{game: g, layout: l}
	local := ap.maze().ApplyInverse(lvl.World.Body().Position)
	sc, sr, ok := l.CellAt(local)
	if !ok {
		return nil, ErrNoRoute
	}
	ap.route = FindRoute(l, Cell{sc, sr}, Cell{col, row})
	if ap.route == nil {
		return nil, ErrNoRoute
	}
	ap.next = min(1, len(ap.route)-1)
	return ap, nil
}

// Route returns the planned cells, start first.
func (a *Autopilot) Route() []Cell { return a.route }

// Done reports whether the ball has reached the goal cell.
func (a *Autopilot) Done() bool {
	return a.next == len(a.route)-1 && a.at(a.route[a.next])
}

// Input steers toward the next waypoint. It has the Script signature.
func (a *Autopilot) Input(_ int, last physics.FrameResult) Input {
	maze := a.maze()
	pos := maze.ApplyInverse(last.Pose.Position)
	vel := maze.Rotation.Conjugate().Rotate(last.Velocity)

	// Skip ahead when the ball has already rolled into a later cell.
	if col, row, ok := a.layout.CellAt(pos); ok {
		for i := len(a.route) - 1; i > a.next; i-- {
			if a.route[i] == (Cell{col, row}) {
				a.next = i
				break
			}
		}
	}
	if a.next < len(a.route)-1 && a.at(a.route[a.next]) {
		a.next++
	}

	target := a.layout.CellCenter(a.route[a.next].Col, a.route[a.next].Row)
	d := target.Sub(pos)
	d.Y = 0
	cell := a.layout.Cell
	speed := cruiseSpeed * cell
	if a.next == len(a.route)-1 {
		speed = min(speed, d.Length())
	}
	want := d.Normalize().Scale(speed)
	return steer(want.Scale(1/cell), vel.Scale(1/cell), a.game.Tilt())
}

// steer picks tilt angles that lean the maze toward the velocity error and
// returns the input that drives the current tilt to them. Tilting about +X
// lowers the +Z edge; tilting about +Z raises the +X edge.
func steer(want, vel math.Vec3, t *Tilt) Input {
	e := want.Sub(vel)
	leanX := clamp(leanPerSpeed*e.Z, -maxLean, maxLean)
	leanZ := clamp(-leanPerSpeed*e.X, -maxLean, maxLean)
	return Input{
		X: clamp(inputPerDeg*(leanX-t.X), -1, 1),
		Z: clamp(inputPerDeg*(leanZ-t.Z), -1, 1),
	}
}

func (a *Autopilot) at(c Cell) bool {
	pos := a.maze().ApplyInverse(a.game.Level().World.Body().Position)
	center := a.layout.CellCenter(c.Col, c.Row)
	return pos.XZ().Sub(center.XZ()).Length() < arriveRadius*a.layout.Cell
}

func (a *Autopilot) maze() math.Rigid {
	return a.game.Level().LayoutFrame()
}
