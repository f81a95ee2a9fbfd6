package game

import (
	gomath "math"

	"github.com/Faultbox/tiltmaze/internal/config"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

var (
	axisX = math.Vec3{X: 1}
	axisZ = math.Vec3{Z: 1}
)

// Input is the player's tilt request for one frame. Each axis is in
// [-1, 1]: X tilts about the world X axis (W/S), Z about the Z axis (D/A).
type Input struct {
	X, Z float32
}

// Tilt integrates player input into maze tilt angles.
type Tilt struct {
	// Angles in degrees.
	X, Z float32

	maxDeg    float32
	rateDeg   float32
	returnDeg float32
}

// NewTilt creates a level Tilt with the given limits.
func NewTilt(cfg config.ControlConfig) *Tilt {
	return &Tilt{
		maxDeg:    cfg.MaxTiltDeg,
		rateDeg:   cfg.TiltRateDeg,
		returnDeg: cfg.ReturnRateDeg,
	}
}

// Update advances the tilt by dt seconds. A held axis ramps toward its
// limit; a released axis eases back to level.
func (t *Tilt) Update(dt float32, in Input) {
	t.X = t.axis(t.X, in.X, dt)
	t.Z = t.axis(t.Z, in.Z, dt)
}

func (t *Tilt) axis(angle, in, dt float32) float32 {
	in = clamp(in, -1, 1)
	if in != 0 {
		return clamp(angle+in*t.rateDeg*dt, -t.maxDeg, t.maxDeg)
	}
	step := t.returnDeg * dt
	switch {
	case angle > step:
		return angle - step
	case angle < -step:
		return angle + step
	default:
		return 0
	}
}

// Reset levels the maze.
func (t *Tilt) Reset() {
	t.X, t.Z = 0, 0
}

// Rotation returns the tilt as a rotation: X first, then Z.
func (t *Tilt) Rotation() math.Quat {
	qx := math.QuatFromAxisAngle(axisX, radians(t.X))
	qz := math.QuatFromAxisAngle(axisZ, radians(t.Z))
	return qx.Mul(qz).Normalize()
}

// Transform returns the tilt applied about pivot.
func (t *Tilt) Transform(pivot math.Vec3) math.Rigid {
	return math.RotationAbout(t.Rotation(), pivot)
}

func radians(deg float32) float32 {
	return deg * gomath.Pi / 180
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}
