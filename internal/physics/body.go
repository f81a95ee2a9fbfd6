package physics

import (
	"errors"
	"fmt"

	"github.com/Faultbox/tiltmaze/internal/geometry"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

// ErrInvalidBody is returned when a ball has a non-positive radius or mass.
var ErrInvalidBody = errors.New("invalid body")

// Roll is one contact's contribution to the ball's visual spin for the
// current sub-step.
type Roll struct {
	Axis     math.Vec3
	Velocity math.Vec3
}

// Body is the simulated ball. Orientation is visual only; it never feeds
// back into the translational dynamics.
type Body struct {
	// Position is the world-space centre of the sphere.
	Position    math.Vec3
	Orientation math.Quat
	Velocity    math.Vec3
	// Acceleration holds the total acceleration applied in the last sub-step.
	Acceleration math.Vec3
	Mass         float32
	Radius       float32
	// LocalCenter is the sphere centre in the render model's own space.
	LocalCenter math.Vec3
	Rolls       []Roll
}

// NewBall returns a ball centred at position.
func NewBall(position math.Vec3, radius, mass float32) (*Body, error) {
	b := &Body{
		Position:    position,
		Orientation: math.QuatIdentity(),
		Mass:        mass,
		Radius:      radius,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewBallFromVertices fits a bounding sphere around a render model's
// vertices and places the model translated by offset.
func NewBallFromVertices(vertices []math.Vec3, mass float32, offset math.Vec3) (*Body, error) {
	center, radius := geometry.BoundingSphere(vertices)
	b, err := NewBall(center.Add(offset), radius, mass)
	if err != nil {
		return nil, fmt.Errorf("fit %d vertices: %w", len(vertices), err)
	}
	b.LocalCenter = center
	return b, nil
}

// Validate reports whether the ball can be simulated.
func (b *Body) Validate() error {
	if !(b.Radius > 0) {
		return fmt.Errorf("radius %v: %w", b.Radius, ErrInvalidBody)
	}
	if !(b.Mass > 0) {
		return fmt.Errorf("mass %v: %w", b.Mass, ErrInvalidBody)
	}
	if !b.Position.IsFinite() {
		return fmt.Errorf("position %v: %w", b.Position, ErrInvalidBody)
	}
	return nil
}

// InverseMass returns 1/Mass.
func (b *Body) InverseMass() float32 {
	return InverseMass(b.Mass)
}

// Pose is the ball's position and orientation.
type Pose struct {
	Position    math.Vec3
	Orientation math.Quat
}

// Pose returns the current pose.
func (b *Body) Pose() Pose {
	return Pose{Position: b.Position, Orientation: b.Orientation}
}

// Model returns the render model matrix: move the model's centre to the
// origin, rotate, then move to the world position.
func (b *Body) Model() math.Mat4 {
	return math.Translate(b.Position).
		Mul(b.Orientation.ToMat4()).
		Mul(math.Translate(b.LocalCenter.Neg()))
}

// spin accumulates the visual rotation of every roll over h seconds.
func (b *Body) spin(h float32) {
	for _, r := range b.Rolls {
		theta := r.Velocity.Scale(h).Length() / b.Radius
		b.Orientation = math.QuatFromAxisAngle(r.Axis, theta).Mul(b.Orientation)
	}
	if len(b.Rolls) > 0 {
		b.Orientation = b.Orientation.Normalize()
	}
}
