package physics

import (
	"github.com/Faultbox/tiltmaze/internal/geometry"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

// ForceZone adds a constant acceleration while the ball's centre is inside
// Bounds, like a fan blowing across part of the maze.
type ForceZone struct {
	Name         string
	Bounds       geometry.AABB
	Acceleration math.Vec3
}

// Active reports whether the zone acts on a ball centred at p.
func (z ForceZone) Active(p math.Vec3) bool {
	return z.Bounds.ContainsPoint(p)
}
