package physics

import "github.com/Faultbox/tiltmaze/pkg/math"

// rollEpsilon is the tangential speed below which no roll is produced.
const rollEpsilon = 1e-6

// Decompose splits v into its components along and across the unit normal n.
func Decompose(v, n math.Vec3) (normal, tangent math.Vec3) {
	normal = n.Scale(v.Dot(n))
	return normal, v.Sub(normal)
}

// Friction integrates the tangential damping -mu*v_T over h seconds and
// returns the new velocity. rel is v minus the surface velocity. Gravity's
// tangential part is already in v from the free-fall integration.
func Friction(v, rel, n math.Vec3, mu, h float32) math.Vec3 {
	_, vt := Decompose(rel, n)
	return v.Sub(vt.Scale(mu * h))
}

// RollFor returns the visual roll for tangential velocity vt on a surface
// with normal n. The second result is false when vt is too small to define
// an axis.
func RollFor(vt, n math.Vec3) (Roll, bool) {
	if vt.Length() <= rollEpsilon {
		return Roll{}, false
	}
	axis := vt.Cross(n)
	if axis.LengthSq() == 0 {
		return Roll{}, false
	}
	return Roll{Axis: axis.Normalize(), Velocity: vt}, true
}
