package physics

import "github.com/Faultbox/tiltmaze/pkg/math"

// InverseMass returns 1/mass, or 0 for an immovable body (mass <= 0).
func InverseMass(mass float32) float32 {
	if mass <= 0 {
		return 0
	}
	return 1 / mass
}

// Impulse returns the scalar impulse that resolves a collision between
// bodies A and B along n, the unit normal pointing from A to B. Separating
// bodies and pairs with no movable member get zero.
func Impulse(invMassA, invMassB float32, vA, vB, n math.Vec3, restitution float32) float32 {
	vn := vB.Sub(vA).Dot(n)
	if vn > 0 {
		return 0
	}
	invSum := invMassA + invMassB
	if invSum == 0 {
		return 0
	}
	return -(1 + restitution) * vn / invSum
}

// ApplyImpulse applies j along n to both bodies with opposite signs and
// returns their new velocities.
func ApplyImpulse(vA, vB math.Vec3, invMassA, invMassB, j float32, n math.Vec3) (math.Vec3, math.Vec3) {
	return vA.Sub(n.Scale(j * invMassA)), vB.Add(n.Scale(j * invMassB))
}
