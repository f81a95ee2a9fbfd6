package physics

import (
	gomath "math"
	"slices"

	"github.com/Faultbox/tiltmaze/pkg/math"
)

// supportEpsilon is the support magnitude below which a resting contact
// does not roll the ball.
const supportEpsilon = 1e-5

// Step advances the simulation by dt seconds split into fixed sub-steps.
// A non-positive or non-finite dt only reports the current pose.
func (w *World) Step(dt float32) FrameResult {
	var res FrameResult
	if dt > 0 && !gomath.IsInf(float64(dt), 1) {
		n := w.opts.SubSteps
		h := dt / float32(n)
		for k := 0; k < n; k++ {
			t0, t1 := float32(k)/float32(n), float32(k+1)/float32(n)
			for _, s := range w.slots {
				if s.mesh != nil {
					s.mesh.beginSubStep(t0, t1)
				}
			}
			w.subStep(h, &res)
		}
		for _, s := range w.slots {
			if s.mesh != nil {
				s.mesh.endFrame()
			}
		}
		res.Contacts = slices.Clone(w.contacts)
	}

	if w.ball.Position.Y < w.opts.FallLimit || !w.ball.Position.IsFinite() {
		w.Respawn()
		res.Respawned = true
		res.Contacts = nil
	}

	res.State = w.state
	res.Pose = w.ball.Pose()
	res.Velocity = w.ball.Velocity
	res.Model = w.ball.Model()
	return res
}

// externalAcceleration sums gravity, active force zones and air drag.
func (w *World) externalAcceleration(b *Body) math.Vec3 {
	a := w.opts.Gravity
	for _, z := range w.zones {
		if z.Active(b.Position) {
			a = a.Add(z.Acceleration)
		}
	}
	if w.opts.AirDrag > 0 {
		a = a.Sub(b.Velocity.Scale(w.opts.AirDrag * b.InverseMass()))
	}
	return a
}

func (w *World) subStep(h float32, res *FrameResult) {
	b := w.ball
	vStart := b.Velocity

	// Free-fall.
	acc := w.externalAcceleration(b)
	b.Acceleration = acc
	b.Velocity = b.Velocity.Add(acc.Scale(h))
	next := b.Position.Add(b.Velocity.Scale(h))

	w.contacts = w.contacts[:0]
	for _, s := range w.slots {
		if s.mesh != nil {
			w.contacts = s.mesh.query(next, b.Radius+w.opts.ContactSlop, h, w.contacts)
		}
	}
	b.Rolls = b.Rolls[:0]
	if len(w.contacts) == 0 {
		w.setState(FreeFall)
		b.Position = next
		return
	}
	res.Hit = true

	// Penetrations were measured against the widened radius.
	deepest := 0
	for i := range w.contacts {
		c := &w.contacts[i]
		c.Penetration = max(0, c.Penetration-w.opts.ContactSlop)
		if c.Penetration > w.contacts[deepest].Penetration {
			deepest = i
		}
		res.MaxPenetration = max(res.MaxPenetration, c.Penetration)
	}
	d := w.contacts[deepest]
	next = next.Add(d.Normal.Scale(d.Penetration))

	w.resting = w.resting[:0]
	w.colliding = w.colliding[:0]
	w.normals = w.normals[:0]
	for i, c := range w.contacts {
		vn := vStart.Sub(c.SurfaceVelocity).Dot(c.Normal)
		if abs(vn) < w.opts.RestingThreshold {
			w.resting = append(w.resting, i)
			w.normals = append(w.normals, c.Normal)
		} else {
			w.colliding = append(w.colliding, i)
		}
	}

	// Resting contacts first so impulses see the supported velocity.
	var support Support
	if len(w.resting) > 0 {
		support = SolveSupport(b.Mass, acc, w.normals, w.opts.Solver)
		sa := support.Acceleration(b.Mass)
		b.Acceleration = b.Acceleration.Add(sa)
		b.Velocity = b.Velocity.Add(sa.Scale(h))
		// Supports push but never pull: only approaching speed is removed.
		for _, i := range w.resting {
			c := w.contacts[i]
			if vn := b.Velocity.Sub(c.SurfaceVelocity).Dot(c.Normal); vn < 0 {
				b.Velocity = b.Velocity.Sub(c.Normal.Scale(vn))
			}
		}
	}

	invMass := b.InverseMass()
	impacts := 0
	for _, i := range w.colliding {
		c := w.contacts[i]
		m := w.slots[c.Mesh.Index].mesh
		approach := -b.Velocity.Sub(c.SurfaceVelocity).Dot(c.Normal)
		j := Impulse(0, invMass, c.SurfaceVelocity, b.Velocity, c.Normal, m.Material.Restitution)
		if j == 0 {
			continue
		}
		_, b.Velocity = ApplyImpulse(c.SurfaceVelocity, b.Velocity, 0, invMass, j, c.Normal)
		impacts++
		res.ImpactSpeed = max(res.ImpactSpeed, approach)
	}
	res.Impacts += impacts

	for k, i := range w.resting {
		c := w.contacts[i]
		m := w.slots[c.Mesh.Index].mesh
		b.Velocity = Friction(b.Velocity, b.Velocity.Sub(c.SurfaceVelocity), c.Normal, m.Material.Friction, h)
		if support.Lambdas[k] <= supportEpsilon {
			continue
		}
		_, vt := Decompose(b.Velocity.Sub(c.SurfaceVelocity), c.Normal)
		if r, ok := RollFor(vt, c.Normal); ok {
			b.Rolls = append(b.Rolls, r)
		}
	}
	b.spin(h)

	switch {
	case impacts > 0:
		w.setState(Colliding)
	case len(w.resting) > 0:
		w.setState(Resting)
	default:
		// Only separating contacts inside the slop band.
		w.setState(FreeFall)
	}
	b.Position = next
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
