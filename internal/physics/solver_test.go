package physics

import (
	"testing"

	"github.com/Faultbox/tiltmaze/pkg/math"
)

var gravity = math.Vec3{Y: -9.81}

func TestSolveSupportSingleContact(t *testing.T) {
	for _, mass := range []float32{0.5, 1, 7} {
		s := SolveSupport(mass, gravity, []math.Vec3{{Y: 1}}, DefaultSolverOptions())
		if !s.Converged {
			t.Errorf("mass %v: did not converge in %d iterations", mass, s.Iterations)
		}
		if !approx(s.Lambdas[0], 9.81*mass, 1e-4*mass) {
			t.Errorf("mass %v: lambda = %v, want %v", mass, s.Lambdas[0], 9.81*mass)
		}
		net := gravity.Add(s.Acceleration(mass))
		if !approx(net.Y, 0, 1e-5) {
			t.Errorf("mass %v: net normal acceleration %v, want 0", mass, net.Y)
		}
	}
}

func TestSolveSupportNoSinkNoBounce(t *testing.T) {
	const (
		mass = 2
		h    = float32(1.0 / 6000)
	)
	var v, p math.Vec3
	n := []math.Vec3{{Y: 1}}
	for i := 0; i < 6000; i++ {
		s := SolveSupport(mass, gravity, n, DefaultSolverOptions())
		v = v.Add(gravity.Add(s.Acceleration(mass)).Scale(h))
		p = p.Add(v.Scale(h))
	}
	if !approx(p.Y, 0, 1e-4) || !approx(v.Y, 0, 1e-4) {
		t.Errorf("after 1s: position %v velocity %v, want both at rest", p, v)
	}
}

func TestSolveSupportCorner(t *testing.T) {
	// Floor plus a wall the ball leans on: gravity only loads the floor.
	normals := []math.Vec3{{Y: 1}, {X: 1}}
	s := SolveSupport(1, gravity, normals, DefaultSolverOptions())
	if !approx(s.Lambdas[0], 9.81, 1e-4) || s.Lambdas[1] != 0 {
		t.Errorf("lambdas = %v, want [9.81 0]", s.Lambdas)
	}

	// A push into the wall loads both.
	s = SolveSupport(1, gravity.Add(math.Vec3{X: -2}), normals, DefaultSolverOptions())
	if !approx(s.Lambdas[0], 9.81, 1e-4) || !approx(s.Lambdas[1], 2, 1e-4) {
		t.Errorf("lambdas = %v, want [9.81 2]", s.Lambdas)
	}
}

func TestSolveSupportSeparating(t *testing.T) {
	// Acceleration pulls away from the only contact: no support needed.
	s := SolveSupport(1, math.Vec3{Y: 3}, []math.Vec3{{Y: 1}}, DefaultSolverOptions())
	if s.Lambdas[0] != 0 || !s.Converged {
		t.Errorf("support = %+v, want zero and converged", s)
	}
}

func TestSolveSupportIllConditioned(t *testing.T) {
	// Near-duplicate normals give a near-singular system; the solver must
	// still return bounded, non-negative magnitudes.
	a := math.Vec3{X: 0.001, Y: 1}.Normalize()
	b := math.Vec3{X: -0.001, Y: 1}.Normalize()
	opts := SolverOptions{MaxIterations: 5, Tolerance: 1e-9}
	s := SolveSupport(1, gravity, []math.Vec3{a, b, {Y: 1}}, opts)
	if s.Iterations > 5 {
		t.Errorf("iterations = %d, exceeds the cap of 5", s.Iterations)
	}
	var total float32
	for _, l := range s.Lambdas {
		if l < 0 {
			t.Errorf("negative lambda %v", l)
		}
		total += l
	}
	if !approx(total, 9.81, 0.1) {
		t.Errorf("total support %v, want about 9.81", total)
	}
}

func TestSolveSupportEdgeCases(t *testing.T) {
	if s := SolveSupport(1, gravity, nil, DefaultSolverOptions()); !s.Converged || len(s.Lambdas) != 0 {
		t.Errorf("no contacts: %+v", s)
	}
	if s := SolveSupport(0, gravity, []math.Vec3{{Y: 1}}, DefaultSolverOptions()); s.Lambdas[0] != 0 {
		t.Errorf("immovable body got support %v", s.Lambdas)
	}
	// A zero normal has W[i][i] == 0 and is skipped.
	s := SolveSupport(1, gravity, []math.Vec3{{}, {Y: 1}}, DefaultSolverOptions())
	if s.Lambdas[0] != 0 || !approx(s.Lambdas[1], 9.81, 1e-4) {
		t.Errorf("lambdas = %v, want [0 9.81]", s.Lambdas)
	}
}
