package physics

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/tiltmaze/pkg/math"
)

func approx(a, b, eps float32) bool {
	return gomath.Abs(float64(a-b)) <= float64(eps)
}

func TestImpulse(t *testing.T) {
	up := math.Vec3{Y: 1}
	tests := []struct {
		name        string
		invA, invB  float32
		vA, vB      math.Vec3
		n           math.Vec3
		e           float32
		wantVBAfter float32 // normal component of B afterwards
	}{
		{
			name: "ground bounce e=0.15",
			invA: 0, invB: 1,
			vB: math.Vec3{Y: -5}, n: up, e: 0.15,
			wantVBAfter: 0.75,
		},
		{
			name: "heavy ball keeps the same ratio",
			invA: 0, invB: 0.1,
			vB: math.Vec3{Y: -5}, n: up, e: 0.15,
			wantVBAfter: 0.75,
		},
		{
			name: "inelastic",
			invA: 0, invB: 1,
			vB: math.Vec3{X: 2, Y: -3}, n: up, e: 0,
			wantVBAfter: 0,
		},
		{
			name: "separating gets nothing",
			invA: 0, invB: 1,
			vB: math.Vec3{Y: 2}, n: up, e: 0.5,
			wantVBAfter: 2,
		},
		{
			name: "moving surface",
			invA: 0, invB: 1,
			vA: math.Vec3{Y: 1}, vB: math.Vec3{Y: -1}, n: up, e: 1,
			wantVBAfter: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := Impulse(tt.invA, tt.invB, tt.vA, tt.vB, tt.n, tt.e)
			_, vB := ApplyImpulse(tt.vA, tt.vB, tt.invA, tt.invB, j, tt.n)
			if got := vB.Dot(tt.n); !approx(got, tt.wantVBAfter, 1e-5) {
				t.Errorf("normal velocity after = %v, want %v (j = %v)", got, tt.wantVBAfter, j)
			}
			// Tangential motion is untouched.
			_, tBefore := Decompose(tt.vB, tt.n)
			_, tAfter := Decompose(vB, tt.n)
			if !tBefore.ApproxEqual(tAfter, 1e-6) {
				t.Errorf("tangential velocity changed from %v to %v", tBefore, tAfter)
			}
		})
	}
}

func TestImpulseElasticWall(t *testing.T) {
	// Ball A moves into an immovable wall B on its +X side.
	n := math.Vec3{X: 1}
	for _, v := range []float32{0.5, 3, 40} {
		vA := math.Vec3{X: v, Y: 1}
		j := Impulse(1, 0, vA, math.Vec3{}, n, 1)
		after, wall := ApplyImpulse(vA, math.Vec3{}, 1, 0, j, n)
		if !approx(after.X, -v, 1e-4) {
			t.Errorf("v=%v: outgoing normal velocity %v, want %v", v, after.X, -v)
		}
		if after.Y != 1 {
			t.Errorf("v=%v: tangential velocity changed to %v", v, after.Y)
		}
		if wall != (math.Vec3{}) {
			t.Errorf("v=%v: immovable wall moved to %v", v, wall)
		}
	}
}

func TestImpulseImmovablePair(t *testing.T) {
	if j := Impulse(0, 0, math.Vec3{}, math.Vec3{Y: -3}, math.Vec3{Y: 1}, 1); j != 0 {
		t.Errorf("Impulse between immovable bodies = %v, want 0", j)
	}
}

func TestInverseMass(t *testing.T) {
	tests := []struct {
		mass, want float32
	}{
		{2, 0.5},
		{0, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := InverseMass(tt.mass); got != tt.want {
			t.Errorf("InverseMass(%v) = %v, want %v", tt.mass, got, tt.want)
		}
	}
}
