package math

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func sampleRigid() Rigid {
	return Rigid{
		Rotation:    QuatFromAxisAngle(Vec3{1, 2, -1}.Normalize(), 0.9),
		Translation: Vec3{4, -1, 2.5},
	}
}

func TestRigidApplyInverseRoundTrip(t *testing.T) {
	r := sampleRigid()
	p := Vec3{0.5, 3, -7}
	if got := r.ApplyInverse(r.Apply(p)); !got.ApproxEqual(p, 1e-4) {
		t.Errorf("ApplyInverse(Apply(p)) = %v, want %v", got, p)
	}
	if got := r.Inverse().Apply(r.Apply(p)); !got.ApproxEqual(p, 1e-4) {
		t.Errorf("Inverse().Apply(Apply(p)) = %v, want %v", got, p)
	}
}

func TestRigidPreservesDistance(t *testing.T) {
	r := sampleRigid()
	a, b := Vec3{1, 2, 3}, Vec3{-4, 0.5, 9}
	want := a.Distance(b)
	got := r.Apply(a).Distance(r.Apply(b))
	if math.Abs(float64(got-want)) > 1e-4 {
		t.Errorf("distance after transform = %v, want %v", got, want)
	}
}

func TestRigidMat4MatchesMathgl(t *testing.T) {
	r := sampleRigid()
	m := r.Mat4()

	axis := mgl32.Vec3{1, 2, -1}.Normalize()
	ref := mgl32.Translate3D(4, -1, 2.5).Mul4(mgl32.QuatRotate(0.9, axis).Mat4())
	for i := 0; i < 16; i++ {
		if math.Abs(float64(m[i]-ref[i])) > 1e-5 {
			t.Errorf("element %d: got %v, want %v", i, m[i], ref[i])
		}
	}

	inv := ref.Inv()
	got := r.Inverse().Mat4()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(got[i]-inv[i])) > 1e-4 {
			t.Errorf("inverse element %d: got %v, want %v", i, got[i], inv[i])
		}
	}
}

func TestRigidFromMat4RoundTrip(t *testing.T) {
	r := sampleRigid()
	back, err := RigidFromMat4(r.Mat4())
	if err != nil {
		t.Fatalf("RigidFromMat4: %v", err)
	}
	p := Vec3{2, -3, 1}
	if got, want := back.Apply(p), r.Apply(p); !got.ApproxEqual(want, 1e-4) {
		t.Errorf("round-tripped transform maps %v to %v, want %v", p, got, want)
	}
}

func TestRigidFromMat4Rejects(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"uniform scale", Scale(2, 2, 2)},
		{"non-uniform scale", Scale(1, 3, 1)},
		{"reflection", Scale(-1, 1, 1)},
		{"projective", Mat4{1, 0, 0, 0.5, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}},
		{"shear", Mat4{1, 0, 0, 0, 0.4, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RigidFromMat4(tt.m)
			if !errors.Is(err, ErrNotRigid) {
				t.Errorf("expected ErrNotRigid, got %v", err)
			}
		})
	}
}

func TestRotationAboutKeepsPivot(t *testing.T) {
	pivot := Vec3{3, 0, -2}
	r := RotationAbout(QuatFromAxisAngle(Vec3{0, 0, 1}, 0.5), pivot)
	if got := r.Apply(pivot); !got.ApproxEqual(pivot, 1e-5) {
		t.Errorf("pivot moved to %v", got)
	}
}

func TestRigidInterpolateEndpoints(t *testing.T) {
	a := RigidIdentity()
	b := sampleRigid()
	p := Vec3{1, 1, 1}
	if got := a.Interpolate(b, 0).Apply(p); !got.ApproxEqual(a.Apply(p), 1e-4) {
		t.Errorf("t=0 maps to %v, want %v", got, a.Apply(p))
	}
	if got := a.Interpolate(b, 1).Apply(p); !got.ApproxEqual(b.Apply(p), 1e-4) {
		t.Errorf("t=1 maps to %v, want %v", got, b.Apply(p))
	}
}

func TestRigidCompose(t *testing.T) {
	a := sampleRigid()
	b := Rigid{Rotation: QuatFromAxisAngle(Vec3{0, 1, 0}, -0.3), Translation: Vec3{1, 0, 0}}
	p := Vec3{0.2, 0.4, -0.6}
	if got, want := a.Compose(b).Apply(p), a.Apply(b.Apply(p)); !got.ApproxEqual(want, 1e-4) {
		t.Errorf("Compose = %v, want %v", got, want)
	}
}
