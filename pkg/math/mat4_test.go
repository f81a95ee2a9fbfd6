package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestMulMatchesMathgl(t *testing.T) {
	got := Translate(Vec3{1, -2, 3}).Mul(RotateX(0.3)).Mul(RotateZ(-1.2))
	ref := mgl32.Translate3D(1, -2, 3).Mul4(mgl32.HomogRotate3DX(0.3)).Mul4(mgl32.HomogRotate3DZ(-1.2))
	for i := 0; i < 16; i++ {
		if math.Abs(float64(got[i]-ref[i])) > 1e-5 {
			t.Errorf("element %d: got %v, want %v", i, got[i], ref[i])
		}
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(Vec3{10, 20, 30})
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformPointScale(t *testing.T) {
	m := Scale(2, 2, 2)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{2, 4, 6}
	if result != expected {
		t.Errorf("TransformPoint with scale: got %v, want %v", result, expected)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(Vec3{5, 5, 5}).Mul(RotateZ(float32(math.Pi / 2)))
	got := m.TransformDirection(Vec3{1, 0, 0})
	if !got.ApproxEqual(Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("TransformDirection = %v, want (0, 1, 0)", got)
	}
}

func TestRotateXMatchesQuat(t *testing.T) {
	m := RotateX(0.6)
	q := QuatFromAxisAngle(Vec3{1, 0, 0}, 0.6).ToMat4()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(m[i]-q[i])) > 1e-5 {
			t.Errorf("element %d: RotateX %v, quat %v", i, m[i], q[i])
		}
	}
}
