package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, -1, 0}
	if got, want := a.Min(b), (Vec3{1, -1, -2}); got != want {
		t.Errorf("Vec3.Min() = %v, want %v", got, want)
	}
	if got, want := a.Max(b), (Vec3{3, 5, 0}); got != want {
		t.Errorf("Vec3.Max() = %v, want %v", got, want)
	}
}

func TestVec3Axis(t *testing.T) {
	v := Vec3{7, 8, 9}
	for i, want := range []float32{7, 8, 9} {
		if got := v.Axis(i); got != want {
			t.Errorf("Vec3.Axis(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero vector Normalize() = %v, want zero", got)
	}
	n := Vec3{3, 4, 0}.Normalize()
	if l := n.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec3IsFinite(t *testing.T) {
	inf := float32(math.Inf(1))
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("expected finite vector")
	}
	if (Vec3{inf, 0, 0}).IsFinite() {
		t.Error("expected infinite component to be rejected")
	}
}

func TestVec3XZ(t *testing.T) {
	got := Vec3{3, 9, 4}.XZ()
	if got != (Vec2{3, 4}) {
		t.Errorf("Vec3.XZ() = %v, want (3, 4)", got)
	}
	if l := got.Length(); l != 5 {
		t.Errorf("Vec2.Length() = %v, want 5", l)
	}
}
