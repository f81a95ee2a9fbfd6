package math

import (
	"errors"
	"fmt"
)

// ErrNotRigid is returned when a matrix carries scale, shear or projection.
var ErrNotRigid = errors.New("transform is not rigid")

// rigidTolerance bounds how far a matrix may drift from orthonormal and
// still be accepted as a rotation.
const rigidTolerance = 1e-3

// Rigid is a distance-preserving transform: rotation then translation.
// It is the only transform accepted for moving collision geometry.
type Rigid struct {
	Rotation    Quat
	Translation Vec3
}

// RigidIdentity returns the identity transform.
func RigidIdentity() Rigid {
	return Rigid{Rotation: QuatIdentity()}
}

// RotationAbout returns a transform that rotates by q around pivot.
func RotationAbout(q Quat, pivot Vec3) Rigid {
	q = q.Normalize()
	return Rigid{Rotation: q, Translation: pivot.Sub(q.Rotate(pivot))}
}

// Apply maps an object-space point to world space.
func (r Rigid) Apply(p Vec3) Vec3 {
	return r.Rotation.Rotate(p).Add(r.Translation)
}

// ApplyInverse maps a world-space point to object space.
func (r Rigid) ApplyInverse(p Vec3) Vec3 {
	return r.Rotation.Conjugate().Rotate(p.Sub(r.Translation))
}

// RotateVec rotates a direction from object to world space.
func (r Rigid) RotateVec(d Vec3) Vec3 {
	return r.Rotation.Rotate(d)
}

// Inverse returns the transform mapping world space back to object space.
func (r Rigid) Inverse() Rigid {
	inv := r.Rotation.Conjugate()
	return Rigid{Rotation: inv, Translation: inv.Rotate(r.Translation).Neg()}
}

// Compose returns r applied after inner.
func (r Rigid) Compose(inner Rigid) Rigid {
	return Rigid{
		Rotation:    r.Rotation.Mul(inner.Rotation).Normalize(),
		Translation: r.Apply(inner.Translation),
	}
}

// Interpolate blends toward to: translation linearly, rotation by slerp.
func (r Rigid) Interpolate(to Rigid, t float32) Rigid {
	return Rigid{
		Rotation:    r.Rotation.Slerp(to.Rotation, t).Normalize(),
		Translation: r.Translation.Lerp(to.Translation, t),
	}
}

// Mat4 returns the transform as a column-major matrix.
func (r Rigid) Mat4() Mat4 {
	return Translate(r.Translation).Mul(r.Rotation.ToMat4())
}

// RigidFromMat4 extracts a rigid transform from a matrix. Matrices with
// scale, shear, reflection or a projective row are rejected with ErrNotRigid.
func RigidFromMat4(m Mat4) (Rigid, error) {
	if abs(m[3]) > rigidTolerance || abs(m[7]) > rigidTolerance ||
		abs(m[11]) > rigidTolerance || abs(m[15]-1) > rigidTolerance {
		return Rigid{}, fmt.Errorf("projective row %v: %w", [4]float32{m[3], m[7], m[11], m[15]}, ErrNotRigid)
	}

	cols := [3]Vec3{
		{m[0], m[1], m[2]},
		{m[4], m[5], m[6]},
		{m[8], m[9], m[10]},
	}
	for i, c := range cols {
		if l := c.Length(); abs(l-1) > rigidTolerance {
			return Rigid{}, fmt.Errorf("column %d has length %.4f: %w", i, l, ErrNotRigid)
		}
	}
	if abs(cols[0].Dot(cols[1])) > rigidTolerance ||
		abs(cols[0].Dot(cols[2])) > rigidTolerance ||
		abs(cols[1].Dot(cols[2])) > rigidTolerance {
		return Rigid{}, fmt.Errorf("columns are not orthogonal: %w", ErrNotRigid)
	}
	if det := cols[0].Cross(cols[1]).Dot(cols[2]); det < 0 {
		return Rigid{}, fmt.Errorf("reflection (det %.4f): %w", det, ErrNotRigid)
	}

	var rot [3][3]float32
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			rot[row][col] = m.at(row, col)
		}
	}
	return Rigid{Rotation: quatFromRotation(rot), Translation: m.Translation()}, nil
}
