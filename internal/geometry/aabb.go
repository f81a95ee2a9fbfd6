package geometry

import (
	gomath "math"

	"github.com/Faultbox/tiltmaze/pkg/math"
)

// AABB is an axis-aligned bounding box. A valid box has Min <= Max on every
// axis; EmptyAABB is inverted so that it overlaps nothing and acts as the
// identity for Union.
type AABB struct {
	Min, Max math.Vec3
}

// EmptyAABB returns an inverted box containing no points.
func EmptyAABB() AABB {
	inf := float32(gomath.Inf(1))
	return AABB{Min: math.Splat(inf), Max: math.Splat(-inf)}
}

// SphereAABB returns the box enclosing a sphere.
func SphereAABB(center math.Vec3, radius float32) AABB {
	r := math.Splat(radius)
	return AABB{Min: center.Sub(r), Max: center.Add(r)}
}

// IsEmpty reports whether the box is inverted on any axis.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Expand grows the box to include p.
func (b AABB) Expand(p math.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Overlaps reports whether the boxes share any point (touching counts).
func (b AABB) Overlaps(other AABB) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// OverlapsSphere tests the sphere's bounding box against b. It is the
// conservative cull used during BVH traversal.
func (b AABB) OverlapsSphere(center math.Vec3, radius float32) bool {
	return b.Overlaps(SphereAABB(center, radius))
}

// Contains reports whether other lies entirely inside b.
func (b AABB) Contains(other AABB) bool {
	if other.IsEmpty() {
		return true
	}
	return b.Min.X <= other.Min.X && b.Min.Y <= other.Min.Y && b.Min.Z <= other.Min.Z &&
		b.Max.X >= other.Max.X && b.Max.Y >= other.Max.Y && b.Max.Z >= other.Max.Z
}

// ContainsPoint reports whether p lies inside or on the box.
func (b AABB) ContainsPoint(p math.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Extent returns Max - Min, or zero for an empty box.
func (b AABB) Extent() math.Vec3 {
	if b.IsEmpty() {
		return math.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}
