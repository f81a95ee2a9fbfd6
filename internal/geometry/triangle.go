// Package geometry holds the immutable triangle soup extracted from loaded
// meshes together with the box and closest-point primitives the collision
// code is built on.
package geometry

import "github.com/Faultbox/tiltmaze/pkg/math"

// Triangle is three points in the owning mesh's object space.
type Triangle struct {
	A, B, C math.Vec3
}

// Bounds returns the tight box around the triangle.
func (t Triangle) Bounds() AABB {
	return AABB{
		Min: t.A.Min(t.B).Min(t.C),
		Max: t.A.Max(t.B).Max(t.C),
	}
}

// Centroid returns the average of the three vertices.
func (t Triangle) Centroid() math.Vec3 {
	return t.A.Add(t.B).Add(t.C).Scale(1.0 / 3.0)
}

// Normal returns the unit face normal following the A, B, C winding.
// Degenerate triangles return the zero vector.
func (t Triangle) Normal() math.Vec3 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Normalize()
}

// Transform maps every vertex through r.
func (t Triangle) Transform(r math.Rigid) Triangle {
	return Triangle{A: r.Apply(t.A), B: r.Apply(t.B), C: r.Apply(t.C)}
}

// Soup is an immutable list of triangles for one mesh.
type Soup []Triangle

// Bounds returns the union of all triangle bounds.
func (s Soup) Bounds() AABB {
	b := EmptyAABB()
	for _, t := range s {
		b = b.Union(t.Bounds())
	}
	return b
}

// Vertices flattens the soup into its vertex list.
func (s Soup) Vertices() []math.Vec3 {
	out := make([]math.Vec3, 0, len(s)*3)
	for _, t := range s {
		out = append(out, t.A, t.B, t.C)
	}
	return out
}

// FromIndexed builds a soup from an indexed vertex buffer. Trailing indices
// that do not form a full triangle are ignored, and triangles referencing
// out-of-range vertices are skipped.
func FromIndexed(vertices []math.Vec3, indices []uint32) Soup {
	soup := make(Soup, 0, len(indices)/3)
	n := uint32(len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		soup = append(soup, Triangle{vertices[i0], vertices[i1], vertices[i2]})
	}
	return soup
}
