package physics

import (
	"fmt"

	"github.com/Faultbox/tiltmaze/internal/bvh"
	"github.com/Faultbox/tiltmaze/internal/geometry"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

// degenerateDistance is the centre-to-surface distance below which the
// contact normal cannot be derived and world up is used instead.
const degenerateDistance = 1e-6

// MeshHandle refers to a mesh registered with a World. The zero handle is
// never valid, and a handle goes stale once its mesh is removed.
type MeshHandle struct {
	Index      uint32
	Generation uint32
}

// IsZero reports whether h is the zero handle.
func (h MeshHandle) IsZero() bool {
	return h.Generation == 0
}

func (h MeshHandle) String() string {
	return fmt.Sprintf("mesh#%d.%d", h.Index, h.Generation)
}

// Material holds the surface response of a mesh.
type Material struct {
	// Restitution is the fraction of normal speed kept after an impact.
	// Values above 1 make the surface a spring pad.
	Restitution float32 `yaml:"restitution"`
	Friction    float32 `yaml:"friction"`
}

// DefaultMaterial returns restitution 0.15 and friction 0.05.
func DefaultMaterial() Material {
	return Material{Restitution: 0.15, Friction: 0.05}
}

// ContactInfo describes one penetrating triangle. Point and Normal are in
// world space; Normal is a unit vector pointing toward the sphere centre.
type ContactInfo struct {
	Point       math.Vec3
	Normal      math.Vec3
	Penetration float32
	Mesh        MeshHandle
	Triangle    int32
	// SurfaceVelocity is the world velocity of the struck point, non-zero
	// only for meshes whose transform moved during the step.
	SurfaceVelocity math.Vec3
}

// Mesh is static collision geometry with a rigid transform. Its BVH is
// built once in object space and never rebuilt; queries move the sphere
// into object space instead.
type Mesh struct {
	Name     string
	Material Material

	handle MeshHandle
	soup   geometry.Soup
	tree   *bvh.Tree
	hits   []bvh.Hit

	// from is the transform at the start of the frame and to the target
	// set by SetMeshTransform. current and prev are the interpolated
	// transforms at the end and start of the running sub-step.
	from, to      math.Rigid
	current, prev math.Rigid
}

func newMesh(name string, h MeshHandle, soup geometry.Soup, opts MeshOptions, bvhOpts bvh.Options) *Mesh {
	m := &Mesh{
		Name:     name,
		Material: opts.Material,
		handle:   h,
		soup:     soup,
		tree:     bvh.Build(bvh.FromSoup(h.Index, soup), bvhOpts),
	}
	m.reset(opts.Transform)
	return m
}

func (m *Mesh) reset(t math.Rigid) {
	m.from, m.to, m.current, m.prev = t, t, t, t
}

// Handle returns the mesh's handle.
func (m *Mesh) Handle() MeshHandle { return m.handle }

// Tree returns the object-space BVH.
func (m *Mesh) Tree() *bvh.Tree { return m.tree }

// Soup returns the object-space triangles.
func (m *Mesh) Soup() geometry.Soup { return m.soup }

// Transform returns the settled transform that queries run against. A
// transform set with World.SetMeshTransform takes effect during the next
// Step.
func (m *Mesh) Transform() math.Rigid { return m.current }

// Target returns the transform the mesh reaches at the end of the next
// Step.
func (m *Mesh) Target() math.Rigid { return m.to }

// Query tests a world-space sphere against the mesh at its settled
// transform. It reports whether any triangle is penetrated and returns a
// contact per penetrated triangle.
func (m *Mesh) Query(center math.Vec3, radius float32) (bool, []ContactInfo) {
	contacts := m.query(center, radius, 0, nil)
	return len(contacts) > 0, contacts
}

// query appends contacts for the sphere at the current sub-step transform.
// With h > 0 the surface velocity of each contact point is measured from
// prev to current over h seconds.
func (m *Mesh) query(center math.Vec3, radius, h float32, dst []ContactInfo) []ContactInfo {
	local := m.current.ApplyInverse(center)
	m.hits = m.tree.QuerySphere(local, radius, m.hits[:0])
	for _, hit := range m.hits {
		normal := math.Up
		d := float32(0)
		if hit.DistSq > 0 {
			offset := local.Sub(hit.Closest)
			d = offset.Length()
			if d >= degenerateDistance {
				normal = m.current.RotateVec(offset.Scale(1 / d))
			}
		}

		c := ContactInfo{
			Point:       m.current.Apply(hit.Closest),
			Normal:      normal,
			Penetration: radius - d,
			Mesh:        m.handle,
			Triangle:    m.tree.Prims[hit.Prim].Index,
		}
		if h > 0 {
			c.SurfaceVelocity = c.Point.Sub(m.prev.Apply(hit.Closest)).Scale(1 / h)
		}
		dst = append(dst, c)
	}
	return dst
}

// beginSubStep interpolates the transform for the sub-step spanning
// fractions t0 to t1 of the frame.
func (m *Mesh) beginSubStep(t0, t1 float32) {
	if m.from == m.to {
		m.prev, m.current = m.to, m.to
		return
	}
	m.prev = m.from.Interpolate(m.to, t0)
	m.current = m.from.Interpolate(m.to, t1)
}

// endFrame settles the mesh at its target transform.
func (m *Mesh) endFrame() {
	m.reset(m.to)
}
