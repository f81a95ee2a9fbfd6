package scene

import (
	"fmt"

	"github.com/Faultbox/tiltmaze/internal/geometry"
	"github.com/Faultbox/tiltmaze/internal/physics"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

// Level is a scene instantiated into a physics world.
type Level struct {
	Name  string
	World *physics.World
	// Platforms are the meshes that follow the maze tilt.
	Platforms []physics.MeshHandle
	Pivot     math.Vec3
	// Bounds encloses every mesh at its initial transform.
	Bounds geometry.AABB
	// Layout is the first maze layout, if any, for top-down views.
	Layout *geometry.Layout
	// LayoutMesh is the mesh built from Layout; zero without a layout.
	LayoutMesh physics.MeshHandle
}

// LayoutFrame returns the settled transform of the layout's mesh, mapping
// layout space to world space. It is the identity without a layout.
func (l *Level) LayoutFrame() math.Rigid {
	if m, err := l.World.Mesh(l.LayoutMesh); err == nil {
		return m.Transform()
	}
	return math.RigidIdentity()
}

// Build creates the ball and a world holding every mesh and zone.
func (s *Scene) Build(opts physics.Options) (*Level, error) {
	spawn, err := s.SpawnPosition()
	if err != nil {
		return nil, err
	}
	ball, err := physics.NewBall(spawn, s.Ball.Radius, s.Ball.Mass)
	if err != nil {
		return nil, err
	}
	w, err := physics.NewWorld(ball, opts)
	if err != nil {
		return nil, err
	}

	lvl := &Level{
		Name:   s.Name,
		World:  w,
		Pivot:  s.Pivot.V(),
		Bounds: geometry.EmptyAABB(),
	}
	for i, ms := range s.Meshes {
		var soup geometry.Soup
		hasLayout := false
		for j, sh := range ms.Shapes {
			tris, err := sh.Soup()
			if err != nil {
				return nil, fmt.Errorf("mesh %d (%s) shape %d: %w", i, ms.Name, j, err)
			}
			soup = append(soup, tris...)
			if sh.Layout != nil && lvl.Layout == nil {
				l := sh.Layout.layout()
				lvl.Layout = &l
				hasLayout = true
			}
		}

		mat := physics.DefaultMaterial()
		if ms.Material != nil {
			mat = *ms.Material
		}
		name := ms.Name
		if name == "" {
			name = fmt.Sprintf("mesh-%d", i)
		}
		h, err := w.AddMesh(name, soup, physics.MeshOptions{Material: mat})
		if err != nil {
			return nil, err
		}
		if ms.Platform {
			lvl.Platforms = append(lvl.Platforms, h)
		}
		if hasLayout {
			lvl.LayoutMesh = h
		}
		lvl.Bounds = lvl.Bounds.Union(soup.Bounds())
	}

	for _, z := range s.Zones {
		lo, hi := z.Min.V(), z.Max.V()
		w.AddZone(physics.ForceZone{
			Name:         z.Name,
			Bounds:       geometry.AABB{Min: lo.Min(hi), Max: lo.Max(hi)},
			Acceleration: z.Acceleration.V(),
		})
	}
	return lvl, nil
}
