package scene

import (
	"fmt"

	"github.com/Faultbox/tiltmaze/internal/geometry"
)

// ShapeSpec holds exactly one shape.
type ShapeSpec struct {
	Box      *BoxSpec      `yaml:"box,flow"`
	Quad     *QuadSpec     `yaml:"quad,flow"`
	Triangle *TriangleSpec `yaml:"triangle,flow"`
	Layout   *LayoutSpec   `yaml:"layout"`
	Sphere   *SphereSpec   `yaml:"sphere,flow"`
	Terrain  *TerrainSpec  `yaml:"terrain"`
}

// BoxSpec is an axis-aligned box.
type BoxSpec struct {
	Min Vec `yaml:"min,flow"`
	Max Vec `yaml:"max,flow"`
}

// QuadSpec is a planar quad split along a-c.
type QuadSpec struct {
	A Vec `yaml:"a,flow"`
	B Vec `yaml:"b,flow"`
	C Vec `yaml:"c,flow"`
	D Vec `yaml:"d,flow"`
}

// TriangleSpec is a single triangle.
type TriangleSpec struct {
	A Vec `yaml:"a,flow"`
	B Vec `yaml:"b,flow"`
	C Vec `yaml:"c,flow"`
}

// LayoutSpec is an ASCII maze with walls and a floor slab.
type LayoutSpec struct {
	Rows   []string `yaml:"rows"`
	Cell   float32  `yaml:"cell"`
	Height float32  `yaml:"height"`
	Floor  float32  `yaml:"floor"`
	Origin Vec      `yaml:"origin,flow"`
}

// SphereSpec is a tessellated sphere obstacle.
type SphereSpec struct {
	Center   Vec     `yaml:"center,flow"`
	Radius   float32 `yaml:"radius"`
	Segments int     `yaml:"segments"`
}

// TerrainSpec is a heightfield: Heights[i][j] is the surface height at
// column j, row i of a grid with the given cell size.
type TerrainSpec struct {
	Origin  Vec         `yaml:"origin,flow"`
	Cell    float32     `yaml:"cell"`
	Heights [][]float32 `yaml:"heights,flow"`
}

func (l *LayoutSpec) layout() geometry.Layout {
	cell := l.Cell
	if cell <= 0 {
		cell = 1
	}
	return geometry.Layout{
		Rows:           l.Rows,
		Cell:           cell,
		WallHeight:     l.Height,
		FloorThickness: l.Floor,
		Origin:         l.Origin.V(),
	}
}

func (s ShapeSpec) kind() (string, error) {
	var kinds []string
	if s.Box != nil {
		kinds = append(kinds, "box")
	}
	if s.Quad != nil {
		kinds = append(kinds, "quad")
	}
	if s.Triangle != nil {
		kinds = append(kinds, "triangle")
	}
	if s.Layout != nil {
		kinds = append(kinds, "layout")
	}
	if s.Sphere != nil {
		kinds = append(kinds, "sphere")
	}
	if s.Terrain != nil {
		kinds = append(kinds, "terrain")
	}
	switch len(kinds) {
	case 0:
		return "", fmt.Errorf("empty entry: %w", ErrUnknownShape)
	case 1:
		return kinds[0], nil
	default:
		return "", fmt.Errorf("entry sets %v: %w", kinds, ErrUnknownShape)
	}
}

// Soup tessellates the shape.
func (s ShapeSpec) Soup() (geometry.Soup, error) {
	kind, err := s.kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case "box":
		lo, hi := s.Box.Min.V(), s.Box.Max.V()
		return geometry.Box(lo.Min(hi), lo.Max(hi)), nil
	case "quad":
		return geometry.Quad(s.Quad.A.V(), s.Quad.B.V(), s.Quad.C.V(), s.Quad.D.V()), nil
	case "triangle":
		return geometry.Soup{{A: s.Triangle.A.V(), B: s.Triangle.B.V(), C: s.Triangle.C.V()}}, nil
	case "layout":
		l := s.Layout.layout()
		return append(l.Floor(), l.Walls()...), nil
	case "terrain":
		cell := s.Terrain.Cell
		if cell <= 0 {
			cell = 1
		}
		return geometry.Heightfield(s.Terrain.Origin.V(), cell, s.Terrain.Heights), nil
	default:
		return geometry.UVSphere(s.Sphere.Center.V(), s.Sphere.Radius, s.Sphere.Segments), nil
	}
}
