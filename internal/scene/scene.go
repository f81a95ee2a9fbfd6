// Package scene loads level descriptions: the ball, the static meshes it
// rolls on and the force zones acting on it.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/tiltmaze/internal/physics"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

var (
	// ErrUnknownShape is returned for a shape entry that sets no shape or
	// more than one.
	ErrUnknownShape = errors.New("unknown shape")

	// ErrNoSpawn is returned when neither the ball nor a layout marker
	// gives a starting position.
	ErrNoSpawn = errors.New("no spawn position")
)

// Layout markers.
const (
	SpawnMarker = 'S' // ball start cell
	GoalMarker  = 'G' // cell the autopilot steers to
)

// Vec is a YAML [x, y, z] triple.
type Vec [3]float32

// V converts to a math vector.
func (v Vec) V() math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// Scene is a parsed level file.
type Scene struct {
	Name string   `yaml:"name"`
	Ball BallSpec `yaml:"ball"`
	// Pivot is the point platform meshes tilt about.
	Pivot  Vec        `yaml:"pivot,flow"`
	Meshes []MeshSpec `yaml:"meshes"`
	Zones  []ZoneSpec `yaml:"zones"`
}

// BallSpec describes the ball. A nil Position starts the ball on the first
// layout cell marked 'S'.
type BallSpec struct {
	Position *Vec    `yaml:"position,flow"`
	Radius   float32 `yaml:"radius"`
	Mass     float32 `yaml:"mass"`
}

// MeshSpec describes one static mesh built from shapes.
type MeshSpec struct {
	Name string `yaml:"name"`
	// Platform meshes follow the maze tilt.
	Platform bool              `yaml:"platform"`
	Material *physics.Material `yaml:"material,flow"`
	Shapes   []ShapeSpec       `yaml:"shapes"`
}

// ZoneSpec describes a force zone.
type ZoneSpec struct {
	Name         string `yaml:"name"`
	Min          Vec    `yaml:"min,flow"`
	Max          Vec    `yaml:"max,flow"`
	Acceleration Vec    `yaml:"acceleration,flow"`
}

// Parse decodes and validates a scene. Unknown keys are errors.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading scene from %s: %w", path, err)
	}
	return s, nil
}

// Validate checks the scene for missing or contradictory entries.
func (s *Scene) Validate() error {
	if !(s.Ball.Radius > 0) {
		return fmt.Errorf("ball radius %v: %w", s.Ball.Radius, physics.ErrInvalidBody)
	}
	if !(s.Ball.Mass > 0) {
		return fmt.Errorf("ball mass %v: %w", s.Ball.Mass, physics.ErrInvalidBody)
	}
	for i, m := range s.Meshes {
		for j, sh := range m.Shapes {
			if _, err := sh.kind(); err != nil {
				return fmt.Errorf("mesh %d (%s) shape %d: %w", i, m.Name, j, err)
			}
		}
	}
	if _, err := s.SpawnPosition(); err != nil {
		return err
	}
	return nil
}

// SpawnPosition returns the ball's starting centre.
func (s *Scene) SpawnPosition() (math.Vec3, error) {
	if s.Ball.Position != nil {
		return s.Ball.Position.V(), nil
	}
	for _, m := range s.Meshes {
		for _, sh := range m.Shapes {
			if sh.Layout == nil {
				continue
			}
			if p, ok := sh.Layout.layout().Find(SpawnMarker); ok {
				return p.Add(math.Vec3{Y: s.Ball.Radius}), nil
			}
		}
	}
	return math.Vec3{}, ErrNoSpawn
}
