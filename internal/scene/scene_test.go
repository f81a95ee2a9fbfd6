package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/tiltmaze/internal/physics"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

const rampScene = `
name: ramp
ball:
  position: [0, 2, 0]
  radius: 0.5
  mass: 2
meshes:
  - name: ground
    material: {restitution: 0.5, friction: 0.1}
    shapes:
      - box: {min: [-5, -1, -5], max: [5, 0, 5]}
      - quad: {a: [5, 0, -5], b: [5, 0, 5], c: [8, 2, 5], d: [8, 2, -5]}
      - triangle: {a: [0, 0, 0], b: [1, 0, 0], c: [0, 1, 0]}
      - sphere: {center: [3, 0, 3], radius: 1, segments: 4}
      - terrain:
          origin: [-4, 0, -4]
          heights: [[0, 0, 0], [0, 0.5, 0], [0, 0, 0]]
zones:
  - name: updraft
    min: [2, 0, -1]
    max: [-2, 4, 1]
    acceleration: [0, 15, 0]
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(rampScene))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Name != "ramp" || s.Ball.Radius != 0.5 || s.Ball.Mass != 2 {
		t.Errorf("ball = %+v", s.Ball)
	}
	if len(s.Meshes) != 1 || len(s.Meshes[0].Shapes) != 5 {
		t.Fatalf("got %d meshes", len(s.Meshes))
	}
	if m := s.Meshes[0].Material; m == nil || m.Restitution != 0.5 || m.Friction != 0.1 {
		t.Errorf("material = %+v", m)
	}
	p, err := s.SpawnPosition()
	if err != nil || p != (math.Vec3{Y: 2}) {
		t.Errorf("SpawnPosition() = %v, %v", p, err)
	}
}

func TestShapeSoup(t *testing.T) {
	s, err := Parse([]byte(rampScene))
	if err != nil {
		t.Fatal(err)
	}
	want := []int{12, 2, 1, 48, 8}
	for i, sh := range s.Meshes[0].Shapes {
		soup, err := sh.Soup()
		if err != nil {
			t.Fatalf("shape %d: %v", i, err)
		}
		if len(soup) != want[i] {
			t.Errorf("shape %d has %d triangles, want %d", i, len(soup), want[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "empty shape",
			yaml:    "ball: {position: [0, 1, 0], radius: 1, mass: 1}\nmeshes:\n  - shapes:\n      - {}\n",
			wantErr: ErrUnknownShape,
		},
		{
			name: "two shapes in one entry",
			yaml: "ball: {position: [0, 1, 0], radius: 1, mass: 1}\nmeshes:\n  - shapes:\n" +
				"      - box: {min: [0, 0, 0], max: [1, 1, 1]}\n        triangle: {a: [0, 0, 0], b: [1, 0, 0], c: [0, 1, 0]}\n",
			wantErr: ErrUnknownShape,
		},
		{
			name:    "no spawn",
			yaml:    "ball: {radius: 1, mass: 1}\n",
			wantErr: ErrNoSpawn,
		},
		{
			name:    "zero radius",
			yaml:    "ball: {position: [0, 1, 0], radius: 0, mass: 1}\n",
			wantErr: physics.ErrInvalidBody,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Parse([]byte("ball: {radius: 1, mass: 1, colour: red}\n")); err == nil {
		t.Error("Parse accepted an unknown key")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ramp.yaml")
	if err := os.WriteFile(path, []byte(rampScene), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("Load() error = %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want ErrNotExist", err)
	}
}

func TestBuild(t *testing.T) {
	s, err := Parse([]byte(rampScene))
	if err != nil {
		t.Fatal(err)
	}
	lvl, err := s.Build(physics.DefaultOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := len(lvl.World.Meshes()); got != 1 {
		t.Errorf("world has %d meshes, want 1", got)
	}
	if len(lvl.Platforms) != 0 {
		t.Errorf("got %d platforms, want 0", len(lvl.Platforms))
	}
	z := lvl.World.Zones()
	if len(z) != 1 || z[0].Bounds.Min.X != -2 || z[0].Bounds.Max.X != 2 {
		t.Errorf("zones = %+v, want the updraft with sorted corners", z)
	}
	if lvl.Bounds.Max.X != 8 || lvl.Bounds.Min.Y != -1 {
		t.Errorf("bounds = %v", lvl.Bounds)
	}
	if m := lvl.World.Meshes()[0].Material; m.Restitution != 0.5 {
		t.Errorf("material = %+v, want restitution 0.5", m)
	}
	if lvl.Layout != nil || !lvl.LayoutMesh.IsZero() {
		t.Error("scene without a layout reported one")
	}
	if lvl.LayoutFrame() != math.RigidIdentity() {
		t.Errorf("LayoutFrame() = %v without a layout, want the identity", lvl.LayoutFrame())
	}
}

func TestBuildLayoutMesh(t *testing.T) {
	s, err := Parse([]byte(`
name: pad first
ball: {radius: 0.3, mass: 1}
meshes:
  - name: pad
    platform: true
    shapes:
      - box: {min: [0, 0, 0], max: [1, 0.1, 1]}
  - name: maze
    shapes:
      - layout:
          cell: 1
          height: 0.6
          floor: 0.25
          rows: ["###", "#S#", "###"]
`))
	if err != nil {
		t.Fatal(err)
	}
	lvl, err := s.Build(physics.DefaultOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	m, err := lvl.World.Mesh(lvl.LayoutMesh)
	if err != nil || m.Name != "maze" {
		t.Fatalf("LayoutMesh resolves to %v (%v), want the maze mesh", m, err)
	}

	// Moving the pad leaves the layout frame alone.
	moved := math.Rigid{Rotation: math.QuatIdentity(), Translation: math.Vec3{Y: 2}}
	if err := lvl.World.TeleportMesh(lvl.Platforms[0], moved); err != nil {
		t.Fatal(err)
	}
	if lvl.LayoutFrame() != math.RigidIdentity() {
		t.Errorf("LayoutFrame() = %v, want the maze's identity transform", lvl.LayoutFrame())
	}
	if err := lvl.World.TeleportMesh(lvl.LayoutMesh, moved); err != nil {
		t.Fatal(err)
	}
	if lvl.LayoutFrame() != moved {
		t.Errorf("LayoutFrame() = %v, want %v", lvl.LayoutFrame(), moved)
	}
}

func TestDefaultMaze(t *testing.T) {
	s := Default()
	lvl, err := s.Build(physics.DefaultOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(lvl.Platforms) != 2 {
		t.Errorf("got %d platforms, want the maze and the spring pad", len(lvl.Platforms))
	}
	if lvl.Layout == nil {
		t.Fatal("default maze has no layout")
	}

	ball := lvl.World.Body()
	if want := (math.Vec3{X: 1.5, Y: 0.3, Z: 1.5}); !ball.Position.ApproxEqual(want, 1e-6) {
		t.Errorf("ball starts at %v, want %v", ball.Position, want)
	}

	// The untilted maze holds the ball still on its floor.
	for i := 0; i < 60; i++ {
		lvl.World.Step(1.0 / 60)
	}
	if lvl.World.State() != physics.Resting {
		t.Errorf("state %v, want resting", lvl.World.State())
	}
	if !ball.Position.ApproxEqual(math.Vec3{X: 1.5, Y: 0.3, Z: 1.5}, 1e-3) {
		t.Errorf("ball drifted to %v", ball.Position)
	}
}
