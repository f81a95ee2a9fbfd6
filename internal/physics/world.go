// Package physics resolves a rolling ball against static triangle meshes.
//
// A World owns the ball and a registry of meshes. Each call to Step splits
// the frame into fixed sub-steps; every sub-step integrates free-fall,
// queries all meshes, classifies contacts as colliding or resting and
// resolves them with an impulse or a support-force solve. A World is not
// safe for concurrent use.
package physics

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/tiltmaze/internal/bvh"
	"github.com/Faultbox/tiltmaze/internal/geometry"
	"github.com/Faultbox/tiltmaze/internal/logger"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

// ErrStaleHandle is returned for handles whose mesh was removed or that
// never belonged to the world.
var ErrStaleHandle = errors.New("stale mesh handle")

// Options tunes the simulation.
type Options struct {
	// SubSteps is the number of fixed sub-steps per frame. 30 to 200 is
	// the useful range: fewer tunnels, more costs time.
	SubSteps int
	Gravity  math.Vec3
	// RestingThreshold is the relative normal speed below which a contact
	// is held by support forces instead of an impulse.
	RestingThreshold float32
	// ContactSlop widens the query radius so a ball lying exactly on a
	// surface keeps reporting the contact.
	ContactSlop float32
	// AirDrag applies -AirDrag*v/mass.
	AirDrag float32
	// FallLimit respawns the ball once its centre drops below this height.
	FallLimit float32
	Solver    SolverOptions
	BVH       bvh.Options
	Logger    *zap.Logger
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		SubSteps:         100,
		Gravity:          math.Vec3{Y: -9.81},
		RestingThreshold: 1e-3,
		ContactSlop:      1e-3,
		FallLimit:        -50,
		Solver:           DefaultSolverOptions(),
		BVH:              bvh.DefaultOptions(),
	}
}

// MeshOptions configures a mesh added to a World.
type MeshOptions struct {
	Material Material
	// Transform places the mesh; the zero value is replaced by identity.
	Transform math.Rigid
}

// FrameResult reports what happened during one Step.
type FrameResult struct {
	// Hit is true when any sub-step found a contact.
	Hit bool
	// Contacts are the contacts of the final sub-step.
	Contacts []ContactInfo
	State    State
	Pose     Pose
	Velocity math.Vec3
	Model    math.Mat4
	// Impacts counts impulses applied during the frame and ImpactSpeed is
	// the largest approach speed among them.
	Impacts        int
	ImpactSpeed    float32
	MaxPenetration float32
	Respawned      bool
}

type meshSlot struct {
	mesh       *Mesh
	generation uint32
}

// World is one independent simulation.
type World struct {
	opts  Options
	log   *zap.Logger
	ball  *Body
	spawn math.Vec3
	state State

	slots []meshSlot
	free  []uint32
	zones []ForceZone

	contacts  []ContactInfo
	resting   []int
	colliding []int
	normals   []math.Vec3
}

// NewWorld returns a world simulating ball. The ball's starting position
// becomes the respawn point.
func NewWorld(ball *Body, opts Options) (*World, error) {
	if ball == nil {
		return nil, fmt.Errorf("nil ball: %w", ErrInvalidBody)
	}
	if err := ball.Validate(); err != nil {
		return nil, err
	}
	if opts.SubSteps <= 0 {
		opts.SubSteps = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("physics")
	}
	return &World{
		opts:  opts,
		log:   log,
		ball:  ball,
		spawn: ball.Position,
	}, nil
}

// Body returns the simulated ball.
func (w *World) Body() *Body { return w.ball }

// State returns the state after the last sub-step.
func (w *World) State() State { return w.state }

// Options returns the world's tuning.
func (w *World) Options() Options { return w.opts }

// SetSpawn moves the respawn point.
func (w *World) SetSpawn(p math.Vec3) { w.spawn = p }

// Spawn returns the respawn point.
func (w *World) Spawn() math.Vec3 { return w.spawn }

// AddZone registers a force zone.
func (w *World) AddZone(z ForceZone) {
	w.zones = append(w.zones, z)
}

// Zones returns the registered force zones.
func (w *World) Zones() []ForceZone { return w.zones }

// AddMesh builds the BVH for tris and registers them as a static mesh.
// An empty soup is accepted and never produces contacts.
func (w *World) AddMesh(name string, tris geometry.Soup, opts MeshOptions) (MeshHandle, error) {
	// The zero quaternion normalizes to the identity.
	opts.Transform.Rotation = opts.Transform.Rotation.Normalize()
	for i, tri := range tris {
		if !tri.A.IsFinite() || !tri.B.IsFinite() || !tri.C.IsFinite() {
			return MeshHandle{}, fmt.Errorf("mesh %q triangle %d is not finite", name, i)
		}
	}

	var index uint32
	if n := len(w.free); n > 0 {
		index = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		index = uint32(len(w.slots))
		w.slots = append(w.slots, meshSlot{})
	}
	slot := &w.slots[index]
	slot.generation++
	h := MeshHandle{Index: index, Generation: slot.generation}
	slot.mesh = newMesh(name, h, tris, opts, w.opts.BVH)

	stats := slot.mesh.tree.Stats()
	w.log.Info("Mesh added",
		zap.String("name", name),
		zap.Stringer("handle", h),
		zap.Int("triangles", len(tris)))
	w.log.Debug("BVH built",
		zap.String("name", name),
		zap.Int("nodes", stats.Nodes),
		zap.Int("leaves", stats.Leaves),
		zap.Int("depth", stats.Depth),
		zap.Int("maxLeaf", stats.MaxLeaf))
	return h, nil
}

// RemoveMesh unregisters a mesh. Its handle and any contacts referring to
// it become stale.
func (w *World) RemoveMesh(h MeshHandle) error {
	m, err := w.Mesh(h)
	if err != nil {
		return err
	}
	w.slots[h.Index].mesh = nil
	w.free = append(w.free, h.Index)
	w.log.Info("Mesh removed", zap.String("name", m.Name), zap.Stringer("handle", h))
	return nil
}

// Mesh resolves a handle.
func (w *World) Mesh(h MeshHandle) (*Mesh, error) {
	if h.IsZero() || int(h.Index) >= len(w.slots) {
		return nil, fmt.Errorf("%v: %w", h, ErrStaleHandle)
	}
	slot := w.slots[h.Index]
	if slot.mesh == nil || slot.generation != h.Generation {
		return nil, fmt.Errorf("%v: %w", h, ErrStaleHandle)
	}
	return slot.mesh, nil
}

// Meshes returns the live meshes in registration-slot order.
func (w *World) Meshes() []*Mesh {
	var out []*Mesh
	for _, s := range w.slots {
		if s.mesh != nil {
			out = append(out, s.mesh)
		}
	}
	return out
}

// SetMeshTransform sets the transform the mesh reaches at the end of the
// next Step. Sub-steps interpolate toward it from the previous transform,
// so a moving platform pushes the ball with a continuous surface velocity.
func (w *World) SetMeshTransform(h MeshHandle, t math.Rigid) error {
	m, err := w.Mesh(h)
	if err != nil {
		return err
	}
	m.to = math.Rigid{Rotation: t.Rotation.Normalize(), Translation: t.Translation}
	return nil
}

// SetMeshMatrix is SetMeshTransform for a matrix; matrices with scale or
// shear are rejected with math.ErrNotRigid.
func (w *World) SetMeshMatrix(h MeshHandle, m math.Mat4) error {
	t, err := math.RigidFromMat4(m)
	if err != nil {
		return fmt.Errorf("mesh %v: %w", h, err)
	}
	return w.SetMeshTransform(h, t)
}

// TeleportMesh places the mesh immediately, with no surface velocity.
func (w *World) TeleportMesh(h MeshHandle, t math.Rigid) error {
	m, err := w.Mesh(h)
	if err != nil {
		return err
	}
	m.reset(math.Rigid{Rotation: t.Rotation.Normalize(), Translation: t.Translation})
	return nil
}

// Query tests a world-space sphere against every live mesh at its settled
// transform and returns the contacts.
func (w *World) Query(center math.Vec3, radius float32) []ContactInfo {
	var out []ContactInfo
	for _, s := range w.slots {
		if s.mesh != nil {
			out = s.mesh.query(center, radius, 0, out)
		}
	}
	return out
}

// Respawn returns the ball to the spawn point at rest.
func (w *World) Respawn() {
	b := w.ball
	w.log.Info("Respawn",
		logger.Vec3("from", b.Position),
		logger.Vec3("to", w.spawn))
	b.Position = w.spawn
	b.Velocity = math.Vec3{}
	b.Acceleration = math.Vec3{}
	b.Orientation = math.QuatIdentity()
	b.Rolls = b.Rolls[:0]
	w.setState(FreeFall)
}

func (w *World) setState(s State) {
	if s == w.state {
		return
	}
	w.log.Debug("State change",
		zap.Stringer("from", w.state),
		zap.Stringer("to", s),
		logger.Vec3("position", w.ball.Position))
	w.state = s
}
