// Package bvh builds a bounding volume hierarchy over triangle primitives
// and answers sphere proximity queries against it.
//
// The tree is stored as flat arrays: Nodes holds the hierarchy with the
// root at index 0 and Order holds a permutation of primitive indices, so a
// leaf covers Order[First:First+Count]. Trees are written once by Build and
// are read-only afterwards.
package bvh

import (
	"github.com/Faultbox/tiltmaze/internal/geometry"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

const (
	// DefaultMaxLeafSize is the leaf capacity used when Options leaves it unset.
	DefaultMaxLeafSize = 4

	// StrictMaxLeafSize is the tighter leaf capacity of StrictOptions.
	StrictMaxLeafSize = 2

	// DefaultMinExtent is the node extent below which a node is not split.
	DefaultMinExtent float32 = 1e-4
)

// Primitive is a triangle tagged with its owning mesh and its index in
// that mesh's source soup.
type Primitive struct {
	geometry.Triangle
	Mesh  uint32
	Index int32
}

// FromSoup wraps every triangle of soup as a primitive of mesh.
func FromSoup(mesh uint32, soup geometry.Soup) []Primitive {
	prims := make([]Primitive, len(soup))
	for i, tri := range soup {
		prims[i] = Primitive{Triangle: tri, Mesh: mesh, Index: int32(i)}
	}
	return prims
}

// Node is one BVH node. A leaf has Left == Right == -1 and covers Count
// entries of Tree.Order starting at First. An internal node has Count == 0
// and two children.
type Node struct {
	Bounds      geometry.AABB
	Left, Right int32
	First       int32
	Count       int32
}

// IsLeaf reports whether n has no children.
func (n Node) IsLeaf() bool {
	return n.Left < 0 && n.Right < 0
}

// Tree is a built hierarchy.
type Tree struct {
	Nodes []Node
	Order []int32
	Prims []Primitive
}

// Options controls tree construction. Zero values select the defaults.
type Options struct {
	MaxLeafSize int
	Splitter    Splitter
	MinExtent   float32
}

// DefaultOptions returns the standard builder settings.
func DefaultOptions() Options {
	return Options{
		MaxLeafSize: DefaultMaxLeafSize,
		Splitter:    MidpointSplit{},
		MinExtent:   DefaultMinExtent,
	}
}

// StrictOptions returns settings with two primitives per leaf.
func StrictOptions() Options {
	opts := DefaultOptions()
	opts.MaxLeafSize = StrictMaxLeafSize
	return opts
}

func (o Options) withDefaults() Options {
	if o.MaxLeafSize <= 0 {
		o.MaxLeafSize = DefaultMaxLeafSize
	}
	if o.Splitter == nil {
		o.Splitter = MidpointSplit{}
	}
	if o.MinExtent <= 0 {
		o.MinExtent = DefaultMinExtent
	}
	return o
}

// buildTask is a pending node on the construction stack.
type buildTask struct {
	node         int32
	first, count int32
}

// Build constructs a tree over prims. The slice is retained by the tree and
// must not be modified afterwards. An empty input yields a single empty
// leaf whose inverted bounds overlap nothing.
func Build(prims []Primitive, opts Options) *Tree {
	opts = opts.withDefaults()

	t := &Tree{
		Order: make([]int32, len(prims)),
		Prims: prims,
	}
	for i := range t.Order {
		t.Order[i] = int32(i)
	}

	centroids := make([]math.Vec3, len(prims))
	bounds := make([]geometry.AABB, len(prims))
	for i, p := range prims {
		centroids[i] = p.Centroid()
		bounds[i] = p.Bounds()
	}

	t.Nodes = make([]Node, 1, 2*len(prims)+1)
	stack := []buildTask{{node: 0, first: 0, count: int32(len(prims))}}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		order := t.Order[task.first : task.first+task.count]
		box := geometry.EmptyAABB()
		for _, idx := range order {
			box = box.Union(bounds[idx])
		}

		leaf := Node{Bounds: box, Left: -1, Right: -1, First: task.first, Count: task.count}
		if int(task.count) <= opts.MaxLeafSize {
			t.Nodes[task.node] = leaf
			continue
		}

		axis := splitAxis(order, centroids)
		if box.Extent().Axis(axis) < opts.MinExtent {
			t.Nodes[task.node] = leaf
			continue
		}

		mid := int32(opts.Splitter.Split(order, centroids, axis, box))
		if mid <= 0 || mid >= task.count {
			mid = task.count / 2
		}

		left := int32(len(t.Nodes))
		right := left + 1
		t.Nodes = append(t.Nodes, Node{}, Node{})
		t.Nodes[task.node] = Node{Bounds: box, Left: left, Right: right}

		// Right first so the left subtree is laid out next to its parent.
		stack = append(stack,
			buildTask{node: right, first: task.first + mid, count: task.count - mid},
			buildTask{node: left, first: task.first, count: mid},
		)
	}

	return t
}

// splitAxis returns the axis with the greatest centroid variance. Ties go
// to the lower axis index.
func splitAxis(order []int32, centroids []math.Vec3) int {
	var mean math.Vec3
	for _, idx := range order {
		mean = mean.Add(centroids[idx])
	}
	mean = mean.Scale(1 / float32(len(order)))

	var variance math.Vec3
	for _, idx := range order {
		d := centroids[idx].Sub(mean)
		variance = variance.Add(d.Mul(d))
	}

	axis := 0
	if variance.Y > variance.Axis(axis) {
		axis = 1
	}
	if variance.Z > variance.Axis(axis) {
		axis = 2
	}
	return axis
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return t.Nodes[0]
}

// Bounds returns the bounds of every primitive in the tree.
func (t *Tree) Bounds() geometry.AABB {
	return t.Nodes[0].Bounds
}

// Leaf returns the primitive indices covered by leaf node n.
func (t *Tree) Leaf(n Node) []int32 {
	return t.Order[n.First : n.First+n.Count]
}
