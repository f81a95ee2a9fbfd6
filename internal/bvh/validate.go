package bvh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/tiltmaze/internal/geometry"
)

// ErrInvalidTree is wrapped by every Validate failure.
var ErrInvalidTree = errors.New("invalid bvh")

// Validate checks the structural invariants of t: every primitive appears
// in exactly one leaf, node bounds are tight, child bounds nest inside their
// parent, and every node is reachable exactly once from the root.
func (t *Tree) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("no root node: %w", ErrInvalidTree)
	}
	if len(t.Order) != len(t.Prims) {
		return fmt.Errorf("order has %d entries for %d primitives: %w", len(t.Order), len(t.Prims), ErrInvalidTree)
	}

	visited := make([]bool, len(t.Nodes))
	covered := make([]int, len(t.Prims))
	stack := []int32{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[i] {
			return fmt.Errorf("node %d reached twice: %w", i, ErrInvalidTree)
		}
		visited[i] = true
		n := t.Nodes[i]

		if n.IsLeaf() {
			if n.First < 0 || n.Count < 0 || int(n.First+n.Count) > len(t.Order) {
				return fmt.Errorf("leaf %d range [%d, %d) out of bounds: %w", i, n.First, n.First+n.Count, ErrInvalidTree)
			}
			box := geometry.EmptyAABB()
			for _, idx := range t.Leaf(n) {
				if idx < 0 || int(idx) >= len(t.Prims) {
					return fmt.Errorf("leaf %d references primitive %d: %w", i, idx, ErrInvalidTree)
				}
				covered[idx]++
				box = box.Union(t.Prims[idx].Bounds())
			}
			if box != n.Bounds {
				return fmt.Errorf("leaf %d bounds %v, want %v: %w", i, n.Bounds, box, ErrInvalidTree)
			}
			continue
		}

		if n.Count != 0 {
			return fmt.Errorf("internal node %d has count %d: %w", i, n.Count, ErrInvalidTree)
		}
		for _, c := range [2]int32{n.Left, n.Right} {
			if c <= 0 || int(c) >= len(t.Nodes) {
				return fmt.Errorf("node %d has child %d: %w", i, c, ErrInvalidTree)
			}
			if !n.Bounds.Contains(t.Nodes[c].Bounds) {
				return fmt.Errorf("node %d does not contain child %d: %w", i, c, ErrInvalidTree)
			}
		}
		if union := t.Nodes[n.Left].Bounds.Union(t.Nodes[n.Right].Bounds); union != n.Bounds {
			return fmt.Errorf("node %d bounds %v, want %v: %w", i, n.Bounds, union, ErrInvalidTree)
		}
		stack = append(stack, n.Left, n.Right)
	}

	for i, v := range visited {
		if !v {
			return fmt.Errorf("node %d unreachable: %w", i, ErrInvalidTree)
		}
	}
	for idx, c := range covered {
		if c != 1 {
			return fmt.Errorf("primitive %d appears in %d leaves: %w", idx, c, ErrInvalidTree)
		}
	}
	return nil
}

// Stats summarises tree shape.
type Stats struct {
	Nodes      int
	Leaves     int
	Depth      int
	MaxLeaf    int
	Primitives int
}

// Stats walks the tree and reports its shape. Depth counts the root as 1.
func (t *Tree) Stats() Stats {
	s := Stats{Nodes: len(t.Nodes), Primitives: len(t.Prims)}
	type item struct {
		node  int32
		depth int
	}
	stack := []item{{0, 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s.Depth = max(s.Depth, it.depth)
		n := t.Nodes[it.node]
		if n.IsLeaf() {
			s.Leaves++
			s.MaxLeaf = max(s.MaxLeaf, int(n.Count))
			continue
		}
		stack = append(stack, item{n.Left, it.depth + 1}, item{n.Right, it.depth + 1})
	}
	return s
}
