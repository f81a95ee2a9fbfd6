package bvh

import "github.com/Faultbox/tiltmaze/pkg/math"

// Hit is a primitive whose closest point lies strictly inside the query
// sphere.
type Hit struct {
	Prim    int32
	Closest math.Vec3
	DistSq  float32
}

// QuerySphere appends to dst every primitive penetrated by the sphere and
// returns the extended slice. Nodes are culled by the sphere's bounding box;
// surviving triangles are tested exactly with their closest point.
func (t *Tree) QuerySphere(center math.Vec3, radius float32, dst []Hit) []Hit {
	radiusSq := radius * radius

	var buf [64]int32
	stack := append(buf[:0], 0)
	for len(stack) > 0 {
		n := t.Nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if !n.Bounds.OverlapsSphere(center, radius) {
			continue
		}
		if !n.IsLeaf() {
			stack = append(stack, n.Right, n.Left)
			continue
		}
		for _, idx := range t.Leaf(n) {
			closest := t.Prims[idx].ClosestPoint(center)
			if d := center.Sub(closest).LengthSq(); d < radiusSq {
				dst = append(dst, Hit{Prim: idx, Closest: closest, DistSq: d})
			}
		}
	}
	return dst
}
