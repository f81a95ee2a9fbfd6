package geometry

import (
	gomath "math"

	"github.com/Faultbox/tiltmaze/pkg/math"
)

// BoundingSphere returns the centroid of points and the largest distance
// from it to any point. An empty input yields a zero sphere.
func BoundingSphere(points []math.Vec3) (center math.Vec3, radius float32) {
	if len(points) == 0 {
		return math.Vec3{}, 0
	}
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Scale(1 / float32(len(points)))

	var maxDistSq float32
	for _, p := range points {
		if d := p.Sub(center).LengthSq(); d > maxDistSq {
			maxDistSq = d
		}
	}
	return center, float32(gomath.Sqrt(float64(maxDistSq)))
}
