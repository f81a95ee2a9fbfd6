package geometry

import "github.com/Faultbox/tiltmaze/pkg/math"

// ClosestPoint returns the point on triangle abc closest to p, using the
// vertex, edge and face Voronoi regions of the triangle.
func ClosestPoint(p, a, b, c math.Vec3) math.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	// Vertex region outside A
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	// Vertex region outside B
	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	// Edge region of AB
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Scale(v))
	}

	// Vertex region outside C
	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	// Edge region of AC
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Scale(w))
	}

	// Edge region of BC
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Scale(w))
	}

	// Face region
	denom := va + vb + vc
	if denom == 0 {
		// Zero-area triangle that slipped past the edge tests.
		return a
	}
	v := vb / denom
	w := vc / denom
	return a.Add(ab.Scale(v)).Add(ac.Scale(w))
}

// ClosestPoint returns the point on t closest to p.
func (t Triangle) ClosestPoint(p math.Vec3) math.Vec3 {
	return ClosestPoint(p, t.A, t.B, t.C)
}
