package physics

import (
	gomath "math"

	"github.com/Faultbox/tiltmaze/pkg/math"
)

// SolverOptions bounds the resting-contact solve.
type SolverOptions struct {
	MaxIterations int
	Tolerance     float32
}

// DefaultSolverOptions returns 100 iterations with a 1e-5 tolerance.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{MaxIterations: 100, Tolerance: 1e-5}
}

// Support is the result of a resting-contact solve.
type Support struct {
	// Lambdas are the non-negative force magnitudes, one per normal.
	Lambdas []float32
	// Forces are Lambdas[i] * normals[i].
	Forces     []math.Vec3
	Iterations int
	Converged  bool
}

// Acceleration returns the summed support acceleration on a body of the
// given mass.
func (s Support) Acceleration(mass float32) math.Vec3 {
	inv := InverseMass(mass)
	var a math.Vec3
	for _, f := range s.Forces {
		a = a.Add(f.Scale(inv))
	}
	return a
}

// SolveSupport finds non-negative support force magnitudes for a body of
// the given mass held by simultaneous resting contacts with unit normals
// (pointing toward the body) under external acceleration aExt. It runs
// projected Gauss-Seidel until the largest change in one pass drops below
// the tolerance or the iteration cap is reached. It never fails: an
// ill-conditioned system returns whatever the cap leaves.
func SolveSupport(mass float32, aExt math.Vec3, normals []math.Vec3, opts SolverOptions) Support {
	n := len(normals)
	s := Support{
		Lambdas: make([]float32, n),
		Forces:  make([]math.Vec3, n),
	}
	inv := float64(InverseMass(mass))
	if n == 0 || inv == 0 {
		s.Converged = true
		return s
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultSolverOptions().MaxIterations
	}

	w := make([]float64, n*n)
	b := make([]float64, n)
	for i, ni := range normals {
		b[i] = float64(ni.Dot(aExt))
		for j, nj := range normals {
			w[i*n+j] = float64(ni.Dot(nj)) * inv
		}
	}

	lambda := make([]float64, n)
	tol := float64(opts.Tolerance)
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		var maxDelta float64
		for i := 0; i < n; i++ {
			wii := w[i*n+i]
			if wii == 0 {
				continue
			}
			sum := b[i]
			for j := 0; j < n; j++ {
				if j != i {
					sum += w[i*n+j] * lambda[j]
				}
			}
			next := gomath.Max(0, -sum/wii)
			maxDelta = gomath.Max(maxDelta, gomath.Abs(next-lambda[i]))
			lambda[i] = next
		}
		s.Iterations = iter
		if maxDelta < tol {
			s.Converged = true
			break
		}
	}

	for i, l := range lambda {
		s.Lambdas[i] = float32(l)
		s.Forces[i] = normals[i].Scale(float32(l))
	}
	return s
}
