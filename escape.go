package fractal

import "math"

// DefaultEscapeRadius is the conventional bailout radius for z² + c.
const DefaultEscapeRadius = 2.0

// maxDerivative freezes dz once either component grows past it, so the
// derivative stays finite however long a bounded orbit runs.
const maxDerivative = 1e150

// OrbitState is the resumable state of one pixel's orbit.
//
// The zero value is the fresh state: z = 0, dz = 0, no iterations
// performed, not escaped. Once an orbit escapes the state is terminal and
// further calls to Evaluate return the recorded result without iterating.
type OrbitState struct {
	z       complex128
	dz      complex128
	n       int
	escaped bool
	smooth  float64
}

// Z returns the current orbit value. For a terminal state this is the first
// value that left the escape radius.
func (s *OrbitState) Z() complex128 { return s.z }

// DZ returns the derivative of the orbit value with respect to c.
func (s *OrbitState) DZ() complex128 { return s.dz }

// Iterations returns the number of iterations performed so far.
func (s *OrbitState) Iterations() int { return s.n }

// Escaped reports whether the state is terminal.
func (s *OrbitState) Escaped() bool { return s.escaped }

// Result returns the EscapeResult described by the state.
func (s *OrbitState) Result() EscapeResult {
	return EscapeResult{Escaped: s.escaped, Iterations: s.n, Smooth: s.smooth, Z: s.z, DZ: s.dz}
}

// Reset returns the state to the fresh zero state.
func (s *OrbitState) Reset() { *s = OrbitState{} }

// EscapeResult classifies a sample point after an evaluation.
//
// For an escaped orbit, Iterations is the iteration at which |z| first
// reached the escape radius and Smooth is the continuous escape value. For a
// bounded-so-far orbit, Iterations is the count performed so far and Smooth
// is zero.
//
// Z and DZ are the orbit value and its derivative dz/dc after the last
// iteration. Shading palettes derive a surface normal from their ratio.
type EscapeResult struct {
	Escaped    bool
	Iterations int
	Smooth     float64

	Z  complex128
	DZ complex128
}

// Evaluate advances the orbit z ← z² + c by up to budget iterations, stopping
// early once |z|² ≥ boundSq. Alongside z it tracks the derivative
// dz ← 2·z·dz + 1, computed from the z of the same step.
//
// The state is updated in place, so a following call continues exactly
// where this one stopped: evaluating with budget B1 and then B2 yields the
// same state as a single call with B1+B2. A nil st evaluates from a fresh
// state that is discarded afterwards. A terminal st is returned unchanged.
//
// Every iteration is gated by the magnitude check, so an orbit can never
// iterate past an overflow: the first value whose squared magnitude reaches
// boundSq (including +Inf) terminates it.
func Evaluate(c complex128, st *OrbitState, budget int, boundSq float64) EscapeResult {
	if st == nil {
		st = &OrbitState{}
	}
	if st.escaped || budget <= 0 {
		return st.Result()
	}

	zr, zi := real(st.z), imag(st.z)
	dr, di := real(st.dz), imag(st.dz)
	cr, ci := real(c), imag(c)
	n := st.n

	for range budget {
		if math.Abs(dr) < maxDerivative && math.Abs(di) < maxDerivative {
			dr, di = 2*(zr*dr-zi*di)+1, 2*(zr*di+zi*dr)
		}
		zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
		n++
		if m := zr*zr + zi*zi; m >= boundSq {
			st.z = complex(zr, zi)
			st.dz = complex(dr, di)
			st.n = n
			st.escaped = true
			st.smooth = SmoothValue(n, m)
			return st.Result()
		}
	}

	st.z = complex(zr, zi)
	st.dz = complex(dr, di)
	st.n = n
	return st.Result()
}

// SmoothValue returns the continuous escape value n + 1 − log₂(ln|z|) for an
// orbit that escaped at iteration n with |z|² = modSq.
//
// The value removes the integer banding of n: for large bailout radii it is
// continuous across iteration boundaries. modSq must be greater than 1.
func SmoothValue(n int, modSq float64) float64 {
	if math.IsInf(modSq, 1) {
		return float64(n)
	}
	// ln|z| = ln(|z|²)/2, which avoids the square root.
	return float64(n) + 1 - math.Log2(0.5*math.Log(modSq))
}
