package core

import "math"

const twoPi = 2 * math.Pi

// Kepler solver limits. The iteration count is a hard cap, not a convergence
// guarantee: for eccentricities approaching 1 the solver can stop short of
// the tolerance, and the best estimate at the cap is used silently.
const (
	keplerTolerance     = 1e-6
	keplerMaxIterations = 10
)

// SolveKepler solves Kepler's equation M = E - e·sin(E) for the eccentric
// anomaly E by Newton-Raphson iteration, starting from E₀ = M. It returns the
// eccentric anomaly and the number of iterations consumed.
func SolveKepler(meanAnomaly, eccentricity float64) (float64, int) {
	E := meanAnomaly
	iterations := 0
	for i := 0; i < keplerMaxIterations; i++ {
		f := E - eccentricity*math.Sin(E) - meanAnomaly
		if math.Abs(f) < keplerTolerance {
			break
		}
		fp := 1 - eccentricity*math.Cos(E)
		E -= f / fp
		iterations++
	}
	return E, iterations
}

// TrueAnomalyFromEccentric converts an eccentric anomaly to the true anomaly
// using the half-angle atan2 identity, which is well behaved for all
// quadrants and e < 1.
func TrueAnomalyFromEccentric(eccentricAnomaly, eccentricity float64) float64 {
	sinHalf := math.Sqrt(1+eccentricity) * math.Sin(eccentricAnomaly/2)
	cosHalf := math.Sqrt(1-eccentricity) * math.Cos(eccentricAnomaly/2)
	return 2 * math.Atan2(sinHalf, cosHalf)
}

// NormalizeAngle wraps an angle into [0, 2π).
func NormalizeAngle(angle float64) float64 {
	wrapped := math.Mod(angle, twoPi)
	if wrapped < 0 {
		wrapped += twoPi
	}
	return wrapped
}
