package core

// Conjunction screening constants. Sampling is discrete: the true closest
// approach between samples is not interpolated, so minimum-distance results
// carry an implicit error band of one sample step.
const (
	DefaultHorizonSeconds = 3600.0
	sampleStepSeconds     = 60.0
)

// RiskLevel is the qualitative bucket assigned to a close approach.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ConjunctionEstimate is the transient result of one screening run. It is
// never mutated after construction.
type ConjunctionEstimate struct {
	Risk              RiskLevel
	MinDistanceKm     float64
	TimeOffsetSeconds float64
	Probability       float64
}

// EstimateConjunction advances both propagators together in fixed 60-second
// increments up to the horizon (DefaultHorizonSeconds when horizonSeconds is
// not positive) and records the minimum separation and the offset at which
// it occurred.
//
// Both propagators are advanced in place as a side effect of sampling; there
// is no snapshot/restore. Callers must treat a and b as consumed after the
// call — the simulation loop relies on exactly this post-call state. Use
// Clone when the originals must stay put.
func EstimateConjunction(a, b *Propagator, horizonSeconds float64) ConjunctionEstimate {
	if horizonSeconds <= 0 {
		horizonSeconds = DefaultHorizonSeconds
	}

	minDistance := a.CurrentState().Position.DistanceTo(b.CurrentState().Position)
	minOffset := 0.0

	for offset := sampleStepSeconds; offset <= horizonSeconds; offset += sampleStepSeconds {
		a.Advance(sampleStepSeconds)
		b.Advance(sampleStepSeconds)

		d := a.CurrentState().Position.DistanceTo(b.CurrentState().Position)
		if d < minDistance {
			minDistance = d
			minOffset = offset
		}
	}

	risk, probability := classifyRisk(minDistance)
	return ConjunctionEstimate{
		Risk:              risk,
		MinDistanceKm:     minDistance,
		TimeOffsetSeconds: minOffset,
		Probability:       probability,
	}
}

// classifyRisk maps a minimum separation onto the fixed risk table.
func classifyRisk(minDistanceKm float64) (RiskLevel, float64) {
	switch {
	case minDistanceKm < 1:
		return RiskHigh, 0.001
	case minDistanceKm < 5:
		return RiskMedium, 0.0001
	default:
		return RiskLow, 0.00001
	}
}
