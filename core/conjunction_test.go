package core

import (
	"math"
	"testing"
)

// coOrbitalPair returns two satellites on the same circular orbit separated
// by a fixed along-track distance. With identical mean motion the separation
// stays constant over the whole screening horizon, which makes the expected
// minimum distance exact: chord = 2a·sin(Δθ/2) ≈ a·Δθ.
func coOrbitalPair(t *testing.T, separationKm float64) (*Propagator, *Propagator) {
	t.Helper()

	const altitudeKm = 400.0
	a := altitudeKm + EarthRadiusKm
	deltaDeg := separationKm / a * 180 / math.Pi

	pa, err := NewPropagator(circularDefinition("sat-a", altitudeKm, 0))
	if err != nil {
		t.Fatalf("NewPropagator sat-a: %v", err)
	}
	pb, err := NewPropagator(circularDefinition("sat-b", altitudeKm, deltaDeg))
	if err != nil {
		t.Fatalf("NewPropagator sat-b: %v", err)
	}
	return pa, pb
}

func TestEstimateConjunction_RiskBuckets(t *testing.T) {
	cases := []struct {
		name            string
		separationKm    float64
		wantRisk        RiskLevel
		wantProbability float64
	}{
		{"sub-kilometre approach", 0.7, RiskHigh, 0.001},
		{"few-kilometre approach", 3.0, RiskMedium, 0.0001},
		{"distant pass", 100.0, RiskLow, 0.00001},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, b := coOrbitalPair(t, tc.separationKm)
			est := EstimateConjunction(a, b, 3600)

			if est.Risk != tc.wantRisk {
				t.Errorf("risk = %q, want %q", est.Risk, tc.wantRisk)
			}
			if est.Probability != tc.wantProbability {
				t.Errorf("probability = %v, want %v", est.Probability, tc.wantProbability)
			}
			if math.Abs(est.MinDistanceKm-tc.separationKm) > tc.separationKm*0.01 {
				t.Errorf("minDistance = %v km, want ≈ %v km", est.MinDistanceKm, tc.separationKm)
			}
		})
	}
}

func TestEstimateConjunction_Symmetric(t *testing.T) {
	a1, b1 := coOrbitalPair(t, 2.5)
	first := EstimateConjunction(a1, b1, 3600)

	// Fresh, unmutated copies for the reversed call.
	a2, b2 := coOrbitalPair(t, 2.5)
	second := EstimateConjunction(b2, a2, 3600)

	if first.MinDistanceKm != second.MinDistanceKm {
		t.Errorf("minDistance asymmetric: %v vs %v", first.MinDistanceKm, second.MinDistanceKm)
	}
	if first.Risk != second.Risk {
		t.Errorf("risk asymmetric: %q vs %q", first.Risk, second.Risk)
	}
}

// The estimator advances its inputs as a side effect of sampling; callers
// must treat both propagators as consumed.
func TestEstimateConjunction_MutatesInputs(t *testing.T) {
	a, b := coOrbitalPair(t, 10)
	EstimateConjunction(a, b, 3600)

	if got := a.CurrentState().ElapsedSeconds; got != 3600 {
		t.Errorf("propagator A elapsed = %v, want 3600", got)
	}
	if got := b.CurrentState().ElapsedSeconds; got != 3600 {
		t.Errorf("propagator B elapsed = %v, want 3600", got)
	}
}

func TestEstimateConjunction_DefaultHorizon(t *testing.T) {
	a, b := coOrbitalPair(t, 10)
	EstimateConjunction(a, b, 0)

	if got := a.CurrentState().ElapsedSeconds; got != DefaultHorizonSeconds {
		t.Errorf("elapsed = %v, want default horizon %v", got, DefaultHorizonSeconds)
	}
}

func TestEstimateConjunction_OffsetIsSampleAligned(t *testing.T) {
	// Different altitudes give a genuinely varying separation.
	pa, err := NewPropagator(circularDefinition("low", 400, 0))
	if err != nil {
		t.Fatalf("NewPropagator low: %v", err)
	}
	pb, err := NewPropagator(circularDefinition("high", 800, 20))
	if err != nil {
		t.Fatalf("NewPropagator high: %v", err)
	}

	est := EstimateConjunction(pa, pb, 3600)
	if est.TimeOffsetSeconds < 0 || est.TimeOffsetSeconds > 3600 {
		t.Fatalf("time offset %v outside horizon", est.TimeOffsetSeconds)
	}
	if math.Mod(est.TimeOffsetSeconds, 60) != 0 {
		t.Errorf("time offset %v is not aligned to the 60 s sampling step", est.TimeOffsetSeconds)
	}
}

func TestClassifyRisk_Boundaries(t *testing.T) {
	cases := []struct {
		d        float64
		wantRisk RiskLevel
		wantProb float64
	}{
		{0.999, RiskHigh, 0.001},
		{1.0, RiskMedium, 0.0001},
		{4.999, RiskMedium, 0.0001},
		{5.0, RiskLow, 0.00001},
	}
	for _, tc := range cases {
		risk, prob := classifyRisk(tc.d)
		if risk != tc.wantRisk || prob != tc.wantProb {
			t.Errorf("classifyRisk(%v) = (%q, %v), want (%q, %v)", tc.d, risk, prob, tc.wantRisk, tc.wantProb)
		}
	}
}
