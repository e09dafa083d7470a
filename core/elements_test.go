package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/conjunction-simulator/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestElementsFromDefinition_Defaults(t *testing.T) {
	el, err := ElementsFromDefinition(&model.SatelliteDefinition{
		ID:             "sat1",
		OrbitClass:     model.OrbitClassLEO,
		AltitudeKm:     400,
		InclinationDeg: 51.6,
	})
	if err != nil {
		t.Fatalf("ElementsFromDefinition: %v", err)
	}

	if el.SemiMajorAxisKm != 6771 {
		t.Errorf("semi-major axis = %v, want 6771", el.SemiMajorAxisKm)
	}
	if el.Eccentricity != 0.01 {
		t.Errorf("eccentricity = %v, want default 0.01", el.Eccentricity)
	}
	if el.RAANRad != 0 || el.ArgPeriapsisRad != 0 || el.MeanAnomalyRad != 0 {
		t.Errorf("angular elements should default to zero, got RAAN=%v argp=%v M=%v",
			el.RAANRad, el.ArgPeriapsisRad, el.MeanAnomalyRad)
	}

	// Kepler's third law: period ≈ 92.5 min for a 400 km LEO, within 1%.
	const wantPeriod = 5553.0
	if math.Abs(el.PeriodS-wantPeriod) > wantPeriod*0.01 {
		t.Errorf("period = %v s, want %v within 1%%", el.PeriodS, wantPeriod)
	}
}

func TestElementsFromDefinition_PolarHonoursPlane(t *testing.T) {
	el, err := ElementsFromDefinition(&model.SatelliteDefinition{
		ID:             "polar1",
		OrbitClass:     model.OrbitClassPolar,
		AltitudeKm:     700,
		InclinationDeg: 98.2,
		RAANDeg:        floatPtr(90),
		MeanAnomalyDeg: floatPtr(45),
	})
	if err != nil {
		t.Fatalf("ElementsFromDefinition: %v", err)
	}
	if math.Abs(el.RAANRad-math.Pi/2) > 1e-12 {
		t.Errorf("RAAN = %v, want π/2", el.RAANRad)
	}
	if math.Abs(el.MeanAnomalyRad-math.Pi/4) > 1e-12 {
		t.Errorf("mean anomaly = %v, want π/4", el.MeanAnomalyRad)
	}
}

// Non-polar classes ignore caller RAAN and mean anomaly: the class table is a
// deliberately narrow default policy.
func TestElementsFromDefinition_LEOIgnoresPlaneOverrides(t *testing.T) {
	el, err := ElementsFromDefinition(&model.SatelliteDefinition{
		ID:             "leo1",
		OrbitClass:     model.OrbitClassLEO,
		AltitudeKm:     400,
		InclinationDeg: 51.6,
		RAANDeg:        floatPtr(90),
		MeanAnomalyDeg: floatPtr(45),
	})
	if err != nil {
		t.Fatalf("ElementsFromDefinition: %v", err)
	}
	if el.RAANRad != 0 || el.MeanAnomalyRad != 0 {
		t.Errorf("LEO should ignore caller plane overrides, got RAAN=%v M=%v", el.RAANRad, el.MeanAnomalyRad)
	}
}

func TestElementsFromDefinition_ExplicitEccentricity(t *testing.T) {
	el, err := ElementsFromDefinition(&model.SatelliteDefinition{
		ID:           "sat1",
		OrbitClass:   model.OrbitClassLEO,
		AltitudeKm:   400,
		Eccentricity: floatPtr(0),
	})
	if err != nil {
		t.Fatalf("ElementsFromDefinition: %v", err)
	}
	if el.Eccentricity != 0 {
		t.Errorf("eccentricity = %v, want explicit 0", el.Eccentricity)
	}
}

func TestElementsFromDefinition_Invalid(t *testing.T) {
	cases := []struct {
		name string
		def  model.SatelliteDefinition
	}{
		{"below Earth surface", model.SatelliteDefinition{ID: "x", AltitudeKm: -10}},
		{"zero altitude", model.SatelliteDefinition{ID: "x", AltitudeKm: 0}},
		{"parabolic eccentricity", model.SatelliteDefinition{ID: "x", AltitudeKm: 400, Eccentricity: floatPtr(1.0)}},
		{"negative eccentricity", model.SatelliteDefinition{ID: "x", AltitudeKm: 400, Eccentricity: floatPtr(-0.1)}},
	}
	for _, tc := range cases {
		if _, err := ElementsFromDefinition(&tc.def); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
