package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/conjunction-simulator/model"
)

// OrbitalElements is the classical element set the Keplerian propagation path
// works on. Angles are radians, distances kilometres, rates rad/s.
type OrbitalElements struct {
	SemiMajorAxisKm float64
	Eccentricity    float64
	InclinationRad  float64
	RAANRad         float64
	ArgPeriapsisRad float64
	MeanAnomalyRad  float64
	MeanMotionRadS  float64
	PeriodS         float64
}

// elementDefaults is one row of the orbit-class configuration table: the
// eccentricity applied when the descriptor leaves it unset, and whether
// caller-supplied RAAN / mean anomaly are honoured for this class.
//
// Only the Polar row honours the caller's plane orientation today; the other
// classes share the LEO defaults. Extending a class is a table edit, not a
// code change.
type elementDefaults struct {
	eccentricity   float64
	useCallerRAAN  bool
	useCallerMeanA bool
}

var classDefaults = map[model.OrbitClass]elementDefaults{
	model.OrbitClassLEO:   {eccentricity: 0.01},
	model.OrbitClassMEO:   {eccentricity: 0.01},
	model.OrbitClassGEO:   {eccentricity: 0.01},
	model.OrbitClassPolar: {eccentricity: 0.01, useCallerRAAN: true, useCallerMeanA: true},
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

// ElementsFromDefinition derives a full element set from a structured
// satellite descriptor: a = altitude + Earth radius, mean motion from
// Kepler's third law, and class-table defaults for anything unset.
func ElementsFromDefinition(def *model.SatelliteDefinition) (OrbitalElements, error) {
	if def == nil {
		return OrbitalElements{}, fmt.Errorf("elements: nil satellite definition")
	}

	defaults, ok := classDefaults[def.OrbitClass]
	if !ok {
		defaults = classDefaults[model.OrbitClassLEO]
	}

	el := OrbitalElements{
		SemiMajorAxisKm: def.AltitudeKm + EarthRadiusKm,
		Eccentricity:    defaults.eccentricity,
		InclinationRad:  degToRad(def.InclinationDeg),
	}

	if def.Eccentricity != nil {
		el.Eccentricity = *def.Eccentricity
	}
	if def.ArgPeriapsisDeg != nil {
		el.ArgPeriapsisRad = degToRad(*def.ArgPeriapsisDeg)
	}
	if defaults.useCallerRAAN && def.RAANDeg != nil {
		el.RAANRad = degToRad(*def.RAANDeg)
	}
	if defaults.useCallerMeanA && def.MeanAnomalyDeg != nil {
		el.MeanAnomalyRad = degToRad(*def.MeanAnomalyDeg)
	}

	if el.SemiMajorAxisKm <= EarthRadiusKm {
		return OrbitalElements{}, fmt.Errorf(
			"elements: semi-major axis %.1f km is not above the Earth radius (%.0f km)",
			el.SemiMajorAxisKm, EarthRadiusKm)
	}
	if el.Eccentricity < 0 || el.Eccentricity >= 1 {
		return OrbitalElements{}, fmt.Errorf(
			"elements: eccentricity %.4f outside [0, 1)", el.Eccentricity)
	}

	el.MeanMotionRadS = math.Sqrt(EarthMu / math.Pow(el.SemiMajorAxisKm, 3))
	if el.MeanMotionRadS <= 0 {
		return OrbitalElements{}, fmt.Errorf("elements: non-positive mean motion")
	}
	el.PeriodS = twoPi / el.MeanMotionRadS

	return el, nil
}
