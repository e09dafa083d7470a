package model

// OrbitClass tags the broad orbital regime a satellite flies in. It selects
// the default orbital elements applied when the descriptor leaves them unset.
type OrbitClass string

const (
	OrbitClassLEO   OrbitClass = "LEO"
	OrbitClassPolar OrbitClass = "Polar"
	OrbitClassMEO   OrbitClass = "MEO"
	OrbitClassGEO   OrbitClass = "GEO"
)

// SatelliteDefinition describes one tracked satellite. Exactly one of the two
// parameter groups is honoured: when both TLE lines are non-empty, propagation
// is delegated to SGP4 and the structured fields are ignored; otherwise the
// structured orbital fields drive a Keplerian two-body model.
//
// Optional fields are pointers so that "absent" and "zero" stay
// distinguishable, matching the JSON payloads the API accepts.
type SatelliteDefinition struct {
	ID   string
	Name string

	OrbitClass     OrbitClass
	AltitudeKm     float64
	InclinationDeg float64
	VelocityKmS    float64

	Eccentricity    *float64
	ArgPeriapsisDeg *float64
	RAANDeg         *float64
	MeanAnomalyDeg  *float64

	TLELine1 string
	TLELine2 string
}

// HasTLE reports whether the definition carries a usable two-line element set.
func (d *SatelliteDefinition) HasTLE() bool {
	return d != nil && d.TLELine1 != "" && d.TLELine2 != ""
}

// ManeuverCommand describes a requested orbit adjustment. A command that
// carries neither a delta-V nor a burn duration is invalid and is rejected by
// the propagator. A non-nil Replacement reinitialises the satellite from the
// supplied definition instead of nudging its velocity.
type ManeuverCommand struct {
	DeltaVMetersPerSec *float64
	BurnDurationSec    *float64
	Replacement        *SatelliteDefinition
}
