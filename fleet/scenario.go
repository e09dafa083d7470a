package fleet

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/signalsfoundry/conjunction-simulator/model"
)

// Scenario is a small summary of what was loaded from JSON. It's mainly
// useful for logging from main().
type Scenario struct {
	SatelliteIDs []string
}

// internal JSON shapes – kept unexported so we're free to evolve them.
type scenarioJSON struct {
	Satellites []satelliteJSON `json:"satellites"`
}

type satelliteJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OrbitClass string `json:"orbit_class"`

	AltitudeKm     float64 `json:"altitude_km"`
	InclinationDeg float64 `json:"inclination_deg"`
	VelocityKmS    float64 `json:"velocity_km_s"`

	Eccentricity    *float64 `json:"eccentricity"`
	ArgPeriapsisDeg *float64 `json:"arg_periapsis_deg"`
	RAANDeg         *float64 `json:"raan_deg"`
	MeanAnomalyDeg  *float64 `json:"mean_anomaly_deg"`

	TLELine1 string `json:"tle_line1"`
	TLELine2 string `json:"tle_line2"`
}

// LoadScenario reads a JSON fleet scenario from r, registers every satellite
// in the fleet, and returns a summary of what was loaded. It fails on JSON or
// structural errors and on any satellite the fleet rejects.
func LoadScenario(f *Fleet, r io.Reader) (*Scenario, error) {
	if f == nil {
		return nil, fmt.Errorf("LoadScenario: fleet is nil")
	}

	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	result := &Scenario{
		SatelliteIDs: make([]string, 0, len(payload.Satellites)),
	}

	for _, js := range payload.Satellites {
		if js.ID == "" {
			return nil, fmt.Errorf("LoadScenario: satellite with empty id")
		}

		def := &model.SatelliteDefinition{
			ID:             js.ID,
			Name:           js.Name,
			OrbitClass:     orbitClassFromString(js.OrbitClass),
			AltitudeKm:     js.AltitudeKm,
			InclinationDeg: js.InclinationDeg,
			VelocityKmS:    js.VelocityKmS,

			Eccentricity:    js.Eccentricity,
			ArgPeriapsisDeg: js.ArgPeriapsisDeg,
			RAANDeg:         js.RAANDeg,
			MeanAnomalyDeg:  js.MeanAnomalyDeg,

			TLELine1: js.TLELine1,
			TLELine2: js.TLELine2,
		}

		if err := f.Add(def); err != nil {
			return nil, fmt.Errorf("LoadScenario: %w", err)
		}
		result.SatelliteIDs = append(result.SatelliteIDs, js.ID)
	}

	return result, nil
}

// orbitClassFromString maps the JSON orbit_class string to our OrbitClass
// constants. Unknown or empty values default to LEO, which carries the
// baseline element defaults.
func orbitClassFromString(s string) model.OrbitClass {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "polar":
		return model.OrbitClassPolar
	case "meo":
		return model.OrbitClassMEO
	case "geo":
		return model.OrbitClassGEO
	default:
		return model.OrbitClassLEO
	}
}
