package core

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/conjunction-simulator/model"
)

// State is a snapshot of a propagator's kinematic state. It is a value; the
// caller may keep it after the propagator moves on.
type State struct {
	Position       Vec3
	Velocity       Vec3
	ElapsedSeconds float64
	Elements       OrbitalElements
}

// Option configures a Propagator at construction time.
type Option func(*Propagator)

// WithEpoch pins the wall-clock epoch the SGP4 path propagates against.
// Without it the epoch is the construction time, which makes TLE-driven
// positions non-reproducible across runs.
func WithEpoch(t time.Time) Option {
	return func(p *Propagator) { p.epoch = t.UTC() }
}

// WithKeplerObserver registers a callback invoked with the iteration count of
// every Kepler solve. The observability layer uses it to histogram solver
// behaviour without the core depending on a metrics library.
func WithKeplerObserver(fn func(iterations int)) Option {
	return func(p *Propagator) { p.keplerObserver = fn }
}

// Propagator maintains one satellite's kinematic state and advances it
// deterministically in simulated time.
//
// A Propagator is exclusively owned by its creator: all methods are plain
// synchronous mutations with no internal locking, and concurrent use of one
// instance from multiple goroutines is the caller's bug to prevent.
type Propagator struct {
	def      model.SatelliteDefinition
	elements OrbitalElements

	usesSGP4 bool
	sgp4     satellite.Satellite
	epoch    time.Time

	elapsed  float64
	position Vec3
	velocity Vec3

	keplerObserver func(int)
}

// NewPropagator constructs a propagator from a satellite definition. A
// definition carrying a TLE pair delegates all propagation to SGP4; otherwise
// a Keplerian two-body model is derived from the structured fields. The
// initial position (and, on the Keplerian path, velocity) is computed before
// returning.
func NewPropagator(def *model.SatelliteDefinition, opts ...Option) (*Propagator, error) {
	if def == nil {
		return nil, fmt.Errorf("propagator: nil satellite definition")
	}

	p := &Propagator{
		def:   *def,
		epoch: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.initialize(); err != nil {
		return nil, err
	}
	return p, nil
}

// initialize derives the propagation model from the stored definition and
// computes the state at elapsed time zero. Reset and replacement maneuvers
// re-run it.
func (p *Propagator) initialize() error {
	p.elapsed = 0
	p.position = Vec3{}
	p.velocity = Vec3{}

	if p.def.HasTLE() {
		p.usesSGP4 = true
		p.elements = OrbitalElements{}
		p.sgp4 = satellite.TLEToSat(p.def.TLELine1, p.def.TLELine2, satellite.GravityWGS72)
		p.propagateSGP4()
		return nil
	}

	p.usesSGP4 = false
	el, err := ElementsFromDefinition(&p.def)
	if err != nil {
		return err
	}
	p.elements = el
	p.propagateKeplerian()
	p.RecomputeVelocity()
	return nil
}

// Advance moves the satellite forward by dt simulated seconds and updates the
// stored position. On the Keplerian path velocity is deliberately left
// untouched; callers that need it refreshed invoke RecomputeVelocity.
func (p *Propagator) Advance(dtSeconds float64) {
	p.elapsed += dtSeconds
	if p.usesSGP4 {
		p.propagateSGP4()
		return
	}
	p.propagateKeplerian()
}

// propagateKeplerian solves the two-body problem at the current elapsed time:
// mean anomaly from mean motion, eccentric anomaly by Newton-Raphson, true
// anomaly by the half-angle identity, then a 3-1-3 rotation of the perifocal
// position into the inertial frame.
func (p *Propagator) propagateKeplerian() {
	el := p.elements

	M := NormalizeAngle(el.MeanAnomalyRad + el.MeanMotionRadS*p.elapsed)
	E, iterations := SolveKepler(M, el.Eccentricity)
	if p.keplerObserver != nil {
		p.keplerObserver(iterations)
	}

	nu := TrueAnomalyFromEccentric(E, el.Eccentricity)
	r := el.SemiMajorAxisKm * (1 - el.Eccentricity*math.Cos(E))

	xOrb := r * math.Cos(nu)
	yOrb := r * math.Sin(nu)

	cosRAAN, sinRAAN := math.Cos(el.RAANRad), math.Sin(el.RAANRad)
	cosArg, sinArg := math.Cos(el.ArgPeriapsisRad), math.Sin(el.ArgPeriapsisRad)
	cosInc, sinInc := math.Cos(el.InclinationRad), math.Sin(el.InclinationRad)

	p.position = Vec3{
		X: xOrb*(cosRAAN*cosArg-sinRAAN*sinArg*cosInc) - yOrb*(cosRAAN*sinArg+sinRAAN*cosArg*cosInc),
		Y: xOrb*(sinRAAN*cosArg+cosRAAN*sinArg*cosInc) - yOrb*(sinRAAN*sinArg-cosRAAN*cosArg*cosInc),
		Z: xOrb*sinArg*sinInc + yOrb*cosArg*sinInc,
	}
}

// propagateSGP4 delegates to go-satellite at epoch + elapsed. When the
// library yields a degenerate result the previous position and velocity are
// retained; the tick is a silent no-op, not an error.
func (p *Propagator) propagateSGP4() {
	t := p.epoch.Add(time.Duration(p.elapsed * float64(time.Second)))
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, velECI := satellite.Propagate(p.sgp4, year, int(month), day, hour, min, sec)

	pos := Vec3{X: posECI.X, Y: posECI.Y, Z: posECI.Z}
	vel := Vec3{X: velECI.X, Y: velECI.Y, Z: velECI.Z}
	if !pos.IsFinite() || pos.Norm() == 0 {
		return
	}
	p.position = pos
	if vel.IsFinite() {
		p.velocity = vel
	}
}

// RecomputeVelocity refreshes the velocity vector on the Keplerian path:
// magnitude from the vis-viva equation, direction taken as perpendicular to
// the radius vector within the orbital plane. The direction is an
// approximation, not a true velocity-vector rotation — it ignores the radial
// velocity component of eccentric orbits. SGP4-driven satellites already get
// velocity from the library, so this is a no-op for them.
func (p *Propagator) RecomputeVelocity() {
	if p.usesSGP4 {
		return
	}
	r := p.position.Norm()
	if r == 0 {
		return
	}

	speed := math.Sqrt(EarthMu * (2/r - 1/p.elements.SemiMajorAxisKm))
	dir := p.orbitNormal().Cross(p.position).Normalized()
	if dir == (Vec3{}) {
		return
	}
	p.velocity = dir.Scale(speed)
}

// orbitNormal returns the unit normal of the orbital plane in the inertial
// frame (the angular-momentum direction for a prograde orbit).
func (p *Propagator) orbitNormal() Vec3 {
	el := p.elements
	return Vec3{
		X: math.Sin(el.RAANRad) * math.Sin(el.InclinationRad),
		Y: -math.Cos(el.RAANRad) * math.Sin(el.InclinationRad),
		Z: math.Cos(el.InclinationRad),
	}
}

// ExecuteManeuver applies a maneuver command. A command lacking both a
// delta-V and a burn duration is rejected with no state change. The delta-V
// is applied as a scalar nudge to the velocity magnitude (ΔV in m/s added to
// |v| in km/s) rather than an integrated impulsive burn; this matches the
// behaviour downstream consumers calibrate against. A replacement definition
// reinitialises the propagator completely, superseding the nudge; an invalid
// replacement is rejected before any state is touched.
func (p *Propagator) ExecuteManeuver(cmd *model.ManeuverCommand) bool {
	if cmd == nil {
		return false
	}
	if cmd.DeltaVMetersPerSec == nil && cmd.BurnDurationSec == nil {
		return false
	}

	if cmd.Replacement != nil {
		// Reinitialisation recomputes velocity, so the nudge below would be
		// discarded anyway. Validate before committing: a rejected
		// replacement must leave the stored definition and state intact.
		if !cmd.Replacement.HasTLE() {
			if _, err := ElementsFromDefinition(cmd.Replacement); err != nil {
				return false
			}
		}
		p.def = *cmd.Replacement
		_ = p.initialize()
		return true
	}

	deltaV := 0.0
	if cmd.DeltaVMetersPerSec != nil {
		deltaV = *cmd.DeltaVMetersPerSec
	}

	oldMag := p.velocity.Norm()
	if oldMag > 0 {
		newMag := oldMag + deltaV/1000.0
		p.velocity = p.velocity.Scale(newMag / oldMag)
	}
	return true
}

// Reset returns elapsed time to zero and recomputes the initial state from
// the stored definition. It is idempotent and always succeeds: the stored
// inputs were validated at construction.
func (p *Propagator) Reset() {
	_ = p.initialize()
}

// CurrentState returns a snapshot of position, velocity, elapsed simulated
// time, and the element set (zero-valued on the SGP4 path).
func (p *Propagator) CurrentState() State {
	return State{
		Position:       p.position,
		Velocity:       p.velocity,
		ElapsedSeconds: p.elapsed,
		Elements:       p.elements,
	}
}

// Definition returns a copy of the satellite definition the propagator was
// built from.
func (p *Propagator) Definition() model.SatelliteDefinition {
	return p.def
}

// Clone returns an independent propagator with identical state. Conjunction
// screening uses clones when the originals must keep their tick state.
func (p *Propagator) Clone() *Propagator {
	clone := *p
	return &clone
}
