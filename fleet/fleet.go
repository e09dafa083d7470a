// Package fleet is an explicit registry of propagator instances keyed by
// satellite ID. It replaces the ambient per-satellite maps of earlier designs
// with clear creation-on-add and removal-on-remove lifecycle hooks.
package fleet

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/conjunction-simulator/core"
	"github.com/signalsfoundry/conjunction-simulator/internal/logging"
	"github.com/signalsfoundry/conjunction-simulator/model"
)

// EventType indicates what kind of change happened in the fleet.
type EventType int

const (
	EventSatelliteUpdated EventType = iota
	EventSatelliteAdded
	EventSatelliteRemoved
)

// Event is emitted to subscribers when a satellite's state changes.
type Event struct {
	Type        EventType
	SatelliteID string
	State       core.State
}

// MetricsRecorder receives fleet-level measurements. The observability layer
// implements it; a nil recorder disables recording.
type MetricsRecorder interface {
	SetFleetSize(n int)
	ObservePropagationTick()
	ObserveConjunction(risk core.RiskLevel)
	ObserveManeuver(success bool)
}

// Option configures a Fleet.
type Option func(*Fleet)

// WithMetricsRecorder wires a metrics recorder into the fleet's mutators.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(f *Fleet) { f.metrics = rec }
}

// WithPropagatorOptions sets options applied to every propagator the fleet
// constructs (epoch pinning, Kepler observers).
func WithPropagatorOptions(opts ...core.Option) Option {
	return func(f *Fleet) { f.propOpts = opts }
}

type member struct {
	def  model.SatelliteDefinition
	prop *core.Propagator
}

// Fleet is an in-memory, thread-safe registry of tracked satellites and
// their propagators. The fleet owns its propagators: external callers reach
// them only through fleet methods, which serialise access.
type Fleet struct {
	mu sync.RWMutex

	sats   map[string]*member
	subs   map[uint64]func(Event)
	subSeq uint64

	log      logging.Logger
	metrics  MetricsRecorder
	propOpts []core.Option
}

// New constructs an empty fleet.
func New(log logging.Logger, opts ...Option) *Fleet {
	if log == nil {
		log = logging.Noop()
	}
	f := &Fleet{
		sats: make(map[string]*member),
		subs: make(map[uint64]func(Event)),
		log:  log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Add registers a satellite and creates its propagator. It returns an error
// if the ID is empty, already present, or the definition fails validation.
func (f *Fleet) Add(def *model.SatelliteDefinition) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("fleet: satellite with empty id")
	}

	prop, err := core.NewPropagator(def, f.propOpts...)
	if err != nil {
		return fmt.Errorf("fleet: add %q: %w", def.ID, err)
	}

	f.mu.Lock()
	if _, exists := f.sats[def.ID]; exists {
		f.mu.Unlock()
		return fmt.Errorf("fleet: satellite with ID %q already exists", def.ID)
	}
	f.sats[def.ID] = &member{def: *def, prop: prop}
	size := len(f.sats)
	subs := f.snapshotSubs()
	state := prop.CurrentState()
	f.mu.Unlock()

	if f.metrics != nil {
		f.metrics.SetFleetSize(size)
	}
	notify(subs, Event{Type: EventSatelliteAdded, SatelliteID: def.ID, State: state})
	return nil
}

// Remove discards a satellite and its propagator.
func (f *Fleet) Remove(id string) error {
	f.mu.Lock()
	if _, ok := f.sats[id]; !ok {
		f.mu.Unlock()
		return fmt.Errorf("fleet: satellite with ID %q not found", id)
	}
	delete(f.sats, id)
	size := len(f.sats)
	subs := f.snapshotSubs()
	f.mu.Unlock()

	if f.metrics != nil {
		f.metrics.SetFleetSize(size)
	}
	notify(subs, Event{Type: EventSatelliteRemoved, SatelliteID: id})
	return nil
}

// State returns the current state snapshot for a satellite.
func (f *Fleet) State(id string) (core.State, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m, ok := f.sats[id]
	if !ok {
		return core.State{}, fmt.Errorf("fleet: satellite with ID %q not found", id)
	}
	return m.prop.CurrentState(), nil
}

// Status pairs a satellite's identity with its current state.
type Status struct {
	ID    string
	Name  string
	State core.State
}

// List returns a snapshot of all satellites, ordered by ID.
func (f *Fleet) List() []Status {
	f.mu.RLock()
	res := make([]Status, 0, len(f.sats))
	for id, m := range f.sats {
		res = append(res, Status{ID: id, Name: m.def.Name, State: m.prop.CurrentState()})
	}
	f.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Size returns the number of registered satellites.
func (f *Fleet) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sats)
}

// AdvanceAll moves every propagator forward by dt simulated seconds and
// notifies subscribers with the updated states.
func (f *Fleet) AdvanceAll(dtSeconds float64) {
	f.mu.Lock()
	events := make([]Event, 0, len(f.sats))
	for id, m := range f.sats {
		m.prop.Advance(dtSeconds)
		events = append(events, Event{
			Type:        EventSatelliteUpdated,
			SatelliteID: id,
			State:       m.prop.CurrentState(),
		})
	}
	subs := f.snapshotSubs()
	f.mu.Unlock()

	if f.metrics != nil {
		f.metrics.ObservePropagationTick()
	}
	for _, ev := range events {
		notify(subs, ev)
	}
}

// Maneuver applies a maneuver command to one satellite. The boolean mirrors
// the propagator's success contract; the error covers unknown IDs only.
func (f *Fleet) Maneuver(id string, cmd *model.ManeuverCommand) (bool, error) {
	f.mu.Lock()
	m, ok := f.sats[id]
	if !ok {
		f.mu.Unlock()
		return false, fmt.Errorf("fleet: satellite with ID %q not found", id)
	}
	success := m.prop.ExecuteManeuver(cmd)
	if success && cmd != nil && cmd.Replacement != nil {
		m.def = *cmd.Replacement
	}
	f.mu.Unlock()

	if f.metrics != nil {
		f.metrics.ObserveManeuver(success)
	}
	return success, nil
}

// PairEstimate is one screened satellite pair with its conjunction estimate.
type PairEstimate struct {
	SatelliteA string
	SatelliteB string
	Estimate   core.ConjunctionEstimate
}

// Screen runs pairwise conjunction screening over the whole fleet. Each pair
// is sampled on clones of the registered propagators, so the fleet's own
// tick state is not consumed by the sweep. Results are ordered by (A, B) ID.
func (f *Fleet) Screen(ctx context.Context, horizonSeconds float64) []PairEstimate {
	tracer := otel.Tracer("fleet")
	ctx, span := tracer.Start(ctx, "fleet.Screen")
	defer span.End()

	f.mu.RLock()
	ids := make([]string, 0, len(f.sats))
	for id := range f.sats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	clones := make(map[string]*core.Propagator, len(ids))
	for _, id := range ids {
		clones[id] = f.sats[id].prop.Clone()
	}
	f.mu.RUnlock()

	span.SetAttributes(
		attribute.Int("fleet.size", len(ids)),
		attribute.Float64("screen.horizon_seconds", horizonSeconds),
	)

	var results []PairEstimate
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			// EstimateConjunction consumes its inputs, so every pair gets
			// fresh clones of the clones captured above.
			a := clones[ids[i]].Clone()
			b := clones[ids[j]].Clone()
			est := core.EstimateConjunction(a, b, horizonSeconds)

			results = append(results, PairEstimate{
				SatelliteA: ids[i],
				SatelliteB: ids[j],
				Estimate:   est,
			})
			if f.metrics != nil {
				f.metrics.ObserveConjunction(est.Risk)
			}
			if est.Risk != core.RiskLow {
				f.log.Warn(ctx, "close approach detected",
					logging.String("sat_a", ids[i]),
					logging.String("sat_b", ids[j]),
					logging.String("risk", string(est.Risk)),
					logging.Float64("min_distance_km", est.MinDistanceKm),
					logging.Float64("time_offset_s", est.TimeOffsetSeconds),
				)
			}
		}
	}

	span.SetAttributes(attribute.Int("screen.pairs", len(results)))
	return results
}

// Subscribe registers a callback for fleet events and returns an unsubscribe
// function. Subscribers are keyed, so unsubscribing one never affects the
// others regardless of registration order.
func (f *Fleet) Subscribe(fn func(Event)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subSeq++
	id := f.subSeq
	f.subs[id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// snapshotSubs copies the current subscriber set so notifications run outside
// the lock. Callers must hold f.mu.
func (f *Fleet) snapshotSubs() []func(Event) {
	out := make([]func(Event), 0, len(f.subs))
	for _, fn := range f.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Event), ev Event) {
	for _, sub := range subs {
		sub(ev)
	}
}
