package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/conjunction-simulator/core"
)

// SimCollector bundles Prometheus metrics for the propagation engine and the
// fleet API, and provides helpers to wire them into gin routers and HTTP
// handlers. It satisfies the fleet's MetricsRecorder interface.
type SimCollector struct {
	gatherer prometheus.Gatherer

	APIRequests  *prometheus.CounterVec
	APIDurations *prometheus.HistogramVec

	PropagationTicks     prometheus.Counter
	KeplerIterations     prometheus.Histogram
	ConjunctionsAssessed *prometheus.CounterVec
	Maneuvers            *prometheus.CounterVec
	FleetSatellites      prometheus.Gauge
}

// NewSimCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Total number of handled fleet API requests, labeled by method, route, and HTTP status.",
	}, []string{"method", "route", "status"})
	requests, err := registerCounterVec(reg, requests, "api_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Fleet API request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"})
	durations, err = registerHistogramVec(reg, durations, "api_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "propagation_ticks_total",
		Help: "Total number of fleet-wide propagation ticks.",
	}), "propagation_ticks_total")
	if err != nil {
		return nil, err
	}

	kepler := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kepler_solver_iterations",
		Help:    "Newton-Raphson iterations per Kepler solve (hard cap 10).",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	})
	kepler, err = registerHistogram(reg, kepler, "kepler_solver_iterations")
	if err != nil {
		return nil, err
	}

	conjunctions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conjunctions_assessed_total",
		Help: "Total number of satellite pairs screened for conjunction, labeled by risk bucket.",
	}, []string{"risk"})
	conjunctions, err = registerCounterVec(reg, conjunctions, "conjunctions_assessed_total")
	if err != nil {
		return nil, err
	}

	maneuvers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maneuvers_total",
		Help: "Total number of maneuver executions, labeled by outcome.",
	}, []string{"outcome"})
	maneuvers, err = registerCounterVec(reg, maneuvers, "maneuvers_total")
	if err != nil {
		return nil, err
	}

	satellites, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_satellites",
		Help: "Current number of satellites registered in the fleet.",
	}), "fleet_satellites")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:             gatherer,
		APIRequests:          requests,
		APIDurations:         durations,
		PropagationTicks:     ticks,
		KeplerIterations:     kepler,
		ConjunctionsAssessed: conjunctions,
		Maneuvers:            maneuvers,
		FleetSatellites:      satellites,
	}, nil
}

// GinMiddleware records request counts and durations for the fleet API.
func (c *SimCollector) GinMiddleware() gin.HandlerFunc {
	return func(gc *gin.Context) {
		start := time.Now()
		gc.Next()

		if c == nil {
			return
		}

		route := gc.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(gc.Writer.Status())

		if c.APIRequests != nil {
			c.APIRequests.WithLabelValues(gc.Request.Method, route, status).Inc()
		}
		if c.APIDurations != nil {
			c.APIDurations.WithLabelValues(gc.Request.Method, route).Observe(time.Since(start).Seconds())
		}
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// KeplerObserver adapts the iteration histogram to the propagator's observer
// callback.
func (c *SimCollector) KeplerObserver() func(iterations int) {
	return func(iterations int) {
		if c == nil || c.KeplerIterations == nil {
			return
		}
		c.KeplerIterations.Observe(float64(iterations))
	}
}

// SetFleetSize satisfies the fleet MetricsRecorder interface.
func (c *SimCollector) SetFleetSize(n int) {
	if c == nil || c.FleetSatellites == nil {
		return
	}
	c.FleetSatellites.Set(float64(n))
}

// ObservePropagationTick satisfies the fleet MetricsRecorder interface.
func (c *SimCollector) ObservePropagationTick() {
	if c == nil || c.PropagationTicks == nil {
		return
	}
	c.PropagationTicks.Inc()
}

// ObserveConjunction satisfies the fleet MetricsRecorder interface.
func (c *SimCollector) ObserveConjunction(risk core.RiskLevel) {
	if c == nil || c.ConjunctionsAssessed == nil {
		return
	}
	c.ConjunctionsAssessed.WithLabelValues(string(risk)).Inc()
}

// ObserveManeuver satisfies the fleet MetricsRecorder interface.
func (c *SimCollector) ObserveManeuver(success bool) {
	if c == nil || c.Maneuvers == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "rejected"
	}
	c.Maneuvers.WithLabelValues(outcome).Inc()
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
