package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/conjunction-simulator/core"
	"github.com/signalsfoundry/conjunction-simulator/fleet"
	"github.com/signalsfoundry/conjunction-simulator/internal/logging"
	"github.com/signalsfoundry/conjunction-simulator/internal/observability"
	"github.com/signalsfoundry/conjunction-simulator/model"
	"github.com/signalsfoundry/conjunction-simulator/timectrl"
)

func main() {
	duration := flag.Duration("duration", 60*time.Second, "total simulation duration (0 runs until interrupted)")
	tick := flag.Duration("tick", 1*time.Second, "tick interval")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	scenarioPath := flag.String("scenario", "", "path to a JSON fleet scenario (empty loads a built-in demo pair)")
	screenEvery := flag.Int("screen-every", 60, "run conjunction screening every N ticks (0 disables)")
	horizon := flag.Float64("horizon", core.DefaultHorizonSeconds, "conjunction screening horizon in seconds")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics (empty disables)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	collector, err := observability.NewSimCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	fl := fleet.New(log,
		fleet.WithMetricsRecorder(collector),
		fleet.WithPropagatorOptions(core.WithKeplerObserver(collector.KeplerObserver())),
	)

	if *scenarioPath != "" {
		f, err := os.Open(*scenarioPath)
		if err != nil {
			log.Error(ctx, "failed to open scenario", logging.String("path", *scenarioPath), logging.String("error", err.Error()))
			os.Exit(1)
		}
		scenario, err := fleet.LoadScenario(fl, f)
		f.Close()
		if err != nil {
			log.Error(ctx, "failed to load scenario", logging.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info(ctx, "loaded fleet scenario", logging.Int("satellites", len(scenario.SatelliteIDs)))
	} else {
		loadDemoFleet(fl, log)
	}

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	start := time.Now().UTC()
	tc := timectrl.NewTimeController(start, *tick, mode)

	ticks := 0
	tc.AddListener(func(simTime time.Time) {
		fl.AdvanceAll(tick.Seconds())
		ticks++

		if *screenEvery > 0 && ticks%*screenEvery == 0 {
			for _, pair := range fl.Screen(ctx, *horizon) {
				fmt.Printf("[%s] %s ↔ %s risk=%-6s minDist=%8.3f km @ +%.0fs p=%g\n",
					simTime.Format(time.RFC3339),
					pair.SatelliteA, pair.SatelliteB,
					pair.Estimate.Risk,
					pair.Estimate.MinDistanceKm,
					pair.Estimate.TimeOffsetSeconds,
					pair.Estimate.Probability,
				)
			}
		}
	})

	log.Info(ctx, "starting simulation",
		logging.Any("duration", *duration),
		logging.Any("tick", *tick),
		logging.Int("satellites", fl.Size()),
	)

	done := tc.Start(*duration)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	select {
	case <-done:
	case <-sigCtx.Done():
		tc.Stop()
		<-done
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	log.Info(ctx, "simulation complete", logging.Int("ticks", ticks))
}

// loadDemoFleet registers a pair of LEO satellites in nearby orbits so the
// screening output is interesting out of the box.
func loadDemoFleet(fl *fleet.Fleet, log logging.Logger) {
	ecc := 0.0
	argp := 0.0

	a := &model.SatelliteDefinition{
		ID:              "leo-1",
		Name:            "Demo-LEO-1",
		OrbitClass:      model.OrbitClassLEO,
		AltitudeKm:      400,
		InclinationDeg:  51.6,
		Eccentricity:    &ecc,
		ArgPeriapsisDeg: &argp,
	}
	ma := 0.05
	b := &model.SatelliteDefinition{
		ID:              "leo-2",
		Name:            "Demo-LEO-2",
		OrbitClass:      model.OrbitClassPolar,
		AltitudeKm:      400,
		InclinationDeg:  51.6,
		Eccentricity:    &ecc,
		ArgPeriapsisDeg: &argp,
		MeanAnomalyDeg:  &ma,
	}

	for _, def := range []*model.SatelliteDefinition{a, b} {
		if err := fl.Add(def); err != nil {
			log.Error(context.Background(), "failed to add demo satellite",
				logging.String("id", def.ID), logging.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

func serveMetrics(addr string, collector *observability.SimCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
