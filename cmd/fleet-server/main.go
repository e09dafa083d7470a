package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/conjunction-simulator/core"
	"github.com/signalsfoundry/conjunction-simulator/fleet"
	"github.com/signalsfoundry/conjunction-simulator/internal/api"
	"github.com/signalsfoundry/conjunction-simulator/internal/logging"
	"github.com/signalsfoundry/conjunction-simulator/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML server config (empty uses defaults)")
	scenarioPath := flag.String("scenario", "", "path to a JSON fleet scenario loaded at startup")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := api.LoadConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to load config", logging.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}

	collector, err := observability.NewSimCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

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
	}

	router := api.NewRouter(api.NewService(fl, cfg, log), collector)

	apiSrv := &http.Server{Addr: cfg.ListenAddr, Handler: router}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", collector.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		log.Info(ctx, "starting fleet API server", logging.String("addr", cfg.ListenAddr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info(ctx, "serving Prometheus metrics", logging.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = apiSrv.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error(ctx, "server exited", logging.String("error", err.Error()))
	}

	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}
