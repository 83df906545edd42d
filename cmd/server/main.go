/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the phone billing server. Loads configuration,
  replays the call dataset, then serves the API until interrupted.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load YAML config (or defaults) and build the logger
  3. Build the contract factory from the configured rates and clock
  4. Load the dataset (file or built-in scenario) and replay its calls
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config    YAML config path (default: none, built-in defaults)
  -port      HTTP server port, overrides server.port
  -dataset   Dataset JSON path, overrides dataset.path
  -scenario  Load a built-in scenario instead of a dataset file

  When the dataset file does not exist and no scenario is given, the
  plans-tour scenario is loaded.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Exit

EXAMPLES:
  ./server -config=config.yaml
  ./server -dataset=./data/dataset.json -port=3000
  ./server -scenario=busy-city

SEE ALSO:
  - config/config.go: Config file layout
  - api/server.go: Router configuration
  - api/scenarios.go: Built-in scenarios
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/warp/phone-billing/api"
	"github.com/warp/phone-billing/calls"
	"github.com/warp/phone-billing/config"
	"github.com/warp/phone-billing/contract"
	"github.com/warp/phone-billing/observability"
)

const fallbackScenario = "plans-tour"

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config path")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	datasetPath := flag.String("dataset", "", "Dataset JSON path (overrides config)")
	scenario := flag.String("scenario", "", "Built-in scenario to load instead of a dataset file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load config")
		}
		cfg = loaded
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *datasetPath != "" {
		cfg.Dataset.Path = *datasetPath
	}
	log := cfg.Logger()

	rates, err := cfg.Plans.Rates()
	if err != nil {
		log.WithError(err).Fatal("Invalid plan rates")
	}
	clock, err := cfg.ClockSource()
	if err != nil {
		log.WithError(err).Fatal("Invalid clock")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	handler := api.NewHandler(contract.NewFactory(rates, clock), metrics, log)

	id, ds, err := loadDataset(cfg.Dataset.Path, *scenario, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load dataset")
	}
	if _, err := handler.Load(context.Background(), id, ds); err != nil {
		log.WithError(err).Fatal("Failed to replay dataset")
	}

	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

// loadDataset picks the dataset to replay: the named scenario, else the
// file at path, else the fallback scenario when the file is missing.
func loadDataset(path, scenario string, log logrus.FieldLogger) (string, *calls.Dataset, error) {
	if scenario != "" {
		ds, ok := api.Scenario(scenario)
		if !ok {
			return "", nil, fmt.Errorf("unknown scenario %q", scenario)
		}
		return scenario, ds, nil
	}

	ds, err := calls.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.WithField("path", path).Warnf("Dataset not found, loading %s scenario", fallbackScenario)
		ds, _ = api.Scenario(fallbackScenario)
		return fallbackScenario, ds, nil
	}
	if err != nil {
		return "", nil, err
	}
	return path, ds, nil
}
