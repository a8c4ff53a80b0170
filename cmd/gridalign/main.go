// gridalign assigns a start time to each deferrable consumer load so that the
// combined draw best matches a renewable production profile, minimizing the
// energy imported from the grid.
//
// Usage:
//
//	gridalign -scenario scenario.yaml
//	gridalign -production prod.csv -events events.csv -output AST.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/gridalign/gridalign/internal/config"
	"github.com/gridalign/gridalign/internal/logging"
	"github.com/gridalign/gridalign/internal/metrics"
	"github.com/gridalign/gridalign/internal/server"
	"github.com/gridalign/gridalign/internal/sim"
	"github.com/gridalign/gridalign/internal/solve"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a YAML scenario file")
	productionPath := flag.String("production", "", "production profile CSV (overrides scenario)")
	eventsPath := flag.String("events", "", "consumer events CSV (overrides scenario)")
	outputPath := flag.String("output", "", "result file path (overrides scenario)")
	seed := flag.Int64("seed", 0, "random seed for initial guesses (overrides scenario)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Logging.Level,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	runLogger := logger.WithFields(map[string]interface{}{
		"service": "gridalign",
	})
	zapLogger := logging.NewZapLogger(logger)

	scenario := &config.Scenario{}
	if *scenarioPath != "" {
		scenario, err = config.LoadScenario(*scenarioPath)
		if err != nil {
			runLogger.Fatal("Failed to load scenario", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if *productionPath != "" {
		scenario.ProductionFile = *productionPath
	}
	if *eventsPath != "" {
		scenario.EventsFile = *eventsPath
	}
	if *outputPath != "" {
		scenario.OutputFile = *outputPath
	}
	if *seed != 0 {
		scenario.Seed = *seed
	}
	if err := scenario.Validate(); err != nil {
		runLogger.Fatal("Invalid scenario", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if scenario.OutputFile == "" {
		scenario.OutputFile = sim.DefaultOutputFile
	}

	params := sim.Params{
		ProductionFile: scenario.ProductionFile,
		EventsFile:     scenario.EventsFile,
		OutputFile:     scenario.OutputFile,
		Seed:           scenario.Seed,
	}
	if d := scenario.Daylight; d != nil {
		params.Daylight = &sim.Interval{Lower: d.Sunrise, Upper: d.Sunset}
	}

	mets := metrics.New()
	scheduler, err := sim.NewScheduler(params,
		sim.WithLogger(zapLogger),
		sim.WithMetrics(mets),
		sim.WithSolverFactory(func(numVars int) (solve.Solver, error) {
			return solve.NewNelderMead(numVars, solve.Config{
				MaxIterations: cfg.Solver.MaxIterations,
				MaxRuntime:    cfg.Solver.MaxRuntime,
				Logger:        zapLogger,
			})
		}),
	)
	if err != nil {
		runLogger.Fatal("Failed to construct scheduler", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer scheduler.Stop()

	// Optional read-only status surface for long solves.
	if cfg.HTTP.Enabled {
		srv := server.NewServer(scheduler, runLogger)
		httpServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler: srv.Router(),
		}
		go func() {
			runLogger.Info("Starting status server", map[string]interface{}{
				"address": httpServer.Addr,
			})
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				runLogger.Error("Status server failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			_ = httpServer.Shutdown(ctx)
		}()
	}

	result, err := scheduler.AssignStartTimes(context.Background())
	if err != nil {
		runLogger.Fatal("Scheduling failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	zapLogger.Info("run complete",
		zap.String("status", result.Status.String()),
		zap.Float64("total_grid_energy", result.Value),
		zap.String("output", params.OutputFile),
	)
}
