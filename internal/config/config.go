// Package config loads the simulator's configuration: runtime knobs from the
// environment, and the scenario (input files, output file, daylight window)
// from a YAML file.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/gridalign/gridalign/internal/errors"
)

// Config carries the runtime configuration parsed from the environment.
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Enabled         bool          `env:"HTTP_ENABLED" envDefault:"false"`
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Solver struct {
		MaxIterations int           `env:"SOLVER_MAX_ITERATIONS" envDefault:"500"`
		MaxRuntime    time.Duration `env:"SOLVER_MAX_RUNTIME" envDefault:"0"`
	}
}

// Load parses the runtime configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Development runs default to debug logging
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}

// Daylight is the optional [sunrise, sunset] interval, in POSIX seconds, used
// only to bias the optimizer's initial guess.
type Daylight struct {
	Sunrise int64 `yaml:"sunrise"`
	Sunset  int64 `yaml:"sunset"`
}

// Scenario is the on-disk description of one scheduling problem (YAML).
type Scenario struct {
	// ProductionFile is the cumulative renewable production CSV.
	ProductionFile string `yaml:"production_file"`
	// EventsFile is the consumer-events table.
	EventsFile string `yaml:"events_file"`
	// OutputFile receives the final assignment. Empty means AST.csv.
	OutputFile string `yaml:"output_file"`
	// Daylight optionally biases initial guesses toward productive hours.
	Daylight *Daylight `yaml:"daylight"`
	// Seed seeds the initial-guess random source. Zero means time-based.
	Seed int64 `yaml:"seed"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	const op = "LoadScenario"
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindResource, "read %s", path).
			WithComponent("config").WithOperation(op)
	}
	sc := &Scenario{}
	if err := yaml.Unmarshal(raw, sc); err != nil {
		return nil, errors.Wrap(err, errors.KindInvalidInput, "parse scenario").
			WithComponent("config").WithOperation(op)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Validate checks the scenario for missing or inconsistent fields.
func (sc *Scenario) Validate() error {
	const op = "Validate"
	if sc.ProductionFile == "" {
		return errors.New(errors.KindInvalidInput, "production_file is required").
			WithComponent("config").WithOperation(op)
	}
	if sc.EventsFile == "" {
		return errors.New(errors.KindInvalidInput, "events_file is required").
			WithComponent("config").WithOperation(op)
	}
	if d := sc.Daylight; d != nil && d.Sunset < d.Sunrise {
		return errors.Newf(errors.KindInvalidInput,
			"daylight sunset %d before sunrise %d", d.Sunset, d.Sunrise).
			WithComponent("config").WithOperation(op)
	}
	return nil
}
