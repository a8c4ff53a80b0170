package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridalign/gridalign/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.HTTP.Enabled)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 500, cfg.Solver.MaxIterations)
	assert.Equal(t, time.Duration(0), cfg.Solver.MaxRuntime)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("HTTP_ENABLED", "true")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SOLVER_MAX_ITERATIONS", "100")
	t.Setenv("SOLVER_MAX_RUNTIME", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 100, cfg.Solver.MaxIterations)
	assert.Equal(t, 30*time.Second, cfg.Solver.MaxRuntime)
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := `
production_file: production.csv
events_file: events.csv
output_file: result.csv
daylight:
  sunrise: 21600
  sunset: 64800
seed: 42
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "production.csv", sc.ProductionFile)
	assert.Equal(t, "events.csv", sc.EventsFile)
	assert.Equal(t, "result.csv", sc.OutputFile)
	require.NotNil(t, sc.Daylight)
	assert.Equal(t, int64(21600), sc.Daylight.Sunrise)
	assert.Equal(t, int64(64800), sc.Daylight.Sunset)
	assert.Equal(t, int64(42), sc.Seed)
}

func TestLoadScenarioErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadScenario(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindResource))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("production_file: [unclosed"), 0o644))
	_, err = LoadScenario(bad)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name string
		sc   Scenario
		ok   bool
	}{
		{
			name: "valid minimal",
			sc:   Scenario{ProductionFile: "p.csv", EventsFile: "e.csv"},
			ok:   true,
		},
		{
			name: "missing production",
			sc:   Scenario{EventsFile: "e.csv"},
		},
		{
			name: "missing events",
			sc:   Scenario{ProductionFile: "p.csv"},
		},
		{
			name: "inverted daylight",
			sc: Scenario{
				ProductionFile: "p.csv",
				EventsFile:     "e.csv",
				Daylight:       &Daylight{Sunrise: 64800, Sunset: 21600},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sc.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
			}
		})
	}
}
