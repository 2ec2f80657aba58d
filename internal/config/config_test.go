package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "thermofit.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 10.0, cfg.Server.RatePerSecond, 0.001)
	assert.Equal(t, 20, cfg.Server.RateBurst)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrentSpecies)
	assert.InDelta(t, 10.0, cfg.Thermo.Tmin, 0.001)
	assert.InDelta(t, 3000.0, cfg.Thermo.Tmax, 0.001)
	assert.Equal(t, 60, cfg.Thermo.GridPoints)
	assert.InDelta(t, 1.0, cfg.Thermo.FrequencyScaleFactor, 0.001)
	assert.InDelta(t, 1000.0, cfg.Fit.Tmid, 0.001)
	assert.True(t, cfg.Fit.SearchTmid)
	assert.Equal(t, 9, cfg.Fit.Candidates)
	assert.Equal(t, 50, cfg.Fit.Points)
	assert.InDelta(t, 0.05, cfg.Fit.Tolerance, 0.0001)
	assert.Equal(t, 25, cfg.Fit.MaxIterations)
	assert.False(t, cfg.Fit.AllowPoorFit)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  path: /tmp/species.db
log:
  level: debug
  format: console
thermo:
  frequency_scale_factor: 0.967
fit:
  search_tmid: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/species.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, 0.967, cfg.Thermo.FrequencyScaleFactor, 0.0001)
	assert.False(t, cfg.Fit.SearchTmid)
	// Defaults still apply for unset values
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 1000.0, cfg.Fit.Tmid, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  path: from-file.db
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("THERMOFIT_STORE_PATH", "from-env.db")
	t.Setenv("THERMOFIT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "from-env.db", cfg.Store.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("THERMOFIT_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults(t *testing.T) *Config {
	t.Helper()

	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validDefaults(t)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingStorePath(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Store.Path = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.path is required")
}

func TestValidate_PortBounds(t *testing.T) {
	cfg := validDefaults(t)

	cfg.Server.Port = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be between 1 and 65535")

	cfg.Server.Port = 70000
	err = cfg.Validate()
	assert.Error(t, err)

	cfg.Server.Port = 9090
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ConcurrencyBounds(t *testing.T) {
	cfg := validDefaults(t)

	cfg.Batch.MaxConcurrentSpecies = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_species must be between 1 and 50")

	cfg.Batch.MaxConcurrentSpecies = 51
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_species must be between 1 and 50")

	cfg.Batch.MaxConcurrentSpecies = 50
	assert.NoError(t, cfg.Validate())
}

func TestValidate_TemperatureRange(t *testing.T) {
	cfg := validDefaults(t)

	cfg.Thermo.Tmin = -5
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "thermo.tmin must be > 0")

	cfg.Thermo.Tmin = 500
	cfg.Thermo.Tmax = 300
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "thermo.tmax must be > thermo.tmin")
}

func TestValidate_ScaleFactor(t *testing.T) {
	cfg := validDefaults(t)

	cfg.Thermo.FrequencyScaleFactor = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "frequency_scale_factor")

	cfg.Thermo.FrequencyScaleFactor = 2.5
	err = cfg.Validate()
	assert.Error(t, err)

	cfg.Thermo.FrequencyScaleFactor = 0.967
	assert.NoError(t, cfg.Validate())
}

func TestValidate_FitBounds(t *testing.T) {
	cfg := validDefaults(t)

	cfg.Fit.Points = 5
	cfg.Fit.Tolerance = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fit.points must be >= 10")
	assert.Contains(t, err.Error(), "fit.tolerance must be > 0")
}
