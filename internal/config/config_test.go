package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliograph/heliograph/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.False(t, cfg.Source.Remote())
	assert.Equal(t, 10*time.Second, cfg.Source.Timeout())
	assert.Equal(t, 50*time.Millisecond, cfg.Source.SimulatedLatency())
	assert.Equal(t, "./output", cfg.Report.OutputDir)
	assert.Equal(t, 90, cfg.Report.RetentionDays)
	assert.Equal(t, 3, cfg.Report.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9000
source:
  base_url: http://plant.example.com/api
  timeout_seconds: 5
report:
  output_dir: /tmp/reports
  retention_days: 14
  workers: 2
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address())
	assert.True(t, cfg.Source.Remote())
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout())
	assert.Equal(t, "/tmp/reports", cfg.Report.OutputDir)
	assert.Equal(t, 14, cfg.Report.RetentionDays)
	assert.Equal(t, 2, cfg.Report.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigNotFound))
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigParse))
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("PLANT_URL", "http://plant.internal:9100")
	path := writeConfig(t, `
source:
  base_url: ${PLANT_URL}
report:
  output_dir: ${MISSING_DIR:-./fallback}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://plant.internal:9100", cfg.Source.BaseURL)
	assert.Equal(t, "./fallback", cfg.Report.OutputDir)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HELIOGRAPH_SERVER_PORT", "9191")
	t.Setenv("HELIOGRAPH_SOURCE_BASE_URL", "https://plant.example.com")
	t.Setenv("HELIOGRAPH_REPORT_WORKERS", "8")
	t.Setenv("HELIOGRAPH_LOG_LEVEL", "warn")

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "https://plant.example.com", cfg.Source.BaseURL)
	assert.Equal(t, 8, cfg.Report.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadOrDefaultMissingPath(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "bad base url", mutate: func(c *Config) { c.Source.BaseURL = "plant.example.com" }},
		{name: "negative retention", mutate: func(c *Config) { c.Report.RetentionDays = -1 }},
		{name: "negative workers", mutate: func(c *Config) { c.Report.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid))
		})
	}

	assert.NoError(t, Default().Validate())
}
