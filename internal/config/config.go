// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/heliograph/heliograph/consts"
	"github.com/heliograph/heliograph/pkg/errors"
	"github.com/heliograph/heliograph/pkg/logger"
	"github.com/heliograph/heliograph/pkg/telemetry"
)

// Default configuration values
const (
	defaultHost               = "0.0.0.0"
	defaultPort               = 8080
	defaultOutputDir          = "./output"
	defaultRetentionDays      = 90
	defaultWorkers            = 3
	defaultSourceTimeout      = 10
	defaultSimulatedLatencyMs = 50
	defaultOTLPEndpoint       = "localhost:4317"
)

// envPrefix is the prefix for environment variable overrides
const envPrefix = "HELIOGRAPH_"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Source    SourceConfig     `yaml:"source"`
	Report    ReportConfig     `yaml:"report"`
	Logging   logger.Config    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins whitelist
}

// SourceConfig holds plant telemetry source configuration.
// When BaseURL is empty, the simulated source is used.
type SourceConfig struct {
	BaseURL            string `yaml:"base_url"`             // remote telemetry service base URL
	TimeoutSeconds     int    `yaml:"timeout_seconds"`      // HTTP timeout for remote fetches
	SimulatedLatencyMs int    `yaml:"simulated_latency_ms"` // artificial latency of the simulated source
}

// ReportConfig holds report generation configuration
type ReportConfig struct {
	OutputDir     string `yaml:"output_dir"`     // Directory for PDF artifacts (default: ./output)
	RetentionDays int    `yaml:"retention_days"` // Artifact retention days (default: 90)
	Workers       int    `yaml:"workers"`        // Concurrent generation workers (default: 3)
}

// Timeout returns the remote source timeout as a duration
func (c *SourceConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultSourceTimeout * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SimulatedLatency returns the simulated source latency as a duration
func (c *SourceConfig) SimulatedLatency() time.Duration {
	if c.SimulatedLatencyMs < 0 {
		return 0
	}
	return time.Duration(c.SimulatedLatencyMs) * time.Millisecond
}

// Remote reports whether a remote telemetry source is configured
func (c *SourceConfig) Remote() bool {
	return c.BaseURL != ""
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:  defaultHost,
			Port:  defaultPort,
			Debug: false,
			CORSOrigins: []string{
				"http://localhost:8080",
			},
		},
		Source: SourceConfig{
			TimeoutSeconds:     defaultSourceTimeout,
			SimulatedLatencyMs: defaultSimulatedLatencyMs,
		},
		Report: ReportConfig{
			OutputDir:     defaultOutputDir,
			RetentionDays: defaultRetentionDays,
			Workers:       defaultWorkers,
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text",
			File:       "",
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 5,
			Compress:   false,
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Enabled:  false,
				Endpoint: defaultOTLPEndpoint,
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Enabled: false,
				Port:    telemetry.DefaultPrometheusPort,
			},
		},
	}
}

// Load loads configuration from a YAML file with environment variable
// expansion, then applies HELIOGRAPH_* overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeConfigNotFound,
				fmt.Sprintf("config file not found: %s", path))
		}
		return nil, errors.Wrap(errors.ErrCodeConfigNotFound,
			fmt.Sprintf("failed to read config file: %s", path), err)
	}

	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigParse,
			fmt.Sprintf("failed to parse config file: %s", path), err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the configuration file when it exists, otherwise
// falls back to defaults plus environment overrides
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := Default()
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistent values
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("server port out of range: %d", c.Server.Port))
	}
	if c.Source.Remote() && !strings.HasPrefix(c.Source.BaseURL, "http://") && !strings.HasPrefix(c.Source.BaseURL, "https://") {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("source base_url must be an http(s) URL: %s", c.Source.BaseURL))
	}
	if c.Report.RetentionDays < 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("report retention_days cannot be negative: %d", c.Report.RetentionDays))
	}
	if c.Report.Workers < 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("report workers cannot be negative: %d", c.Report.Workers))
	}
	return nil
}

// applyEnvOverrides applies HELIOGRAPH_* environment variables on top
// of the loaded configuration
func (c *Config) applyEnvOverrides() {
	setString(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "SERVER_PORT")
	setBool(&c.Server.Debug, "SERVER_DEBUG")
	setString(&c.Source.BaseURL, "SOURCE_BASE_URL")
	setInt(&c.Source.TimeoutSeconds, "SOURCE_TIMEOUT_SECONDS")
	setString(&c.Report.OutputDir, "REPORT_OUTPUT_DIR")
	setInt(&c.Report.RetentionDays, "REPORT_RETENTION_DAYS")
	setInt(&c.Report.Workers, "REPORT_WORKERS")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.File, "LOG_FILE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable
// values. Only ${VAR_NAME} is matched, with ${VAR_NAME:-default} support.
func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}
		if len(parts) > 1 {
			return parts[1]
		}
		return ""
	})
}
