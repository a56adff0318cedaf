// Package main is the entry point for the Heliograph application.
// Heliograph is a report assembly service for solar plant telemetry
// dashboards: it captures plant snapshots and renders them as versioned
// PDF reports.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/heliograph/heliograph/consts"
	"github.com/heliograph/heliograph/internal/compose"
	"github.com/heliograph/heliograph/internal/config"
	"github.com/heliograph/heliograph/internal/database"
	"github.com/heliograph/heliograph/internal/output"
	"github.com/heliograph/heliograph/internal/report"
	"github.com/heliograph/heliograph/internal/server"
	"github.com/heliograph/heliograph/internal/snapshot"
	"github.com/heliograph/heliograph/internal/store"
	"github.com/heliograph/heliograph/pkg/logger"
	"github.com/heliograph/heliograph/pkg/telemetry"
)

// Build information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// init synchronizes build info to consts package for global access
func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

// configPath holds the path to the configuration file
var configPath string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "heliograph",
	Short: "Heliograph - Solar Plant Report Assembly Service",
	Long: `Heliograph captures telemetry snapshots from a solar plant and
assembles them into paginated PDF reports with inline formatting
directives, chart rendering and versioned upgrades.`,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Heliograph server",
	Long: `Start the HTTP server to handle report generation requests.

Reports are generated from the configured telemetry source and written
to the output directory as sequentially named PDF files.`,
	Run: runServe,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Heliograph %s\n", Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: config/heliograph.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultConfigPath is used when --config is not given
const defaultConfigPath = "config/heliograph.yaml"

// runServe starts the Heliograph server
func runServe(cmd *cobra.Command, args []string) {
	consts.SetStartedAt(time.Now())

	path := configPath
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override config with command line flags
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Heliograph",
		zap.String("version", Version),
	)

	// Initialize telemetry (OpenTelemetry traces and metrics)
	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown telemetry", zap.Error(err))
		}
	}()

	// Initialize database
	if err := database.Init(); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	dataStore := store.NewStore(database.Get())

	// Select the telemetry source
	var provider snapshot.Provider
	if cfg.Source.Remote() {
		provider = snapshot.NewRemote(cfg.Source.BaseURL, &http.Client{Timeout: cfg.Source.Timeout()})
		logger.Info("Using remote telemetry source",
			zap.String("base_url", cfg.Source.BaseURL),
			zap.Duration("timeout", cfg.Source.Timeout()))
	} else {
		provider = snapshot.NewSimulated(cfg.Source.SimulatedLatency())
		logger.Info("Using simulated telemetry source",
			zap.Duration("latency", cfg.Source.SimulatedLatency()))
	}

	// Create report engine
	writer := output.NewWriter(cfg.Report.OutputDir)
	composer := compose.New(compose.NewChartRasterizer())
	reportEngine := report.NewEngine(dataStore, provider, composer, writer, cfg.Report.Workers)
	reportEngine.Start()
	defer reportEngine.Stop()

	// Start artifact retention cleanup (runs daily at 3 AM)
	retention := output.NewRetentionService(writer, cfg.Report.RetentionDays)
	if err := retention.Start(); err != nil {
		logger.Warn("Failed to start artifact retention service", zap.Error(err))
	} else {
		defer retention.Stop()
	}

	// Create and configure server
	srv := server.New(cfg, reportEngine, provider, dataStore)
	srv.SetupRoutes()

	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	logger.Info("Heliograph server is running",
		zap.String("address", cfg.Server.Address()),
	)

	srv.WaitForShutdown()

	logger.Info("Heliograph stopped")
}
