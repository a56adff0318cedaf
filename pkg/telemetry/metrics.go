// Package telemetry provides OpenTelemetry integration for the application.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/heliograph/heliograph/pkg/logger"
)

const (
	// MeterName is the default meter name for the application
	MeterName = "github.com/heliograph/heliograph"
)

// Metrics holds all application metrics
type Metrics struct {
	// Report metrics
	ReportsTotal    metric.Int64Counter
	ReportFailures  metric.Int64Counter
	ComposeDuration metric.Float64Histogram
	ActiveReports   metric.Int64UpDownCounter
	ReportUpgrades  metric.Int64Counter

	// Snapshot metrics
	SnapshotFetchTotal    metric.Int64Counter
	SnapshotFetchDuration metric.Float64Histogram

	// Chart metrics
	ChartRendersTotal metric.Int64Counter
	ChartRenderErrors metric.Int64Counter

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		var err error
		globalMetrics, err = initMetrics()
		if err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			// Return empty metrics to avoid nil pointer
			globalMetrics = &Metrics{}
		}
	})
	return globalMetrics
}

// initMetrics initializes all application metrics
func initMetrics() (*Metrics, error) {
	meter := otel.Meter(MeterName)
	m := &Metrics{}

	var err error

	// Report metrics
	m.ReportsTotal, err = meter.Int64Counter(
		"heliograph_reports_total",
		metric.WithDescription("Total number of generated reports"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, err
	}

	m.ReportFailures, err = meter.Int64Counter(
		"heliograph_report_failures_total",
		metric.WithDescription("Total number of failed report generations"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, err
	}

	m.ComposeDuration, err = meter.Float64Histogram(
		"heliograph_compose_duration_seconds",
		metric.WithDescription("Duration of report composition in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	m.ActiveReports, err = meter.Int64UpDownCounter(
		"heliograph_active_reports",
		metric.WithDescription("Number of reports currently being generated"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, err
	}

	m.ReportUpgrades, err = meter.Int64Counter(
		"heliograph_report_upgrades_total",
		metric.WithDescription("Total number of report upgrades"),
		metric.WithUnit("{upgrade}"),
	)
	if err != nil {
		return nil, err
	}

	// Snapshot metrics
	m.SnapshotFetchTotal, err = meter.Int64Counter(
		"heliograph_snapshot_fetch_total",
		metric.WithDescription("Total number of telemetry snapshot fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	m.SnapshotFetchDuration, err = meter.Float64Histogram(
		"heliograph_snapshot_fetch_duration_seconds",
		metric.WithDescription("Duration of telemetry snapshot fetches in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	// Chart metrics
	m.ChartRendersTotal, err = meter.Int64Counter(
		"heliograph_chart_renders_total",
		metric.WithDescription("Total number of chart rasterizations"),
		metric.WithUnit("{chart}"),
	)
	if err != nil {
		return nil, err
	}

	m.ChartRenderErrors, err = meter.Int64Counter(
		"heliograph_chart_render_errors_total",
		metric.WithDescription("Total number of chart rasterization errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	// HTTP metrics
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"heliograph_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"heliograph_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("Metrics initialized successfully")
	return m, nil
}

// RecordReportStarted records that a report generation has started
func (m *Metrics) RecordReportStarted(ctx context.Context, template, variant string) {
	if m.ReportsTotal == nil {
		return
	}
	m.ReportsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("template", template),
			attribute.String("variant", variant),
		),
	)
	if m.ActiveReports != nil {
		m.ActiveReports.Add(ctx, 1)
	}
}

// RecordReportCompleted records that a report generation has finished
func (m *Metrics) RecordReportCompleted(ctx context.Context, variant string, success bool, durationSeconds float64) {
	if m.ActiveReports != nil {
		m.ActiveReports.Add(ctx, -1)
	}
	if !success && m.ReportFailures != nil {
		m.ReportFailures.Add(ctx, 1,
			metric.WithAttributes(attribute.String("variant", variant)),
		)
	}
	if m.ComposeDuration != nil {
		m.ComposeDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("variant", variant),
				attribute.Bool("success", success),
			),
		)
	}
}

// RecordReportUpgrade records a report version upgrade
func (m *Metrics) RecordReportUpgrade(ctx context.Context, variant string) {
	if m.ReportUpgrades == nil {
		return
	}
	m.ReportUpgrades.Add(ctx, 1,
		metric.WithAttributes(attribute.String("variant", variant)),
	)
}

// RecordSnapshotFetch records a telemetry snapshot fetch
func (m *Metrics) RecordSnapshotFetch(ctx context.Context, source string, success bool, durationSeconds float64) {
	if m.SnapshotFetchTotal != nil {
		m.SnapshotFetchTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("source", source),
				attribute.Bool("success", success),
			),
		)
	}
	if m.SnapshotFetchDuration != nil {
		m.SnapshotFetchDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(attribute.String("source", source)),
		)
	}
}

// RecordChartRender records a chart rasterization attempt
func (m *Metrics) RecordChartRender(ctx context.Context, chartName string, success bool) {
	if m.ChartRendersTotal != nil {
		m.ChartRendersTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("chart", chartName),
				attribute.Bool("success", success),
			),
		)
	}
	if !success && m.ChartRenderErrors != nil {
		m.ChartRenderErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("chart", chartName)),
		)
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64) {
	if m.HTTPRequestsTotal != nil {
		m.HTTPRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
				attribute.Int("status_code", statusCode),
			),
		)
	}
	if m.HTTPRequestDuration != nil {
		m.HTTPRequestDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
			),
		)
	}
}
