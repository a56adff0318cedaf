// Package telemetry provides OpenTelemetry integration for the application.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the default tracer name for the application
	TracerName = "github.com/heliograph/heliograph"
)

// Tracer returns the global tracer for the application
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a new span with the given name and returns the context and span.
// The caller is responsible for calling span.End() when the operation is complete.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// SpanFromContext returns the current span from the context.
// If no span is found, a no-op span is returned.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// SetSpanError records an error on the span and sets its status to error
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanOK sets the span status to OK
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanAttributes sets attributes on the span
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
}

// Common attribute keys for consistent naming
var (
	// Report attributes
	AttrReportID       = attribute.Key("report.id")
	AttrReportName     = attribute.Key("report.name")
	AttrReportVariant  = attribute.Key("report.variant")
	AttrReportVersion  = attribute.Key("report.version")
	AttrReportTemplate = attribute.Key("report.template")

	// Snapshot attributes
	AttrSnapshotSource = attribute.Key("snapshot.source")
	AttrMetricPath     = attribute.Key("metric.path")

	// Chart attributes
	AttrChartName = attribute.Key("chart.name")

	// Result attributes
	AttrPageCount  = attribute.Key("pages.count")
	AttrDurationMs = attribute.Key("duration.ms")
)

// WithReportAttributes returns span start options with report attributes
func WithReportAttributes(reportID, template, variant string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrReportID.String(reportID),
		AttrReportTemplate.String(template),
		AttrReportVariant.String(variant),
	)
}

// WithSnapshotAttributes returns span start options with snapshot attributes
func WithSnapshotAttributes(source string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrSnapshotSource.String(source),
	)
}
