// Package snapshot provides telemetry snapshot acquisition.
// A Provider assembles the plant's current metrics into a model.Snapshot,
// either from a remote telemetry API or from built-in sample data.
package snapshot

import (
	"context"

	"github.com/heliograph/heliograph/internal/model"
)

// Provider fetches plant telemetry.
// Implementations never mutate previously returned snapshots; every
// call builds a fresh value suitable for freezing into a ReportRecord.
type Provider interface {
	// Fetch assembles the current metric snapshot.
	// Any backend failure surfaces as a single DataUnavailable error.
	Fetch(ctx context.Context) (*model.Snapshot, error)

	// FetchCharts retrieves the six chart series.
	// All-or-nothing: one failed endpoint fails the whole fetch.
	FetchCharts(ctx context.Context) (model.ChartSet, error)
}
