// Package store provides test utilities for database testing.
package store

import (
	"os"
	"testing"
	"time"

	"github.com/heliograph/heliograph/internal/database"
	"github.com/heliograph/heliograph/internal/model"
)

// SetupTestDB creates a temporary SQLite database for testing.
// It returns a Store instance and a cleanup function.
// The cleanup function should be called with defer in tests.
func SetupTestDB(t *testing.T) (Store, func()) {
	// Reset database state to allow re-initialization
	database.ResetForTesting()

	// Create temporary database file
	tmpFile, err := os.CreateTemp("", "test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	// Initialize database with temp path
	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	db := database.Get()
	store := NewStore(db)

	// Cleanup function
	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
	}

	return store, cleanup
}

// TestSnapshot builds a small representative telemetry snapshot
func TestSnapshot() *model.Snapshot {
	return &model.Snapshot{
		GeneratedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Metrics: map[string]model.MetricSeries{
			"irradiance": {Values: []float64{750, 840, 804}, Unit: "W/m²"},
			"power":      {Values: []float64{120, 180, 150}, Unit: "kW"},
		},
		Groups: map[string]map[string]model.MetricSeries{
			"environment": {
				"temperature": {Values: []float64{21.5, 24.0}, Unit: "°C"},
				"humidity":    {Values: []float64{40, 55}, Unit: "%"},
				"wind":        {Values: []float64{3.2, 5.1}, Unit: "m/s"},
			},
		},
		Charts: model.ChartSet{
			model.ChartEnergyByHour: {
				Labels: []string{"08:00", "09:00", "10:00"},
				Values: []float64{12.5, 18.2, 22.9},
				Unit:   "kWh",
			},
		},
	}
}

// CreateTestRecord creates a test ReportRecord with default values.
// Fields can be overridden by passing a function that modifies the record.
func CreateTestRecord(t *testing.T, store Store, overrides ...func(*model.ReportRecord)) *model.ReportRecord {
	record := &model.ReportRecord{
		Template: "basic",
		Variant:  model.ReportVariantPlain,
		Content:  "stable output through the morning",
		Data:     model.SnapshotColumn{Snapshot: *TestSnapshot()},
	}

	// Apply overrides
	for _, override := range overrides {
		override(record)
	}

	if err := store.Report().Append(record); err != nil {
		t.Fatalf("Failed to create test record: %v", err)
	}

	return record
}
