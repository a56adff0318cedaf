// Package model defines the data models for the application.
// This file contains unit tests for model types.
package model

import (
	"testing"
	"time"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		GeneratedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Metrics: map[string]MetricSeries{
			"irradiance": {Values: []float64{750, 840, 804}, Unit: "W/m²"},
			"power":      {Values: []float64{120, 180, 150}, Unit: "kW"},
		},
		Groups: map[string]map[string]MetricSeries{
			"environment": {
				"temperature": {Values: []float64{21.5, 24.0}, Unit: "°C"},
				"humidity":    {Values: []float64{40, 55}, Unit: "%"},
			},
		},
		Charts: ChartSet{
			ChartEnergyByHour: {
				Labels: []string{"08:00", "09:00"},
				Values: []float64{12.5, 18.2},
				Unit:   "kWh",
			},
		},
	}
}

// TestSnapshotResolve tests dotted-path lookup across metrics, groups and charts
func TestSnapshotResolve(t *testing.T) {
	snap := sampleSnapshot()

	tests := []struct {
		name       string
		path       string
		wantOK     bool
		wantSeries bool
		wantGroup  bool
	}{
		{name: "top-level metric", path: "irradiance", wantOK: true, wantSeries: true},
		{name: "group member", path: "environment.temperature", wantOK: true, wantSeries: true},
		{name: "whole group", path: "environment", wantOK: true, wantGroup: true},
		{name: "chart series", path: ChartEnergyByHour, wantOK: true, wantSeries: true},
		{name: "unknown metric", path: "voltage", wantOK: false},
		{name: "unknown group member", path: "environment.pressure", wantOK: false},
		{name: "unknown group", path: "weather.temperature", wantOK: false},
		{name: "empty path", path: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := snap.Resolve(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if (got.Series != nil) != tt.wantSeries {
				t.Errorf("Resolve(%q) series presence = %v, want %v", tt.path, got.Series != nil, tt.wantSeries)
			}
			if (got.Group != nil) != tt.wantGroup {
				t.Errorf("Resolve(%q) group presence = %v, want %v", tt.path, got.Group != nil, tt.wantGroup)
			}
		})
	}
}

// TestSnapshotResolveNil tests Resolve on a nil snapshot
func TestSnapshotResolveNil(t *testing.T) {
	var snap *Snapshot
	if _, ok := snap.Resolve("irradiance"); ok {
		t.Error("Resolve() on nil snapshot returned ok")
	}
}

// TestMetricSeriesStats tests min/max/avg computation
func TestMetricSeriesStats(t *testing.T) {
	series := MetricSeries{Values: []float64{750, 840, 804}, Unit: "W/m²"}
	min, max, avg, ok := series.Stats()
	if !ok {
		t.Fatal("Stats() ok = false for non-empty series")
	}
	if min != 750 {
		t.Errorf("min = %v, want 750", min)
	}
	if max != 840 {
		t.Errorf("max = %v, want 840", max)
	}
	if avg != 798 {
		t.Errorf("avg = %v, want 798", avg)
	}

	empty := MetricSeries{}
	if _, _, _, ok := empty.Stats(); ok {
		t.Error("Stats() ok = true for empty series")
	}
}

// TestSnapshotClone tests that clones are fully independent copies
func TestSnapshotClone(t *testing.T) {
	original := sampleSnapshot()
	clone := original.Clone()

	// Mutate the original in every nested structure
	original.Metrics["irradiance"].Values[0] = -1
	original.Groups["environment"]["temperature"].Values[0] = -1
	original.Charts[ChartEnergyByHour].Values[0] = -1
	original.Metrics["new"] = MetricSeries{Values: []float64{1}}

	if clone.Metrics["irradiance"].Values[0] != 750 {
		t.Error("clone metric values share backing array with original")
	}
	if clone.Groups["environment"]["temperature"].Values[0] != 21.5 {
		t.Error("clone group values share backing array with original")
	}
	if clone.Charts[ChartEnergyByHour].Values[0] != 12.5 {
		t.Error("clone chart values share backing array with original")
	}
	if _, exists := clone.Metrics["new"]; exists {
		t.Error("clone metrics map shares storage with original")
	}
}

// TestSnapshotColumnRoundTrip tests the JSON column encoding
func TestSnapshotColumnRoundTrip(t *testing.T) {
	col := SnapshotColumn{Snapshot: *sampleSnapshot()}

	value, err := col.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	var decoded SnapshotColumn
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	got, ok := decoded.Resolve("environment.humidity")
	if !ok {
		t.Fatal("decoded snapshot lost group data")
	}
	if got.Series.Unit != "%" {
		t.Errorf("decoded unit = %q, want %%", got.Series.Unit)
	}
	if !decoded.GeneratedAt.Equal(col.GeneratedAt) {
		t.Errorf("decoded GeneratedAt = %v, want %v", decoded.GeneratedAt, col.GeneratedAt)
	}
}

// TestSnapshotColumnScanNil tests scanning a NULL column
func TestSnapshotColumnScanNil(t *testing.T) {
	var col SnapshotColumn
	if err := col.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}
	if _, ok := col.Resolve("anything"); ok {
		t.Error("empty snapshot resolved a path")
	}
}

// TestReportVariantValid tests variant validation
func TestReportVariantValid(t *testing.T) {
	if !ReportVariantPlain.Valid() {
		t.Error("plain variant reported invalid")
	}
	if !ReportVariantChart.Valid() {
		t.Error("chart variant reported invalid")
	}
	if ReportVariant("fancy").Valid() {
		t.Error("unknown variant reported valid")
	}
}

// TestDirectiveMapRoundTrip tests directive conversion to and from JSON storage
func TestDirectiveMapRoundTrip(t *testing.T) {
	in := map[string]string{
		"texto_grande": "true",
		"color_texto":  "#FF0000",
	}
	record := &ReportRecord{Directives: DirectivesFromMap(in)}

	out := record.DirectiveMap()
	if len(out) != len(in) {
		t.Fatalf("DirectiveMap() size = %d, want %d", len(out), len(in))
	}
	for k, v := range in {
		if out[k] != v {
			t.Errorf("DirectiveMap()[%q] = %q, want %q", k, out[k], v)
		}
	}

	empty := &ReportRecord{}
	if got := empty.DirectiveMap(); len(got) != 0 {
		t.Errorf("DirectiveMap() on empty record = %v, want empty", got)
	}
}
