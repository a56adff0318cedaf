package model

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// Chart names available in the telemetry snapshot.
// Each maps to a dedicated endpoint on the telemetry source.
const (
	ChartIrradianceVsPower  = "irradiance_vs_power"
	ChartPowerHistogram     = "power_histogram"
	ChartTemperatureVsPower = "temperature_vs_power"
	ChartWindVsTemperature  = "wind_vs_temperature"
	ChartPowerAnomalies     = "power_anomalies"
	ChartEnergyByHour       = "energy_by_hour"
)

// AllChartNames returns the chart names in their display order
func AllChartNames() []string {
	return []string{
		ChartIrradianceVsPower,
		ChartPowerHistogram,
		ChartTemperatureVsPower,
		ChartWindVsTemperature,
		ChartPowerAnomalies,
		ChartEnergyByHour,
	}
}

// MetricSeries is a single named series of sampled values.
// Labels (when present) carry the x-axis labels aligned with Values.
type MetricSeries struct {
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values"`
	Unit   string    `json:"unit,omitempty"`
}

// Stats returns the minimum, maximum and arithmetic mean of the series.
// ok is false when the series has no values.
func (m MetricSeries) Stats() (min, max, avg float64, ok bool) {
	if len(m.Values) == 0 {
		return 0, 0, 0, false
	}
	min, max = m.Values[0], m.Values[0]
	sum := 0.0
	for _, v := range m.Values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return min, max, sum / float64(len(m.Values)), true
}

// Clone returns a deep copy of the series
func (m MetricSeries) Clone() MetricSeries {
	out := MetricSeries{Unit: m.Unit}
	if m.Labels != nil {
		out.Labels = append([]string(nil), m.Labels...)
	}
	if m.Values != nil {
		out.Values = append([]float64(nil), m.Values...)
	}
	return out
}

// ChartSet holds the rasterizable chart series keyed by chart name
type ChartSet map[string]MetricSeries

// Clone returns a deep copy of the chart set
func (c ChartSet) Clone() ChartSet {
	if c == nil {
		return nil
	}
	out := make(ChartSet, len(c))
	for name, series := range c {
		out[name] = series.Clone()
	}
	return out
}

// Snapshot is a point-in-time capture of the plant telemetry.
// Metrics holds top-level series, Groups holds named sub-metric groups
// (e.g. "environment" with temperature/humidity/wind), Charts holds the
// series backing the dashboard charts.
type Snapshot struct {
	GeneratedAt time.Time                          `json:"generated_at"`
	Metrics     map[string]MetricSeries            `json:"metrics"`
	Groups      map[string]map[string]MetricSeries `json:"groups,omitempty"`
	Charts      ChartSet                           `json:"charts,omitempty"`
}

// Resolved is the result of a snapshot path lookup: exactly one of
// Series or Group is set.
type Resolved struct {
	Series *MetricSeries
	Group  map[string]MetricSeries
}

// Resolve looks up a dotted metric path in the snapshot.
// A bare name matches a top-level metric, then a group, then a chart series.
// A "group.metric" path matches a member of a named group.
// ok is false when nothing matches the path.
func (s *Snapshot) Resolve(path string) (Resolved, bool) {
	if s == nil || path == "" {
		return Resolved{}, false
	}

	if group, member, found := strings.Cut(path, "."); found {
		members, exists := s.Groups[group]
		if !exists {
			return Resolved{}, false
		}
		series, exists := members[member]
		if !exists {
			return Resolved{}, false
		}
		return Resolved{Series: &series}, true
	}

	if series, exists := s.Metrics[path]; exists {
		return Resolved{Series: &series}, true
	}
	if members, exists := s.Groups[path]; exists {
		return Resolved{Group: members}, true
	}
	if series, exists := s.Charts[path]; exists {
		return Resolved{Series: &series}, true
	}
	return Resolved{}, false
}

// Clone returns a deep copy of the snapshot.
// Records persist a clone so later provider mutations never leak in.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{GeneratedAt: s.GeneratedAt}
	if s.Metrics != nil {
		out.Metrics = make(map[string]MetricSeries, len(s.Metrics))
		for name, series := range s.Metrics {
			out.Metrics[name] = series.Clone()
		}
	}
	if s.Groups != nil {
		out.Groups = make(map[string]map[string]MetricSeries, len(s.Groups))
		for name, members := range s.Groups {
			group := make(map[string]MetricSeries, len(members))
			for member, series := range members {
				group[member] = series.Clone()
			}
			out.Groups[name] = group
		}
	}
	out.Charts = s.Charts.Clone()
	return out
}

// SnapshotColumn stores a Snapshot as a JSON column in SQLite
type SnapshotColumn struct {
	Snapshot
}

// Value implements driver.Valuer interface
func (c SnapshotColumn) Value() (driver.Value, error) {
	data, err := json.Marshal(c.Snapshot)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (c *SnapshotColumn) Scan(value interface{}) error {
	if value == nil {
		c.Snapshot = Snapshot{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	return json.Unmarshal(bytes, &c.Snapshot)
}
