package snapshot

import (
	"context"
	"time"

	"github.com/heliograph/heliograph/internal/model"
)

// Simulated serves fixed sample telemetry after a configurable delay,
// standing in for the remote API during development and demos.
type Simulated struct {
	latency time.Duration
}

// NewSimulated creates a simulated provider.
// latency emulates network round-trip time; zero means immediate.
func NewSimulated(latency time.Duration) *Simulated {
	return &Simulated{latency: latency}
}

// Fetch returns the sample snapshot after the configured delay
func (s *Simulated) Fetch(ctx context.Context) (*model.Snapshot, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return sampleSnapshot(), nil
}

// FetchCharts returns the sample chart series after the configured delay
func (s *Simulated) FetchCharts(ctx context.Context) (model.ChartSet, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return sampleCharts(), nil
}

// wait blocks for the configured latency or until the context is done
func (s *Simulated) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// sampleSnapshot builds a fresh copy of the fixed sample data
func sampleSnapshot() *model.Snapshot {
	return &model.Snapshot{
		GeneratedAt: time.Now(),
		Metrics: map[string]model.MetricSeries{
			"irradiance": {
				Labels: []string{"08:00", "10:00", "12:00"},
				Values: []float64{750, 840, 804},
				Unit:   "W/m²",
			},
			"power": {
				Labels: []string{"08:00", "10:00", "12:00"},
				Values: []float64{118.4, 176.2, 151.9},
				Unit:   "kW",
			},
			"energy_by_hour": {
				Labels: []string{"08:00", "09:00", "10:00", "11:00", "12:00"},
				Values: []float64{12.5, 18.2, 22.9, 24.1, 21.7},
				Unit:   "kWh",
			},
		},
		Groups: map[string]map[string]model.MetricSeries{
			"environment": {
				"temperature": {Values: []float64{19.8, 23.4, 26.1}, Unit: "°C"},
				"humidity":    {Values: []float64{58, 47, 41}, Unit: "%"},
				"wind":        {Values: []float64{2.4, 3.8, 5.2}, Unit: "m/s"},
			},
		},
		Charts: sampleCharts(),
	}
}

// sampleCharts builds a fresh copy of the fixed chart series
func sampleCharts() model.ChartSet {
	return model.ChartSet{
		model.ChartIrradianceVsPower: {
			Labels: []string{"650", "700", "750", "800", "850"},
			Values: []float64{96.1, 110.8, 124.5, 142.0, 158.3},
			Unit:   "kW",
		},
		model.ChartPowerHistogram: {
			Labels: []string{"0-50", "50-100", "100-150", "150-200"},
			Values: []float64{4, 11, 23, 9},
			Unit:   "samples",
		},
		model.ChartTemperatureVsPower: {
			Labels: []string{"18", "21", "24", "27", "30"},
			Values: []float64{148.2, 151.0, 149.6, 144.3, 138.7},
			Unit:   "kW",
		},
		model.ChartWindVsTemperature: {
			Labels: []string{"1", "2", "3", "4", "5"},
			Values: []float64{27.4, 26.2, 24.9, 23.8, 22.5},
			Unit:   "°C",
		},
		model.ChartPowerAnomalies: {
			Labels: []string{"09:14", "11:02", "13:48"},
			Values: []float64{-18.5, -32.1, -12.9},
			Unit:   "kW",
		},
		model.ChartEnergyByHour: {
			Labels: []string{"08:00", "09:00", "10:00", "11:00", "12:00"},
			Values: []float64{12.5, 18.2, 22.9, 24.1, 21.7},
			Unit:   "kWh",
		},
	}
}
