package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/heliograph/heliograph/internal/model"
	"github.com/heliograph/heliograph/pkg/errors"
	"github.com/heliograph/heliograph/pkg/logger"
)

const defaultRequestTimeout = 10 * time.Second

// Endpoint payloads. Each chart endpoint returns its own JSON shape;
// decoding is typed per endpoint and converted into a MetricSeries.

// IrradianceVsPower correlates irradiance buckets with produced power
type IrradianceVsPower struct {
	Irradiance []float64 `json:"irradiance"`
	Power      []float64 `json:"power"`
	Unit       string    `json:"unit"`
}

// HistogramData is a binned distribution with recorded extremes
type HistogramData struct {
	Bins   []string  `json:"bins"`
	Counts []float64 `json:"counts"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
}

// TemperatureVsPower correlates panel temperature with produced power
type TemperatureVsPower struct {
	Temperature []float64 `json:"temperature"`
	Power       []float64 `json:"power"`
	Unit        string    `json:"unit"`
}

// WindVsTemperature correlates wind speed with panel temperature
type WindVsTemperature struct {
	Wind        []float64 `json:"wind"`
	Temperature []float64 `json:"temperature"`
	Unit        string    `json:"unit"`
}

// PowerAnomalies lists timestamped deviations from expected output
type PowerAnomalies struct {
	Timestamps []string  `json:"timestamps"`
	Deviations []float64 `json:"deviations"`
	Unit       string    `json:"unit"`
}

// EnergyByHour is the hourly produced energy
type EnergyByHour struct {
	Hours  []string  `json:"hours"`
	Energy []float64 `json:"energy"`
	Unit   string    `json:"unit"`
}

// metricPayload is the common shape of the base metric endpoints
type metricPayload struct {
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values"`
	Unit   string    `json:"unit,omitempty"`
}

// environmentPayload is the grouped environment endpoint shape
type environmentPayload map[string]metricPayload

// Remote fetches telemetry from the plant's HTTP API.
// Endpoint fetches fan out concurrently and fan in with errgroup;
// any single failure yields DataUnavailable with nothing partial kept.
type Remote struct {
	baseURL string
	client  *http.Client
}

// NewRemote creates a remote provider for the given base URL.
// A nil client gets a default with a request timeout.
func NewRemote(baseURL string, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Fetch assembles a snapshot from the base metric endpoints concurrently
func (r *Remote) Fetch(ctx context.Context) (*model.Snapshot, error) {
	var (
		irradiance  metricPayload
		power       metricPayload
		energy      metricPayload
		environment environmentPayload
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.getJSON(gctx, "/irradiance", &irradiance) })
	g.Go(func() error { return r.getJSON(gctx, "/power", &power) })
	g.Go(func() error { return r.getJSON(gctx, "/energy-by-hour", &energy) })
	g.Go(func() error { return r.getJSON(gctx, "/environment", &environment) })

	if err := g.Wait(); err != nil {
		logger.Error("Snapshot fetch failed", zap.String("base_url", r.baseURL), zap.Error(err))
		return nil, errors.ErrDataUnavailable(err)
	}

	snap := &model.Snapshot{
		GeneratedAt: time.Now(),
		Metrics: map[string]model.MetricSeries{
			"irradiance":     irradiance.series(),
			"power":          power.series(),
			"energy_by_hour": energy.series(),
		},
		Groups: map[string]map[string]model.MetricSeries{
			"environment": environment.group(),
		},
	}

	charts, err := r.FetchCharts(ctx)
	if err != nil {
		return nil, err
	}
	snap.Charts = charts
	return snap, nil
}

// FetchCharts fans out to the six chart endpoints and fans in.
// All-or-nothing: partial aggregation is not supported.
func (r *Remote) FetchCharts(ctx context.Context) (model.ChartSet, error) {
	var (
		irradianceVsPower  IrradianceVsPower
		histogram          HistogramData
		temperatureVsPower TemperatureVsPower
		windVsTemperature  WindVsTemperature
		anomalies          PowerAnomalies
		energyByHour       EnergyByHour
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.getJSON(gctx, "/irradiance-vs-power", &irradianceVsPower) })
	g.Go(func() error { return r.getJSON(gctx, "/power-histogram", &histogram) })
	g.Go(func() error { return r.getJSON(gctx, "/temperature-vs-power", &temperatureVsPower) })
	g.Go(func() error { return r.getJSON(gctx, "/wind-vs-temperature", &windVsTemperature) })
	g.Go(func() error { return r.getJSON(gctx, "/power-anomalies", &anomalies) })
	g.Go(func() error { return r.getJSON(gctx, "/energy-by-hour", &energyByHour) })

	if err := g.Wait(); err != nil {
		logger.Error("Chart fetch failed", zap.String("base_url", r.baseURL), zap.Error(err))
		return nil, errors.ErrDataUnavailable(err)
	}

	return model.ChartSet{
		model.ChartIrradianceVsPower: {
			Labels: formatFloats(irradianceVsPower.Irradiance),
			Values: irradianceVsPower.Power,
			Unit:   irradianceVsPower.Unit,
		},
		model.ChartPowerHistogram: {
			Labels: histogram.Bins,
			Values: histogram.Counts,
			Unit:   "samples",
		},
		model.ChartTemperatureVsPower: {
			Labels: formatFloats(temperatureVsPower.Temperature),
			Values: temperatureVsPower.Power,
			Unit:   temperatureVsPower.Unit,
		},
		model.ChartWindVsTemperature: {
			Labels: formatFloats(windVsTemperature.Wind),
			Values: windVsTemperature.Temperature,
			Unit:   windVsTemperature.Unit,
		},
		model.ChartPowerAnomalies: {
			Labels: anomalies.Timestamps,
			Values: anomalies.Deviations,
			Unit:   anomalies.Unit,
		},
		model.ChartEnergyByHour: {
			Labels: energyByHour.Hours,
			Values: energyByHour.Energy,
			Unit:   energyByHour.Unit,
		},
	}, nil
}

// getJSON fetches one endpoint and decodes its JSON body into out
func (r *Remote) getJSON(ctx context.Context, path string, out interface{}) error {
	url := r.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (p metricPayload) series() model.MetricSeries {
	return model.MetricSeries{Labels: p.Labels, Values: p.Values, Unit: p.Unit}
}

func (p environmentPayload) group() map[string]model.MetricSeries {
	out := make(map[string]model.MetricSeries, len(p))
	for name, payload := range p {
		out[name] = payload.series()
	}
	return out
}

func formatFloats(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	}
	return out
}
