package compose

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/heliograph/heliograph/internal/model"
)

// Rasterizer turns a metric series into a PNG image for embedding
type Rasterizer interface {
	Render(title string, series model.MetricSeries) ([]byte, error)
}

// ChartRasterizer renders line charts with go-chart
type ChartRasterizer struct {
	width  int
	height int
}

// NewChartRasterizer returns a rasterizer producing PNGs sized to fit a
// two-per-row chart slot
func NewChartRasterizer() *ChartRasterizer {
	return &ChartRasterizer{width: 640, height: 420}
}

// Render draws the series as a line chart and returns the PNG bytes
func (r *ChartRasterizer) Render(title string, series model.MetricSeries) ([]byte, error) {
	if len(series.Values) < 2 {
		return nil, fmt.Errorf("series %q has %d points, need at least 2", title, len(series.Values))
	}

	xs := make([]float64, len(series.Values))
	for i := range xs {
		xs[i] = float64(i)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		YAxis: chart.YAxis{
			Name: series.Unit,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: series.Values,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("1a73e8"),
					StrokeWidth: 2.0,
					FillColor:   drawing.ColorFromHex("1a73e8").WithAlpha(40),
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart %q: %w", title, err)
	}
	return buf.Bytes(), nil
}
