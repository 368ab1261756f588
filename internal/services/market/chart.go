package market

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/finscreen/internal/models"
)

// smaPeriod is the moving-average window drawn over longer histories
const smaPeriod = 20

// RenderPriceChart renders a PNG line chart of closing prices, with a
// 20-bar moving average once there are enough bars. Returns raw PNG bytes.
func RenderPriceChart(ticker string, bars []models.EODBar) ([]byte, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("need at least 2 price bars, got %d", len(bars))
	}

	xValues := make([]time.Time, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		xValues[i] = b.Date
		closes[i] = b.Close
	}

	closeSeries := chart.TimeSeries{
		Name: "Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2,
		},
		XValues: xValues,
		YValues: closes,
	}

	series := []chart.Series{closeSeries}
	if len(bars) > smaPeriod {
		series = append(series, chart.SMASeries{
			Name: fmt.Sprintf("SMA %d", smaPeriod),
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			InnerSeries: closeSeries,
			Period:      smaPeriod,
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Price", ticker),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
