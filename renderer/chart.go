package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/etnz/basis"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var palette = []drawing.Color{
	drawing.ColorFromHex("2563eb"), // blue-600
	drawing.ColorFromHex("dc2626"), // red-600
	drawing.ColorFromHex("16a34a"), // green-600
	drawing.ColorFromHex("9333ea"), // purple-600
	drawing.ColorFromHex("ea580c"), // orange-600
}

// ReturnChart renders a PNG line chart of the cumulative time weighted return
// of the portfolio and of each benchmark.
func ReturnChart(c *basis.Comparison) ([]byte, error) {
	series := []chart.Series{returnSeries("Portfolio", c.Series, 0)}
	for i, bm := range c.Benchmarks {
		series = append(series, returnSeries(bm.Symbol, bm.Series, i+1))
	}
	return renderReturns("Time Weighted Return", c.Series, series)
}

// DCAChart renders a PNG line chart of the return of a DCA simulation.
func DCAChart(res *basis.DCAResult) ([]byte, error) {
	series := []chart.Series{returnSeries(res.Params.Symbol, res.Series, 0)}
	return renderReturns("DCA Return "+res.Params.Symbol, res.Series, series)
}

func returnSeries(name string, points []basis.DailyReturn, i int) chart.TimeSeries {
	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for j, p := range points {
		xValues[j] = p.Date.Time()
		yValues[j] = p.Return.Float()
	}
	style := chart.Style{
		StrokeColor: palette[i%len(palette)],
		StrokeWidth: 1.5,
	}
	if i == 0 {
		style.StrokeWidth = 2.5
	} else {
		style.StrokeDashArray = []float64{5.0, 3.0}
	}
	return chart.TimeSeries{Name: name, Style: style, XValues: xValues, YValues: yValues}
}

func renderReturns(title string, main []basis.DailyReturn, series []chart.Series) ([]byte, error) {
	if len(main) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(main))
	}

	graph := chart.Chart{
		Title:  title,
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
					return fmt.Sprintf("%.0f%%", f*100)
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
