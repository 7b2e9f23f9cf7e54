package report

import (
	"fmt"

	"github.com/vicanso/go-charts/v2"

	"github.com/aristath/riskscope/internal/modules/panel"
)

// CumulativeReturnChart renders the cumulative equal-weight portfolio
// return over the analysis window as a PNG line chart.
func CumulativeReturnChart(title string, series panel.Series) ([]byte, error) {
	if series.Len() < 2 {
		return nil, fmt.Errorf("chart: need at least 2 observations, got %d", series.Len())
	}

	labels := make([]string, series.Len())
	cumulative := make([]float64, series.Len())
	growth := 1.0
	yMin, yMax := 0.0, 0.0
	for i, v := range series.Values {
		growth *= 1 + v
		cumulative[i] = (growth - 1) * 100
		labels[i] = series.Dates[i].Format(panel.DateLayout)
		if cumulative[i] < yMin {
			yMin = cumulative[i]
		}
		if cumulative[i] > yMax {
			yMax = cumulative[i]
		}
	}

	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = 1
	}
	yMin -= pad
	yMax += pad

	split := 8
	if series.Len() < split {
		split = series.Len()
	}

	painter, err := charts.LineRender([][]float64{cumulative},
		charts.TitleTextOptionFunc(title, "cumulative return %"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return painter.Bytes()
}
