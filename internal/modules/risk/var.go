package risk

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/riskscope/internal/modules/panel"
	"github.com/aristath/riskscope/pkg/formulas"
)

// DefaultConfidence is the conventional confidence level for VaR reporting.
const DefaultConfidence = 0.95

// PortfolioReturns computes the equal-weight portfolio return series over
// the closed date window [start, end]: the sliced returns panel restricted
// to symbols, averaged across columns per row. Symbols absent from the
// panel return panel.ErrUnknownSymbol; a window with no overlap yields an
// empty series.
func PortfolioReturns(returns *panel.Panel, symbols []string, start, end time.Time) (panel.Series, error) {
	if len(symbols) == 0 {
		return panel.Series{}, fmt.Errorf("portfolio returns: no symbols given")
	}

	sub, err := returns.Select(symbols)
	if err != nil {
		return panel.Series{}, err
	}
	sub = sub.Slice(start, end)

	cols := make([][]float64, len(symbols))
	for i, s := range symbols {
		col, err := sub.Column(s)
		if err != nil {
			return panel.Series{}, err
		}
		cols[i] = col
	}

	values := make([]float64, sub.Rows())
	row := make([]float64, len(symbols))
	for r := range values {
		for i := range cols {
			row[i] = cols[i][r]
		}
		values[r] = floats.Sum(row) / float64(len(symbols))
	}

	return panel.Series{Dates: sub.Dates(), Values: values}, nil
}

// HistoricalVaR estimates Value-at-Risk for the equal-weight portfolio of
// symbols over [start, end]: the negated alpha-quantile (alpha =
// 1 - confidence) of the portfolio return series, reported as a positive
// loss magnitude. The quantile interpolates linearly between order
// statistics (formulas.Quantile, Hyndman-Fan type 7), ignoring missing
// values. An empty window returns ErrEmptyRange.
func HistoricalVaR(returns *panel.Panel, symbols []string, start, end time.Time, confidence float64) (float64, error) {
	series, err := windowReturns(returns, symbols, start, end, confidence)
	if err != nil {
		return 0, err
	}
	return -formulas.Quantile(series.Values, 1-confidence), nil
}

// HistoricalCVaR estimates the expected shortfall: the negated mean of the
// portfolio returns at or below the VaR quantile over the same window.
func HistoricalCVaR(returns *panel.Panel, symbols []string, start, end time.Time, confidence float64) (float64, error) {
	series, err := windowReturns(returns, symbols, start, end, confidence)
	if err != nil {
		return 0, err
	}

	q := formulas.Quantile(series.Values, 1-confidence)
	tail := make([]float64, 0, series.Len())
	for _, v := range series.Values {
		if v <= q {
			tail = append(tail, v)
		}
	}
	return -formulas.Mean(tail), nil
}

// ParametricVaR estimates Gaussian variance-covariance VaR over the same
// window: the negated alpha-quantile of a normal distribution fitted to the
// portfolio returns' sample mean and standard deviation. Requires at least
// two observations.
func ParametricVaR(returns *panel.Panel, symbols []string, start, end time.Time, confidence float64) (float64, error) {
	series, err := windowReturns(returns, symbols, start, end, confidence)
	if err != nil {
		return 0, err
	}
	if series.Len() < 2 {
		return 0, fmt.Errorf("parametric var: need at least 2 observations, got %d", series.Len())
	}

	dist := distuv.Normal{
		Mu:    stat.Mean(series.Values, nil),
		Sigma: stat.StdDev(series.Values, nil),
	}
	return -dist.Quantile(1 - confidence), nil
}

// windowReturns validates the confidence level and produces the non-empty
// portfolio return series for a VaR-family estimator.
func windowReturns(returns *panel.Panel, symbols []string, start, end time.Time, confidence float64) (panel.Series, error) {
	if confidence <= 0 || confidence >= 1 {
		return panel.Series{}, fmt.Errorf("confidence must be in (0, 1), got %g", confidence)
	}

	series, err := PortfolioReturns(returns, symbols, start, end)
	if err != nil {
		return panel.Series{}, err
	}
	if series.Len() == 0 {
		return panel.Series{}, fmt.Errorf("window %s..%s: %w",
			start.Format(panel.DateLayout), end.Format(panel.DateLayout), ErrEmptyRange)
	}
	return series, nil
}
