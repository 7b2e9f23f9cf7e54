package formulas

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
)

// RollingVolatility computes a rolling volatility series over a window of
// daily returns, annualized by sqrt(252). It wraps TA-Lib's STDDEV (population
// standard deviation); the first window-1 entries are zero (TA-Lib lookback).
func RollingVolatility(returns []float64, window int) ([]float64, error) {
	if window < 2 {
		return nil, fmt.Errorf("rolling volatility window must be >= 2, got %d", window)
	}
	if len(returns) < window {
		return nil, fmt.Errorf("insufficient data: need at least %d returns, got %d", window, len(returns))
	}

	out := talib.StdDev(returns, window, 1.0)
	for i := range out {
		out[i] *= math.Sqrt(252)
	}
	return out, nil
}
