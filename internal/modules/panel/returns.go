package panel

import (
	"math"
	"time"
)

// Returns converts a price panel into simple daily returns:
// (p[t] - p[t-1]) / p[t-1] per column. The first row is always dropped (no
// prior price), and any remaining row that still contains a missing value
// is dropped whole. Division by a zero or missing previous price produces a
// missing value and therefore a row drop.
func (p *Panel) Returns() *Panel {
	symbols := make([]string, len(p.symbols))
	copy(symbols, p.symbols)

	if len(p.dates) < 2 {
		cols := make(map[string][]float64, len(symbols))
		for _, s := range symbols {
			cols[s] = []float64{}
		}
		return &Panel{dates: []time.Time{}, symbols: symbols, cols: cols}
	}

	n := len(p.dates) - 1
	raw := make(map[string][]float64, len(symbols))
	for _, s := range symbols {
		prices := p.cols[s]
		rets := make([]float64, n)
		for t := 1; t <= n; t++ {
			prev, cur := prices[t-1], prices[t]
			if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
				rets[t-1] = math.NaN()
			} else {
				rets[t-1] = (cur - prev) / prev
			}
		}
		raw[s] = rets
	}

	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		complete := true
		for _, s := range symbols {
			if math.IsNaN(raw[s][i]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	dates := make([]time.Time, len(keep))
	for j, i := range keep {
		dates[j] = p.dates[i+1]
	}

	cols := make(map[string][]float64, len(symbols))
	for _, s := range symbols {
		col := make([]float64, len(keep))
		for j, i := range keep {
			col[j] = raw[s][i]
		}
		cols[s] = col
	}

	return &Panel{dates: dates, symbols: symbols, cols: cols}
}
