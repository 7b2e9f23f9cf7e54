package panel

import "math"

// FullHistoryUniverse returns the symbols whose columns have no missing
// values across the panel's entire date range, in column order. An empty
// panel yields an empty universe.
func (p *Panel) FullHistoryUniverse() []string {
	universe := make([]string, 0, len(p.symbols))
	if len(p.dates) == 0 {
		return universe
	}

	for _, s := range p.symbols {
		complete := true
		for _, v := range p.cols[s] {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if complete {
			universe = append(universe, s)
		}
	}
	return universe
}
