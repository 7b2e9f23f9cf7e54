// Package panel provides the in-memory price panel: a date-indexed,
// symbol-columned matrix of closing prices with NaN as the missing-value
// marker, plus the derived full-history universe and simple-returns
// transforms. The same representation serves price panels and returns
// panels.
package panel

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// DateLayout is the canonical date format for price records.
const DateLayout = "2006-01-02"

var (
	// ErrDuplicateRecord signals two records for the same (symbol, date)
	// pair, which makes the pivot ambiguous.
	ErrDuplicateRecord = errors.New("duplicate symbol/date record")

	// ErrUnknownSymbol signals a ticker lookup against an index that does
	// not contain it.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// PriceRecord is a single closing-price observation.
type PriceRecord struct {
	Symbol string
	Date   time.Time
	Close  float64
}

// Series is a date-indexed series of values, e.g. portfolio returns over a
// window.
type Series struct {
	Dates  []time.Time
	Values []float64
}

// Len returns the number of observations in the series.
func (s Series) Len() int { return len(s.Values) }

// Panel is a date-indexed, symbol-columned matrix. The date index is
// ascending and unique, columns are aligned to it, and missing cells hold
// math.NaN(). Panels are immutable after construction; transforms return
// new panels.
type Panel struct {
	dates   []time.Time
	symbols []string
	cols    map[string][]float64
}

// FromRecords pivots price records into a Panel. Dates become the ascending
// row index, symbols become columns (sorted for a stable order), and
// (symbol, date) combinations without a record are filled with NaN.
// Duplicate (symbol, date) pairs make the pivot ambiguous and return
// ErrDuplicateRecord.
func FromRecords(records []PriceRecord) (*Panel, error) {
	type key struct {
		symbol string
		day    int64
	}

	seen := make(map[key]bool, len(records))
	daySet := make(map[int64]bool)
	symSet := make(map[string]bool)
	for _, r := range records {
		k := key{r.Symbol, dayKey(r.Date)}
		if seen[k] {
			return nil, fmt.Errorf("pivot %s@%s: %w",
				r.Symbol, r.Date.Format(DateLayout), ErrDuplicateRecord)
		}
		seen[k] = true
		daySet[k.day] = true
		symSet[r.Symbol] = true
	}

	days := make([]int64, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	symbols := make([]string, 0, len(symSet))
	for s := range symSet {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	rowIdx := make(map[int64]int, len(days))
	dates := make([]time.Time, len(days))
	for i, d := range days {
		rowIdx[d] = i
		dates[i] = time.Unix(d, 0).UTC()
	}

	cols := make(map[string][]float64, len(symbols))
	for _, s := range symbols {
		col := make([]float64, len(days))
		for i := range col {
			col[i] = math.NaN()
		}
		cols[s] = col
	}
	for _, r := range records {
		cols[r.Symbol][rowIdx[dayKey(r.Date)]] = r.Close
	}

	return &Panel{dates: dates, symbols: symbols, cols: cols}, nil
}

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayKey normalizes a timestamp to its UTC calendar day.
func dayKey(t time.Time) int64 {
	return Day(t).Unix()
}

// Rows returns the number of dates in the panel.
func (p *Panel) Rows() int { return len(p.dates) }

// IsEmpty reports whether the panel has no rows.
func (p *Panel) IsEmpty() bool { return len(p.dates) == 0 }

// Dates returns a copy of the ascending date index.
func (p *Panel) Dates() []time.Time {
	out := make([]time.Time, len(p.dates))
	copy(out, p.dates)
	return out
}

// Symbols returns a copy of the column order.
func (p *Panel) Symbols() []string {
	out := make([]string, len(p.symbols))
	copy(out, p.symbols)
	return out
}

// Column returns a copy of one symbol's values aligned to the date index.
func (p *Panel) Column(symbol string) ([]float64, error) {
	col, ok := p.cols[symbol]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", symbol, ErrUnknownSymbol)
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

// Slice returns the sub-panel covering the closed date interval
// [start, end]. The bounds are resolved by binary search over the date
// index; a window with no overlap yields an empty panel with the same
// columns.
func (p *Panel) Slice(start, end time.Time) *Panel {
	lo := sort.Search(len(p.dates), func(i int) bool { return !p.dates[i].Before(start) })
	hi := sort.Search(len(p.dates), func(i int) bool { return p.dates[i].After(end) })
	if hi < lo {
		hi = lo
	}

	dates := make([]time.Time, hi-lo)
	copy(dates, p.dates[lo:hi])

	cols := make(map[string][]float64, len(p.symbols))
	for _, s := range p.symbols {
		col := make([]float64, hi-lo)
		copy(col, p.cols[s][lo:hi])
		cols[s] = col
	}

	symbols := make([]string, len(p.symbols))
	copy(symbols, p.symbols)

	return &Panel{dates: dates, symbols: symbols, cols: cols}
}

// Select returns the sub-panel restricted to the given symbols, preserving
// their order. Unknown symbols return ErrUnknownSymbol; duplicates are
// rejected because columns are keyed by symbol.
func (p *Panel) Select(symbols []string) (*Panel, error) {
	cols := make(map[string][]float64, len(symbols))
	ordered := make([]string, 0, len(symbols))
	for _, s := range symbols {
		src, ok := p.cols[s]
		if !ok {
			return nil, fmt.Errorf("select %q: %w", s, ErrUnknownSymbol)
		}
		if _, dup := cols[s]; dup {
			return nil, fmt.Errorf("select: symbol %q listed twice", s)
		}
		col := make([]float64, len(src))
		copy(col, src)
		cols[s] = col
		ordered = append(ordered, s)
	}

	dates := make([]time.Time, len(p.dates))
	copy(dates, p.dates)

	return &Panel{dates: dates, symbols: ordered, cols: cols}, nil
}
