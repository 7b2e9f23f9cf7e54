package risk

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/riskscope/internal/modules/panel"
)

// Covariance is a symbol-indexed sample covariance matrix.
type Covariance struct {
	symbols []string
	index   map[string]int
	m       *mat.SymDense
}

func newCovariance(symbols []string, m *mat.SymDense) (*Covariance, error) {
	index := make(map[string]int, len(symbols))
	ordered := make([]string, len(symbols))
	for i, s := range symbols {
		if _, dup := index[s]; dup {
			return nil, fmt.Errorf("covariance: symbol %q listed twice", s)
		}
		index[s] = i
		ordered[i] = s
	}
	return &Covariance{symbols: ordered, index: index, m: m}, nil
}

// CovarianceFromReturns computes the sample covariance matrix (bias
// corrected, n-1 divisor) of a returns panel. At least two return rows are
// required.
func CovarianceFromReturns(returns *panel.Panel) (*Covariance, error) {
	symbols := returns.Symbols()
	rows := returns.Rows()
	if len(symbols) == 0 {
		return nil, fmt.Errorf("covariance: returns panel has no symbols")
	}
	if rows < 2 {
		return nil, fmt.Errorf("covariance: need at least 2 return rows, got %d", rows)
	}

	data := mat.NewDense(rows, len(symbols), nil)
	for j, s := range symbols {
		col, err := returns.Column(s)
		if err != nil {
			return nil, err
		}
		data.SetCol(j, col)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	return newCovariance(symbols, &cov)
}

// NewCovariance builds a Covariance from explicit row-major values (one row
// per symbol). The upper triangle is used; values must form a square matrix
// matching the symbol count.
func NewCovariance(symbols []string, values [][]float64) (*Covariance, error) {
	n := len(symbols)
	if n == 0 {
		return nil, fmt.Errorf("covariance: no symbols")
	}
	if len(values) != n {
		return nil, fmt.Errorf("covariance: %d symbols but %d rows", n, len(values))
	}

	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		if len(values[i]) != n {
			return nil, fmt.Errorf("covariance: row %d has %d values, want %d", i, len(values[i]), n)
		}
		for j := i; j < n; j++ {
			m.SetSym(i, j, values[i][j])
		}
	}
	return newCovariance(symbols, m)
}

// Symbols returns the matrix's symbol order.
func (c *Covariance) Symbols() []string {
	out := make([]string, len(c.symbols))
	copy(out, c.symbols)
	return out
}

// Sub returns the sub-covariance matrix restricted to tickers, preserving
// the order given. Tickers absent from the index return
// panel.ErrUnknownSymbol.
func (c *Covariance) Sub(tickers []string) (*mat.SymDense, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("subcov: empty ticker list")
	}

	idx := make([]int, len(tickers))
	for i, t := range tickers {
		j, ok := c.index[t]
		if !ok {
			return nil, fmt.Errorf("subcov %q: %w", t, panel.ErrUnknownSymbol)
		}
		idx[i] = j
	}

	k := len(tickers)
	sub := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sub.SetSym(i, j, c.m.At(idx[i], idx[j]))
		}
	}
	return sub, nil
}
