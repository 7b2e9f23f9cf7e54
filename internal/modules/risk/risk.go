// Package risk implements equal-weight portfolio risk math: sample
// covariance handling, portfolio volatility and marginal risk contribution,
// Monte Carlo estimation over random sub-portfolios, and historical loss
// quantiles. All functions are pure; callers own logging and retries.
package risk

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aristath/riskscope/internal/modules/panel"
)

var (
	// ErrInsufficientUniverse signals a universe too small to draw a
	// portfolio of the requested size around the target asset.
	ErrInsufficientUniverse = errors.New("universe too small for requested portfolio size")

	// ErrDegenerateRisk signals zero or negative portfolio variance,
	// leaving volatility-relative quantities undefined.
	ErrDegenerateRisk = errors.New("degenerate portfolio risk")

	// ErrEmptyRange signals a date window with no overlapping return
	// observations.
	ErrEmptyRange = errors.New("no return observations in range")
)

// negVarianceTolerance absorbs floating-point noise when a quadratic form
// lands slightly below zero.
const negVarianceTolerance = 1e-12

// equalWeights returns w = [1/k]*k.
func equalWeights(k int) *mat.VecDense {
	w := make([]float64, k)
	for i := range w {
		w[i] = 1.0 / float64(k)
	}
	return mat.NewVecDense(k, w)
}

// PortfolioSigma returns the equal-weight portfolio volatility
// sqrt(w' Σ w) of a sub-covariance matrix. A variance within floating
// tolerance below zero is clamped to zero; a materially negative variance
// means the input is not a valid covariance matrix and returns
// ErrDegenerateRisk.
func PortfolioSigma(covP *mat.SymDense) (float64, error) {
	k := covP.SymmetricDim()
	if k == 0 {
		return 0, fmt.Errorf("portfolio sigma: empty covariance matrix")
	}

	w := equalWeights(k)
	variance := mat.Inner(w, covP, w)
	if variance < 0 {
		if variance < -negVarianceTolerance {
			return 0, fmt.Errorf("portfolio variance %g: %w", variance, ErrDegenerateRisk)
		}
		variance = 0
	}
	return math.Sqrt(variance), nil
}

// MRCForAsset returns the marginal risk contribution of asset within the
// equal-weight portfolio tickers: the asset's component of (Σ w) / σ_p.
// The asset must appear in tickers (panel.ErrUnknownSymbol otherwise), and
// σ_p must be positive (ErrDegenerateRisk when every sampled asset is
// riskless or identical).
func MRCForAsset(covP *mat.SymDense, tickers []string, asset string) (float64, error) {
	k := covP.SymmetricDim()
	if k != len(tickers) {
		return 0, fmt.Errorf("mrc: covariance is %dx%d but %d tickers given", k, k, len(tickers))
	}

	idx := -1
	for i, t := range tickers {
		if t == asset {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("mrc %q: %w", asset, panel.ErrUnknownSymbol)
	}

	sigma, err := PortfolioSigma(covP)
	if err != nil {
		return 0, err
	}
	if sigma == 0 {
		return 0, fmt.Errorf("mrc %q: zero portfolio volatility: %w", asset, ErrDegenerateRisk)
	}

	w := equalWeights(k)
	var cw mat.VecDense
	cw.MulVec(covP, w)
	return cw.AtVec(idx) / sigma, nil
}
