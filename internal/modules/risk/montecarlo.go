package risk

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/riskscope/internal/modules/panel"
)

// DefaultSeed seeds the Monte Carlo estimators when the caller has no
// preference, keeping independent runs comparable by default.
const DefaultSeed uint64 = 42

// NewRand returns a deterministic PCG generator for the given seed. The
// sampler takes its generator explicitly; there is no package-level
// randomness.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// SamplePortfolioWithAsset draws k-1 distinct symbols uniformly without
// replacement from universe excluding asset, then appends asset, producing
// a portfolio of exactly k members that always contains the target. The
// asset must be a member of universe (panel.ErrUnknownSymbol otherwise);
// k < 1 or k-1 exceeding the remaining universe returns
// ErrInsufficientUniverse.
func SamplePortfolioWithAsset(universe []string, asset string, k int, rng *rand.Rand) ([]string, error) {
	others := make([]string, 0, len(universe))
	found := false
	for _, s := range universe {
		if s == asset {
			found = true
			continue
		}
		others = append(others, s)
	}
	if !found {
		return nil, fmt.Errorf("sample: asset %q not in universe: %w", asset, panel.ErrUnknownSymbol)
	}
	if k < 1 {
		return nil, fmt.Errorf("sample: portfolio size %d: %w", k, ErrInsufficientUniverse)
	}
	if k-1 > len(others) {
		return nil, fmt.Errorf("sample: cannot draw %d from %d remaining symbols: %w",
			k-1, len(others), ErrInsufficientUniverse)
	}

	portfolio := make([]string, 0, k)
	for _, i := range rng.Perm(len(others))[:k-1] {
		portfolio = append(portfolio, others[i])
	}
	return append(portfolio, asset), nil
}

// Estimate is a Monte Carlo estimate: the sample mean of a statistic over
// Sims independent trials and the standard error of that mean (sample
// standard deviation, n-1 divisor, over sqrt(Sims)). With a single trial
// the sample standard deviation is undefined, so StdErr is NaN.
type Estimate struct {
	Mean   float64 `json:"mean"`
	StdErr float64 `json:"std_err"`
	Sims   int     `json:"sims"`
}

// ExpectedSigma estimates the expected equal-weight portfolio volatility
// over random size-k portfolios that include asset. A fresh deterministic
// generator is built from seed, so identical arguments produce
// bit-identical estimates.
func ExpectedSigma(cov *Covariance, universe []string, asset string, k, numSims int, seed uint64) (Estimate, error) {
	return simulate(cov, universe, asset, k, numSims, seed,
		func(covP *mat.SymDense, _ []string) (float64, error) {
			return PortfolioSigma(covP)
		})
}

// ExpectedMRC estimates the expected marginal risk contribution of asset
// over random size-k portfolios that include it. Same determinism contract
// as ExpectedSigma.
func ExpectedMRC(cov *Covariance, universe []string, asset string, k, numSims int, seed uint64) (Estimate, error) {
	return simulate(cov, universe, asset, k, numSims, seed,
		func(covP *mat.SymDense, tickers []string) (float64, error) {
			return MRCForAsset(covP, tickers, asset)
		})
}

// simulate runs the shared estimator loop: numSims independent trials, each
// sampling a portfolio, extracting its sub-covariance and evaluating the
// statistic on it.
func simulate(cov *Covariance, universe []string, asset string, k, numSims int, seed uint64,
	statistic func(covP *mat.SymDense, tickers []string) (float64, error)) (Estimate, error) {

	if numSims < 1 {
		return Estimate{}, fmt.Errorf("monte carlo: num sims must be >= 1, got %d", numSims)
	}

	rng := NewRand(seed)
	values := make([]float64, numSims)
	for i := 0; i < numSims; i++ {
		portfolio, err := SamplePortfolioWithAsset(universe, asset, k, rng)
		if err != nil {
			return Estimate{}, err
		}
		covP, err := cov.Sub(portfolio)
		if err != nil {
			return Estimate{}, err
		}
		v, err := statistic(covP, portfolio)
		if err != nil {
			return Estimate{}, err
		}
		values[i] = v
	}

	return Estimate{
		Mean:   stat.Mean(values, nil),
		StdErr: stat.StdDev(values, nil) / math.Sqrt(float64(numSims)),
		Sims:   numSims,
	}, nil
}
