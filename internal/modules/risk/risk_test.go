package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/riskscope/internal/modules/panel"
)

// returnsPanel builds a panel whose cells are the given per-symbol return
// series, dated on consecutive days. Symbols must be pre-sorted.
func returnsPanel(t *testing.T, symbols []string, cols [][]float64) *panel.Panel {
	t.Helper()
	require.Equal(t, len(symbols), len(cols))

	base, err := time.Parse(panel.DateLayout, "2024-01-01")
	require.NoError(t, err)

	var records []panel.PriceRecord
	for i, s := range symbols {
		for j, v := range cols[i] {
			records = append(records, panel.PriceRecord{
				Symbol: s,
				Date:   base.AddDate(0, 0, j),
				Close:  v,
			})
		}
	}
	p, err := panel.FromRecords(records)
	require.NoError(t, err)
	return p
}

// testCovariance returns a six-asset sample covariance computed from a
// fixed returns panel, guaranteeing a valid (positive semi-definite)
// matrix with heterogeneous variances.
func testCovariance(t *testing.T) *Covariance {
	t.Helper()
	symbols := []string{"S1", "S2", "S3", "S4", "S5", "S6"}
	cols := [][]float64{
		{0.010, -0.020, 0.015, 0.005, -0.010, 0.020, -0.005, 0.010},
		{0.002, 0.003, -0.001, 0.004, 0.002, -0.002, 0.003, 0.001},
		{-0.015, 0.025, -0.010, 0.020, 0.015, -0.020, 0.010, -0.005},
		{0.030, -0.010, 0.020, -0.030, 0.010, 0.005, -0.015, 0.025},
		{0.001, 0.002, 0.001, -0.001, 0.002, 0.001, -0.002, 0.001},
		{-0.005, 0.010, 0.005, -0.010, 0.020, -0.015, 0.005, 0.010},
	}

	cov, err := CovarianceFromReturns(returnsPanel(t, symbols, cols))
	require.NoError(t, err)
	return cov
}

func TestPortfolioSigma_TwoAssetPinned(t *testing.T) {
	cov, err := NewCovariance([]string{"AAA", "BBB"}, [][]float64{
		{0.04, 0.01},
		{0.01, 0.09},
	})
	require.NoError(t, err)

	covP, err := cov.Sub([]string{"AAA", "BBB"})
	require.NoError(t, err)

	sigma, err := PortfolioSigma(covP)
	require.NoError(t, err)

	// w' Σ w = 0.25*0.04 + 2*0.25*0.01 + 0.25*0.09 = 0.0375
	assert.InDelta(t, math.Sqrt(0.0375), sigma, 1e-12)
}

func TestPortfolioSigma_SymmetricPairPinned(t *testing.T) {
	cov, err := NewCovariance([]string{"AAA", "BBB"}, [][]float64{
		{0.02, 0.005},
		{0.005, 0.02},
	})
	require.NoError(t, err)

	covP, err := cov.Sub([]string{"AAA", "BBB"})
	require.NoError(t, err)

	sigma, err := PortfolioSigma(covP)
	require.NoError(t, err)

	// w' Σ w = 0.0125, sigma ≈ 0.1118
	assert.InDelta(t, 0.1118033989, sigma, 1e-9)
}

func TestPortfolioSigma_NonNegative(t *testing.T) {
	cov := testCovariance(t)

	portfolios := [][]string{
		{"S1"},
		{"S2", "S5"},
		{"S1", "S3", "S4"},
		{"S1", "S2", "S3", "S4", "S5", "S6"},
	}
	for _, p := range portfolios {
		covP, err := cov.Sub(p)
		require.NoError(t, err)

		sigma, err := PortfolioSigma(covP)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sigma, 0.0, "portfolio %v", p)
	}
}

func TestPortfolioSigma_ZeroMatrix(t *testing.T) {
	covP := mat.NewSymDense(3, nil)

	sigma, err := PortfolioSigma(covP)
	require.NoError(t, err)
	assert.Zero(t, sigma)
}

func TestPortfolioSigma_NegativeVariance(t *testing.T) {
	covP := mat.NewSymDense(2, []float64{
		-0.04, 0,
		0, 0.01,
	})

	_, err := PortfolioSigma(covP)
	assert.ErrorIs(t, err, ErrDegenerateRisk)
}

func TestMRCForAsset_TwoAssetPinned(t *testing.T) {
	cov, err := NewCovariance([]string{"AAA", "BBB"}, [][]float64{
		{0.04, 0.01},
		{0.01, 0.09},
	})
	require.NoError(t, err)

	tickers := []string{"AAA", "BBB"}
	covP, err := cov.Sub(tickers)
	require.NoError(t, err)

	// Σw = [0.025, 0.05], σ = sqrt(0.0375)
	sigma := math.Sqrt(0.0375)

	mrcA, err := MRCForAsset(covP, tickers, "AAA")
	require.NoError(t, err)
	assert.InDelta(t, 0.025/sigma, mrcA, 1e-12)

	mrcB, err := MRCForAsset(covP, tickers, "BBB")
	require.NoError(t, err)
	assert.InDelta(t, 0.05/sigma, mrcB, 1e-12)
}

func TestMRCForAsset_DecompositionIdentity(t *testing.T) {
	cov := testCovariance(t)

	portfolios := [][]string{
		{"S1", "S2"},
		{"S4", "S1", "S6"},
		{"S1", "S2", "S3", "S4", "S5", "S6"},
	}
	for _, tickers := range portfolios {
		covP, err := cov.Sub(tickers)
		require.NoError(t, err)

		sigma, err := PortfolioSigma(covP)
		require.NoError(t, err)
		require.Positive(t, sigma)

		w := 1.0 / float64(len(tickers))
		sum := 0.0
		for _, asset := range tickers {
			mrc, err := MRCForAsset(covP, tickers, asset)
			require.NoError(t, err)
			sum += w * mrc
		}

		// sum_i w_i * MRC_i must reproduce portfolio volatility.
		assert.InEpsilon(t, sigma, sum, 1e-9, "portfolio %v", tickers)
	}
}

func TestMRCForAsset_UnknownAsset(t *testing.T) {
	cov := testCovariance(t)
	tickers := []string{"S1", "S2"}
	covP, err := cov.Sub(tickers)
	require.NoError(t, err)

	_, err = MRCForAsset(covP, tickers, "S9")
	assert.ErrorIs(t, err, panel.ErrUnknownSymbol)
}

func TestMRCForAsset_ZeroVolatility(t *testing.T) {
	cov, err := NewCovariance([]string{"AAA", "BBB"}, [][]float64{
		{0, 0},
		{0, 0},
	})
	require.NoError(t, err)

	tickers := []string{"AAA", "BBB"}
	covP, err := cov.Sub(tickers)
	require.NoError(t, err)

	_, err = MRCForAsset(covP, tickers, "AAA")
	assert.ErrorIs(t, err, ErrDegenerateRisk)
}

func TestMRCForAsset_SizeMismatch(t *testing.T) {
	covP := mat.NewSymDense(2, []float64{0.04, 0.01, 0.01, 0.09})

	_, err := MRCForAsset(covP, []string{"AAA", "BBB", "CCC"}, "AAA")
	require.Error(t, err)
}
