package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskscope/internal/modules/panel"
)

func TestCovarianceFromReturns_KnownValues(t *testing.T) {
	p := returnsPanel(t, []string{"AAA", "BBB"}, [][]float64{
		{0.10, -0.10, 0.20},
		{0.05, 0.00, -0.05},
	})

	cov, err := CovarianceFromReturns(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, cov.Symbols())

	covP, err := cov.Sub([]string{"AAA", "BBB"})
	require.NoError(t, err)

	// Sample covariance (n-1 in the denominator).
	assert.InDelta(t, 7.0/300.0, covP.At(0, 0), 1e-12)
	assert.InDelta(t, -0.0025, covP.At(0, 1), 1e-12)
	assert.InDelta(t, -0.0025, covP.At(1, 0), 1e-12)
	assert.InDelta(t, 0.0025, covP.At(1, 1), 1e-12)
}

func TestCovarianceFromReturns_TooFewRows(t *testing.T) {
	p := returnsPanel(t, []string{"AAA", "BBB"}, [][]float64{
		{0.10},
		{0.05},
	})

	_, err := CovarianceFromReturns(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows")
}

func TestCovarianceFromReturns_EmptyPanel(t *testing.T) {
	p, err := panel.FromRecords(nil)
	require.NoError(t, err)

	_, err = CovarianceFromReturns(p)
	require.Error(t, err)
}

func TestNewCovariance_Validation(t *testing.T) {
	_, err := NewCovariance([]string{"AAA", "BBB"}, [][]float64{{0.04}})
	assert.Error(t, err, "ragged matrix")

	_, err = NewCovariance([]string{"AAA", "AAA"}, [][]float64{
		{0.04, 0.01},
		{0.01, 0.09},
	})
	assert.Error(t, err, "duplicate symbol")

	_, err = NewCovariance(nil, nil)
	assert.Error(t, err, "no symbols")
}

func TestCovarianceSub_OrderPreserving(t *testing.T) {
	cov, err := NewCovariance([]string{"AAA", "BBB", "CCC"}, [][]float64{
		{0.04, 0.010, 0.020},
		{0.010, 0.09, 0.030},
		{0.020, 0.030, 0.16},
	})
	require.NoError(t, err)

	// Request order differs from storage order; entries must follow the
	// requested order.
	covP, err := cov.Sub([]string{"CCC", "AAA"})
	require.NoError(t, err)

	require.Equal(t, 2, covP.SymmetricDim())
	assert.InDelta(t, 0.16, covP.At(0, 0), 1e-15)
	assert.InDelta(t, 0.020, covP.At(0, 1), 1e-15)
	assert.InDelta(t, 0.020, covP.At(1, 0), 1e-15)
	assert.InDelta(t, 0.04, covP.At(1, 1), 1e-15)
}

func TestCovarianceSub_UnknownTicker(t *testing.T) {
	cov := testCovariance(t)

	_, err := cov.Sub([]string{"S1", "S9"})
	assert.ErrorIs(t, err, panel.ErrUnknownSymbol)
}

func TestCovarianceSub_EmptySelection(t *testing.T) {
	cov := testCovariance(t)

	_, err := cov.Sub(nil)
	assert.Error(t, err)
}

func TestCovarianceSymbols_Copies(t *testing.T) {
	cov := testCovariance(t)

	got := cov.Symbols()
	got[0] = "mutated"

	assert.Equal(t, "S1", cov.Symbols()[0])
}
