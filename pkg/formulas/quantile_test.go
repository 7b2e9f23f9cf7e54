package formulas

import (
	"math"
	"testing"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		p    float64
		want float64
	}{
		// position h = (n-1)*p = 0.2 -> -0.05 + 0.2*(-0.02 - -0.05) = -0.044
		{"lower tail interpolation", []float64{-0.05, -0.02, 0.01, 0.03, 0.04}, 0.05, -0.044},
		{"minimum at p=0", []float64{3, 1, 2}, 0, 1},
		{"maximum at p=1", []float64{3, 1, 2}, 1, 3},
		{"odd count median", []float64{5, 1, 9, 3, 7}, 0.5, 5},
		{"even count median", []float64{4, 1, 3, 2}, 0.5, 2.5},
		{"interior interpolation", []float64{10, 20, 30, 40}, 0.25, 17.5},
		{"single value", []float64{42}, 0.3, 42},
		{"unsorted input", []float64{0.04, -0.05, 0.03, -0.02, 0.01}, 0.05, -0.044},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quantile(tt.data, tt.p)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Quantile(%v, %v) = %v, want %v", tt.data, tt.p, got, tt.want)
			}
		})
	}
}

func TestQuantileIgnoresNaN(t *testing.T) {
	data := []float64{1, math.NaN(), 3}
	got := Quantile(data, 0.5)
	if math.Abs(got-2.0) > 1e-12 {
		t.Errorf("Quantile with NaN = %v, want 2", got)
	}
}

func TestQuantileUndefined(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		p    float64
	}{
		{"empty input", []float64{}, 0.5},
		{"all NaN", []float64{math.NaN(), math.NaN()}, 0.5},
		{"p below range", []float64{1, 2}, -0.1},
		{"p above range", []float64{1, 2}, 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quantile(tt.data, tt.p); !math.IsNaN(got) {
				t.Errorf("Quantile(%v, %v) = %v, want NaN", tt.data, tt.p, got)
			}
		})
	}
}
