// Package report assembles and encodes the output of one analysis run.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/riskscope/internal/modules/risk"
)

// Supported report encodings.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// PanelSummary describes the loaded price panel.
type PanelSummary struct {
	Rows      int    `json:"rows"`
	Symbols   int    `json:"symbols"`
	FirstDate string `json:"first_date,omitempty"`
	LastDate  string `json:"last_date,omitempty"`
}

// Estimate mirrors risk.Estimate with a nullable standard error: JSON has
// no NaN, so an undefined spread (single trial) serializes as null.
type Estimate struct {
	Mean   float64  `json:"mean"`
	StdErr *float64 `json:"std_err"`
	Sims   int      `json:"sims"`
}

// FromRiskEstimate converts an estimator result for serialization.
func FromRiskEstimate(e risk.Estimate) Estimate {
	out := Estimate{Mean: e.Mean, Sims: e.Sims}
	if !math.IsNaN(e.StdErr) {
		se := e.StdErr
		out.StdErr = &se
	}
	return out
}

// MonteCarlo holds the estimator inputs and outputs for the target asset.
type MonteCarlo struct {
	Asset         string   `json:"asset"`
	PortfolioSize int      `json:"portfolio_size"`
	NumSims       int      `json:"num_sims"`
	Seed          uint64   `json:"seed"`
	ExpectedSigma Estimate `json:"expected_sigma"`
	ExpectedMRC   Estimate `json:"expected_mrc"`
}

// VaR holds the value-at-risk block over the configured window.
type VaR struct {
	Portfolio    []string `json:"portfolio"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Confidence   float64  `json:"confidence"`
	Observations int      `json:"observations"`
	Historical   float64  `json:"historical"`
	CVaR         float64  `json:"cvar"`
	Parametric   float64  `json:"parametric"`
}

// Diagnostics carries secondary per-asset readings.
type Diagnostics struct {
	RollingWindow int     `json:"rolling_window"`
	RollingVol    float64 `json:"rolling_vol"` // annualized, latest window
}

// Report is the value object produced by one analysis run.
type Report struct {
	ID          string       `json:"id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Source      string       `json:"source"`
	Panel       PanelSummary `json:"panel"`
	Universe    []string     `json:"universe"`
	MonteCarlo  MonteCarlo   `json:"monte_carlo"`
	VaR         *VaR         `json:"var,omitempty"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
	DurationMS  int64        `json:"duration_ms"`
}

// New creates an empty report with a fresh id and timestamp.
func New(source string) *Report {
	return &Report{
		ID:          uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Source:      source,
	}
}

// EncodeJSON renders the report as indented JSON.
func (r *Report) EncodeJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report json: %w", err)
	}
	return data, nil
}

// EncodeMsgpack renders the report in msgpack.
func (r *Report) EncodeMsgpack() ([]byte, error) {
	data, err := msgpack.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report msgpack: %w", err)
	}
	return data, nil
}

// Encode renders the report in the requested format. An empty format
// defaults to JSON.
func (r *Report) Encode(format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return r.EncodeJSON()
	case FormatMsgpack:
		return r.EncodeMsgpack()
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// WriteFile encodes the report and writes it to path.
func (r *Report) WriteFile(path, format string) error {
	data, err := r.Encode(format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
