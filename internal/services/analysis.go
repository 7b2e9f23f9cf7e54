// Package services provides the orchestration that turns raw price
// records into a risk report.
package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskscope/internal/config"
	"github.com/aristath/riskscope/internal/modules/panel"
	"github.com/aristath/riskscope/internal/modules/report"
	"github.com/aristath/riskscope/internal/modules/risk"
	"github.com/aristath/riskscope/internal/sysinfo"
	"github.com/aristath/riskscope/internal/utils"
	"github.com/aristath/riskscope/pkg/formulas"
)

// AnalysisService runs one batch risk analysis: panel, universe, returns,
// covariance, Monte Carlo estimates, and the optional VaR block. Runs are
// independent; the service holds no state between them.
type AnalysisService struct {
	source RecordSource
	cfg    *config.Config
	log    zerolog.Logger
}

// NewAnalysisService creates the service.
func NewAnalysisService(source RecordSource, cfg *config.Config, log zerolog.Logger) *AnalysisService {
	return &AnalysisService{
		source: source,
		cfg:    cfg,
		log:    log.With().Str("component", "analysis").Logger(),
	}
}

// Name implements scheduler.Job.
func (s *AnalysisService) Name() string { return "analysis" }

// Run implements scheduler.Job.
func (s *AnalysisService) Run() error {
	_, err := s.RunContext(context.Background())
	return err
}

// RunContext executes one batch run and returns the report it produced.
func (s *AnalysisService) RunContext(ctx context.Context) (*report.Report, error) {
	started := time.Now()
	timer := utils.NewTimer("analysis_run", s.log)
	defer timer.Stop()

	rep := report.New(s.source.Name())

	records, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	p, err := panel.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("build panel: %w", err)
	}

	universe := p.FullHistoryUniverse()
	s.log.Info().
		Int("rows", p.Rows()).
		Int("symbols", len(p.Symbols())).
		Int("universe", len(universe)).
		Msg("Panel loaded")

	rep.Panel = report.PanelSummary{
		Rows:    p.Rows(),
		Symbols: len(p.Symbols()),
	}
	if dates := p.Dates(); len(dates) > 0 {
		rep.Panel.FirstDate = dates[0].Format(panel.DateLayout)
		rep.Panel.LastDate = dates[len(dates)-1].Format(panel.DateLayout)
	}
	rep.Universe = universe

	returns := p.Returns()
	cov, err := risk.CovarianceFromReturns(returns)
	if err != nil {
		return nil, fmt.Errorf("covariance: %w", err)
	}

	if err := s.runMonteCarlo(cov, universe, rep); err != nil {
		return nil, err
	}

	if s.cfg.VaREnabled() {
		if err := s.runVaR(returns, rep); err != nil {
			return nil, err
		}
	}

	s.addDiagnostics(returns, rep)

	rep.DurationMS = time.Since(started).Milliseconds()

	if err := s.emit(rep, returns); err != nil {
		return nil, err
	}

	snap := sysinfo.Sample(s.log)
	s.log.Info().
		Float64("cpu_percent", snap.CPUPercent).
		Float64("mem_percent", snap.MemPercent).
		Uint64("mem_used_mb", snap.MemUsedMB).
		Int64("duration_ms", rep.DurationMS).
		Msg("Run finished")

	return rep, nil
}

// runMonteCarlo fills the estimator block of the report.
func (s *AnalysisService) runMonteCarlo(cov *risk.Covariance, universe []string, rep *report.Report) error {
	timer := utils.NewTimer("monte_carlo", s.log)

	sigmaEst, err := risk.ExpectedSigma(cov, universe, s.cfg.Asset, s.cfg.PortfolioSize, s.cfg.NumSims, s.cfg.Seed)
	if err != nil {
		return fmt.Errorf("expected sigma: %w", err)
	}

	mrcEst, err := risk.ExpectedMRC(cov, universe, s.cfg.Asset, s.cfg.PortfolioSize, s.cfg.NumSims, s.cfg.Seed)
	if err != nil {
		return fmt.Errorf("expected mrc: %w", err)
	}

	timer.StopWithContext(map[string]interface{}{
		"sims": s.cfg.NumSims,
		"k":    s.cfg.PortfolioSize,
	})

	s.log.Info().
		Str("asset", s.cfg.Asset).
		Float64("expected_sigma", sigmaEst.Mean).
		Float64("sigma_std_err", sigmaEst.StdErr).
		Float64("expected_mrc", mrcEst.Mean).
		Float64("mrc_std_err", mrcEst.StdErr).
		Msg("Monte Carlo estimates")

	rep.MonteCarlo = report.MonteCarlo{
		Asset:         s.cfg.Asset,
		PortfolioSize: s.cfg.PortfolioSize,
		NumSims:       s.cfg.NumSims,
		Seed:          s.cfg.Seed,
		ExpectedSigma: report.FromRiskEstimate(sigmaEst),
		ExpectedMRC:   report.FromRiskEstimate(mrcEst),
	}
	return nil
}

// runVaR fills the value-at-risk block of the report.
func (s *AnalysisService) runVaR(returns *panel.Panel, rep *report.Report) error {
	cfg := s.cfg

	series, err := risk.PortfolioReturns(returns, cfg.VaRPortfolio, cfg.VaRStart, cfg.VaREnd)
	if err != nil {
		return fmt.Errorf("portfolio returns: %w", err)
	}

	hVaR, err := risk.HistoricalVaR(returns, cfg.VaRPortfolio, cfg.VaRStart, cfg.VaREnd, cfg.VaRConfidence)
	if err != nil {
		return fmt.Errorf("historical var: %w", err)
	}

	cVaR, err := risk.HistoricalCVaR(returns, cfg.VaRPortfolio, cfg.VaRStart, cfg.VaREnd, cfg.VaRConfidence)
	if err != nil {
		return fmt.Errorf("historical cvar: %w", err)
	}

	// Parametric VaR needs two observations; treat a one-row window as
	// historical-only rather than failing the run.
	var pVaR float64
	if series.Len() >= 2 {
		pVaR, err = risk.ParametricVaR(returns, cfg.VaRPortfolio, cfg.VaRStart, cfg.VaREnd, cfg.VaRConfidence)
		if err != nil {
			return fmt.Errorf("parametric var: %w", err)
		}
	}

	s.log.Info().
		Strs("portfolio", cfg.VaRPortfolio).
		Float64("historical_var", hVaR).
		Float64("cvar", cVaR).
		Float64("parametric_var", pVaR).
		Int("observations", series.Len()).
		Msg("Value at risk")

	rep.VaR = &report.VaR{
		Portfolio:    cfg.VaRPortfolio,
		Start:        cfg.VaRStart.Format(panel.DateLayout),
		End:          cfg.VaREnd.Format(panel.DateLayout),
		Confidence:   cfg.VaRConfidence,
		Observations: series.Len(),
		Historical:   hVaR,
		CVaR:         cVaR,
		Parametric:   pVaR,
	}
	return nil
}

// addDiagnostics attaches the rolling-volatility reading for the target
// asset. Diagnostics are best effort and never fail the run.
func (s *AnalysisService) addDiagnostics(returns *panel.Panel, rep *report.Report) {
	col, err := returns.Column(s.cfg.Asset)
	if err != nil {
		s.log.Warn().Err(err).Msg("Skipping rolling volatility")
		return
	}

	vols, err := formulas.RollingVolatility(col, s.cfg.RollingWindow)
	if err != nil {
		s.log.Warn().Err(err).Msg("Skipping rolling volatility")
		return
	}

	rep.Diagnostics = &report.Diagnostics{
		RollingWindow: s.cfg.RollingWindow,
		RollingVol:    vols[len(vols)-1],
	}
}

// emit writes the report and optional chart to their configured outputs.
func (s *AnalysisService) emit(rep *report.Report, returns *panel.Panel) error {
	if s.cfg.ReportPath != "" {
		if err := rep.WriteFile(s.cfg.ReportPath, s.cfg.ReportFormat); err != nil {
			return err
		}
		s.log.Info().
			Str("path", s.cfg.ReportPath).
			Str("format", s.cfg.ReportFormat).
			Str("report_id", rep.ID).
			Msg("Report written")
	}

	if s.cfg.ChartPath == "" {
		return nil
	}
	if !s.cfg.VaREnabled() {
		s.log.Warn().Msg("Chart requested without a VaR portfolio; skipping")
		return nil
	}

	series, err := risk.PortfolioReturns(returns, s.cfg.VaRPortfolio, s.cfg.VaRStart, s.cfg.VaREnd)
	if err != nil {
		return fmt.Errorf("chart series: %w", err)
	}

	png, err := report.CumulativeReturnChart("Portfolio", series)
	if err != nil {
		s.log.Warn().Err(err).Msg("Skipping chart")
		return nil
	}
	if err := os.WriteFile(s.cfg.ChartPath, png, 0644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}

	s.log.Info().Str("path", s.cfg.ChartPath).Msg("Chart written")
	return nil
}
