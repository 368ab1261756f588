package market

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/metrics"
	"github.com/bobmcallan/finscreen/internal/models"
)

// RatioSource resolves the ratio metric set for a ticker
type RatioSource interface {
	Resolve(ctx context.Context, ticker, fallbackURL string) models.Resolution
}

// GrowthSource resolves growth metrics for a ticker
type GrowthSource interface {
	Resolve(ctx context.Context, ticker string) models.Resolution
}

// Engine applies threshold criteria to resolved metrics. Tickers are
// screened one after another; ScreenTicker is safe to call concurrently
// when the underlying sources are.
type Engine struct {
	ratios     RatioSource
	growth     GrowthSource
	directions models.DirectionTable
	logger     *common.Logger
	metrics    *metrics.Manager
	now        func() time.Time
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithDirections replaces the default direction table
func WithDirections(d models.DirectionTable) EngineOption {
	return func(e *Engine) {
		e.directions = d
	}
}

// WithGrowth merges growth metrics into screening when criteria need them
func WithGrowth(g GrowthSource) EngineOption {
	return func(e *Engine) {
		e.growth = g
	}
}

// WithMetrics records verdicts and run durations
func WithMetrics(m *metrics.Manager) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a screening engine over ratios
func NewEngine(ratios RatioSource, opts ...EngineOption) *Engine {
	e := &Engine{
		ratios:     ratios,
		directions: models.DefaultDirections(),
		logger:     common.NewSilentLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Screen returns one verdict per ticker, in input order. fallbackURLs maps
// a ticker to its fallback ratios page and may be nil.
func (e *Engine) Screen(ctx context.Context, tickers []string, criteria models.Criteria, fallbackURLs map[string]string) []models.ScreeningVerdict {
	verdicts := make([]models.ScreeningVerdict, 0, len(tickers))
	for _, ticker := range tickers {
		verdicts = append(verdicts, e.ScreenTicker(ctx, ticker, criteria, fallbackURLs[ticker]))
	}
	return verdicts
}

// ScreenTicker resolves and evaluates a single ticker
func (e *Engine) ScreenTicker(ctx context.Context, ticker string, criteria models.Criteria, fallbackURL string) models.ScreeningVerdict {
	res := e.ratios.Resolve(ctx, ticker, fallbackURL)

	set := models.MetricSet{}
	if res.Available() {
		set = res.Metrics.Clone()
	}

	if e.growth != nil && criteria.NeedsGrowth() {
		if g := e.growth.Resolve(ctx, ticker); g.Available() {
			for k, v := range g.Metrics {
				if _, exists := set[k]; !exists {
					set[k] = v
				}
			}
		}
	}

	verdict := Evaluate(ticker, set, criteria, e.directions)
	verdict.Source = res.Source
	if !res.Available() {
		verdict.Info = res.Info
	}

	e.metrics.Verdict(verdict.Status)
	e.logger.Debug().
		Str("ticker", ticker).
		Str("status", verdict.Status).
		Strs("reasons", verdict.Reasons).
		Msg("Ticker screened")

	return verdict
}

// Run screens tickers and wraps the verdicts in a report
func (e *Engine) Run(ctx context.Context, tickers []string, criteria models.Criteria, fallbackURLs map[string]string) *models.ScreeningReport {
	report := &models.ScreeningReport{
		RunID:     uuid.New().String(),
		Criteria:  criteria,
		StartedAt: e.now(),
	}

	report.Results = e.Screen(ctx, tickers, criteria, fallbackURLs)
	for _, v := range report.Results {
		if v.Passed {
			report.Matched++
		} else {
			report.Failed++
		}
	}
	report.FinishedAt = e.now()

	e.metrics.ScreenDuration(report.FinishedAt.Sub(report.StartedAt))
	e.logger.Info().
		Str("run_id", report.RunID).
		Int("tickers", len(tickers)).
		Int("matched", report.Matched).
		Int("failed", report.Failed).
		Msg("Screening run complete")

	return report
}

// Evaluate applies criteria to a metric set. Every criterion is checked so
// a failing verdict lists all violations, in criteria order. Metrics with
// no declared direction are reported but never fail.
func Evaluate(ticker string, set models.MetricSet, criteria models.Criteria, directions models.DirectionTable) models.ScreeningVerdict {
	reasons := []string{}
	for _, c := range criteria {
		v, ok := set.Get(c.Metric)
		if !ok {
			reasons = append(reasons, fmt.Sprintf("%s: Missing", c.Metric))
			continue
		}
		switch directions.For(c.Metric) {
		case models.HigherIsBetter:
			if v < c.Threshold {
				reasons = append(reasons, fmt.Sprintf("%s: %s < %s", c.Metric, formatFloat(v), formatFloat(c.Threshold)))
			}
		case models.LowerIsBetter:
			if v > c.Threshold {
				reasons = append(reasons, fmt.Sprintf("%s: %s > %s", c.Metric, formatFloat(v), formatFloat(c.Threshold)))
			}
		}
	}

	passed := len(reasons) == 0
	status := models.StatusFail
	if passed {
		status = models.StatusPass
	}

	if set == nil {
		set = models.MetricSet{}
	}
	return models.ScreeningVerdict{
		Ticker:  ticker,
		Status:  status,
		Passed:  passed,
		Metrics: set,
		Reasons: reasons,
	}
}

// formatFloat renders the shortest representation, keeping a ".0" on
// integral values so 1 prints as "1.0".
func formatFloat(v float64) string {
	abs := math.Abs(v)
	var s string
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s = strconv.FormatFloat(v, 'g', -1, 64)
	} else {
		s = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}
