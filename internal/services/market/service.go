// Package market resolves ratios and growth metrics, screens tickers and
// serves price history.
package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/metrics"
	"github.com/bobmcallan/finscreen/internal/models"
	"github.com/bobmcallan/finscreen/internal/sources"
)

var (
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrNoPriceData     = errors.New("no price data")
)

// intervals maps user-facing bar intervals to EODHD periods
var intervals = map[string]string{
	"1d":  "d",
	"1wk": "w",
	"1mo": "m",
}

// Service implements MarketService
type Service struct {
	history         interfaces.PriceHistoryProvider
	statements      interfaces.StatementsProvider
	ratios          *RatioResolver
	growth          *GrowthResolver
	engine          *Engine
	defaultCriteria models.Criteria
	logger          *common.Logger
	now             func() time.Time
}

// NewService wires the metric sources, resolvers and screening engine over
// a market data provider. tables backs the fallback page source and may be
// nil, in which case fallback URLs are ignored.
func NewService(
	provider interfaces.MarketDataProvider,
	tables interfaces.TableFetcher,
	defaultCriteria models.Criteria,
	logger *common.Logger,
	m *metrics.Manager,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if len(defaultCriteria) == 0 {
		defaultCriteria = models.DefaultCriteria()
	}

	chain := []sources.Source{
		sources.NewKeyMetricsSource(provider, logger, m),
		sources.NewStatementsSource(provider, logger, m),
	}
	var page sources.PageSource
	if tables != nil {
		page = sources.NewPageRatiosSource(tables, logger, m)
	}

	ratios := NewRatioResolver(chain, page, logger, m)
	growth := NewGrowthResolver(provider, provider, logger, m)

	return &Service{
		history:         provider,
		statements:      provider,
		ratios:          ratios,
		growth:          growth,
		engine:          NewEngine(ratios, WithGrowth(growth), WithMetrics(m), WithLogger(logger)),
		defaultCriteria: defaultCriteria,
		logger:          logger,
		now:             time.Now,
	}
}

// History returns price bars for period ("5d", "1mo", "3mo", "6mo", "1y",
// "2y", "5y", "10y", "ytd", "max") at interval ("1d", "1wk", "1mo").
func (s *Service) History(ctx context.Context, ticker, period, interval string) ([]models.EODBar, error) {
	from, err := periodStart(s.now(), period)
	if err != nil {
		return nil, err
	}
	if interval == "" {
		interval = "1d"
	}
	eodPeriod, ok := intervals[strings.ToLower(interval)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}

	bars, err := s.history.History(ctx, ticker,
		interfaces.WithDateRange(from, time.Time{}),
		interfaces.WithInterval(eodPeriod))
	if err != nil {
		return nil, fmt.Errorf("price history for %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoPriceData, ticker)
	}
	return bars, nil
}

// Chart renders the daily closing price history for period as a PNG
func (s *Service) Chart(ctx context.Context, ticker, period string) ([]byte, error) {
	bars, err := s.History(ctx, ticker, period, "1d")
	if err != nil {
		return nil, err
	}
	return RenderPriceChart(ticker, bars)
}

// Statements returns the raw financial statements for ticker
func (s *Service) Statements(ctx context.Context, ticker string) (*models.Statements, error) {
	st, err := s.statements.Statements(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("statements for %s: %w", ticker, err)
	}
	return st, nil
}

// Ratios resolves the ratio metric set for ticker
func (s *Service) Ratios(ctx context.Context, ticker, fallbackURL string) models.Resolution {
	return s.ratios.Resolve(ctx, ticker, fallbackURL)
}

// Growth resolves year-over-year growth for ticker
func (s *Service) Growth(ctx context.Context, ticker string) models.Resolution {
	return s.growth.Resolve(ctx, ticker)
}

// Screen runs a screening pass, using the configured default criteria when
// the request carries none.
func (s *Service) Screen(ctx context.Context, req interfaces.ScreenRequest) *models.ScreeningReport {
	criteria := req.Criteria
	if len(criteria) == 0 {
		criteria = s.defaultCriteria
	}
	return s.engine.Run(ctx, req.Tickers, criteria, req.FallbackURLs)
}

// periodStart returns the first date covered by period; the zero time
// means no lower bound.
func periodStart(now time.Time, period string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", "1y":
		return now.AddDate(-1, 0, 0), nil
	case "5d":
		return now.AddDate(0, 0, -5), nil
	case "1mo":
		return now.AddDate(0, -1, 0), nil
	case "3mo":
		return now.AddDate(0, -3, 0), nil
	case "6mo":
		return now.AddDate(0, -6, 0), nil
	case "2y":
		return now.AddDate(-2, 0, 0), nil
	case "5y":
		return now.AddDate(-5, 0, 0), nil
	case "10y":
		return now.AddDate(-10, 0, 0), nil
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	case "max":
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
}

var _ interfaces.MarketService = (*Service)(nil)
